package goal

import (
	"time"

	"github.com/google/uuid"
)

// Vision, Why and Objective are singleton rows per (game, participant),
// upserted on their compound key.
type Vision struct {
	GameID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"game_id"`
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Content              string    `gorm:"type:text" json:"content"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Why struct {
	GameID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"game_id"`
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Content              string    `gorm:"type:text" json:"content"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (Why) TableName() string { return "whys" }

type Objective struct {
	GameID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"game_id"`
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Content              string    `gorm:"type:text" json:"content"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type KeyResult struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID               uuid.UUID `gorm:"type:uuid;not null;index:idx_kr_game_user" json:"game_id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index:idx_kr_game_user" json:"user_id"`
	Description          string    `gorm:"type:text;not null" json:"description"`
	WeightPercentage     int       `gorm:"not null;default:0" json:"weight_percentage"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	Notes                string    `gorm:"type:text" json:"notes,omitempty"`
	SortOrder            int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Project has the same shape as KeyResult but is scored as its own section.
type Project struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID               uuid.UUID `gorm:"type:uuid;not null;index:idx_proj_game_user" json:"game_id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index:idx_proj_game_user" json:"user_id"`
	Description          string    `gorm:"type:text;not null" json:"description"`
	WeightPercentage     int       `gorm:"not null;default:0" json:"weight_percentage"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	Notes                string    `gorm:"type:text" json:"notes,omitempty"`
	SortOrder            int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type BeliefItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	GameID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_belief_game_user" json:"game_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_belief_game_user" json:"user_id"`
	ItemType    BeliefItemType `gorm:"type:varchar(16);not null" json:"item_type"`
	Category    BeliefCategory `gorm:"type:varchar(16);not null" json:"category"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Rating      int            `gorm:"not null;default:1" json:"rating"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Commitment is the "one big thing" for a two-week block; weeks 1..6
// over a 90-day game. Unique per (game, participant, week).
type Commitment struct {
	GameID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"game_id"`
	UserID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	WeekNumber           int       `gorm:"primaryKey" json:"week_number"`
	Description          string    `gorm:"type:text" json:"description"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	Notes                string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Snapshot is one participant's full goal record for one game.
type Snapshot struct {
	Vision      *Vision      `json:"vision"`
	Why         *Why         `json:"why"`
	Objective   *Objective   `json:"objective"`
	KeyResults  []KeyResult  `json:"key_results"`
	Projects    []Project    `json:"projects"`
	BeliefItems []BeliefItem `json:"belief_items"`
	Commitments []Commitment `json:"commitments"`
}
