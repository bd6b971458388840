package game

import (
	"time"

	"github.com/google/uuid"
	util "github.com/mwhitney/accountability-game/internal/utils"
)

// Game is one bounded accountability cycle, nominally 90 days.
type Game struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	StartDate util.LocalDate `gorm:"type:date" json:"start_date"`
	EndDate   util.LocalDate `gorm:"type:date" json:"end_date"`
	Status    GameStatus     `gorm:"type:varchar(16);not null;default:'SETUP'" json:"status"`
	CreatedBy uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Participations []Participation `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"participations,omitempty"`
}

// Participation is one roster member's standing in one game. A row
// exists for every roster member from the moment the game is created;
// opting in is what makes it count toward the barriers.
type Participation struct {
	GameID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"game_id"`
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	OptedIn       bool      `gorm:"not null;default:false" json:"opted_in"`
	SetupComplete bool      `gorm:"not null;default:false" json:"setup_complete"`
	GameComplete  bool      `gorm:"not null;default:false" json:"game_complete"`
	DisplayLabel  string    `json:"display_label"`
	DisplayImage  string    `json:"display_image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
