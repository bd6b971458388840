package game

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrGameNotFound          = errors.New("game not found")
	ErrParticipationNotFound = errors.New("participation not found")
)

type GameRepository interface {
	CreateWithParticipations(g *Game, parts []Participation) error
	FindByID(id uuid.UUID) (*Game, error)
	FindByIDWithParticipations(id uuid.UUID) (*Game, error)
	Latest() (*Game, error)
	SetStatus(id uuid.UUID, from, to GameStatus) (bool, error)
	// CompleteIfAllDone flips an active game to completed iff no
	// opted-in participant is still incomplete, as one conditional
	// UPDATE so two simultaneous completions cannot race past it.
	CompleteIfAllDone(id uuid.UUID) (bool, error)

	ListParticipations(gameID uuid.UUID) ([]Participation, error)
	GetParticipation(gameID, userID uuid.UUID) (*Participation, error)
	SaveParticipation(p *Participation) error

	// Methods below also satisfy the goal package's GameDirectory.
	GameStatus(gameID uuid.UUID) (string, error)
	GameName(gameID uuid.UUID) (string, error)
	IsOptedIn(gameID, userID uuid.UUID) (bool, error)
	CompletedGameIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) GameRepository {
	return &repository{db: db}
}

func (r *repository) CreateWithParticipations(g *Game, parts []Participation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		if len(parts) == 0 {
			return nil
		}
		return tx.Create(&parts).Error
	})
}

func (r *repository) FindByID(id uuid.UUID) (*Game, error) {
	var g Game
	if err := r.db.First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) FindByIDWithParticipations(id uuid.UUID) (*Game, error) {
	var g Game
	if err := r.db.Preload("Participations").First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) Latest() (*Game, error) {
	var g Game
	if err := r.db.Order("created_at DESC").First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) SetStatus(id uuid.UUID, from, to GameStatus) (bool, error) {
	result := r.db.Model(&Game{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CompleteIfAllDone(id uuid.UUID) (bool, error) {
	result := r.db.Model(&Game{}).
		Where("id = ? AND status = ?", id, GameStatusActive).
		Where("NOT EXISTS (SELECT 1 FROM participations WHERE participations.game_id = ? AND participations.opted_in AND NOT participations.game_complete)", id).
		Update("status", GameStatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListParticipations(gameID uuid.UUID) ([]Participation, error) {
	var parts []Participation
	if err := r.db.
		Where("game_id = ?", gameID).
		Order("display_label ASC").
		Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *repository) GetParticipation(gameID, userID uuid.UUID) (*Participation, error) {
	var p Participation
	if err := r.db.First(&p, "game_id = ? AND user_id = ?", gameID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) SaveParticipation(p *Participation) error {
	return r.db.Save(p).Error
}

func (r *repository) GameStatus(gameID uuid.UUID) (string, error) {
	g, err := r.FindByID(gameID)
	if err != nil {
		return "", err
	}
	return string(g.Status), nil
}

func (r *repository) GameName(gameID uuid.UUID) (string, error) {
	g, err := r.FindByID(gameID)
	if err != nil {
		return "", err
	}
	return g.Name, nil
}

func (r *repository) IsOptedIn(gameID, userID uuid.UUID) (bool, error) {
	p, err := r.GetParticipation(gameID, userID)
	if err != nil {
		if errors.Is(err, ErrParticipationNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.OptedIn, nil
}

func (r *repository) CompletedGameIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.Model(&Game{}).
		Joins("JOIN participations ON participations.game_id = games.id").
		Where("participations.user_id = ? AND participations.opted_in AND games.status = ?", userID, GameStatusCompleted).
		Order("games.start_date DESC").
		Pluck("games.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
