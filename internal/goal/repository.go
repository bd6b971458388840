package goal

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

type GoalRepository interface {
	GetVision(gameID, userID uuid.UUID) (*Vision, error)
	UpsertVision(v *Vision) error
	GetWhy(gameID, userID uuid.UUID) (*Why, error)
	UpsertWhy(w *Why) error
	GetObjective(gameID, userID uuid.UUID) (*Objective, error)
	UpsertObjective(o *Objective) error

	ListKeyResults(gameID, userID uuid.UUID) ([]KeyResult, error)
	FindKeyResult(id uuid.UUID) (*KeyResult, error)
	SaveKeyResult(kr *KeyResult) error
	DeleteKeyResult(id uuid.UUID) error

	ListProjects(gameID, userID uuid.UUID) ([]Project, error)
	FindProject(id uuid.UUID) (*Project, error)
	SaveProject(p *Project) error
	DeleteProject(id uuid.UUID) error

	ListBeliefItems(gameID, userID uuid.UUID) ([]BeliefItem, error)
	FindBeliefItem(id uuid.UUID) (*BeliefItem, error)
	SaveBeliefItem(b *BeliefItem) error
	CreateBeliefItems(items []BeliefItem) error
	DeleteBeliefItem(id uuid.UUID) error

	ListCommitments(gameID, userID uuid.UUID) ([]Commitment, error)
	UpsertCommitment(c *Commitment) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) GoalRepository {
	return &repository{db: db}
}

var compoundKey = []clause.Column{{Name: "game_id"}, {Name: "user_id"}}

func (r *repository) GetVision(gameID, userID uuid.UUID) (*Vision, error) {
	var v Vision
	if err := r.db.First(&v, "game_id = ? AND user_id = ?", gameID, userID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &v, nil
}

func (r *repository) UpsertVision(v *Vision) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   compoundKey,
		DoUpdates: clause.AssignmentColumns([]string{"content", "completion_percentage", "updated_at"}),
	}).Create(v).Error
}

func (r *repository) GetWhy(gameID, userID uuid.UUID) (*Why, error) {
	var w Why
	if err := r.db.First(&w, "game_id = ? AND user_id = ?", gameID, userID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &w, nil
}

func (r *repository) UpsertWhy(w *Why) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   compoundKey,
		DoUpdates: clause.AssignmentColumns([]string{"content", "completion_percentage", "updated_at"}),
	}).Create(w).Error
}

func (r *repository) GetObjective(gameID, userID uuid.UUID) (*Objective, error) {
	var o Objective
	if err := r.db.First(&o, "game_id = ? AND user_id = ?", gameID, userID).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &o, nil
}

func (r *repository) UpsertObjective(o *Objective) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   compoundKey,
		DoUpdates: clause.AssignmentColumns([]string{"content", "completion_percentage", "updated_at"}),
	}).Create(o).Error
}

func (r *repository) ListKeyResults(gameID, userID uuid.UUID) ([]KeyResult, error) {
	var items []KeyResult
	if err := r.db.
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Order("sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindKeyResult(id uuid.UUID) (*KeyResult, error) {
	var kr KeyResult
	if err := r.db.First(&kr, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &kr, nil
}

func (r *repository) SaveKeyResult(kr *KeyResult) error {
	return r.db.Save(kr).Error
}

func (r *repository) DeleteKeyResult(id uuid.UUID) error {
	return r.db.Delete(&KeyResult{}, "id = ?", id).Error
}

func (r *repository) ListProjects(gameID, userID uuid.UUID) ([]Project, error) {
	var items []Project
	if err := r.db.
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Order("sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindProject(id uuid.UUID) (*Project, error) {
	var p Project
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *repository) SaveProject(p *Project) error {
	return r.db.Save(p).Error
}

func (r *repository) DeleteProject(id uuid.UUID) error {
	return r.db.Delete(&Project{}, "id = ?", id).Error
}

func (r *repository) ListBeliefItems(gameID, userID uuid.UUID) ([]BeliefItem, error) {
	var items []BeliefItem
	if err := r.db.
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Order("sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindBeliefItem(id uuid.UUID) (*BeliefItem, error) {
	var b BeliefItem
	if err := r.db.First(&b, "id = ?", id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &b, nil
}

func (r *repository) SaveBeliefItem(b *BeliefItem) error {
	return r.db.Save(b).Error
}

func (r *repository) CreateBeliefItems(items []BeliefItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *repository) DeleteBeliefItem(id uuid.UUID) error {
	return r.db.Delete(&BeliefItem{}, "id = ?", id).Error
}

func (r *repository) ListCommitments(gameID, userID uuid.UUID) ([]Commitment, error) {
	var items []Commitment
	if err := r.db.
		Where("game_id = ? AND user_id = ?", gameID, userID).
		Order("week_number ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpsertCommitment(c *Commitment) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "user_id"}, {Name: "week_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "completion_percentage", "notes", "updated_at"}),
	}).Create(c).Error
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
