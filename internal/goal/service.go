package goal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mwhitney/accountability-game/internal/auth"
	"github.com/mwhitney/accountability-game/internal/config"
	"github.com/mwhitney/accountability-game/internal/scoring"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("row belongs to another participant")
	ErrNotOptedIn        = errors.New("participant is not opted into this game")
	ErrInvalidWeek       = errors.New("week number must be between 1 and 6")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidItemType   = errors.New("invalid belief item type")
	ErrInvalidCategory   = errors.New("invalid belief category")
	ErrInvalidCompletion = errors.New("commitment completion must be 0 or 100")
)

const gameStatusSetup = "SETUP"

// GameDirectory is the slice of the game module this package needs.
// The game repository satisfies it; the container does the wiring so
// the two packages stay import-free of each other.
type GameDirectory interface {
	GameStatus(gameID uuid.UUID) (string, error)
	GameName(gameID uuid.UUID) (string, error)
	IsOptedIn(gameID, userID uuid.UUID) (bool, error)
	// CompletedGameIDs returns completed games the user opted into,
	// most recent start date first.
	CompletedGameIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

type GoalService interface {
	OwnSnapshot(ctx context.Context, gameID uuid.UUID) (*Snapshot, error)
	MemberSnapshot(ctx context.Context, gameID, memberID uuid.UUID) (*Snapshot, error)
	MemberScorecard(ctx context.Context, gameID, memberID uuid.UUID) (*scoring.Scorecard, error)
	SetupViolations(ctx context.Context, gameID, userID uuid.UUID) ([]string, error)

	UpsertVision(ctx context.Context, gameID uuid.UUID, dto StatementDTO) (*Vision, error)
	UpsertWhy(ctx context.Context, gameID uuid.UUID, dto StatementDTO) (*Why, error)
	UpsertObjective(ctx context.Context, gameID uuid.UUID, dto StatementDTO) (*Objective, error)

	CreateKeyResult(ctx context.Context, gameID uuid.UUID, dto WeightedItemDTO) (*KeyResult, error)
	UpdateKeyResult(ctx context.Context, id uuid.UUID, dto WeightedItemDTO) (*KeyResult, error)
	DeleteKeyResult(ctx context.Context, id uuid.UUID) error

	CreateProject(ctx context.Context, gameID uuid.UUID, dto WeightedItemDTO) (*Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, dto WeightedItemDTO) (*Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error

	CreateBeliefItem(ctx context.Context, gameID uuid.UUID, dto BeliefItemDTO) (*BeliefItem, error)
	UpdateBeliefItem(ctx context.Context, id uuid.UUID, dto BeliefItemDTO) (*BeliefItem, error)
	DeleteBeliefItem(ctx context.Context, id uuid.UUID) error

	UpsertCommitment(ctx context.Context, gameID uuid.UUID, week int, dto CommitmentDTO) (*Commitment, error)
}

type service struct {
	repo  GoalRepository
	games GameDirectory
}

func NewService(repo GoalRepository, games GameDirectory) GoalService {
	return &service{repo: repo, games: games}
}

func callerID(ctx context.Context, log logrus.FieldLogger, action string) (uuid.UUID, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return uuid.Nil, ErrUnauthorized
	}
	return uuid.MustParse(claims.UserID), nil
}

// OwnSnapshot returns the caller's full goal record, running the belief
// carry-over import on the first visit of a setup-stage game.
func (s *service) OwnSnapshot(ctx context.Context, gameID uuid.UUID) (*Snapshot, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "read goal record")
	if err != nil {
		return nil, err
	}

	if err := s.ensureBeliefCarryOver(ctx, gameID, userID); err != nil {
		// Carry-over is best effort; an empty inventory is not an error.
		log.WithError(err).Warn("Belief carry-over failed")
	}

	return s.snapshot(gameID, userID)
}

// MemberSnapshot is the read-only view of another participant's record,
// open once that participant is opted in.
func (s *service) MemberSnapshot(ctx context.Context, gameID, memberID uuid.UUID) (*Snapshot, error) {
	log := config.WithContext(ctx)
	if _, err := callerID(ctx, log, "view member goal record"); err != nil {
		return nil, err
	}

	optedIn, err := s.games.IsOptedIn(gameID, memberID)
	if err != nil {
		return nil, err
	}
	if !optedIn {
		return nil, ErrNotOptedIn
	}

	return s.snapshot(gameID, memberID)
}

func (s *service) MemberScorecard(ctx context.Context, gameID, memberID uuid.UUID) (*scoring.Scorecard, error) {
	snap, err := s.MemberSnapshot(ctx, gameID, memberID)
	if err != nil {
		return nil, err
	}

	var vision, why, objective float64
	if snap.Vision != nil {
		vision = float64(snap.Vision.CompletionPercentage)
	}
	if snap.Why != nil {
		why = float64(snap.Why.CompletionPercentage)
	}
	if snap.Objective != nil {
		objective = float64(snap.Objective.CompletionPercentage)
	}

	keyResults := make([]scoring.WeightedItem, len(snap.KeyResults))
	for i, kr := range snap.KeyResults {
		keyResults[i] = scoring.WeightedItem{Weight: float64(kr.WeightPercentage), Completion: float64(kr.CompletionPercentage)}
	}
	projects := make([]scoring.WeightedItem, len(snap.Projects))
	for i, p := range snap.Projects {
		projects[i] = scoring.WeightedItem{Weight: float64(p.WeightPercentage), Completion: float64(p.CompletionPercentage)}
	}
	// Limiting and empowering items score as one pool.
	beliefs := make([]scoring.RatedItem, len(snap.BeliefItems))
	for i, b := range snap.BeliefItems {
		beliefs[i] = scoring.RatedItem{Rating: b.Rating}
	}
	commitments := make([]scoring.CompletedItem, len(snap.Commitments))
	for i, c := range snap.Commitments {
		commitments[i] = scoring.CompletedItem{Completion: float64(c.CompletionPercentage)}
	}

	card := scoring.NewScorecard(vision, why, objective, keyResults, projects, beliefs, commitments)
	return &card, nil
}

// SetupViolations runs the setup validator over a participant's current
// record. Used both as the gate for marking setup complete and as the
// read-only progress checklist.
func (s *service) SetupViolations(ctx context.Context, gameID, userID uuid.UUID) ([]string, error) {
	name, err := s.games.GameName(gameID)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(gameID, userID)
	if err != nil {
		return nil, err
	}
	return ValidateSetup(name, snap), nil
}

func (s *service) snapshot(gameID, userID uuid.UUID) (*Snapshot, error) {
	snap := &Snapshot{}
	var err error

	if snap.Vision, err = s.repo.GetVision(gameID, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.Why, err = s.repo.GetWhy(gameID, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.Objective, err = s.repo.GetObjective(gameID, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if snap.KeyResults, err = s.repo.ListKeyResults(gameID, userID); err != nil {
		return nil, err
	}
	if snap.Projects, err = s.repo.ListProjects(gameID, userID); err != nil {
		return nil, err
	}
	if snap.BeliefItems, err = s.repo.ListBeliefItems(gameID, userID); err != nil {
		return nil, err
	}
	if snap.Commitments, err = s.repo.ListCommitments(gameID, userID); err != nil {
		return nil, err
	}
	return snap, nil
}

// ensureBeliefCarryOver clones the belief inventory from the most
// recent completed game that has one, the first time a participant with
// an empty inventory opens a setup-stage game. First non-empty match
// wins, not merely the most recent game.
func (s *service) ensureBeliefCarryOver(ctx context.Context, gameID, userID uuid.UUID) error {
	log := config.WithContext(ctx)

	status, err := s.games.GameStatus(gameID)
	if err != nil {
		return err
	}
	if status != gameStatusSetup {
		return nil
	}

	existing, err := s.repo.ListBeliefItems(gameID, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	priorIDs, err := s.games.CompletedGameIDs(userID)
	if err != nil {
		return err
	}

	for _, priorID := range priorIDs {
		prior, err := s.repo.ListBeliefItems(priorID, userID)
		if err != nil {
			return err
		}
		if len(prior) == 0 {
			continue
		}

		clones := make([]BeliefItem, len(prior))
		for i, item := range prior {
			clones[i] = BeliefItem{
				ID:          uuid.New(),
				GameID:      gameID,
				UserID:      userID,
				ItemType:    item.ItemType,
				Category:    item.Category,
				Description: item.Description,
				Rating:      item.Rating,
				Notes:       item.Notes,
				SortOrder:   item.SortOrder,
			}
		}
		if err := s.repo.CreateBeliefItems(clones); err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"user_id":    userID,
			"from_game":  priorID,
			"item_count": len(clones),
		}).Info("Carried belief inventory over from prior game")
		return nil
	}

	// No qualifying prior game; the participant starts fresh.
	return nil
}

func (s *service) UpsertVision(ctx context.Context, gameID uuid.UUID, dto StatementDTO) (*Vision, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "upsert vision")
	if err != nil {
		return nil, err
	}

	v := &Vision{GameID: gameID, UserID: userID, Content: dto.Content, CompletionPercentage: dto.CompletionPercentage}
	if err := s.repo.UpsertVision(v); err != nil {
		log.WithError(err).Error("Failed to upsert vision")
		return nil, err
	}
	return v, nil
}

func (s *service) UpsertWhy(ctx context.Context, gameID uuid.UUID, dto StatementDTO) (*Why, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "upsert why")
	if err != nil {
		return nil, err
	}

	w := &Why{GameID: gameID, UserID: userID, Content: dto.Content, CompletionPercentage: dto.CompletionPercentage}
	if err := s.repo.UpsertWhy(w); err != nil {
		log.WithError(err).Error("Failed to upsert why")
		return nil, err
	}
	return w, nil
}

func (s *service) UpsertObjective(ctx context.Context, gameID uuid.UUID, dto StatementDTO) (*Objective, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "upsert objective")
	if err != nil {
		return nil, err
	}

	o := &Objective{GameID: gameID, UserID: userID, Content: dto.Content, CompletionPercentage: dto.CompletionPercentage}
	if err := s.repo.UpsertObjective(o); err != nil {
		log.WithError(err).Error("Failed to upsert objective")
		return nil, err
	}
	return o, nil
}

func (s *service) CreateKeyResult(ctx context.Context, gameID uuid.UUID, dto WeightedItemDTO) (*KeyResult, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "create key result")
	if err != nil {
		return nil, err
	}

	kr := &KeyResult{
		ID:                   uuid.New(),
		GameID:               gameID,
		UserID:               userID,
		Description:          dto.Description,
		WeightPercentage:     dto.WeightPercentage,
		CompletionPercentage: dto.CompletionPercentage,
		Notes:                dto.Notes,
		SortOrder:            dto.SortOrder,
	}
	if err := s.repo.SaveKeyResult(kr); err != nil {
		log.WithError(err).Error("Failed to create key result")
		return nil, err
	}
	return kr, nil
}

func (s *service) UpdateKeyResult(ctx context.Context, id uuid.UUID, dto WeightedItemDTO) (*KeyResult, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "update key result")
	if err != nil {
		return nil, err
	}

	kr, err := s.repo.FindKeyResult(id)
	if err != nil {
		return nil, err
	}
	if kr.UserID != userID {
		return nil, ErrForbidden
	}

	kr.Description = dto.Description
	kr.WeightPercentage = dto.WeightPercentage
	kr.CompletionPercentage = dto.CompletionPercentage
	kr.Notes = dto.Notes
	kr.SortOrder = dto.SortOrder

	if err := s.repo.SaveKeyResult(kr); err != nil {
		log.WithError(err).Error("Failed to update key result")
		return nil, err
	}
	return kr, nil
}

func (s *service) DeleteKeyResult(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "delete key result")
	if err != nil {
		return err
	}

	kr, err := s.repo.FindKeyResult(id)
	if err != nil {
		return err
	}
	if kr.UserID != userID {
		return ErrForbidden
	}
	return s.repo.DeleteKeyResult(id)
}

func (s *service) CreateProject(ctx context.Context, gameID uuid.UUID, dto WeightedItemDTO) (*Project, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "create project")
	if err != nil {
		return nil, err
	}

	p := &Project{
		ID:                   uuid.New(),
		GameID:               gameID,
		UserID:               userID,
		Description:          dto.Description,
		WeightPercentage:     dto.WeightPercentage,
		CompletionPercentage: dto.CompletionPercentage,
		Notes:                dto.Notes,
		SortOrder:            dto.SortOrder,
	}
	if err := s.repo.SaveProject(p); err != nil {
		log.WithError(err).Error("Failed to create project")
		return nil, err
	}
	return p, nil
}

func (s *service) UpdateProject(ctx context.Context, id uuid.UUID, dto WeightedItemDTO) (*Project, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "update project")
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindProject(id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrForbidden
	}

	p.Description = dto.Description
	p.WeightPercentage = dto.WeightPercentage
	p.CompletionPercentage = dto.CompletionPercentage
	p.Notes = dto.Notes
	p.SortOrder = dto.SortOrder

	if err := s.repo.SaveProject(p); err != nil {
		log.WithError(err).Error("Failed to update project")
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProject(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "delete project")
	if err != nil {
		return err
	}

	p, err := s.repo.FindProject(id)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return ErrForbidden
	}
	return s.repo.DeleteProject(id)
}

func (s *service) CreateBeliefItem(ctx context.Context, gameID uuid.UUID, dto BeliefItemDTO) (*BeliefItem, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "create belief item")
	if err != nil {
		return nil, err
	}
	if err := dto.validate(); err != nil {
		return nil, err
	}

	b := &BeliefItem{
		ID:          uuid.New(),
		GameID:      gameID,
		UserID:      userID,
		ItemType:    dto.ItemType,
		Category:    dto.Category,
		Description: dto.Description,
		Rating:      dto.Rating,
		Notes:       dto.Notes,
		SortOrder:   dto.SortOrder,
	}
	if err := s.repo.SaveBeliefItem(b); err != nil {
		log.WithError(err).Error("Failed to create belief item")
		return nil, err
	}
	return b, nil
}

func (s *service) UpdateBeliefItem(ctx context.Context, id uuid.UUID, dto BeliefItemDTO) (*BeliefItem, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "update belief item")
	if err != nil {
		return nil, err
	}
	if err := dto.validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.FindBeliefItem(id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}

	b.ItemType = dto.ItemType
	b.Category = dto.Category
	b.Description = dto.Description
	b.Rating = dto.Rating
	b.Notes = dto.Notes
	b.SortOrder = dto.SortOrder

	if err := s.repo.SaveBeliefItem(b); err != nil {
		log.WithError(err).Error("Failed to update belief item")
		return nil, err
	}
	return b, nil
}

func (s *service) DeleteBeliefItem(ctx context.Context, id uuid.UUID) error {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "delete belief item")
	if err != nil {
		return err
	}

	b, err := s.repo.FindBeliefItem(id)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrForbidden
	}
	return s.repo.DeleteBeliefItem(id)
}

func (s *service) UpsertCommitment(ctx context.Context, gameID uuid.UUID, week int, dto CommitmentDTO) (*Commitment, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "upsert commitment")
	if err != nil {
		return nil, err
	}
	if week < 1 || week > 6 {
		return nil, ErrInvalidWeek
	}
	if dto.CompletionPercentage != 0 && dto.CompletionPercentage != 100 {
		return nil, ErrInvalidCompletion
	}

	c := &Commitment{
		GameID:               gameID,
		UserID:               userID,
		WeekNumber:           week,
		Description:          dto.Description,
		CompletionPercentage: dto.CompletionPercentage,
		Notes:                dto.Notes,
	}
	if err := s.repo.UpsertCommitment(c); err != nil {
		log.WithError(err).Error("Failed to upsert commitment")
		return nil, err
	}
	return c, nil
}
