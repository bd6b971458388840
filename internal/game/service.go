package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mwhitney/accountability-game/internal/auth"
	"github.com/mwhitney/accountability-game/internal/config"
	"github.com/mwhitney/accountability-game/internal/user"
	util "github.com/mwhitney/accountability-game/internal/utils"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotInSetup     = errors.New("game is not in setup")
	ErrNotActive      = errors.New("game is not active")
	ErrNotOptedIn     = errors.New("participant is not opted into this game")
	ErrEmptyName      = errors.New("game name must not be empty")
	ErrNoParticipants = errors.New("no participants have opted in")
)

// gameLengthDays is the nominal cycle length.
const gameLengthDays = 90

// SetupIncompleteError reports every outstanding setup rule, never just
// the first one.
type SetupIncompleteError struct {
	Violations []string
}

func (e *SetupIncompleteError) Error() string {
	return fmt.Sprintf("setup incomplete: %s", strings.Join(e.Violations, "; "))
}

// ActivationError names the opted-in participants blocking activation.
type ActivationError struct {
	NotReady []string
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("%d participant(s) not ready: %s", len(e.NotReady), strings.Join(e.NotReady, ", "))
}

// SetupChecker is implemented by the goal service; it runs the setup
// validator over a participant's current record.
type SetupChecker interface {
	SetupViolations(ctx context.Context, gameID, userID uuid.UUID) ([]string, error)
}

type GameService interface {
	CreateGame(ctx context.Context, dto CreateGameDTO) (*Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (*Game, error)
	ActiveGame(ctx context.Context) (*Game, error)
	ToggleOptIn(ctx context.Context, gameID uuid.UUID, optedIn bool) (*Participation, error)
	MarkSetupComplete(ctx context.Context, gameID uuid.UUID) (*Participation, error)
	Activate(ctx context.Context, gameID uuid.UUID) (*Game, error)
	MarkGameComplete(ctx context.Context, gameID uuid.UUID) (*Participation, error)
}

type service struct {
	repo     GameRepository
	users    user.UserRepository
	checker  SetupChecker
	activeID atomic.Pointer[uuid.UUID]
}

func NewService(repo GameRepository, users user.UserRepository, checker SetupChecker) GameService {
	s := &service{repo: repo, users: users, checker: checker}

	// Seed the current-game reference from the most recent row; from
	// here on it is maintained on lifecycle events, not re-derived by
	// sort order on every read.
	if latest, err := repo.Latest(); err == nil {
		id := latest.ID
		s.activeID.Store(&id)
	}
	return s
}

func callerID(ctx context.Context, log logrus.FieldLogger, action string) (uuid.UUID, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return uuid.Nil, ErrUnauthorized
	}
	return uuid.MustParse(claims.UserID), nil
}

// CreateGame starts a new cycle and seats the entire roster, everyone
// opted out until they say otherwise.
func (s *service) CreateGame(ctx context.Context, dto CreateGameDTO) (*Game, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "create game")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(dto.Name) == "" {
		return nil, ErrEmptyName
	}

	start := util.Today()
	if dto.StartDate != nil && !dto.StartDate.IsZero() {
		start = *dto.StartDate
	}

	g := &Game{
		ID:        uuid.New(),
		Name:      dto.Name,
		StartDate: start,
		EndDate:   start.AddDays(gameLengthDays),
		Status:    GameStatusSetup,
		CreatedBy: userID,
	}

	roster, err := s.users.ListAll()
	if err != nil {
		log.WithError(err).Error("Failed to load roster for new game")
		return nil, err
	}

	parts := make([]Participation, len(roster))
	for i, member := range roster {
		parts[i] = Participation{
			GameID:       g.ID,
			UserID:       member.ID,
			DisplayLabel: member.Name,
			DisplayImage: member.AvatarURL,
		}
	}

	if err := s.repo.CreateWithParticipations(g, parts); err != nil {
		log.WithError(err).Error("Failed to create game")
		return nil, err
	}

	id := g.ID
	s.activeID.Store(&id)

	log.WithFields(logrus.Fields{
		"game_id":      g.ID,
		"participants": len(parts),
	}).Info("Game created")

	g.Participations = parts
	return g, nil
}

func (s *service) GetGame(ctx context.Context, id uuid.UUID) (*Game, error) {
	log := config.WithContext(ctx)
	if _, err := callerID(ctx, log, "get game"); err != nil {
		return nil, err
	}
	return s.repo.FindByIDWithParticipations(id)
}

func (s *service) ActiveGame(ctx context.Context) (*Game, error) {
	log := config.WithContext(ctx)
	if _, err := callerID(ctx, log, "get active game"); err != nil {
		return nil, err
	}

	idPtr := s.activeID.Load()
	if idPtr == nil {
		return nil, ErrGameNotFound
	}
	return s.repo.FindByIDWithParticipations(*idPtr)
}

// ToggleOptIn flips a participant's opt-in while the game is still in
// setup. Opting out also clears setup_complete so a returning
// participant must pass the validator again.
func (s *service) ToggleOptIn(ctx context.Context, gameID uuid.UUID, optedIn bool) (*Participation, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "toggle opt-in")
	if err != nil {
		return nil, err
	}

	g, err := s.repo.FindByID(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != GameStatusSetup {
		return nil, ErrNotInSetup
	}

	p, err := s.repo.GetParticipation(gameID, userID)
	if err != nil {
		return nil, err
	}

	p.OptedIn = optedIn
	if !optedIn {
		p.SetupComplete = false
	}

	if err := s.repo.SaveParticipation(p); err != nil {
		log.WithError(err).Error("Failed to save opt-in change")
		return nil, err
	}
	return p, nil
}

// MarkSetupComplete runs the setup validator over the caller's record
// and persists the flag only when the violation list is empty.
func (s *service) MarkSetupComplete(ctx context.Context, gameID uuid.UUID) (*Participation, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "mark setup complete")
	if err != nil {
		return nil, err
	}

	g, err := s.repo.FindByID(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != GameStatusSetup {
		return nil, ErrNotInSetup
	}

	p, err := s.repo.GetParticipation(gameID, userID)
	if err != nil {
		return nil, err
	}
	if !p.OptedIn {
		return nil, ErrNotOptedIn
	}

	violations, err := s.checker.SetupViolations(ctx, gameID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to run setup validator")
		return nil, err
	}
	if len(violations) > 0 {
		return nil, &SetupIncompleteError{Violations: violations}
	}

	p.SetupComplete = true
	if err := s.repo.SaveParticipation(p); err != nil {
		log.WithError(err).Error("Failed to persist setup completion")
		return nil, err
	}

	log.WithFields(logrus.Fields{"game_id": gameID, "user_id": userID}).Info("Participant setup complete")
	return p, nil
}

// Activate moves setup → active once every opted-in participant has
// passed setup. Participants who never opted in are excluded from this
// game permanently.
func (s *service) Activate(ctx context.Context, gameID uuid.UUID) (*Game, error) {
	log := config.WithContext(ctx)
	if _, err := callerID(ctx, log, "activate game"); err != nil {
		return nil, err
	}

	g, err := s.repo.FindByID(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != GameStatusSetup {
		return nil, ErrNotInSetup
	}

	parts, err := s.repo.ListParticipations(gameID)
	if err != nil {
		return nil, err
	}

	var optedIn int
	var notReady []string
	for _, p := range parts {
		if !p.OptedIn {
			continue
		}
		optedIn++
		if !p.SetupComplete {
			notReady = append(notReady, p.DisplayLabel)
		}
	}
	if optedIn == 0 {
		return nil, ErrNoParticipants
	}
	if len(notReady) > 0 {
		return nil, &ActivationError{NotReady: notReady}
	}

	moved, err := s.repo.SetStatus(gameID, GameStatusSetup, GameStatusActive)
	if err != nil {
		log.WithError(err).Error("Failed to activate game")
		return nil, err
	}
	if !moved {
		// Someone else activated between our read and the update.
		return s.repo.FindByIDWithParticipations(gameID)
	}

	id := gameID
	s.activeID.Store(&id)

	log.WithField("game_id", gameID).Info("Game activated")
	return s.repo.FindByIDWithParticipations(gameID)
}

// MarkGameComplete records the caller's own completion and then runs
// the fan-in barrier: the game flips to completed the moment every
// opted-in participant is done. Re-marking an already-complete
// participant is a no-op and triggers no side effects.
func (s *service) MarkGameComplete(ctx context.Context, gameID uuid.UUID) (*Participation, error) {
	log := config.WithContext(ctx)
	userID, err := callerID(ctx, log, "mark game complete")
	if err != nil {
		return nil, err
	}

	g, err := s.repo.FindByID(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != GameStatusActive {
		return nil, ErrNotActive
	}

	p, err := s.repo.GetParticipation(gameID, userID)
	if err != nil {
		return nil, err
	}
	if !p.OptedIn {
		return nil, ErrNotOptedIn
	}
	if p.GameComplete {
		return p, nil
	}

	p.GameComplete = true
	if err := s.repo.SaveParticipation(p); err != nil {
		log.WithError(err).Error("Failed to persist game completion")
		return nil, err
	}

	completed, err := s.repo.CompleteIfAllDone(gameID)
	if err != nil {
		log.WithError(err).Error("Completion barrier check failed")
		return nil, err
	}
	if completed {
		log.WithField("game_id", gameID).Info("All participants done; game completed")
	}

	return p, nil
}
