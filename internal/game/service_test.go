package game_test

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mwhitney/accountability-game/internal/auth"
	"github.com/mwhitney/accountability-game/internal/game"
	"github.com/mwhitney/accountability-game/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeRoster struct {
	users []user.User
}

func (f *fakeRoster) Upsert(u *user.User) error { return nil }

func (f *fakeRoster) FindByID(id uuid.UUID) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (f *fakeRoster) FindByGoogleID(gid string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (f *fakeRoster) ListAll() ([]user.User, error) { return f.users, nil }

type fakeChecker struct {
	violations map[uuid.UUID][]string
}

func (f *fakeChecker) SetupViolations(ctx context.Context, gameID, userID uuid.UUID) ([]string, error) {
	return f.violations[userID], nil
}

func asUser(id uuid.UUID) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.UserClaims{UserID: id.String(), Role: "member"})
}

type fixture struct {
	db      *gorm.DB
	repo    game.GameRepository
	service game.GameService
	checker *fakeChecker
	alice   user.User
	bob     user.User
	carol   user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&game.Game{}, &game.Participation{}))

	alice := user.User{ID: uuid.New(), Name: "Alice"}
	bob := user.User{ID: uuid.New(), Name: "Bob"}
	carol := user.User{ID: uuid.New(), Name: "Carol"}

	roster := &fakeRoster{users: []user.User{alice, bob, carol}}
	checker := &fakeChecker{violations: map[uuid.UUID][]string{}}
	repo := game.NewRepository(db)

	return &fixture{
		db:      db,
		repo:    repo,
		service: game.NewService(repo, roster, checker),
		checker: checker,
		alice:   alice,
		bob:     bob,
		carol:   carol,
	}
}

func (f *fixture) createGame(t *testing.T) *game.Game {
	t.Helper()
	g, err := f.service.CreateGame(asUser(f.alice.ID), game.CreateGameDTO{Name: "Fall 90"})
	require.NoError(t, err)
	return g
}

func (f *fixture) optIn(t *testing.T, g *game.Game, userID uuid.UUID) {
	t.Helper()
	_, err := f.service.ToggleOptIn(asUser(userID), g.ID, true)
	require.NoError(t, err)
}

func (f *fixture) passSetup(t *testing.T, g *game.Game, userID uuid.UUID) {
	t.Helper()
	_, err := f.service.MarkSetupComplete(asUser(userID), g.ID)
	require.NoError(t, err)
}

func TestCreateGameSeatsWholeRoster(t *testing.T) {
	f := newFixture(t)

	g := f.createGame(t)
	assert.Equal(t, game.GameStatusSetup, g.Status)
	assert.Len(t, g.Participations, 3)
	for _, p := range g.Participations {
		assert.False(t, p.OptedIn)
		assert.False(t, p.SetupComplete)
		assert.False(t, p.GameComplete)
	}

	active, err := f.service.ActiveGame(asUser(f.alice.ID))
	require.NoError(t, err)
	assert.Equal(t, g.ID, active.ID)
}

func TestCreateGameRequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.CreateGame(asUser(f.alice.ID), game.CreateGameDTO{Name: "  "})
	assert.ErrorIs(t, err, game.ErrEmptyName)
}

func TestOptOutClearsSetupComplete(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	f.optIn(t, g, f.alice.ID)
	f.passSetup(t, g, f.alice.ID)

	p, err := f.service.ToggleOptIn(asUser(f.alice.ID), g.ID, false)
	require.NoError(t, err)
	assert.False(t, p.OptedIn)
	assert.False(t, p.SetupComplete, "opting out must force setup_complete back to false")
}

func TestMarkSetupCompleteGatedByValidator(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)
	f.optIn(t, g, f.alice.ID)

	f.checker.violations[f.alice.ID] = []string{
		"vision must not be empty",
		"key result weights must sum to 100 (currently 99)",
	}

	_, err := f.service.MarkSetupComplete(asUser(f.alice.ID), g.ID)
	var setupErr *game.SetupIncompleteError
	require.ErrorAs(t, err, &setupErr)
	assert.Len(t, setupErr.Violations, 2)

	f.checker.violations[f.alice.ID] = nil
	p, err := f.service.MarkSetupComplete(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)
	assert.True(t, p.SetupComplete)
}

func TestMarkSetupCompleteRequiresOptIn(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	_, err := f.service.MarkSetupComplete(asUser(f.alice.ID), g.ID)
	assert.ErrorIs(t, err, game.ErrNotOptedIn)
}

func TestActivateIgnoresOptedOutParticipants(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	// Alice is ready; Bob and Carol never opted in.
	f.optIn(t, g, f.alice.ID)
	f.passSetup(t, g, f.alice.ID)

	activated, err := f.service.Activate(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)
	assert.Equal(t, game.GameStatusActive, activated.Status)
}

func TestActivateNamesNotReadyParticipants(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	f.optIn(t, g, f.alice.ID)
	f.passSetup(t, g, f.alice.ID)
	f.optIn(t, g, f.bob.ID)

	_, err := f.service.Activate(asUser(f.alice.ID), g.ID)
	var actErr *game.ActivationError
	require.ErrorAs(t, err, &actErr)
	assert.Equal(t, []string{"Bob"}, actErr.NotReady)

	// Recoverable: Bob finishes setup and the retry succeeds.
	f.passSetup(t, g, f.bob.ID)
	activated, err := f.service.Activate(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)
	assert.Equal(t, game.GameStatusActive, activated.Status)
}

func TestActivateRequiresSomeoneOptedIn(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	_, err := f.service.Activate(asUser(f.alice.ID), g.ID)
	assert.ErrorIs(t, err, game.ErrNoParticipants)

	// The sentinel is distinct from the not-ready rejection, so the
	// payload never presents it as a participant name.
	var actErr *game.ActivationError
	assert.False(t, errors.As(err, &actErr))
}

func TestCompletionBarrier(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	f.optIn(t, g, f.alice.ID)
	f.passSetup(t, g, f.alice.ID)
	f.optIn(t, g, f.bob.ID)
	f.passSetup(t, g, f.bob.ID)

	_, err := f.service.Activate(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)

	// First completion does not flip the game.
	_, err = f.service.MarkGameComplete(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)
	current, err := f.repo.FindByID(g.ID)
	require.NoError(t, err)
	assert.Equal(t, game.GameStatusActive, current.Status)

	// The last opted-in participant completing flips it in the same call.
	_, err = f.service.MarkGameComplete(asUser(f.bob.ID), g.ID)
	require.NoError(t, err)
	current, err = f.repo.FindByID(g.ID)
	require.NoError(t, err)
	assert.Equal(t, game.GameStatusCompleted, current.Status)
}

func TestCompletionBarrierIgnoresOptedOut(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	f.optIn(t, g, f.alice.ID)
	f.passSetup(t, g, f.alice.ID)
	_, err := f.service.Activate(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)

	// Bob and Carol never opted in; Alice alone closes the game.
	_, err = f.service.MarkGameComplete(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)

	current, err := f.repo.FindByID(g.ID)
	require.NoError(t, err)
	assert.Equal(t, game.GameStatusCompleted, current.Status)
}

func TestMarkGameCompleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	f.optIn(t, g, f.alice.ID)
	f.passSetup(t, g, f.alice.ID)
	f.optIn(t, g, f.bob.ID)
	f.passSetup(t, g, f.bob.ID)
	_, err := f.service.Activate(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)

	_, err = f.service.MarkGameComplete(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)

	// Re-marking is a no-op and must not error or flip the game.
	p, err := f.service.MarkGameComplete(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)
	assert.True(t, p.GameComplete)

	current, err := f.repo.FindByID(g.ID)
	require.NoError(t, err)
	assert.Equal(t, game.GameStatusActive, current.Status)
}

func TestLifecycleGatesByStatus(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	// Completion before activation is rejected.
	f.optIn(t, g, f.alice.ID)
	_, err := f.service.MarkGameComplete(asUser(f.alice.ID), g.ID)
	assert.ErrorIs(t, err, game.ErrNotActive)

	f.passSetup(t, g, f.alice.ID)
	_, err = f.service.Activate(asUser(f.alice.ID), g.ID)
	require.NoError(t, err)

	// Opt-in toggling is a setup-stage action only.
	_, err = f.service.ToggleOptIn(asUser(f.bob.ID), g.ID, true)
	assert.ErrorIs(t, err, game.ErrNotInSetup)
	_, err = f.service.MarkSetupComplete(asUser(f.alice.ID), g.ID)
	assert.ErrorIs(t, err, game.ErrNotInSetup)
}

func TestActiveGameSeededFromLatestRow(t *testing.T) {
	f := newFixture(t)
	g := f.createGame(t)

	// A fresh service over the same store recovers the reference.
	roster := &fakeRoster{users: []user.User{f.alice}}
	rebuilt := game.NewService(f.repo, roster, f.checker)

	active, err := rebuilt.ActiveGame(asUser(f.alice.ID))
	require.NoError(t, err)
	assert.Equal(t, g.ID, active.ID)
}
