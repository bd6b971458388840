package container

import (
	"context"
	"os"

	"github.com/mwhitney/accountability-game/internal/auth"
	"github.com/mwhitney/accountability-game/internal/config"
	"github.com/mwhitney/accountability-game/internal/game"
	"github.com/mwhitney/accountability-game/internal/goal"
	"github.com/mwhitney/accountability-game/internal/user"
)

type Container struct {
	UserContainer *user.UserContainer
	GameContainer *game.GameContainer
	GoalContainer *goal.GoalContainer
}

func New() *Container {
	config.Init()
	auth.Init()
	config.InitCrypto()

	dsn := os.Getenv("DATABASE_DSN")
	if err := config.Connect(context.Background(), dsn); err != nil {
		config.Logger().WithError(err).Fatal("Failed to connect to database")
	}

	userContainer := user.NewUserContainer(config.DB)

	// The goal service reads game state through the game repository and
	// the game service gates setup completion through the goal service;
	// wiring through interfaces keeps the packages independent.
	gameRepo := game.NewRepository(config.DB)
	goalContainer := goal.NewGoalContainer(config.DB, gameRepo)
	gameContainer := game.NewGameContainer(config.DB, userContainer.Repo, goalContainer.Service)

	return &Container{
		UserContainer: userContainer,
		GameContainer: gameContainer,
		GoalContainer: goalContainer,
	}
}
