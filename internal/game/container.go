package game

import (
	"github.com/mwhitney/accountability-game/internal/user"
	"gorm.io/gorm"
)

type GameContainer struct {
	Handler *Handler
	Service GameService
	Repo    GameRepository
}

func NewGameContainer(db *gorm.DB, users user.UserRepository, checker SetupChecker) *GameContainer {
	repo := NewRepository(db)
	service := NewService(repo, users, checker)
	handler := NewHandler(service)

	return &GameContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
