package goal

import "gorm.io/gorm"

type GoalContainer struct {
	Handler *Handler
	Service GoalService
	Repo    GoalRepository
}

func NewGoalContainer(db *gorm.DB, games GameDirectory) *GoalContainer {
	repo := NewRepository(db)
	service := NewService(repo, games)
	handler := NewHandler(service)

	return &GoalContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
