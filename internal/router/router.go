package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mwhitney/accountability-game/internal/auth"
	"github.com/mwhitney/accountability-game/internal/game"
	"github.com/mwhitney/accountability-game/internal/goal"
	"github.com/mwhitney/accountability-game/internal/middlewares"
	"github.com/mwhitney/accountability-game/internal/user"
)

type RouterConfig struct {
	UserHandler *user.Handler
	GameHandler *game.Handler
	GoalHandler *goal.Handler
}

func New(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.UserHandler.GoogleLogin)
		r.Post("/refresh", cfg.UserHandler.RefreshToken)
		r.Post("/logout", auth.NewHandler().Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/games", game.Routes(
			cfg.GameHandler,
			goal.OwnRoutes(cfg.GoalHandler),
			goal.MemberRoutes(cfg.GoalHandler),
		))
	})
	return r
}
