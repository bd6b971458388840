package game

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the lifecycle endpoints plus the goal-record routes
// that live under a game.
func Routes(h *Handler, goalRoutes http.Handler, memberRoutes http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/active", h.GetActive)

	r.Route("/{gameId}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/opt-in", h.ToggleOptIn)
		r.Post("/setup-complete", h.MarkSetupComplete)
		r.Post("/activate", h.Activate)
		r.Post("/complete", h.MarkGameComplete)

		r.Mount("/goal", goalRoutes)
		r.Mount("/members", memberRoutes)
	})

	return r
}
