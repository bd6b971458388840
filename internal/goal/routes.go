package goal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// OwnRoutes is mounted at /games/{gameId}/goal. Every write addresses
// the authenticated caller's own rows.
func OwnRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.GetOwnSnapshot)
	r.Get("/setup-checklist", h.GetSetupChecklist)

	r.Put("/vision", h.UpsertVision)
	r.Put("/why", h.UpsertWhy)
	r.Put("/objective", h.UpsertObjective)

	r.Post("/key-results", h.CreateKeyResult)
	r.Put("/key-results/{id}", h.UpdateKeyResult)
	r.Delete("/key-results/{id}", h.DeleteKeyResult)

	r.Post("/projects", h.CreateProject)
	r.Put("/projects/{id}", h.UpdateProject)
	r.Delete("/projects/{id}", h.DeleteProject)

	r.Post("/belief-items", h.CreateBeliefItem)
	r.Put("/belief-items/{id}", h.UpdateBeliefItem)
	r.Delete("/belief-items/{id}", h.DeleteBeliefItem)

	r.Put("/commitments/{week}", h.UpsertCommitment)

	return r
}

// MemberRoutes is mounted at /games/{gameId}/members. Read-only views
// of other participants' records.
func MemberRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/{userId}/goal", h.GetMemberSnapshot)
	r.Get("/{userId}/scorecard", h.GetMemberScorecard)

	return r
}
