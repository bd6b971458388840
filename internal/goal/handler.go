package goal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mwhitney/accountability-game/internal/auth"
	"github.com/mwhitney/accountability-game/internal/config"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service GoalService
}

func NewHandler(service GoalService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetOwnSnapshot(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}

	snap, err := h.service.OwnSnapshot(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, log, err, "Failed to load goal record")
		return
	}
	config.JSON(w, http.StatusOK, snap)
}

func (h *Handler) GetMemberSnapshot(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}
	memberID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	snap, err := h.service.MemberSnapshot(r.Context(), gameID, memberID)
	if err != nil {
		writeServiceError(w, log, err, "Failed to load member goal record")
		return
	}
	config.JSON(w, http.StatusOK, snap)
}

func (h *Handler) GetMemberScorecard(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}
	memberID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	card, err := h.service.MemberScorecard(r.Context(), gameID, memberID)
	if err != nil {
		writeServiceError(w, log, err, "Failed to compute scorecard")
		return
	}
	config.JSON(w, http.StatusOK, card)
}

// GetSetupChecklist is the read-only progress view over the same rules
// that gate setup completion.
func (h *Handler) GetSetupChecklist(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}

	claims, err := callerClaims(w, r)
	if err != nil {
		return
	}

	violations, err := h.service.SetupViolations(r.Context(), gameID, uuid.MustParse(claims.UserID))
	if err != nil {
		writeServiceError(w, log, err, "Failed to evaluate setup checklist")
		return
	}
	config.JSON(w, http.StatusOK, ChecklistResponse{Ready: len(violations) == 0, Violations: violations})
}

func (h *Handler) UpsertVision(w http.ResponseWriter, r *http.Request) {
	h.upsertStatement(w, r, func(ctx *statementCtx) (interface{}, error) {
		return h.service.UpsertVision(ctx.r.Context(), ctx.gameID, ctx.dto)
	})
}

func (h *Handler) UpsertWhy(w http.ResponseWriter, r *http.Request) {
	h.upsertStatement(w, r, func(ctx *statementCtx) (interface{}, error) {
		return h.service.UpsertWhy(ctx.r.Context(), ctx.gameID, ctx.dto)
	})
}

func (h *Handler) UpsertObjective(w http.ResponseWriter, r *http.Request) {
	h.upsertStatement(w, r, func(ctx *statementCtx) (interface{}, error) {
		return h.service.UpsertObjective(ctx.r.Context(), ctx.gameID, ctx.dto)
	})
}

type statementCtx struct {
	r      *http.Request
	gameID uuid.UUID
	dto    StatementDTO
}

func (h *Handler) upsertStatement(w http.ResponseWriter, r *http.Request, upsert func(*statementCtx) (interface{}, error)) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}

	var dto StatementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	row, err := upsert(&statementCtx{r: r, gameID: gameID, dto: dto})
	if err != nil {
		writeServiceError(w, log, err, "Failed to upsert statement")
		return
	}
	config.JSON(w, http.StatusOK, row)
}

func (h *Handler) CreateKeyResult(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}

	var dto WeightedItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	kr, err := h.service.CreateKeyResult(r.Context(), gameID, dto)
	if err != nil {
		writeServiceError(w, log, err, "Failed to create key result")
		return
	}
	config.JSON(w, http.StatusCreated, kr)
}

func (h *Handler) UpdateKeyResult(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var dto WeightedItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	kr, err := h.service.UpdateKeyResult(r.Context(), id, dto)
	if err != nil {
		writeServiceError(w, log, err, "Failed to update key result")
		return
	}
	config.JSON(w, http.StatusOK, kr)
}

func (h *Handler) DeleteKeyResult(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteKeyResult(r.Context(), id); err != nil {
		writeServiceError(w, log, err, "Failed to delete key result")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}

	var dto WeightedItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.CreateProject(r.Context(), gameID, dto)
	if err != nil {
		writeServiceError(w, log, err, "Failed to create project")
		return
	}
	config.JSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var dto WeightedItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateProject(r.Context(), id, dto)
	if err != nil {
		writeServiceError(w, log, err, "Failed to update project")
		return
	}
	config.JSON(w, http.StatusOK, p)
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteProject(r.Context(), id); err != nil {
		writeServiceError(w, log, err, "Failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateBeliefItem(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}

	var dto BeliefItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.service.CreateBeliefItem(r.Context(), gameID, dto)
	if err != nil {
		writeServiceError(w, log, err, "Failed to create belief item")
		return
	}
	config.JSON(w, http.StatusCreated, b)
}

func (h *Handler) UpdateBeliefItem(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var dto BeliefItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.service.UpdateBeliefItem(r.Context(), id, dto)
	if err != nil {
		writeServiceError(w, log, err, "Failed to update belief item")
		return
	}
	config.JSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBeliefItem(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteBeliefItem(r.Context(), id); err != nil {
		writeServiceError(w, log, err, "Failed to delete belief item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpsertCommitment(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := pathUUID(w, r, "gameId")
	if !ok {
		return
	}

	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		http.Error(w, "invalid week number", http.StatusBadRequest)
		return
	}

	var dto CommitmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.service.UpsertCommitment(r.Context(), gameID, week, dto)
	if err != nil {
		writeServiceError(w, log, err, "Failed to upsert commitment")
		return
	}
	config.JSON(w, http.StatusOK, c)
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func callerClaims(w http.ResponseWriter, r *http.Request) (*auth.UserClaims, error) {
	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return claims, err
}

func writeServiceError(w http.ResponseWriter, log *logrus.Entry, err error, msg string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrNotOptedIn):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidWeek),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrInvalidItemType),
		errors.Is(err, ErrInvalidCategory),
		errors.Is(err, ErrInvalidCompletion):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.WithError(err).Error(msg)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
