package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mwhitney/accountability-game/internal/config"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	service GameService
}

func NewHandler(service GameService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto CreateGameDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	g, err := h.service.CreateGame(r.Context(), dto)
	if err != nil {
		writeError(w, log, err, "Failed to create game")
		return
	}
	config.JSON(w, http.StatusCreated, g)
}

func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	g, err := h.service.ActiveGame(r.Context())
	if err != nil {
		writeError(w, log, err, "Failed to load active game")
		return
	}
	config.JSON(w, http.StatusOK, g)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	g, err := h.service.GetGame(r.Context(), gameID)
	if err != nil {
		writeError(w, log, err, "Failed to load game")
		return
	}
	config.JSON(w, http.StatusOK, g)
}

func (h *Handler) ToggleOptIn(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	var dto OptInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.ToggleOptIn(r.Context(), gameID, dto.OptedIn)
	if err != nil {
		writeError(w, log, err, "Failed to toggle opt-in")
		return
	}
	config.JSON(w, http.StatusOK, p)
}

func (h *Handler) MarkSetupComplete(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.service.MarkSetupComplete(r.Context(), gameID)
	if err != nil {
		writeError(w, log, err, "Failed to mark setup complete")
		return
	}
	config.JSON(w, http.StatusOK, p)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	g, err := h.service.Activate(r.Context(), gameID)
	if err != nil {
		writeError(w, log, err, "Failed to activate game")
		return
	}
	config.JSON(w, http.StatusOK, g)
}

func (h *Handler) MarkGameComplete(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	gameID, ok := gameIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.service.MarkGameComplete(r.Context(), gameID)
	if err != nil {
		writeError(w, log, err, "Failed to mark game complete")
		return
	}
	config.JSON(w, http.StatusOK, p)
}

func gameIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "gameId"))
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, log *logrus.Entry, err error, msg string) {
	var setupErr *SetupIncompleteError
	var activationErr *ActivationError

	switch {
	case errors.As(err, &setupErr):
		config.JSON(w, http.StatusUnprocessableEntity, RejectionResponse{
			Error:      "setup incomplete",
			Violations: setupErr.Violations,
		})
	case errors.As(err, &activationErr):
		config.JSON(w, http.StatusUnprocessableEntity, RejectionResponse{
			Error:    "not all participants are ready",
			NotReady: activationErr.NotReady,
		})
	case errors.Is(err, ErrNoParticipants):
		config.JSON(w, http.StatusUnprocessableEntity, RejectionResponse{
			Error: err.Error(),
		})
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrGameNotFound), errors.Is(err, ErrParticipationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotInSetup), errors.Is(err, ErrNotActive), errors.Is(err, ErrNotOptedIn):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrEmptyName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.WithError(err).Error(msg)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
