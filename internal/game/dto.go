package game

import (
	util "github.com/mwhitney/accountability-game/internal/utils"
)

type CreateGameDTO struct {
	Name      string          `json:"name"`
	StartDate *util.LocalDate `json:"start_date"`
}

type OptInDTO struct {
	OptedIn bool `json:"opted_in"`
}

// RejectionResponse is the structured payload for gate failures:
// setup-completeness violations and premature activation. Never fatal;
// the caller fixes the listed items and retries.
type RejectionResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
	NotReady   []string `json:"not_ready,omitempty"`
}
