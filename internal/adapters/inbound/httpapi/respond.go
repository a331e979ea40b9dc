package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charleschow/courtside/internal/core/roster"
	"github.com/charleschow/courtside/internal/core/session"
	"github.com/charleschow/courtside/internal/telemetry"
)

// errorResponse carries a short message for humans and, when a cause
// exists, its text in Detail.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		telemetry.Warnf("http: encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	resp := errorResponse{Error: message}
	if err != nil {
		if status >= http.StatusInternalServerError {
			telemetry.Errorf("http: %s: %v", message, err)
		}
		resp.Detail = err.Error()
	}
	respondJSON(w, status, resp)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, roster.ErrSportNotFound), errors.Is(err, roster.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrSameTeam), errors.Is(err, roster.ErrInvalidTeam), errors.Is(err, session.ErrUnknownOp):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
