package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/subsurfacelabs/potfield/core"
	"github.com/subsurfacelabs/potfield/internal/logging"
	"github.com/subsurfacelabs/potfield/kb"
)

// ErrInvalidRequest is a package-level sentinel used for client-side
// validation failures.
var ErrInvalidRequest = errors.New("invalid request")

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFromError maps service errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, core.ErrShapeMismatch),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, kb.ErrNilSphere):
		return http.StatusBadRequest
	case errors.Is(err, kb.ErrSphereNotFound):
		return http.StatusNotFound
	case errors.Is(err, kb.ErrSphereExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	writeJSON(w, statusFromError(err), errorResponse{
		Error:     err.Error(),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
