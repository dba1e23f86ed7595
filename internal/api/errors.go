package api

import (
	"errors"
	"net/http"

	"github.com/heimdex/heimdex-editor/internal/backend"
	"github.com/heimdex/heimdex-editor/internal/session"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// writeSessionError maps editor errors onto the JSON error envelope.
func writeSessionError(w http.ResponseWriter, err error) {
	var netErr *backend.NetworkError

	switch {
	case errors.Is(err, session.ErrNotFound):
		WriteError(w, http.StatusNotFound, "session not found", "SESSION_NOT_FOUND")
	case errors.Is(err, timeline.ErrInvalidRange):
		WriteError(w, http.StatusBadRequest, "start time must be less than end time", "INVALID_RANGE")
	case errors.Is(err, timeline.ErrIndex):
		WriteError(w, http.StatusNotFound, err.Error(), "INDEX_OUT_OF_RANGE")
	case errors.Is(err, session.ErrNoMedia):
		WriteError(w, http.StatusBadRequest, err.Error(), "NO_MEDIA")
	case errors.Is(err, session.ErrNoClips):
		WriteError(w, http.StatusBadRequest, err.Error(), "NO_CLIPS")
	case errors.Is(err, session.ErrInFlight):
		WriteError(w, http.StatusConflict, err.Error(), "IN_FLIGHT")
	case errors.Is(err, session.ErrMediaLoaded):
		WriteError(w, http.StatusConflict, err.Error(), "MEDIA_LOADED")
	case errors.As(err, &netErr):
		WriteError(w, http.StatusBadGateway, netErr.Error(), "NETWORK_ERROR")
	default:
		WriteError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
	}
}
