package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/wepublish/wepublish-api/pkg/publishing"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, publishing.ErrNotFound):
		return http.StatusNotFound
	case publishing.IsDuplicateSlug(err):
		return http.StatusConflict
	case errors.Is(err, publishing.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, publishing.ErrNotAuthorised):
		return http.StatusForbidden
	case errors.Is(err, publishing.ErrInvalidPreviewToken):
		return http.StatusUnauthorized
	case publishing.IsUserInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), msg, "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	slog.DebugContext(r.Context(), msg, "status", status, "error", err)
	http.Error(w, err.Error(), status)
}
