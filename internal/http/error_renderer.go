package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/cachegate/cachegate/internal/errors"
)

// statusForError maps an error to its response status. Unclassified errors are 500s.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// renderError writes err as a JSON error response. Server-side failures are logged; client
// errors only at debug. The body never carries more than the public message.
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusForError(err)
	msg := apperrors.PublicMessage(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	} else {
		logger.DebugContext(r.Context(), "request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}

	noteError(r.Context(), err)
	WriteError(w, ErrorParams{Code: status, Message: msg})
}
