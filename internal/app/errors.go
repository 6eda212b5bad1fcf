package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xymaxim/fmtinfo/internal/sources"
)

// HandlerFunc is an HTTP handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// StatusError is a request-level failure with a fixed status code.
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	return e.Msg
}

type errorBody struct {
	Detail string `json:"detail"`
}

// WithError adapts h to http.HandlerFunc, writing returned errors as a
// JSON {"detail": ...} body with a matching status code.
func WithError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		code, detail := describeError(err)
		if code >= http.StatusInternalServerError {
			slog.Error("handling request", "method", r.Method, "path", r.URL.Path, "code", code, "err", err)
		} else {
			slog.Warn("rejecting request", "method", r.Method, "path", r.URL.Path, "code", code, "err", err)
		}
		writeJSON(w, code, errorBody{Detail: detail})
	}
}

func describeError(err error) (int, string) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, statusErr.Msg
	}

	msg := sources.Message(err)
	switch {
	case errors.Is(err, sources.ErrInvalidURL):
		return http.StatusBadRequest, withMessage("Invalid video URL", msg)
	case errors.Is(err, sources.ErrNoData):
		return http.StatusBadRequest, withMessage("Scraping Failed", msg)
	case errors.Is(err, sources.ErrBlocked):
		return http.StatusForbidden, withMessage("Scraping Failed: the upstream service blocked the request", msg)
	case errors.Is(err, sources.ErrUnavailable):
		return http.StatusServiceUnavailable, withMessage("Scraping Failed: the upstream service is unavailable", msg)
	default:
		return http.StatusInternalServerError, "Scraping Logic Error: An internal error occurred."
	}
}

func withMessage(prefix, msg string) string {
	if msg == "" {
		return prefix
	}
	return prefix + ": " + msg
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing json response", "err", err)
	}
}
