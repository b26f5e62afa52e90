package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/changelog/internal/client"
	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/export"
	"github.com/JonMunkholm/changelog/internal/filters"
	"github.com/JonMunkholm/changelog/internal/logging"
	"github.com/JonMunkholm/changelog/internal/store"
	"github.com/JonMunkholm/changelog/internal/web/templates"
)

var (
	errRateLimited          = errors.New("rate limit exceeded")
	errExportDisabled       = errors.New("export is not enabled for this table")
	errNotificationNotFound = errors.New("notification not found")
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a handler error.
func statusFor(err error) int {
	var statusErr *core.HTTPStatusError
	switch {
	case errors.Is(err, core.ErrTableNotFound),
		errors.Is(err, store.ErrUnknownDataset),
		errors.Is(err, errExportDisabled),
		errors.Is(err, errNotificationNotFound):
		return http.StatusNotFound
	case isInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrTooManyFetches):
		return http.StatusServiceUnavailable
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isInputError reports whether err was caused by the request rather than by
// the data service.
func isInputError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidPage,
		core.ErrInvalidRow,
		core.ErrInvalidColumn,
		core.ErrInvalidSortColumn,
		filters.ErrInvalidFilter,
		filters.ErrInvalidDate,
		filters.ErrDateRange,
		store.ErrUnknownFilter,
		store.ErrInvalidParam,
		export.ErrUnknownFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError logs err with the request id and writes a user-facing
// message as an htmx fragment, JSON or plain text depending on the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, msg, status)
	case wantsJSON(r):
		respondErrorJSON(w, msg, status)
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", status)
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial writes an alert into the notification area instead of
// replacing the target element.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#notifications")
	w.Header().Set("HX-Reswap", "afterbegin")
	w.WriteHeader(status)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client asked for JSON or hit an API route.
func wantsJSON(r *http.Request) bool {
	return acceptsJSON(r) ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}

func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
