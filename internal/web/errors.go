package web

// errors.go turns service errors into HTTP responses.
//
// The technical error is logged with the request ID; the client gets the
// core.UserError message as JSON for API routes or as an HTML page for
// browser routes.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvrecords/internal/core"
	"github.com/JonMunkholm/csvrecords/internal/csvparse"
	"github.com/JonMunkholm/csvrecords/internal/logging"
	"github.com/JonMunkholm/csvrecords/internal/web/templates"
	"github.com/a-h/templ"
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, csvparse.ErrMalformedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInputTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedEncoding),
		errors.Is(err, core.ErrNoInput),
		errors.Is(err, errBadRequest),
		errors.Is(err, csvparse.ErrUnknownCoercion):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrPersistenceDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, core.ErrTooManyParses):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message in the format
// the client expects. Errors without a known user message are logged at
// error level whatever the status.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if errors.As(err, new(*http.MaxBytesError)) {
		err = fmt.Errorf("%w: %w", core.ErrInputTooLarge, err)
	}
	userErr := core.NewUserError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", userErr.Technical.Error(),
		"code", userErr.User.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userErr, statusCode)
		return
	}
	respondErrorHTML(w, r, userErr, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, userErr *core.UserError, statusCode int) {
	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   userErr.Error(),
		Message: userErr.User.Message,
		Action:  userErr.User.Action,
		Code:    userErr.User.Code,
	})
}

// respondErrorHTML renders the error alert inside the page shell.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, userErr *core.UserError, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	msg := userErr.User
	renderPage(w, r, templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
}

// renderPage writes body inside the page shell. Headers are already sent
// when rendering fails, so the error is only logged.
func renderPage(w http.ResponseWriter, r *http.Request, body templ.Component) {
	if err := templates.Page("CSV Records", body).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page",
			"path", r.URL.Path,
			"error", err,
		)
	}
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
