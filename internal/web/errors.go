package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request id, then mapped
// through core.MapError to a user message with an action and a code. The
// response format follows the client: an alert fragment for HTMX, JSON for
// API and JSON clients, and the full page with an alert otherwise.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/FinSummary/internal/core"
	"github.com/JonMunkholm/FinSummary/internal/logging"
	"github.com/JonMunkholm/FinSummary/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError handles error responses with user-friendly messages.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	ue := core.NewUserError(err)

	logger := logging.WithFields(r.Context(),
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"code", ue.User.Code,
	)
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		logger.Error("request error", "error", ue.Technical.Error())
	} else {
		logger.Warn("request error", "error", ue.Technical.Error())
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, ue.User, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, ue, statusCode)
	default:
		s.respondErrorHTML(w, r, ue, statusCode)
	}
}

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownRow):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCurrency),
		errors.Is(err, core.ErrInvalidPrecision),
		errors.Is(err, core.ErrInvalidDirection),
		errors.Is(err, core.ErrInvalidEvent):
		return http.StatusBadRequest
	}

	switch core.MapError(err).Code {
	case "SES001", "SRC001":
		return http.StatusServiceUnavailable
	case "RATE001":
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// validationError maps a validator failure onto the sentinel for its field
// so the client gets the matching error code.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Join(core.ErrInvalidEvent, err)
	}

	first := verrs[0]
	var sentinel error
	switch first.StructField() {
	case "Currency":
		sentinel = core.ErrInvalidCurrency
	case "Precision":
		sentinel = core.ErrInvalidPrecision
	case "Direction":
		sentinel = core.ErrInvalidDirection
	default:
		sentinel = core.ErrInvalidEvent
	}
	return errors.Join(sentinel, err)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, ue *core.UserError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   ue.Error(),
		Message: ue.User.Message,
		Action:  ue.User.Action,
		Code:    ue.User.Code,
	})
}

// respondErrorHTML renders the page with the error shown above the table.
// Falls back to plain text when the view itself cannot be built.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, ue *core.UserError, statusCode int) {
	alert := &templates.Alert{Message: ue.User.Message, Action: ue.User.Action, Code: ue.User.Code}
	if err := s.renderPage(w, r, statusCode, alert); err != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", err)
		http.Error(w, core.FormatUserError(ue), statusCode)
	}
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
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
