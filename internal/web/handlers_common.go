package web

// This file contains shared utilities and helper functions used across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/FinSummary/internal/core"
	"github.com/JonMunkholm/FinSummary/internal/logging"
	"github.com/JonMunkholm/FinSummary/internal/web/templates"
)

// MaxBodySize caps JSON request bodies.
const MaxBodySize = 64 * 1024

var errNoSession = errors.New("session store: request has no session id")

// sessionID returns the view session id set by the session middleware.
func sessionID(r *http.Request) (string, error) {
	id := core.SessionIDFromContext(r.Context())
	if id == "" {
		return "", errNoSession
	}
	return id, nil
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", core.ErrInvalidEvent, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body must hold a single object", core.ErrInvalidEvent)
	}
	return nil
}

// parsePosition parses a zero-based row position from a form value.
func parsePosition(val string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid row position %q", core.ErrInvalidEvent, val)
	}
	return n, nil
}

// renderPage writes the full page for the caller's session with an optional
// alert. The CSP nonce comes from the security middleware.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, alert *templates.Alert) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}
	view, err := s.service.View(r.Context(), id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := templates.PageData{Nonce: cspNonce(r), Alert: alert}
	if err := templates.Page(view, data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
	return nil
}

// renderTable writes only the table partial, for HTMX swaps.
func renderTable(w http.ResponseWriter, r *http.Request, view core.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Table(view).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render table", "error", err)
	}
}
