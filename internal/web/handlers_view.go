package web

// This file contains the page handler and the HTML form posts that change
// the caller's view. Each post redirects back to the page, or answers an
// HTMX request with the refreshed table.

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/unrolled/secure"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// handleIndex renders the page, or just the table for HTMX requests.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		id, err := sessionID(r)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		view, err := s.service.View(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
		renderTable(w, r, view)
		return
	}

	if err := s.renderPage(w, r, http.StatusOK, nil); err != nil {
		s.respondError(w, r, err, statusFor(err))
	}
}

func (s *Server) handleCurrencyForm(w http.ResponseWriter, r *http.Request) {
	symbol, err := core.ParseCurrency(r.PostFormValue("currency"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyForm(w, r, core.CurrencyEvent(symbol))
}

func (s *Server) handlePrecisionForm(w http.ResponseWriter, r *http.Request) {
	p, err := core.ParsePrecision(r.PostFormValue("precision"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyForm(w, r, core.PrecisionEvent(p))
}

func (s *Server) handlePageForm(w http.ResponseWriter, r *http.Request) {
	dir, err := core.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.applyForm(w, r, core.PageEvent(dir))
}

// handleMoveForm accepts either the from/to positions filled in by the drag
// script or the moved/target identities from the select fallback.
func (s *Server) handleMoveForm(w http.ResponseWriter, r *http.Request) {
	from, to := r.PostFormValue("from"), r.PostFormValue("to")
	if from == "" || to == "" {
		s.applyForm(w, r, core.MoveEvent(r.PostFormValue("moved"), r.PostFormValue("target")))
		return
	}

	fromPos, err := parsePosition(from)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	toPos, err := parsePosition(to)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	id, err := sessionID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	view, _, err := s.service.ApplyVisibleMove(r.Context(), id, fromPos, toPos)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.afterForm(w, r, view)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if err := s.service.Reset(r.Context(), id); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	view, err := s.service.View(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	renderTable(w, r, view)
}

// applyForm applies e to the caller's view and finishes the form post.
func (s *Server) applyForm(w http.ResponseWriter, r *http.Request, e core.Event) {
	id, err := sessionID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	view, _, err := s.service.Apply(r.Context(), id, e)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.afterForm(w, r, view)
}

func (s *Server) afterForm(w http.ResponseWriter, r *http.Request, view core.View) {
	if isHTMX(r) {
		renderTable(w, r, view)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func cspNonce(r *http.Request) string {
	return secure.CSPNonce(r.Context())
}
