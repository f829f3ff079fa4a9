package web

// This file contains the JSON API and the CSV export.

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/FinSummary/internal/core"
	"github.com/JonMunkholm/FinSummary/internal/logging"
)

// eventRequest is the JSON body of POST /api/events. A move names either
// the two row identities or two positions on the current page.
type eventRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=currencyChanged precisionChanged pageRequested rowMoved"`
	Currency  string `json:"currency,omitempty" validate:"required_if=Kind currencyChanged,omitempty,oneof=$ € £ USD EUR GBP usd eur gbp"`
	Precision *int   `json:"precision,omitempty" validate:"required_if=Kind precisionChanged,omitempty,min=0,max=2"`
	Direction string `json:"direction,omitempty" validate:"required_if=Kind pageRequested,omitempty,oneof=next previous prev"`
	Moved     string `json:"moved,omitempty" validate:"max=256"`
	Target    string `json:"target,omitempty" validate:"max=256"`
	From      *int   `json:"from,omitempty" validate:"required_with=To,omitempty,min=0"`
	To        *int   `json:"to,omitempty" validate:"required_with=From,omitempty,min=0"`
}

// positional reports whether the request is a drag between page positions.
func (req eventRequest) positional() bool {
	return core.EventKind(req.Kind) == core.RowMoved && req.From != nil && req.To != nil
}

// event converts a validated request into a core event.
func (req eventRequest) event() (core.Event, error) {
	switch core.EventKind(req.Kind) {
	case core.CurrencyChanged:
		symbol, err := core.ParseCurrency(req.Currency)
		if err != nil {
			return core.Event{}, err
		}
		return core.CurrencyEvent(symbol), nil
	case core.PrecisionChanged:
		return core.PrecisionEvent(core.Precision(*req.Precision)), nil
	case core.PageRequested:
		dir, err := core.ParseDirection(req.Direction)
		if err != nil {
			return core.Event{}, err
		}
		return core.PageEvent(dir), nil
	case core.RowMoved:
		return core.MoveEvent(req.Moved, req.Target), nil
	}
	return core.Event{}, fmt.Errorf("%w: unknown kind %q", core.ErrInvalidEvent, req.Kind)
}

type eventResponse struct {
	Applied bool      `json:"applied"`
	View    core.View `json:"view"`
}

type optionsResponse struct {
	Currencies []core.Option `json:"currencies"`
	Precisions []core.Option `json:"precisions"`
}

// handleAPIView returns the caller's current view as JSON.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, r, http.StatusOK, view)
}

// handleAPIEvent validates and applies one event.
func (s *Server) handleAPIEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, r, validationError(err), http.StatusBadRequest)
		return
	}

	id, err := sessionID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var (
		view    core.View
		applied bool
	)
	if req.positional() {
		view, applied, err = s.service.ApplyVisibleMove(r.Context(), id, *req.From, *req.To)
	} else {
		var e core.Event
		if e, err = req.event(); err == nil {
			view, applied, err = s.service.Apply(r.Context(), id, e)
		}
	}
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, eventResponse{Applied: applied, View: view})
}

// handleExport streams the caller's full order as CSV, formatted with the
// current currency and precision.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	periods, rows, err := s.service.Export(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	filename := fmt.Sprintf("financial_summary_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	csvWriter := csv.NewWriter(w)
	header := append([]string{core.IdentityLabel}, periods...)
	if err := csvWriter.Write(header); err != nil {
		// Can't change status code after writing, just log and return
		logging.FromContext(r.Context()).Error("export write", "error", err)
		return
	}

	record := make([]string, 0, len(periods)+1)
	for _, row := range rows {
		record = append(record[:0], row.Identity)
		record = append(record, row.Cells...)
		if err := csvWriter.Write(record); err != nil {
			logging.FromContext(r.Context()).Error("export write", "error", err)
			return
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		logging.FromContext(r.Context()).Error("export flush", "error", err)
	}
}

// handleOptions returns the currency and precision menus with the caller's
// current selection marked.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, r, http.StatusOK, optionsResponse{
		Currencies: view.CurrencyOptions,
		Precisions: view.PrecisionOptions,
	})
}
