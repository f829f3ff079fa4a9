// Package core provides the row-ordering and view-state logic for the financial summary table.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// DefaultTitle is the heading shown above the table.
const DefaultTitle = "Financial Summary Table"

// IdentityLabel is the header of the identity column.
const IdentityLabel = "Cashflow"

// Months is the default period schema: one column per calendar month.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Sentinel errors returned by event validation. None of them is fatal: the
// composer ignores the offending event and leaves its state unchanged.
var (
	ErrUnknownRow       = errors.New("unknown row identity")
	ErrInvalidCurrency  = errors.New("invalid currency symbol")
	ErrInvalidPrecision = errors.New("invalid decimal precision")
	ErrInvalidDirection = errors.New("invalid page direction")
	ErrInvalidEvent     = errors.New("invalid event")
)

// Row is one overhead category across the period schema.
// Identity is the only reorder key; it is never a positional index.
type Row struct {
	Identity string    `json:"identity"`
	Values   []float64 `json:"values"`
}

// Dataset is the static table read once from a data source.
// Rows[i].Values[j] belongs to Periods[j].
type Dataset struct {
	Periods []string
	Rows    []Row
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// Currency is one of the three supported display symbols.
type Currency string

const (
	USD Currency = "$"
	EUR Currency = "€"
	GBP Currency = "£"
)

// Currencies lists the supported symbols in menu order.
var Currencies = []Currency{USD, EUR, GBP}

// Valid reports whether c is a supported symbol.
func (c Currency) Valid() bool {
	switch c {
	case USD, EUR, GBP:
		return true
	}
	return false
}

// Code returns the ISO 4217 code for c.
func (c Currency) Code() string {
	switch c {
	case USD:
		return currency.USD.String()
	case EUR:
		return currency.EUR.String()
	case GBP:
		return currency.GBP.String()
	}
	return ""
}

// Label returns the menu label, e.g. "USD ($)".
func (c Currency) Label() string {
	return c.Code() + " (" + string(c) + ")"
}

// ParseCurrency accepts either a symbol ("€") or an ISO code ("eur").
func ParseCurrency(s string) (Currency, error) {
	s = strings.TrimSpace(s)
	if c := Currency(s); c.Valid() {
		return c, nil
	}

	unit, err := currency.ParseISO(s)
	if err != nil {
		return "", ErrInvalidCurrency
	}
	switch unit {
	case currency.USD:
		return USD, nil
	case currency.EUR:
		return EUR, nil
	case currency.GBP:
		return GBP, nil
	}
	return "", ErrInvalidCurrency
}

// Precision is the number of fractional digits shown, bounded to 0..2.
type Precision int

// MaxPrecision is the largest supported precision.
const MaxPrecision Precision = 2

// Precisions lists the supported precisions in menu order.
var Precisions = []Precision{0, 1, 2}

// Valid reports whether p is within 0..MaxPrecision.
func (p Precision) Valid() bool {
	return p >= 0 && p <= MaxPrecision
}

func (p Precision) String() string {
	return strconv.Itoa(int(p))
}

// Label returns the menu label, e.g. "Decimal View 2".
func (p Precision) Label() string {
	return "Decimal View " + strconv.Itoa(int(p))
}

// ParsePrecision parses a decimal precision from a form or query value.
func ParsePrecision(s string) (Precision, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidPrecision
	}
	p := Precision(n)
	if !p.Valid() {
		return 0, ErrInvalidPrecision
	}
	return p, nil
}

// Direction is a page navigation request.
type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

// ParseDirection accepts "next"/"previous" (and the short forms "prev").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next":
		return Next, nil
	case "previous", "prev":
		return Previous, nil
	}
	return "", ErrInvalidDirection
}

// ViewState is the transient formatting and pagination state of one view.
// It never affects row identity or order.
type ViewState struct {
	Currency  Currency  `json:"currency"`
	Precision Precision `json:"precision"`
	PageIndex int       `json:"page_index"`
}

// DefaultViewState returns the state a new view starts with.
func DefaultViewState() ViewState {
	return ViewState{
		Currency:  USD,
		Precision: 2,
		PageIndex: 0,
	}
}

// State is a serialisable snapshot of one view: the full order by identity
// plus the view state.
type State struct {
	Order []string  `json:"order"`
	View  ViewState `json:"view"`
}
