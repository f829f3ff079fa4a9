package core

import "fmt"

// EventKind names one of the interaction events a view accepts.
type EventKind string

const (
	CurrencyChanged  EventKind = "currencyChanged"
	PrecisionChanged EventKind = "precisionChanged"
	PageRequested    EventKind = "pageRequested"
	RowMoved         EventKind = "rowMoved"
)

// Event is a resolved user interaction. Only the fields for Kind are read.
type Event struct {
	Kind      EventKind
	Currency  Currency
	Precision Precision
	Direction Direction
	Moved     string
	Target    string
}

// CurrencyEvent builds a currencyChanged event.
func CurrencyEvent(symbol Currency) Event {
	return Event{Kind: CurrencyChanged, Currency: symbol}
}

// PrecisionEvent builds a precisionChanged event.
func PrecisionEvent(p Precision) Event {
	return Event{Kind: PrecisionChanged, Precision: p}
}

// PageEvent builds a pageRequested event.
func PageEvent(dir Direction) Event {
	return Event{Kind: PageRequested, Direction: dir}
}

// MoveEvent builds a rowMoved event.
func MoveEvent(moved, target string) Event {
	return Event{Kind: RowMoved, Moved: moved, Target: target}
}

// Validate checks the event against the enumerated legal values. It does not
// check row identities; those are only known to a Composer.
func (e Event) Validate() error {
	switch e.Kind {
	case CurrencyChanged:
		if !e.Currency.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidCurrency, string(e.Currency))
		}
	case PrecisionChanged:
		if !e.Precision.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidPrecision, int(e.Precision))
		}
	case PageRequested:
		if e.Direction != Next && e.Direction != Previous {
			return fmt.Errorf("%w: %q", ErrInvalidDirection, string(e.Direction))
		}
	case RowMoved:
		if e.Moved == "" || e.Target == "" {
			return fmt.Errorf("%w: move requires both row identities", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, string(e.Kind))
	}
	return nil
}

// Apply dispatches e to the matching operation. It reports whether the view
// changed; an invalid or no-op event leaves the view untouched.
func (c *Composer) Apply(e Event) bool {
	switch e.Kind {
	case CurrencyChanged:
		return c.SetCurrency(e.Currency)
	case PrecisionChanged:
		return c.SetPrecision(e.Precision)
	case PageRequested:
		switch e.Direction {
		case Next:
			return c.NextPage()
		case Previous:
			return c.PreviousPage()
		}
	case RowMoved:
		return c.OnReorder(e.Moved, e.Target)
	}
	c.logger.Debug("ignoring unknown event", "kind", string(e.Kind))
	return false
}

// CheckRows verifies that the identities a move event names exist in the
// view. It lets callers surface ErrUnknownRow instead of a silent no-op.
func (c *Composer) CheckRows(e Event) error {
	if e.Kind != RowMoved {
		return nil
	}
	for _, id := range []string{e.Moved, e.Target} {
		if !c.order.Contains(id) {
			return fmt.Errorf("%w: %q", ErrUnknownRow, id)
		}
	}
	return nil
}
