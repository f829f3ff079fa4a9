package source

// validate.go enforces the dataset boundary every provider shares:
//  1. Identities are non-empty and unique
//  2. Each row carries exactly one value per period
//  3. Values are finite numbers
//
// Cell parsing accepts the formats a spreadsheet export produces: currency
// symbols, thousands separators and accounting negatives "(123.45)".

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// IdentityColumn is the column holding the row identity in tabular sources.
const IdentityColumn = "Overhead"

// ValidationError describes one problem with a loaded row.
type ValidationError struct {
	Row     int    // 1-based row number, 0 when not row specific
	Field   string // Column or period name
	Message string
}

func (e ValidationError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// Validate checks ds against the dataset invariants and returns every
// problem found, joined.
func Validate(ds core.Dataset) error {
	var errs []error

	if len(ds.Periods) == 0 {
		errs = append(errs, ValidationError{Message: "dataset has no periods"})
	}

	seen := make(map[string]int, len(ds.Rows))
	for i, row := range ds.Rows {
		n := i + 1
		if strings.TrimSpace(row.Identity) == "" {
			errs = append(errs, ValidationError{Row: n, Field: IdentityColumn, Message: "identity is empty"})
		} else if first, dup := seen[row.Identity]; dup {
			errs = append(errs, ValidationError{
				Row:     n,
				Field:   IdentityColumn,
				Message: fmt.Sprintf("duplicate identity %q (first seen on row %d)", row.Identity, first),
			})
		} else {
			seen[row.Identity] = n
		}

		if len(row.Values) != len(ds.Periods) {
			errs = append(errs, ValidationError{
				Row:     n,
				Message: fmt.Sprintf("has %d values for %d periods", len(row.Values), len(ds.Periods)),
			})
			continue
		}
		for p, v := range row.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				errs = append(errs, ValidationError{Row: n, Field: ds.Periods[p], Message: "value is not finite"})
			}
		}
	}

	return errors.Join(errs...)
}

// headerIndex maps lowercased column names to positions.
type headerIndex map[string]int

func makeHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(cleanCell(h))] = i
	}
	return idx
}

// requireColumns returns the positions of cols in idx, or an error listing
// every missing column.
func requireColumns(idx headerIndex, cols []string) ([]int, error) {
	pos := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		p, ok := idx[strings.ToLower(c)]
		if !ok {
			missing = append(missing, c)
			continue
		}
		pos[i] = p
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return pos, nil
}

// cleanCell trims whitespace, a spreadsheet formula prefix and surrounding
// quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\ufeff")

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

// parseAmount parses a monetary cell into a float.
func parseAmount(s string) (float64, error) {
	s = cleanCell(s)
	if s == "" {
		return 0, errors.New("value is empty")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range core.Currencies {
		s = strings.ReplaceAll(s, string(sym), "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if negative {
		d = d.Neg()
	}

	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("number %q is out of range", s)
	}
	return f, nil
}
