package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// maxHeaderSearchRows bounds how far down a sheet export the header may sit.
const maxHeaderSearchRows = 10

type csvProvider struct {
	path string
}

// NewCSVFile returns a provider reading a CSV export with an Overhead column
// followed by one column per month.
func NewCSVFile(path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("csv source: path is required")
	}
	return &csvProvider{path: path}, nil
}

func (p *csvProvider) Load(ctx context.Context) (core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return core.Dataset{}, err
	}

	f, err := os.Open(p.path)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	ds, err := readCSV(f)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("read %s: %w", p.path, err)
	}
	return ds, nil
}

func readCSV(r io.Reader) (core.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return core.Dataset{}, fmt.Errorf("parse csv: %w", err)
	}

	columns := append([]string{IdentityColumn}, core.Months...)
	headerRow, pos, err := findHeader(records, columns)
	if err != nil {
		return core.Dataset{}, err
	}

	ds := core.Dataset{Periods: append([]string(nil), core.Months...)}

	for i := headerRow + 1; i < len(records); i++ {
		rec := records[i]
		if blankRecord(rec) {
			continue
		}

		line := i + 1
		if len(rec) <= maxPos(pos) {
			return core.Dataset{}, fmt.Errorf("line %d: has %d fields, want at least %d", line, len(rec), maxPos(pos)+1)
		}

		row := core.Row{
			Identity: cleanCell(rec[pos[0]]),
			Values:   make([]float64, len(ds.Periods)),
		}
		for m := range ds.Periods {
			v, err := parseAmount(rec[pos[m+1]])
			if err != nil {
				return core.Dataset{}, fmt.Errorf("line %d: %s: %w", line, ds.Periods[m], err)
			}
			row.Values[m] = v
		}
		ds.Rows = append(ds.Rows, row)
	}

	if err := Validate(ds); err != nil {
		return core.Dataset{}, err
	}
	return ds, nil
}

// findHeader locates the header row among the first rows of the file and
// returns its index and the positions of columns.
func findHeader(records [][]string, columns []string) (int, []int, error) {
	limit := min(len(records), maxHeaderSearchRows)

	var lastErr error
	for i := 0; i < limit; i++ {
		pos, err := requireColumns(makeHeaderIndex(records[i]), columns)
		if err == nil {
			return i, pos, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		return 0, nil, fmt.Errorf("csv is empty")
	}
	return 0, nil, fmt.Errorf("header not found in first %d rows: %w", limit, lastErr)
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func maxPos(pos []int) int {
	m := 0
	for _, p := range pos {
		m = max(m, p)
	}
	return m
}
