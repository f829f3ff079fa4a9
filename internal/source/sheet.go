package source

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// DefaultSheet is the workbook sheet read from JSON exports.
const DefaultSheet = "Sheet1"

//go:embed data/overhead.json
var overheadJSON []byte

// sheetProvider reads a spreadsheet exported as JSON:
//
//	{"Sheet1": [{"Overhead": "Rent", "January": 12000, ...}, ...]}
//
// Month values may be JSON numbers or formatted strings such as "$1,200.50".
type sheetProvider struct {
	name  string
	open  func() (io.ReadCloser, error)
	sheet string
}

// Embedded returns the provider for the bundled overhead dataset.
func Embedded() Provider {
	return &sheetProvider{
		name:  "embedded",
		sheet: DefaultSheet,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(overheadJSON)), nil
		},
	}
}

// NewJSONFile returns a provider reading the sheet export at path.
func NewJSONFile(path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("json source: path is required")
	}
	return &sheetProvider{
		name:  path,
		sheet: DefaultSheet,
		open:  func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func (p *sheetProvider) Load(ctx context.Context) (core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return core.Dataset{}, err
	}

	rc, err := p.open()
	if err != nil {
		return core.Dataset{}, fmt.Errorf("open %s: %w", p.name, err)
	}
	defer rc.Close()

	ds, err := decodeSheet(rc, p.sheet)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("read %s: %w", p.name, err)
	}
	return ds, nil
}

func decodeSheet(r io.Reader, sheet string) (core.Dataset, error) {
	var book map[string][]map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&book); err != nil {
		return core.Dataset{}, fmt.Errorf("decode workbook: %w", err)
	}

	records, ok := book[sheet]
	if !ok {
		return core.Dataset{}, fmt.Errorf("sheet %q not found", sheet)
	}

	ds := core.Dataset{
		Periods: append([]string(nil), core.Months...),
		Rows:    make([]core.Row, 0, len(records)),
	}

	for i, rec := range records {
		row, err := decodeRecord(rec, ds.Periods)
		if err != nil {
			return core.Dataset{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		ds.Rows = append(ds.Rows, row)
	}

	if err := Validate(ds); err != nil {
		return core.Dataset{}, err
	}
	return ds, nil
}

func decodeRecord(rec map[string]json.RawMessage, periods []string) (core.Row, error) {
	var row core.Row

	rawID, ok := rec[IdentityColumn]
	if !ok {
		return row, fmt.Errorf("missing %s", IdentityColumn)
	}
	if err := json.Unmarshal(rawID, &row.Identity); err != nil {
		return row, fmt.Errorf("%s must be a string", IdentityColumn)
	}

	row.Values = make([]float64, len(periods))
	for i, period := range periods {
		raw, ok := rec[period]
		if !ok {
			return row, fmt.Errorf("missing value for %s", period)
		}
		v, err := decodeAmount(raw)
		if err != nil {
			return row, fmt.Errorf("%s: %w", period, err)
		}
		row.Values[i] = v
	}
	return row, nil
}

func decodeAmount(raw json.RawMessage) (float64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return parseAmount(n.String())
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("value must be a number or string")
	}
	return parseAmount(s)
}
