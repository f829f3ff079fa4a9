package source

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func monthHeader() string {
	return IdentityColumn + "," + strings.Join(core.Months, ",")
}

func csvLine(id string, v string) string {
	cells := make([]string, len(core.Months))
	for i := range cells {
		cells[i] = v
	}
	return id + "," + strings.Join(cells, ",")
}

func TestEmbedded(t *testing.T) {
	ds, err := Embedded().Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(ds.Rows) != 23 {
		t.Errorf("rows = %d, want 23", len(ds.Rows))
	}
	if !reflect.DeepEqual(ds.Periods, core.Months) {
		t.Errorf("periods = %v, want months", ds.Periods)
	}
	if ds.Rows[0].Identity != "Rent" || ds.Rows[3].Identity != "Marketing" {
		t.Errorf("unexpected first rows: %q, %q", ds.Rows[0].Identity, ds.Rows[3].Identity)
	}
	if ds.Rows[21].Identity != "R&D" || ds.Rows[22].Identity != "Taxes" {
		t.Errorf("unexpected last rows: %q, %q", ds.Rows[21].Identity, ds.Rows[22].Identity)
	}
}

func TestRegistry(t *testing.T) {
	want := []string{"csv", "embedded", "json", "postgres"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if _, err := New("excel", Options{}); err == nil {
		t.Error("New(excel) should fail")
	}
	if _, err := New("csv", Options{}); err == nil {
		t.Error("csv source without path should fail")
	}
	if _, err := New("postgres", Options{}); err == nil {
		t.Error("postgres source without url should fail")
	}

	ds, err := Load(context.Background(), "embedded", Options{})
	if err != nil || ds.Len() != 23 {
		t.Errorf("Load(embedded) = %d rows, %v", ds.Len(), err)
	}
}

func TestLoad_WrapsErrorsForMapping(t *testing.T) {
	_, err := Load(context.Background(), "json", Options{Path: filepath.Join(t.TempDir(), "missing.json")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want not exist", err)
	}
	if got := core.MapError(err).Code; got != "SRC001" {
		t.Errorf("mapped code = %q, want SRC001", got)
	}
}

func TestJSONFile(t *testing.T) {
	months := make([]string, len(core.Months))
	for i, m := range core.Months {
		months[i] = `"` + m + `": ` + map[bool]string{true: `"$1,200.50"`, false: "10"}[i == 0]
	}
	body := `{"Sheet1": [{"Overhead": "Rent", ` + strings.Join(months, ", ") + `}]}`
	path := writeFile(t, "data.json", body)

	p, err := NewJSONFile(path)
	if err != nil {
		t.Fatalf("NewJSONFile() error = %v", err)
	}
	ds, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Rows[0].Values[0] != 1200.5 || ds.Rows[0].Values[1] != 10 {
		t.Errorf("values = %v", ds.Rows[0].Values[:2])
	}
}

func TestJSONFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"Sheet1": [`, "decode workbook"},
		{"missing sheet", `{"Data": []}`, `sheet "Sheet1" not found`},
		{"missing identity", `{"Sheet1": [{"January": 1}]}`, "missing Overhead"},
		{"missing month", `{"Sheet1": [{"Overhead": "Rent", "January": 1}]}`, "missing value for February"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewJSONFile(writeFile(t, "data.json", tt.body))
			_, err := p.Load(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestCSVFile(t *testing.T) {
	content := strings.Join([]string{
		"Financial Summary,,",
		"",
		monthHeader(),
		csvLine("Rent", "100"),
		csvLine(`"Legal Fees"`, `"(1,250.25)"`),
		",,,",
		csvLine("Taxes", "€7.5"),
	}, "\n")

	p, _ := NewCSVFile(writeFile(t, "data.csv", content))
	ds, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var ids []string
	for _, r := range ds.Rows {
		ids = append(ids, r.Identity)
	}
	if want := []string{"Rent", "Legal Fees", "Taxes"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("identities = %v, want %v", ids, want)
	}
	if got := ds.Rows[1].Values[0]; got != -1250.25 {
		t.Errorf("accounting negative = %v, want -1250.25", got)
	}
	if got := ds.Rows[2].Values[11]; got != 7.5 {
		t.Errorf("euro value = %v, want 7.5", got)
	}
}

func TestCSVFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "csv is empty"},
		{"no header", "Name,Jan\nRent,1", "missing required columns"},
		{"bad number", monthHeader() + "\n" + csvLine("Rent", "abc"), "invalid number"},
		{"short line", monthHeader() + "\nRent,1,2", "has 3 fields"},
		{"duplicate", monthHeader() + "\n" + csvLine("Rent", "1") + "\n" + csvLine("Rent", "2"), "duplicate identity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := NewCSVFile(writeFile(t, "data.csv", tt.content))
			_, err := p.Load(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	periods := []string{"Q1", "Q2"}
	tests := []struct {
		name string
		ds   core.Dataset
		want []string
	}{
		{
			name: "valid",
			ds:   core.Dataset{Periods: periods, Rows: []core.Row{{Identity: "A", Values: []float64{1, 2}}}},
		},
		{
			name: "no periods",
			ds:   core.Dataset{},
			want: []string{"dataset has no periods"},
		},
		{
			name: "empty and duplicate identities",
			ds: core.Dataset{Periods: periods, Rows: []core.Row{
				{Identity: "A", Values: []float64{1, 2}},
				{Identity: " ", Values: []float64{1, 2}},
				{Identity: "A", Values: []float64{1, 2}},
			}},
			want: []string{"row 2: Overhead: identity is empty", `row 3: Overhead: duplicate identity "A" (first seen on row 1)`},
		},
		{
			name: "value count and finiteness",
			ds: core.Dataset{Periods: periods, Rows: []core.Row{
				{Identity: "A", Values: []float64{1}},
				{Identity: "B", Values: []float64{math.NaN(), math.Inf(1)}},
			}},
			want: []string{"row 1: has 1 values for 2 periods", "row 2: Q1: value is not finite", "row 2: Q2: value is not finite"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.ds)
			if len(tt.want) == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want errors")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("Validate() = %q, missing %q", err, w)
				}
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1200", 1200, false},
		{"$1,200.50", 1200.5, false},
		{"£-3.25", -3.25, false},
		{"(45.10)", -45.1, false},
		{`="12"`, 12, false},
		{"", 0, true},
		{"twelve", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseAmount(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parseAmount(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestSelectQuery(t *testing.T) {
	got := selectQuery("finance.overhead_summary", []string{"January", "February"})
	want := `SELECT "overhead", COALESCE("january", 0)::float8, COALESCE("february", 0)::float8 ` +
		`FROM "finance"."overhead_summary" ORDER BY "position", "overhead"`
	if got != want {
		t.Errorf("selectQuery() =\n%s\nwant\n%s", got, want)
	}
}
