package web

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

func TestAPIEvents(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantApplied bool
		wantRows    []string
		wantCell    string
	}{
		{
			name:        "currency symbol",
			body:        `{"kind":"currencyChanged","currency":"€"}`,
			wantApplied: true,
			wantRows:    []string{"Rent", "Utilities", "Salaries"},
			wantCell:    "€1000.00",
		},
		{
			name:        "currency iso code",
			body:        `{"kind":"currencyChanged","currency":"GBP"}`,
			wantApplied: true,
			wantRows:    []string{"Rent", "Utilities", "Salaries"},
			wantCell:    "£1000.00",
		},
		{
			name:        "same currency is a no-op",
			body:        `{"kind":"currencyChanged","currency":"$"}`,
			wantApplied: false,
			wantRows:    []string{"Rent", "Utilities", "Salaries"},
			wantCell:    "$1000.00",
		},
		{
			name:        "precision zero",
			body:        `{"kind":"precisionChanged","precision":0}`,
			wantApplied: true,
			wantRows:    []string{"Rent", "Utilities", "Salaries"},
			wantCell:    "$1000",
		},
		{
			name:        "next page",
			body:        `{"kind":"pageRequested","direction":"next"}`,
			wantApplied: true,
			wantRows:    []string{"Marketing", "R&D"},
			wantCell:    "$750.00",
		},
		{
			name:        "previous on first page",
			body:        `{"kind":"pageRequested","direction":"previous"}`,
			wantApplied: false,
			wantRows:    []string{"Rent", "Utilities", "Salaries"},
			wantCell:    "$1000.00",
		},
		{
			name:        "move by identity across pages",
			body:        `{"kind":"rowMoved","moved":"Marketing","target":"Rent"}`,
			wantApplied: true,
			wantRows:    []string{"Marketing", "Rent", "Utilities"},
			wantCell:    "$750.00",
		},
		{
			name:        "move onto itself",
			body:        `{"kind":"rowMoved","moved":"Rent","target":"Rent"}`,
			wantApplied: false,
			wantRows:    []string{"Rent", "Utilities", "Salaries"},
			wantCell:    "$1000.00",
		},
		{
			name:        "move by position",
			body:        `{"kind":"rowMoved","from":1,"to":0}`,
			wantApplied: true,
			wantRows:    []string{"Utilities", "Rent", "Salaries"},
			wantCell:    "$200.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			cookie := ts.newSession(t)

			rec := ts.do(t, http.MethodPost, "/api/events", tt.body, cookie, jsonHeaders)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp struct {
				Applied bool      `json:"applied"`
				View    core.View `json:"view"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantApplied, resp.Applied)
			assert.Equal(t, tt.wantRows, identities(resp.View))
			assert.Equal(t, tt.wantCell, resp.View.Rows[0].Cells[0])

			// the returned view is what the session now shows
			assert.Equal(t, resp.View, ts.view(t, cookie))
		})
	}
}

func TestAPIEvents_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"empty body", ``, http.StatusBadRequest, "VIEW005"},
		{"not json", `kind=rowMoved`, http.StatusBadRequest, "VIEW005"},
		{"unknown field", `{"kind":"pageRequested","direction":"next","page":4}`, http.StatusBadRequest, "VIEW005"},
		{"unknown kind", `{"kind":"rowDeleted"}`, http.StatusBadRequest, "VIEW005"},
		{"missing kind", `{"currency":"$"}`, http.StatusBadRequest, "VIEW005"},
		{"unsupported currency", `{"kind":"currencyChanged","currency":"¥"}`, http.StatusBadRequest, "VIEW002"},
		{"missing currency", `{"kind":"currencyChanged"}`, http.StatusBadRequest, "VIEW002"},
		{"precision too large", `{"kind":"precisionChanged","precision":3}`, http.StatusBadRequest, "VIEW003"},
		{"negative precision", `{"kind":"precisionChanged","precision":-1}`, http.StatusBadRequest, "VIEW003"},
		{"missing precision", `{"kind":"precisionChanged"}`, http.StatusBadRequest, "VIEW003"},
		{"bad direction", `{"kind":"pageRequested","direction":"up"}`, http.StatusBadRequest, "VIEW004"},
		{"move without target", `{"kind":"rowMoved","moved":"Rent"}`, http.StatusBadRequest, "VIEW005"},
		{"position without partner", `{"kind":"rowMoved","from":1}`, http.StatusBadRequest, "VIEW005"},
		{"negative position", `{"kind":"rowMoved","from":-1,"to":0}`, http.StatusBadRequest, "VIEW005"},
		{"position off page", `{"kind":"rowMoved","from":0,"to":3}`, http.StatusBadRequest, "VIEW005"},
		{"unknown row", `{"kind":"rowMoved","moved":"Payroll","target":"Rent"}`, http.StatusConflict, "VIEW001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			cookie := ts.newSession(t)

			rec := ts.do(t, http.MethodPost, "/api/events", tt.body, cookie, jsonHeaders)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
			assert.Equal(t, resp.Message, resp.Error)

			assert.Equal(t, 0, ts.store.Len(), "rejected events must not persist state")
		})
	}
}

func TestAPIEvents_OrderedWithinSession(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.newSession(t)

	moves := []string{
		`{"kind":"rowMoved","moved":"R&D","target":"Rent"}`,
		`{"kind":"rowMoved","moved":"Salaries","target":"R&D"}`,
		`{"kind":"pageRequested","direction":"next"}`,
	}
	for _, body := range moves {
		rec := ts.do(t, http.MethodPost, "/api/events", body, cookie, jsonHeaders)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	v := ts.view(t, cookie)
	assert.Equal(t, 1, v.Pagination.Page)
	assert.Equal(t, []string{"Utilities", "Marketing"}, identities(v))
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.newSession(t)

	ts.postForm(t, "/view/currency", url.Values{"currency": {"£"}}, cookie)
	ts.postForm(t, "/view/precision", url.Values{"precision": {"1"}}, cookie)
	ts.postForm(t, "/view/move", url.Values{"moved": {"R&D"}, "target": {"Utilities"}}, cookie)
	ts.postForm(t, "/view/page/next", url.Values{}, cookie)

	rec := ts.do(t, http.MethodGet, "/api/export", "", cookie, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="financial_summary_`))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6, "export covers every row, not just the current page")
	assert.Equal(t, []string{"Cashflow", "January", "February"}, records[0])
	assert.Equal(t, []string{"Rent", "£1000.0", "£1100.5"}, records[1])
	assert.Equal(t, []string{"R&D", "£300.0", "£320.0"}, records[2])
	assert.Equal(t, []string{"Utilities", "£200.3", "£210.0"}, records[3])
	assert.Equal(t, "Marketing", records[5][0])
}

func TestOptions(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := ts.newSession(t)
	ts.postForm(t, "/view/precision", url.Values{"precision": {"1"}}, cookie)

	rec := ts.do(t, http.MethodGet, "/api/options", "", cookie, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp optionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, []core.Option{
		{Value: "$", Label: "USD ($)", Selected: true},
		{Value: "€", Label: "EUR (€)"},
		{Value: "£", Label: "GBP (£)"},
	}, resp.Currencies)
	assert.Equal(t, []core.Option{
		{Value: "0", Label: "Decimal View 0"},
		{Value: "1", Label: "Decimal View 1", Selected: true},
		{Value: "2", Label: "Decimal View 2"},
	}, resp.Precisions)
}
