package core

import (
	"reflect"
	"testing"
)

func renderedIdentities(v View) []string {
	ids := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		ids[i] = r.Identity
	}
	return ids
}

func contains(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}

func TestComposer_Defaults(t *testing.T) {
	c := NewComposer(testDataset(overheadNames...))
	v := c.Render()

	if v.Currency != USD || v.Precision != 2 || v.Pagination.Page != 0 {
		t.Errorf("defaults = (%q, %d, page %d), want ($, 2, page 0)", v.Currency, v.Precision, v.Pagination.Page)
	}
	if v.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", v.Title, DefaultTitle)
	}
	if v.IdentityLabel != IdentityLabel {
		t.Errorf("IdentityLabel = %q, want %q", v.IdentityLabel, IdentityLabel)
	}
	if len(v.Rows) != 10 {
		t.Fatalf("first page has %d rows, want 10", len(v.Rows))
	}
	if got := v.Rows[0].Cells[0]; got != "$100.50" {
		t.Errorf("first cell = %q, want %q", got, "$100.50")
	}
	if len(v.Rows[0].Cells) != len(Months) {
		t.Errorf("row has %d cells, want %d", len(v.Rows[0].Cells), len(Months))
	}
	if v.Pagination.HasPrevious || !v.Pagination.HasNext {
		t.Errorf("page 0 flags = prev %v next %v, want false/true", v.Pagination.HasPrevious, v.Pagination.HasNext)
	}
	if v.Pagination.PageCount != 3 || v.Pagination.Total != 23 {
		t.Errorf("PageCount/Total = %d/%d, want 3/23", v.Pagination.PageCount, v.Pagination.Total)
	}
}

func TestComposer_MoveAcrossPages(t *testing.T) {
	c := NewComposer(testDataset(overheadNames...))

	if !contains(renderedIdentities(c.Render()), "Marketing") {
		t.Fatal("Marketing should start on page 0")
	}

	if !c.OnReorder("Marketing", "R&D") {
		t.Fatal("OnReorder(Marketing, R&D) = false, want true")
	}
	if got := c.ViewState().PageIndex; got != 0 {
		t.Errorf("PageIndex after reorder = %d, want 0", got)
	}

	page0 := renderedIdentities(c.Render())
	if contains(page0, "Marketing") {
		t.Errorf("page 0 still contains Marketing: %v", page0)
	}
	wantPage0 := []string{
		"Rent", "Utilities", "Salaries", "Insurance", "Office Supplies",
		"Travel", "Software Licenses", "Maintenance", "Legal Fees", "Accounting",
	}
	if !reflect.DeepEqual(page0, wantPage0) {
		t.Errorf("page 0 = %v, want %v", page0, wantPage0)
	}

	c.NextPage()
	c.NextPage()
	page2 := renderedIdentities(c.Render())
	wantPage2 := []string{"R&D", "Marketing", "Taxes"}
	if !reflect.DeepEqual(page2, wantPage2) {
		t.Errorf("page 2 = %v, want %v", page2, wantPage2)
	}
}

func TestComposer_MoveWithinLaterPageLeavesEarlierPagesAlone(t *testing.T) {
	c := NewComposer(testDataset(overheadNames...))
	before := renderedIdentities(c.Render())

	c.NextPage()
	moved, target, ok := c.ResolveVisibleMove(0, 9)
	if !ok {
		t.Fatal("ResolveVisibleMove(0, 9) on page 1 failed")
	}
	if moved != "Accounting" || target != "Security" {
		t.Errorf("resolved %q -> %q, want Accounting -> Security", moved, target)
	}
	c.OnReorder(moved, target)

	c.PreviousPage()
	if after := renderedIdentities(c.Render()); !reflect.DeepEqual(before, after) {
		t.Errorf("page 0 changed by a page 1 move: %v -> %v", before, after)
	}
}

func TestComposer_ResolveVisibleMoveOutOfRange(t *testing.T) {
	c := NewComposer(testDataset(overheadNames...))
	c.NextPage()
	c.NextPage()

	if _, _, ok := c.ResolveVisibleMove(0, 3); ok {
		t.Error("position 3 on a 3-row page should not resolve")
	}
	if _, _, ok := c.ResolveVisibleMove(-1, 0); ok {
		t.Error("negative position should not resolve")
	}
}

func TestComposer_FormatChangesKeepOrderAndPage(t *testing.T) {
	c := NewComposer(testDataset(overheadNames...))
	c.NextPage()
	c.OnReorder("Taxes", "Rent")
	order := c.State().Order

	if !c.SetCurrency(EUR) {
		t.Error("SetCurrency(€) = false")
	}
	if !c.SetPrecision(0) {
		t.Error("SetPrecision(0) = false")
	}

	if got := c.State().Order; !reflect.DeepEqual(got, order) {
		t.Errorf("format change altered order")
	}
	if got := c.ViewState().PageIndex; got != 1 {
		t.Errorf("format change reset page to %d", got)
	}

	v := c.Render()
	if got := v.Rows[0].Cells[0]; got != "€1001" {
		t.Errorf("first cell on page 1 = %q, want %q", got, "€1001")
	}
}

func TestComposer_IgnoresInvalidFormat(t *testing.T) {
	c := NewComposer(testDataset("A"))

	if c.SetCurrency("¥") {
		t.Error("SetCurrency(¥) = true, want false")
	}
	if c.SetPrecision(3) {
		t.Error("SetPrecision(3) = true, want false")
	}
	if c.SetPrecision(-1) {
		t.Error("SetPrecision(-1) = true, want false")
	}
	if vs := c.ViewState(); vs != DefaultViewState() {
		t.Errorf("ViewState = %+v, want defaults", vs)
	}
}

func TestComposer_SameFormatIsNoChange(t *testing.T) {
	c := NewComposer(testDataset("A"))

	if c.Apply(CurrencyEvent(USD)) {
		t.Error("Apply(currency $) on a $ view reported a change")
	}
	if c.Apply(PrecisionEvent(2)) {
		t.Error("Apply(precision 2) on a precision-2 view reported a change")
	}
	if !c.Apply(PrecisionEvent(1)) {
		t.Error("Apply(precision 1) on a precision-2 view reported no change")
	}
	if c.SetPrecision(1) {
		t.Error("SetPrecision(1) twice reported a change")
	}
	if vs := c.ViewState(); vs.Currency != USD || vs.Precision != 1 {
		t.Errorf("ViewState = %+v, want ($, 1)", vs)
	}
}

func TestComposer_PageClamping(t *testing.T) {
	c := NewComposer(testDataset(overheadNames...))

	if c.PreviousPage() {
		t.Error("PreviousPage at 0 reported a change")
	}
	c.NextPage()
	c.NextPage()
	if c.NextPage() {
		t.Error("NextPage at last page reported a change")
	}
	if got := c.ViewState().PageIndex; got != 2 {
		t.Errorf("PageIndex = %d, want 2", got)
	}
	if v := c.Render(); len(v.Rows) != 3 || v.Pagination.HasNext {
		t.Errorf("last page rows/hasNext = %d/%v, want 3/false", len(v.Rows), v.Pagination.HasNext)
	}
}

func TestComposer_EmptyDataset(t *testing.T) {
	c := NewComposer(Dataset{Periods: Months})

	c.NextPage()
	v := c.Render()
	if v.Pagination.Page != 0 || len(v.Rows) != 0 {
		t.Errorf("empty view page/rows = %d/%d, want 0/0", v.Pagination.Page, len(v.Rows))
	}
	if v.Pagination.HasNext || v.Pagination.HasPrevious {
		t.Error("empty view should have navigation disabled")
	}
}

func TestComposer_StateRoundTrip(t *testing.T) {
	ds := testDataset(overheadNames...)
	c := NewComposer(ds)
	c.OnReorder("Marketing", "R&D")
	c.SetCurrency(GBP)
	c.SetPrecision(1)
	c.NextPage()

	restored := NewComposerFromState(ds, c.State())

	if !reflect.DeepEqual(restored.State(), c.State()) {
		t.Errorf("restored state = %+v, want %+v", restored.State(), c.State())
	}
	if !reflect.DeepEqual(restored.Render(), c.Render()) {
		t.Error("restored view renders differently")
	}
}

func TestComposer_StateMismatchFallsBack(t *testing.T) {
	ds := testDataset("A", "B", "C")
	st := State{Order: []string{"C", "X", "A"}, View: ViewState{Currency: EUR, Precision: 1}}

	c := NewComposerFromState(ds, st)

	if got := c.State().Order; !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("order = %v, want insertion order", got)
	}
	if vs := c.ViewState(); vs.Currency != EUR || vs.Precision != 1 {
		t.Errorf("view state = %+v, want € / 1", vs)
	}
}

func TestComposer_StatePageIsClamped(t *testing.T) {
	ds := testDataset("A", "B", "C")
	c := NewComposerFromState(ds, State{View: ViewState{Currency: USD, Precision: 2, PageIndex: 7}})

	if got := c.ViewState().PageIndex; got != 0 {
		t.Errorf("PageIndex = %d, want 0", got)
	}
}

func TestComposer_Export(t *testing.T) {
	c := NewComposer(testDataset(overheadNames...), WithPageSize(5))
	c.OnReorder("Taxes", "Rent")
	c.SetPrecision(0)

	rows := c.Export()
	if len(rows) != len(overheadNames) {
		t.Fatalf("Export returned %d rows, want %d", len(rows), len(overheadNames))
	}
	if rows[0].Identity != "Taxes" {
		t.Errorf("first exported row = %q, want Taxes", rows[0].Identity)
	}
	if rows[0].Cells[0] != "$2301" {
		t.Errorf("first exported cell = %q, want $2301", rows[0].Cells[0])
	}
}

func TestComposer_Options(t *testing.T) {
	c := NewComposer(testDataset("A"))
	c.SetCurrency(EUR)
	v := c.Render()

	wantLabels := []string{"USD ($)", "EUR (€)", "GBP (£)"}
	for i, opt := range v.CurrencyOptions {
		if opt.Label != wantLabels[i] {
			t.Errorf("currency option %d label = %q, want %q", i, opt.Label, wantLabels[i])
		}
		if opt.Selected != (opt.Value == "€") {
			t.Errorf("currency option %q selected = %v", opt.Value, opt.Selected)
		}
	}
	if len(v.PrecisionOptions) != 3 || v.PrecisionOptions[2].Label != "Decimal View 2" || !v.PrecisionOptions[2].Selected {
		t.Errorf("precision options = %+v", v.PrecisionOptions)
	}
}
