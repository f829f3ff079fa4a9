package core

import "log/slog"

// Composer is the view orchestrator. It owns the ViewState, delegates
// ordering to an OrderStore, slicing to a Paginator and cell text to Format.
//
// A Composer is not safe for concurrent use; callers serialise events.
type Composer struct {
	title   string
	periods []string
	order   *OrderStore
	pager   Paginator
	state   ViewState
	logger  *slog.Logger
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(size int) ComposerOption {
	return func(c *Composer) {
		c.pager = NewPaginator(size)
	}
}

// WithViewState sets the initial view state. Invalid fields keep defaults.
func WithViewState(vs ViewState) ComposerOption {
	return func(c *Composer) {
		if vs.Currency.Valid() {
			c.state.Currency = vs.Currency
		}
		if vs.Precision.Valid() {
			c.state.Precision = vs.Precision
		}
		if vs.PageIndex > 0 {
			c.state.PageIndex = vs.PageIndex
		}
	}
}

// WithLogger sets the logger used to report ignored events.
func WithLogger(logger *slog.Logger) ComposerOption {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTitle overrides DefaultTitle.
func WithTitle(title string) ComposerOption {
	return func(c *Composer) {
		if title != "" {
			c.title = title
		}
	}
}

// NewComposer creates a view over ds in insertion order with default state.
func NewComposer(ds Dataset, opts ...ComposerOption) *Composer {
	c := &Composer{
		title:   DefaultTitle,
		periods: ds.Periods,
		order:   NewOrderStore(ds.Rows),
		pager:   NewPaginator(DefaultPageSize),
		state:   DefaultViewState(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.PageIndex = c.pager.Clamp(c.state.PageIndex, c.order.Len())
	return c
}

// NewComposerFromState rebuilds a view from a snapshot. If the snapshot's
// order is not a permutation of ds, insertion order is used instead.
func NewComposerFromState(ds Dataset, st State, opts ...ComposerOption) *Composer {
	opts = append(opts, WithViewState(st.View))
	c := NewComposer(ds, opts...)
	if len(st.Order) > 0 && !c.order.Restore(st.Order) {
		c.logger.Warn("stored order does not match dataset, using insertion order",
			"stored_rows", len(st.Order),
			"dataset_rows", c.order.Len(),
		)
	}
	return c
}

// ViewState returns a copy of the current view state.
func (c *Composer) ViewState() ViewState {
	return c.state
}

// State returns a snapshot suitable for persisting the view.
func (c *Composer) State() State {
	return State{
		Order: c.order.Identities(),
		View:  c.state,
	}
}

// SetCurrency changes the displayed symbol. Unknown symbols are ignored.
// Order and page index are untouched. Reports whether the symbol changed.
func (c *Composer) SetCurrency(symbol Currency) bool {
	if !symbol.Valid() {
		c.logger.Debug("ignoring unsupported currency", "currency", string(symbol))
		return false
	}
	prev := c.state.Currency
	c.state.Currency = symbol
	return symbol != prev
}

// SetPrecision changes the number of fractional digits. Values outside
// 0..MaxPrecision are ignored.
func (c *Composer) SetPrecision(p Precision) bool {
	if !p.Valid() {
		c.logger.Debug("ignoring unsupported precision", "precision", int(p))
		return false
	}
	prev := c.state.Precision
	c.state.Precision = p
	return p != prev
}

// NextPage advances one page, saturating at the last page.
// Reports whether the page index changed.
func (c *Composer) NextPage() bool {
	prev := c.state.PageIndex
	c.state.PageIndex = c.pager.Next(prev, c.order.Len())
	return c.state.PageIndex != prev
}

// PreviousPage goes back one page, saturating at page 0.
func (c *Composer) PreviousPage() bool {
	prev := c.state.PageIndex
	c.state.PageIndex = c.pager.Previous(prev)
	return c.state.PageIndex != prev
}

// OnReorder moves moved to target's position in the full order. The page
// index is left as is: a row moved off-page is found by paging to it.
func (c *Composer) OnReorder(moved, target string) bool {
	if !c.order.Move(moved, target) {
		if moved != target {
			c.logger.Warn("ignoring reorder with unknown row",
				"moved", moved,
				"target", target,
			)
		}
		return false
	}
	return true
}

// VisibleRows returns the rows on the current page.
func (c *Composer) VisibleRows() []Row {
	return Slice(c.pager, c.order.Rows(), c.state.PageIndex)
}

// ResolveVisibleMove translates a drag from position from to position to,
// both relative to the current page, into row identities. The interaction
// layer reports positions; the order store only accepts identities.
func (c *Composer) ResolveVisibleMove(from, to int) (moved, target string, ok bool) {
	visible := c.VisibleRows()
	if from < 0 || from >= len(visible) || to < 0 || to >= len(visible) {
		return "", "", false
	}
	return visible[from].Identity, visible[to].Identity, true
}

// RenderedRow is one row ready for presentation.
type RenderedRow struct {
	Identity string   `json:"identity"`
	Cells    []string `json:"cells"`
}

// PageStatus describes the current page for navigation controls.
type PageStatus struct {
	Page        int  `json:"page"`
	PageCount   int  `json:"page_count"`
	PageSize    int  `json:"page_size"`
	Start       int  `json:"start"`
	End         int  `json:"end"`
	Total       int  `json:"total"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// Option is a labelled menu value.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// View is everything the presentation layer needs for one render.
type View struct {
	Title            string        `json:"title"`
	IdentityLabel    string        `json:"identity_label"`
	Periods          []string      `json:"periods"`
	Rows             []RenderedRow `json:"rows"`
	Pagination       PageStatus    `json:"pagination"`
	Currency         Currency      `json:"currency"`
	Precision        Precision     `json:"precision"`
	CurrencyOptions  []Option      `json:"currency_options"`
	PrecisionOptions []Option      `json:"precision_options"`
}

// Render produces the current page with every cell formatted using the
// current currency and precision.
func (c *Composer) Render() View {
	total := c.order.Len()
	page := c.state.PageIndex
	start, end := c.pager.Bounds(page, total)

	return View{
		Title:         c.title,
		IdentityLabel: IdentityLabel,
		Periods:       c.periods,
		Rows:          c.renderRows(c.VisibleRows()),
		Pagination: PageStatus{
			Page:        page,
			PageCount:   c.pager.PageCount(total),
			PageSize:    c.pager.PageSize,
			Start:       start,
			End:         end,
			Total:       total,
			HasPrevious: c.pager.HasPrevious(page),
			HasNext:     c.pager.HasNext(page, total),
		},
		Currency:         c.state.Currency,
		Precision:        c.state.Precision,
		CurrencyOptions:  CurrencyOptions(c.state.Currency),
		PrecisionOptions: PrecisionOptions(c.state.Precision),
	}
}

// Export renders every row of the full order with the current format.
func (c *Composer) Export() []RenderedRow {
	return c.renderRows(c.order.Rows())
}

func (c *Composer) renderRows(rows []Row) []RenderedRow {
	out := make([]RenderedRow, len(rows))
	for i, row := range rows {
		out[i] = RenderedRow{
			Identity: row.Identity,
			Cells:    FormatRow(row.Values, c.state.Currency, c.state.Precision),
		}
	}
	return out
}

// CurrencyOptions returns the currency menu with selected marked.
func CurrencyOptions(selected Currency) []Option {
	opts := make([]Option, len(Currencies))
	for i, cur := range Currencies {
		opts[i] = Option{Value: string(cur), Label: cur.Label(), Selected: cur == selected}
	}
	return opts
}

// PrecisionOptions returns the precision menu with selected marked.
func PrecisionOptions(selected Precision) []Option {
	opts := make([]Option, len(Precisions))
	for i, p := range Precisions {
		opts[i] = Option{Value: p.String(), Label: p.Label(), Selected: p == selected}
	}
	return opts
}
