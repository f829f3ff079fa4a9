package core

// Paginator derives fixed-size page slices from an ordered list.
// All navigation saturates at the first and last page; nothing here errors.
type Paginator struct {
	PageSize int
}

// NewPaginator returns a Paginator, falling back to DefaultPageSize for
// non-positive sizes.
func NewPaginator(pageSize int) Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Paginator{PageSize: pageSize}
}

// PageCount returns ceil(total/pageSize), but never less than 1 so that an
// empty list still has page 0.
func (p Paginator) PageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// LastPage returns the highest valid page index for total items.
func (p Paginator) LastPage(total int) int {
	return p.PageCount(total) - 1
}

// Clamp forces page into [0, LastPage(total)].
func (p Paginator) Clamp(page, total int) int {
	if page < 0 {
		return 0
	}
	if last := p.LastPage(total); page > last {
		return last
	}
	return page
}

// Bounds returns the half-open range [start, end) covered by page.
func (p Paginator) Bounds(page, total int) (start, end int) {
	if page < 0 {
		page = 0
	}
	start = page * p.PageSize
	if start > total {
		start = total
	}
	end = start + p.PageSize
	if end > total {
		end = total
	}
	return start, end
}

// Next returns the following page, saturating at the last page.
func (p Paginator) Next(page, total int) int {
	return p.Clamp(page+1, total)
}

// Previous returns the preceding page, saturating at 0.
func (p Paginator) Previous(page int) int {
	if page <= 0 {
		return 0
	}
	return page - 1
}

// HasPrevious reports whether Previous would move.
func (p Paginator) HasPrevious(page int) bool {
	return page > 0
}

// HasNext reports whether rows exist beyond page.
func (p Paginator) HasNext(page, total int) bool {
	return (page+1)*p.PageSize < total
}

// Slice returns the rows visible on page. The result shares the backing
// array of items and must be treated as read-only.
func Slice[T any](p Paginator, items []T, page int) []T {
	start, end := p.Bounds(page, len(items))
	return items[start:end]
}
