// Package timeline paginates schedule records and lays them out on a
// week-granularity axis.
package timeline

// Chart sizing constants, in pixels.
const (
	RowHeight    = 50
	ChromeHeight = 100
	MinHeight    = 400
)

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// PageSizes are the sizes offered by page-size selectors.
var PageSizes = []int{5, 10, 20, 50}

// ChartHeight returns the vertical extent of a chart showing itemsOnPage rows.
func ChartHeight(itemsOnPage int) int {
	return max(itemsOnPage*RowHeight+ChromeHeight, MinHeight)
}

// Pager splits an ordered item list into fixed-size pages. Navigation clamps
// at the first and last page.
type Pager[T any] struct {
	items    []T
	pageSize int
	page     int
}

// NewPager returns a pager positioned on page 1.
func NewPager[T any](items []T, pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager[T]{items: items, pageSize: pageSize, page: 1}
}

// PageSize returns the current page size.
func (p *Pager[T]) PageSize() int { return p.pageSize }

// CurrentPage returns the 1-based current page.
func (p *Pager[T]) CurrentPage() int { return p.page }

// TotalItems returns the number of items across all pages.
func (p *Pager[T]) TotalItems() int { return len(p.items) }

// TotalPages returns ceil(items / pageSize). An empty list has zero pages.
func (p *Pager[T]) TotalPages() int {
	return (len(p.items) + p.pageSize - 1) / p.pageSize
}

// CurrentPageItems returns the items on the current page.
func (p *Pager[T]) CurrentPageItems() []T {
	start := (p.page - 1) * p.pageSize
	if start >= len(p.items) {
		return nil
	}
	end := min(start+p.pageSize, len(p.items))
	return p.items[start:end]
}

// NextPage advances one page, staying on the last page.
func (p *Pager[T]) NextPage() {
	p.page = min(p.page+1, p.lastPage())
}

// PrevPage goes back one page, staying on page 1.
func (p *Pager[T]) PrevPage() {
	p.page = max(p.page-1, 1)
}

// SetPage jumps to page n, clamped to the valid range.
func (p *Pager[T]) SetPage(n int) {
	p.page = min(max(n, 1), p.lastPage())
}

// SetPageSize changes the page size and returns to page 1.
func (p *Pager[T]) SetPageSize(n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	p.pageSize = n
	p.page = 1
}

// ChartHeight returns the chart extent for the current page.
func (p *Pager[T]) ChartHeight() int {
	return ChartHeight(len(p.CurrentPageItems()))
}

func (p *Pager[T]) lastPage() int {
	return max(p.TotalPages(), 1)
}
