// Package results holds the category and pagination state of the results table.
package results

import (
	"slices"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

// PageSizes are the page sizes a user can pick.
var PageSizes = []int{50, 100, 250, 500}

// DefaultPageSize is the initial page size.
const DefaultPageSize = 100

// Source yields the full ordered record sequence for a category.
type Source interface {
	Records(c models.Category) []models.Record
}

// Request describes a page fetch. Generation identifies the view state it was
// issued for.
type Request struct {
	Generation uint64
	Category   models.Category
	Page       int
	PageSize   int
}

// View is the records table state. With a Source the current page is derived
// synchronously; without one, pages arrive through Begin and Accept.
type View struct {
	source     Source
	records    []models.Record
	category   models.Category
	page       int
	pageSize   int
	total      int
	generation uint64
}

// New returns a view on page 1 of the activity category.
func New(src Source) *View {
	v := &View{
		source:   src,
		category: models.CategoryActivity,
		page:     1,
		pageSize: DefaultPageSize,
	}
	v.recompute()
	return v
}

// SetSource swaps the data source. A nil source switches to fetched pages.
func (v *View) SetSource(src Source) {
	v.source = src
	v.recompute()
}

// Local reports whether pages are derived from a local source.
func (v *View) Local() bool {
	return v.source != nil
}

// Category returns the selected category.
func (v *View) Category() models.Category { return v.category }

// Page returns the current 1-based page.
func (v *View) Page() int { return v.page }

// PageSize returns the current page size.
func (v *View) PageSize() int { return v.pageSize }

// Total returns the number of records across all pages, or 0 when unknown.
func (v *View) Total() int { return v.total }

// PageCount returns the number of non-empty pages, or 0 when unknown.
func (v *View) PageCount() int {
	if v.total == 0 {
		return 0
	}
	return (v.total + v.pageSize - 1) / v.pageSize
}

// OnCategoryChanged selects c and resets to page 1.
func (v *View) OnCategoryChanged(c models.Category) {
	v.category = c
	v.page = 1
	v.recompute()
}

// OnPageChanged moves to page p. Pages below 1 are ignored.
func (v *View) OnPageChanged(p int) {
	if p < 1 {
		return
	}
	v.page = p
	v.recompute()
}

// NextPage advances one page. There is no upper bound; past the end the
// page is empty.
func (v *View) NextPage() {
	v.OnPageChanged(v.page + 1)
}

// PrevPage goes back one page, stopping at 1.
func (v *View) PrevPage() {
	v.OnPageChanged(max(1, v.page-1))
}

// OnPageSizeChanged sets the page size if n is one of PageSizes. The page
// number is kept.
func (v *View) OnPageSizeChanged(n int) bool {
	if !slices.Contains(PageSizes, n) {
		return false
	}
	v.pageSize = n
	v.recompute()
	return true
}

// CyclePageSize moves to the next entry of PageSizes.
func (v *View) CyclePageSize() {
	i := slices.Index(PageSizes, v.pageSize)
	v.OnPageSizeChanged(PageSizes[(i+1)%len(PageSizes)])
}

// Records returns the records of the current page.
func (v *View) Records() []models.Record {
	return v.records
}

// Columns returns the keys of the first record on the page.
func (v *View) Columns() []string {
	if len(v.records) == 0 {
		return nil
	}
	return v.records[0].Keys()
}

// Begin starts a fetch for the current state. Any response to an earlier
// request is dropped by Accept from now on.
func (v *View) Begin() Request {
	v.generation++
	return Request{
		Generation: v.generation,
		Category:   v.category,
		Page:       v.page,
		PageSize:   v.pageSize,
	}
}

// Accept stores a fetched page if req is still the latest request.
func (v *View) Accept(req Request, page *models.MetricPage) bool {
	if req.Generation != v.generation || v.source != nil {
		return false
	}
	v.records = nil
	v.total = 0
	if page != nil {
		v.records = page.Records
		v.total = page.Total
	}
	return true
}

// Current reports whether req is still the latest request.
func (v *View) Current(req Request) bool {
	return req.Generation == v.generation
}

func (v *View) recompute() {
	// State moved on; in-flight fetches are stale.
	v.generation++
	if v.source == nil {
		v.records = nil
		v.total = 0
		return
	}
	all := v.source.Records(v.category)
	v.total = len(all)
	v.records = Paginate(all, v.page, v.pageSize)
}

// Paginate returns all[(page-1)*size : page*size], clamped to the data.
// Out-of-range pages yield an empty slice.
func Paginate(all []models.Record, page, size int) []models.Record {
	if page < 1 || size < 1 || len(all) == 0 {
		return nil
	}
	// Compare page counts first so huge pages cannot overflow start.
	if page-1 >= (len(all)-1)/size+1 {
		return nil
	}
	start := (page - 1) * size
	return all[start : start+min(size, len(all)-start)]
}
