package service

import (
	"sort"
	"strings"

	"cardvault-rest-api/internal/model"
)

// Tab is the top-level kind filter on the items listing.
type Tab string

const (
	TabAll         Tab = "all"
	TabCards       Tab = "card"
	TabComics      Tab = "comic"
	TabGradedCards Tab = "graded-card"
	TabGradedComic Tab = "graded-comic"
)

// ParseTab maps a raw query value to a Tab, defaulting to all.
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabCards, TabComics, TabGradedCards, TabGradedComic:
		return Tab(s)
	default:
		return TabAll
	}
}

// RookieFilter is the tri-state rookie flag filter. Comics always pass
// it regardless of its value.
type RookieFilter string

const (
	RookieEither RookieFilter = ""
	RookieYes    RookieFilter = "yes"
	RookieNo     RookieFilter = "no"
)

// Filters holds the optional column filters. All set filters must pass
// (logical AND). Text filters are case-insensitive substring matches;
// container and zone are exact id matches; ranges are inclusive.
//
// A range bound is ignored when the item's field is null: null values
// pass range filters rather than being excluded. That is a deliberate,
// tested quirk of the filter contract - changing it would alter which
// rows a saved filter returns.
type Filters struct {
	Name         string `json:"name,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Sport        string `json:"sport,omitempty"`
	Publisher    string `json:"publisher,omitempty"`
	Team         string `json:"team,omitempty"`
	Number       string `json:"number,omitempty"`
	Condition    string `json:"condition,omitempty"`
	Description  string `json:"description,omitempty"`

	ContainerID string `json:"container_id,omitempty"`
	ZoneID      string `json:"zone_id,omitempty"`

	YearMin     *int     `json:"year_min,omitempty"`
	YearMax     *int     `json:"year_max,omitempty"`
	QuantityMin *int     `json:"quantity_min,omitempty"`
	QuantityMax *int     `json:"quantity_max,omitempty"`
	GradeMin    *float64 `json:"grade_min,omitempty"`
	GradeMax    *float64 `json:"grade_max,omitempty"`
	PriceMin    *float64 `json:"price_min,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
	CostMin     *float64 `json:"cost_min,omitempty"`
	CostMax     *float64 `json:"cost_max,omitempty"`

	Rookie RookieFilter `json:"rookie,omitempty"`
}

// SortColumn identifies the single active sort column.
type SortColumn string

const (
	SortName      SortColumn = "name"
	SortYear      SortColumn = "year"
	SortQuantity  SortColumn = "quantity"
	SortGrade     SortColumn = "grade"
	SortCost      SortColumn = "cost"
	SortPrice     SortColumn = "price"
	SortProfit    SortColumn = "profit"
	SortNumber    SortColumn = "number"
	SortContainer SortColumn = "container"
	SortCreated   SortColumn = "created"
)

// SortDir is the sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Sort is the active sort column and direction.
type Sort struct {
	Column SortColumn `json:"column"`
	Dir    SortDir    `json:"dir"`
}

// ViewResult is one page of the filtered, sorted item view.
type ViewResult struct {
	Items      []model.Item `json:"items"`
	Total      int          `json:"total"`
	TotalPages int          `json:"total_pages"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
}

// ApplyView runs the full pipeline over a snapshot: tab filter, then
// column filters, then sort, then the page window - strictly in that
// order. The pipeline is pure and idempotent; re-running it on the same
// input yields the same output.
func ApplyView(items []model.Item, v ViewState) ViewResult {
	filtered := ApplyFilterSort(items, v.Tab, v.Filters, v.Sort)
	return paginate(filtered, v.Page, v.PageSize)
}

// ApplyFilterSort runs the pipeline without the page window. The export
// path serializes this set: filtered and sorted, never paginated.
func ApplyFilterSort(items []model.Item, tab Tab, f Filters, s Sort) []model.Item {
	filtered := make([]model.Item, 0, len(items))
	for i := range items {
		if matchTab(&items[i], tab) && matchFilters(&items[i], &f) {
			filtered = append(filtered, items[i])
		}
	}
	sortItems(filtered, s)
	return filtered
}

func matchTab(it *model.Item, tab Tab) bool {
	switch tab {
	case TabCards:
		return it.Kind == model.KindCard
	case TabComics:
		return it.Kind == model.KindComic
	case TabGradedCards:
		return it.Kind == model.KindCard && it.Graded()
	case TabGradedComic:
		return it.Kind == model.KindComic && it.Graded()
	default:
		return true
	}
}

func matchFilters(it *model.Item, f *Filters) bool {
	if !matchText(it.Name, f.Name) ||
		!matchText(it.Manufacturer, f.Manufacturer) ||
		!matchText(it.Sport, f.Sport) ||
		!matchText(it.Publisher, f.Publisher) ||
		!matchText(deref(it.Team), f.Team) ||
		!matchText(it.Number, f.Number) ||
		!matchText(deref(it.Condition), f.Condition) ||
		!matchText(it.Description, f.Description) {
		return false
	}

	if f.ContainerID != "" && (it.Container == nil || it.Container.ID != f.ContainerID) {
		return false
	}
	if f.ZoneID != "" && (it.Container == nil || it.Container.ZoneID != f.ZoneID) {
		return false
	}

	quantity := it.Quantity
	if !intInRange(it.Year, f.YearMin, f.YearMax) ||
		!intInRange(&quantity, f.QuantityMin, f.QuantityMax) ||
		!floatInRange(it.Grade, f.GradeMin, f.GradeMax) ||
		!floatInRange(it.Price, f.PriceMin, f.PriceMax) ||
		!floatInRange(it.Cost, f.CostMin, f.CostMax) {
		return false
	}

	// Rookie tri-state applies to cards only.
	if it.Kind == model.KindCard {
		switch f.Rookie {
		case RookieYes:
			return it.Rookie
		case RookieNo:
			return !it.Rookie
		}
	}
	return true
}

// matchText is a case-insensitive substring match; an empty filter
// passes everything.
func matchText(value, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}

// intInRange reports whether v falls in the inclusive [min, max] range.
// A nil value passes: range bounds are vacuously satisfied on null
// fields.
func intInRange(v, min, max *int) bool {
	if v == nil {
		return true
	}
	if min != nil && *v < *min {
		return false
	}
	if max != nil && *v > *max {
		return false
	}
	return true
}

// floatInRange mirrors intInRange for float columns.
func floatInRange(v, min, max *float64) bool {
	if v == nil {
		return true
	}
	if min != nil && *v < *min {
		return false
	}
	if max != nil && *v > *max {
		return false
	}
	return true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// sortItems stably sorts by the single active column. String columns use
// locale-aware comparison; numeric columns compare by difference with
// absent values ordered as negative infinity, so nulls come first
// ascending and last descending on every numeric column.
func sortItems(items []model.Item, s Sort) {
	if s.Column == "" {
		return
	}
	coll := newCollator()

	cmp := func(a, b *model.Item) int {
		switch s.Column {
		case SortName:
			return coll.CompareString(a.Name, b.Name)
		case SortNumber:
			return coll.CompareString(a.Number, b.Number)
		case SortContainer:
			return coll.CompareString(containerName(a), containerName(b))
		case SortYear:
			return cmpFloat(yearValue(a), yearValue(b))
		case SortQuantity:
			return cmpFloat(float64(a.Quantity), float64(b.Quantity))
		case SortGrade:
			return cmpFloat(nullNumeric(a.Grade), nullNumeric(b.Grade))
		case SortCost:
			return cmpFloat(nullNumeric(a.Cost), nullNumeric(b.Cost))
		case SortPrice:
			return cmpFloat(nullNumeric(a.Price), nullNumeric(b.Price))
		case SortProfit:
			return cmpFloat(a.Profit(), b.Profit())
		case SortCreated:
			if a.CreatedAt.Equal(b.CreatedAt) {
				return 0
			}
			if a.CreatedAt.Before(b.CreatedAt) {
				return -1
			}
			return 1
		default:
			return 0
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(&items[i], &items[j])
		if s.Dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
}

func containerName(it *model.Item) string {
	if it.Container == nil {
		return ""
	}
	return it.Container.Name
}

// yearValue maps a missing year below every real year.
func yearValue(it *model.Item) float64 {
	if it.Year == nil {
		return negInf
	}
	return float64(*it.Year)
}

// negInf orders absent numeric values before every present one.
const negInf = -1e308

func nullNumeric(v *float64) float64 {
	if v == nil {
		return negInf
	}
	return *v
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// paginate slices one 1-based page window out of the filtered set. A
// page beyond the data yields an empty page; it never panics and never
// returns more than size rows.
func paginate(items []model.Item, page, size int) ViewResult {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = model.DefaultPreferences().PageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size

	start := (page - 1) * size
	if start >= total {
		return ViewResult{Items: []model.Item{}, Total: total, TotalPages: totalPages, Page: page, PageSize: size}
	}
	end := start + size
	if end > total {
		end = total
	}
	return ViewResult{Items: items[start:end], Total: total, TotalPages: totalPages, Page: page, PageSize: size}
}

// ViewState is an account's current items view: tab, filters, sort and
// page window. It is injected configuration with explicit defaults, not
// ambient state; mutations go through the Set methods so the page-reset
// rules hold.
type ViewState struct {
	Tab      Tab     `json:"tab"`
	Filters  Filters `json:"filters"`
	Sort     Sort    `json:"sort"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// DefaultViewState returns the initial view: everything, newest first.
func DefaultViewState() ViewState {
	return ViewState{
		Tab:      TabAll,
		Sort:     Sort{Column: SortCreated, Dir: SortDesc},
		Page:     1,
		PageSize: model.DefaultPreferences().PageSize,
	}
}

// SetTab switches the tab filter and resets to page 1.
func (v *ViewState) SetTab(t Tab) {
	v.Tab = t
	v.Page = 1
}

// SetFilters replaces the column filters and resets to page 1.
func (v *ViewState) SetFilters(f Filters) {
	v.Filters = f
	v.Page = 1
}

// SetSort activates a column: a repeat of the active column toggles the
// direction exactly once, a new column resets to ascending. Either way
// the page resets to 1.
func (v *ViewState) SetSort(col SortColumn) {
	if v.Sort.Column == col {
		if v.Sort.Dir == SortAsc {
			v.Sort.Dir = SortDesc
		} else {
			v.Sort.Dir = SortAsc
		}
	} else {
		v.Sort = Sort{Column: col, Dir: SortAsc}
	}
	v.Page = 1
}

// SetPageSize changes the page size and resets to page 1. Sizes outside
// the selectable set are rejected.
func (v *ViewState) SetPageSize(n int) bool {
	if !model.ValidPageSize(n) {
		return false
	}
	v.PageSize = n
	v.Page = 1
	return true
}

// SetPage moves to a 1-based page. Out-of-range requests are a no-op,
// not an error, and leave the current page untouched.
func (v *ViewState) SetPage(page, totalPages int) bool {
	if page < 1 || page > totalPages {
		return false
	}
	v.Page = page
	return true
}
