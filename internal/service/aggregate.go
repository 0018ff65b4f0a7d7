package service

import (
	"sort"
	"strconv"

	"cardvault-rest-api/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// newCollator returns a fresh collator per call site; collators carry an
// internal buffer and are not safe for concurrent use.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// GroupByName aggregates items by display name for the dashboard view.
// Per group: totalCount sums quantities, totalCost sums cost*quantity and
// totalValue sums price*quantity with absent cost/price treated as 0.
// The group kind is the first-seen kind and becomes "mixed" the moment
// an item of the other kind joins the group. Output is ordered by name,
// locale-aware ascending.
func GroupByName(items []model.Item) []model.GroupedItem {
	groups := make(map[string]*model.GroupedItem)
	for i := range items {
		it := &items[i]
		g, ok := groups[it.Name]
		if !ok {
			g = &model.GroupedItem{Name: it.Name, Kind: it.Kind}
			groups[it.Name] = g
		} else if g.Kind != it.Kind {
			g.Kind = model.KindMixed
		}
		accumulate(it, &g.TotalCount, &g.TotalCost, &g.TotalValue)
	}

	out := make([]model.GroupedItem, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}

	coll := newCollator()
	sort.Slice(out, func(i, j int) bool {
		return coll.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}

// BreakdownByYear buckets the items matching name exactly by year for
// the drill-down view. Items without a year land in the sentinel bucket
// (year -1, labeled "Unknown") which always sorts last; numeric buckets
// are ordered descending. Within a bucket items keep fetch order unless
// byNumber additionally sub-sorts them lexically ascending on the card
// number string. Totals span every bucket, not a paginated subset.
func BreakdownByYear(items []model.Item, name string, byNumber bool) model.YearBreakdown {
	bd := model.YearBreakdown{Name: name}
	buckets := make(map[int]*model.YearBucket)

	for i := range items {
		it := &items[i]
		if it.Name != name {
			continue
		}

		year := model.UnknownYear
		if it.Year != nil {
			year = *it.Year
		}
		b, ok := buckets[year]
		if !ok {
			b = &model.YearBucket{Year: year, Label: yearLabel(year)}
			buckets[year] = b
		}
		b.Items = append(b.Items, *it)
		accumulate(it, &b.TotalCount, &b.TotalCost, &b.TotalValue)
		accumulate(it, &bd.TotalCount, &bd.TotalCost, &bd.TotalValue)
	}

	for _, b := range buckets {
		if byNumber {
			sort.SliceStable(b.Items, func(i, j int) bool {
				return b.Items[i].Number < b.Items[j].Number
			})
		}
		bd.Buckets = append(bd.Buckets, *b)
	}

	sort.Slice(bd.Buckets, func(i, j int) bool {
		a, b := bd.Buckets[i], bd.Buckets[j]
		// Unknown sorts last regardless of numeric comparison.
		if a.Year == model.UnknownYear {
			return false
		}
		if b.Year == model.UnknownYear {
			return true
		}
		return a.Year > b.Year
	})

	return bd
}

func yearLabel(year int) string {
	if year == model.UnknownYear {
		return "Unknown"
	}
	return strconv.Itoa(year)
}

// accumulate adds one item's totals into a running aggregate, treating
// absent cost/price as 0.
func accumulate(it *model.Item, count *int, cost, value *float64) {
	q := float64(it.Quantity)
	*count += it.Quantity
	if it.Cost != nil {
		*cost += *it.Cost * q
	}
	if it.Price != nil {
		*value += *it.Price * q
	}
}
