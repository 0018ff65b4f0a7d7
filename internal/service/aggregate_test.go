package service

import (
	"testing"

	"cardvault-rest-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mantleItems() []model.Item {
	return []model.Item{
		{Kind: model.KindCard, ID: "1", Name: "Mickey Mantle", Year: intp(1952), Quantity: 1, Cost: f64p(10), Price: f64p(100), Number: "311"},
		{Kind: model.KindCard, ID: "2", Name: "Mickey Mantle", Year: intp(1956), Quantity: 1, Cost: f64p(20), Price: f64p(200), Number: "135"},
		{Kind: model.KindCard, ID: "3", Name: "Mickey Mantle", Quantity: 1, Number: "7"},
	}
}

func TestGroupByNameTotals(t *testing.T) {
	groups := GroupByName(mantleItems())
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Mickey Mantle", g.Name)
	assert.Equal(t, model.KindCard, g.Kind)
	assert.Equal(t, 3, g.TotalCount)
	assert.InDelta(t, 30.0, g.TotalCost, 1e-9)
	assert.InDelta(t, 300.0, g.TotalValue, 1e-9)
}

func TestGroupByNameQuantityWeighting(t *testing.T) {
	items := []model.Item{
		{Kind: model.KindCard, Name: "Jordan", Quantity: 4, Cost: f64p(5), Price: f64p(12)},
	}
	groups := GroupByName(items)
	require.Len(t, groups, 1)
	assert.Equal(t, 4, groups[0].TotalCount)
	assert.InDelta(t, 20.0, groups[0].TotalCost, 1e-9)
	assert.InDelta(t, 48.0, groups[0].TotalValue, 1e-9)
}

func TestGroupByNameMixedKindPromotion(t *testing.T) {
	items := []model.Item{
		{Kind: model.KindCard, Name: "Batman", Quantity: 1},
		{Kind: model.KindComic, Name: "Batman", Quantity: 1},
	}
	groups := GroupByName(items)
	require.Len(t, groups, 1)
	assert.Equal(t, model.KindMixed, groups[0].Kind)
	assert.Equal(t, 2, groups[0].TotalCount)
}

func TestGroupByNameSortedAscending(t *testing.T) {
	items := []model.Item{
		{Kind: model.KindCard, Name: "Zito", Quantity: 1},
		{Kind: model.KindCard, Name: "Aaron", Quantity: 1},
		{Kind: model.KindCard, Name: "Mantle", Quantity: 1},
	}
	groups := GroupByName(items)
	require.Len(t, groups, 3)
	assert.Equal(t, "Aaron", groups[0].Name)
	assert.Equal(t, "Mantle", groups[1].Name)
	assert.Equal(t, "Zito", groups[2].Name)
}

func TestBreakdownByYearBucketsDescendingUnknownLast(t *testing.T) {
	bd := BreakdownByYear(mantleItems(), "Mickey Mantle", false)

	require.Len(t, bd.Buckets, 3)
	assert.Equal(t, 1956, bd.Buckets[0].Year)
	assert.Equal(t, 1952, bd.Buckets[1].Year)
	assert.Equal(t, model.UnknownYear, bd.Buckets[2].Year)
	assert.Equal(t, "Unknown", bd.Buckets[2].Label)
	assert.Equal(t, "1956", bd.Buckets[0].Label)
}

func TestBreakdownByYearGrandTotalsSpanAllBuckets(t *testing.T) {
	bd := BreakdownByYear(mantleItems(), "Mickey Mantle", false)

	assert.Equal(t, 3, bd.TotalCount)
	assert.InDelta(t, 30.0, bd.TotalCost, 1e-9)
	assert.InDelta(t, 300.0, bd.TotalValue, 1e-9)
}

func TestBreakdownByYearExactNameMatch(t *testing.T) {
	items := append(mantleItems(),
		model.Item{Kind: model.KindCard, Name: "Mickey", Year: intp(1956), Quantity: 1})

	bd := BreakdownByYear(items, "Mickey Mantle", false)
	assert.Equal(t, 3, bd.TotalCount)
}

func TestBreakdownByYearNumberSubSort(t *testing.T) {
	items := []model.Item{
		{Kind: model.KindCard, Name: "Mantle", Year: intp(1956), Quantity: 1, Number: "135"},
		{Kind: model.KindCard, Name: "Mantle", Year: intp(1956), Quantity: 1, Number: "101"},
		{Kind: model.KindCard, Name: "Mantle", Year: intp(1956), Quantity: 1, Number: "12"},
	}

	bd := BreakdownByYear(items, "Mantle", true)
	require.Len(t, bd.Buckets, 1)
	nums := []string{bd.Buckets[0].Items[0].Number, bd.Buckets[0].Items[1].Number, bd.Buckets[0].Items[2].Number}
	// Lexical, not numeric: "101" < "12" < "135".
	assert.Equal(t, []string{"101", "12", "135"}, nums)
}

func TestBreakdownByYearEmptyName(t *testing.T) {
	bd := BreakdownByYear(mantleItems(), "Nobody", false)
	assert.Empty(t, bd.Buckets)
	assert.Zero(t, bd.TotalCount)
}
