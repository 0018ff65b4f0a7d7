package service

import (
	"testing"
	"time"

	"cardvault-rest-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int          { return &v }
func f64p(v float64) *float64  { return &v }
func strp(v string) *string    { return &v }
func at(sec int) time.Time     { return time.Date(2026, 1, 1, 0, 0, sec, 0, time.UTC) }

func TestNormalizeResolvesContainerAndZone(t *testing.T) {
	zones := []model.Zone{{ID: "z1", Name: "Attic"}}
	containers := []model.Container{{ID: "c1", Name: "Box A", ZoneID: strp("z1")}}
	cards := []model.Card{{ID: "k1", ContainerID: "c1", Player: "Mickey Mantle", Quantity: 1}}

	items := Normalize(cards, nil, containers, zones)
	require.Len(t, items, 1)

	require.NotNil(t, items[0].Container)
	assert.Equal(t, "Box A", items[0].Container.Name)
	assert.Equal(t, "Attic", items[0].Container.ZoneName)
	assert.Equal(t, "z1", items[0].Container.ZoneID)
}

func TestNormalizeDanglingZoneDegradesToUnknown(t *testing.T) {
	containers := []model.Container{{ID: "c1", Name: "Box A", ZoneID: strp("gone")}}
	cards := []model.Card{{ID: "k1", ContainerID: "c1", Player: "Hank Aaron", Quantity: 1}}

	items := Normalize(cards, nil, containers, nil)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Container)
	assert.Equal(t, model.UnknownZoneName, items[0].Container.ZoneName)
	assert.Empty(t, items[0].Container.ZoneID)
}

func TestNormalizeUnresolvableContainerIsNil(t *testing.T) {
	cards := []model.Card{{ID: "k1", ContainerID: "missing", Player: "Willie Mays", Quantity: 1}}

	items := Normalize(cards, nil, nil, nil)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Container)
}

func TestNormalizeOrdersNewestFirst(t *testing.T) {
	cards := []model.Card{
		{ID: "old", Player: "A", Quantity: 1, CreatedAt: at(1)},
		{ID: "new", Player: "B", Quantity: 1, CreatedAt: at(3)},
	}
	comics := []model.Comic{
		{ID: "mid", Title: "C", Quantity: 1, CreatedAt: at(2)},
	}

	items := Normalize(cards, comics, nil, nil)
	require.Len(t, items, 3)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "mid", items[1].ID)
	assert.Equal(t, "old", items[2].ID)
}

func TestNormalizeCardsPrecedeComicsOnEqualTimestamps(t *testing.T) {
	cards := []model.Card{{ID: "card", Player: "A", Quantity: 1, CreatedAt: at(1)}}
	comics := []model.Comic{{ID: "comic", Title: "B", Quantity: 1, CreatedAt: at(1)}}

	items := Normalize(cards, comics, nil, nil)
	require.Len(t, items, 2)
	assert.Equal(t, model.KindCard, items[0].Kind)
	assert.Equal(t, model.KindComic, items[1].Kind)
}

func TestNormalizeClampsQuantityAndBlankName(t *testing.T) {
	cards := []model.Card{{ID: "k1", Player: "   ", Quantity: 0}}

	items := Normalize(cards, nil, nil, nil)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, model.UnknownName, items[0].Name)
}

func TestItemProfit(t *testing.T) {
	it := model.Item{Quantity: 3, Cost: f64p(10), Price: f64p(25)}
	assert.InDelta(t, 45.0, it.Profit(), 1e-9)

	// Absent cost and price count as zero.
	noPrices := model.Item{Quantity: 5}
	assert.Zero(t, noPrices.Profit())

	onlyCost := model.Item{Quantity: 2, Cost: f64p(4)}
	assert.InDelta(t, -8.0, onlyCost.Profit(), 1e-9)
}

func TestItemGraded(t *testing.T) {
	assert.True(t, (&model.Item{Grade: f64p(0)}).Graded())
	assert.False(t, (&model.Item{}).Graded())
}
