package repository

import (
	"context"
	"path/filepath"
	"testing"

	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/pkg/uid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func intp(v int) *int         { return &v }
func strp(v string) *string   { return &v }
func f64p(v float64) *float64 { return &v }

func testCard(accountID int64, player string) *model.Card {
	return &model.Card{
		ID:           uid.New(),
		AccountID:    accountID,
		ContainerID:  "box-1",
		Player:       player,
		Team:         strp("Yankees"),
		Manufacturer: "Topps",
		Sport:        "Baseball",
		Year:         intp(1952),
		Number:       "311",
		Quantity:     1,
	}
}

func TestZoneCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	z := &model.Zone{ID: uid.New(), AccountID: 1, Name: "Attic"}
	require.NoError(t, store.CreateZone(ctx, z))

	got, err := store.GetZone(ctx, 1, z.ID)
	require.NoError(t, err)
	assert.Equal(t, "Attic", got.Name)

	z.Name = "Basement"
	require.NoError(t, store.UpdateZone(ctx, z))
	got, err = store.GetZone(ctx, 1, z.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basement", got.Name)

	require.NoError(t, store.DeleteZone(ctx, 1, z.ID))
	_, err = store.GetZone(ctx, 1, z.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestZoneAccountScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	z := &model.Zone{ID: uid.New(), AccountID: 1, Name: "Attic"}
	require.NoError(t, store.CreateZone(ctx, z))

	// Another account cannot see, update or delete it.
	_, err := store.GetZone(ctx, 2, z.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	other := *z
	other.AccountID = 2
	assert.ErrorIs(t, store.UpdateZone(ctx, &other), ErrNotFound)
	assert.ErrorIs(t, store.DeleteZone(ctx, 2, z.ID), ErrNotFound)

	zones, err := store.ListZones(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, zones)
}

func TestContainerNullableZone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &model.Container{ID: uid.New(), AccountID: 1, Name: "Box A"}
	require.NoError(t, store.CreateContainer(ctx, c))

	got, err := store.GetContainer(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ZoneID)

	c.ZoneID = strp("z1")
	require.NoError(t, store.UpdateContainer(ctx, c))
	got, err = store.GetContainer(ctx, 1, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ZoneID)
	assert.Equal(t, "z1", *got.ZoneID)

	byZone, err := store.ListContainersByZone(ctx, 1, "z1")
	require.NoError(t, err)
	assert.Len(t, byZone, 1)
}

func TestCardCRUDAndNullFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := testCard(1, "Mickey Mantle")
	c.Team = nil
	c.Year = nil
	c.Grade = nil
	require.NoError(t, store.CreateCard(ctx, c))

	got, err := store.GetCard(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Team)
	assert.Nil(t, got.Year)
	assert.Nil(t, got.Grade)
	assert.Equal(t, "Mickey Mantle", got.Player)

	got.Grade = f64p(8.5)
	got.Year = intp(1952)
	require.NoError(t, store.UpdateCard(ctx, got))

	got, err = store.GetCard(ctx, 1, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Grade)
	assert.InDelta(t, 8.5, *got.Grade, 1e-9)

	require.NoError(t, store.DeleteCard(ctx, 1, c.ID))
	_, err = store.GetCard(ctx, 1, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCardDuplicateNaturalKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateCard(ctx, testCard(1, "Mickey Mantle")))

	dup := testCard(1, "Mickey Mantle")
	assert.ErrorIs(t, store.CreateCard(ctx, dup), ErrDuplicate)

	// A different card number is still the same key.
	dup2 := testCard(1, "Mickey Mantle")
	dup2.Number = "7"
	assert.ErrorIs(t, store.CreateCard(ctx, dup2), ErrDuplicate)

	// Another account may hold the identical card.
	require.NoError(t, store.CreateCard(ctx, testCard(2, "Mickey Mantle")))

	// A different year is a different key.
	other := testCard(1, "Mickey Mantle")
	other.Year = intp(1956)
	require.NoError(t, store.CreateCard(ctx, other))
}

func TestCardDuplicateWithNullTeamAndYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := testCard(1, "Hank Aaron")
	c.Team = nil
	c.Year = nil
	require.NoError(t, store.CreateCard(ctx, c))

	dup := testCard(1, "Hank Aaron")
	dup.Team = nil
	dup.Year = nil
	assert.ErrorIs(t, store.CreateCard(ctx, dup), ErrDuplicate)
}

func TestFindCardByKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := testCard(1, "Mickey Mantle")
	require.NoError(t, store.CreateCard(ctx, c))

	found, err := store.FindCardByKey(ctx, 1, "Mickey Mantle", strp("Yankees"), "Topps", "Baseball", intp(1952))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, c.ID, found.ID)

	missing, err := store.FindCardByKey(ctx, 1, "Mickey Mantle", strp("Yankees"), "Topps", "Baseball", intp(1999))
	require.NoError(t, err)
	assert.Nil(t, missing)

	crossAccount, err := store.FindCardByKey(ctx, 2, "Mickey Mantle", strp("Yankees"), "Topps", "Baseball", intp(1952))
	require.NoError(t, err)
	assert.Nil(t, crossAccount)
}

func TestCardUpdateZeroRowsIsNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ghost := testCard(1, "Nobody")
	assert.ErrorIs(t, store.UpdateCard(ctx, ghost), ErrNotFound)
	assert.ErrorIs(t, store.DeleteCard(ctx, 1, ghost.ID), ErrNotFound)
}

func TestComicDuplicateNaturalKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &model.Comic{
		ID: uid.New(), AccountID: 1, ContainerID: "box-1",
		Title: "Batman", Publisher: "DC", Issue: "1", Year: intp(1940), Quantity: 1,
	}
	require.NoError(t, store.CreateComic(ctx, c))

	dup := *c
	dup.ID = uid.New()
	assert.ErrorIs(t, store.CreateComic(ctx, &dup), ErrDuplicate)

	otherIssue := *c
	otherIssue.ID = uid.New()
	otherIssue.Issue = "2"
	require.NoError(t, store.CreateComic(ctx, &otherIssue))
}

func TestFindComicByKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := &model.Comic{
		ID: uid.New(), AccountID: 1, ContainerID: "box-1",
		Title: "Batman", Publisher: "DC", Issue: "1", Quantity: 1,
	}
	require.NoError(t, store.CreateComic(ctx, c))

	found, err := store.FindComicByKey(ctx, 1, "Batman", "DC", "1", nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, c.ID, found.ID)

	missing, err := store.FindComicByKey(ctx, 1, "Batman", "DC", "1", intp(1940))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestQuantityClampedOnWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := testCard(1, "Willie Mays")
	c.Quantity = 0
	require.NoError(t, store.CreateCard(ctx, c))

	got, err := store.GetCard(ctx, 1, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateZone(ctx, &model.Zone{ID: uid.New(), AccountID: 1, Name: "Attic"}))
	require.NoError(t, store.CreateCard(ctx, testCard(1, "Mickey Mantle")))
	require.NoError(t, store.CreateCard(ctx, testCard(2, "Hank Aaron")))

	stats, err := store.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["zones"])
	assert.Equal(t, int64(1), stats["cards"])
	assert.Equal(t, int64(0), stats["comics"])
}
