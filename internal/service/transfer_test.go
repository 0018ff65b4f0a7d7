package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeTransferStore records writes and simulates the repository error
// contract for update misses and duplicate keys.
type fakeTransferStore struct {
	containers []model.Container

	knownCardIDs  map[string]bool
	knownComicIDs map[string]bool
	dupCardKeys   map[string]bool

	createdCards  []model.Card
	updatedCards  []model.Card
	createdComics []model.Comic
	updatedComics []model.Comic
}

func newFakeStore(containers ...model.Container) *fakeTransferStore {
	return &fakeTransferStore{
		containers:    containers,
		knownCardIDs:  map[string]bool{},
		knownComicIDs: map[string]bool{},
		dupCardKeys:   map[string]bool{},
	}
}

func (f *fakeTransferStore) ListContainers(ctx context.Context, accountID int64) ([]model.Container, error) {
	return f.containers, nil
}

func (f *fakeTransferStore) CreateCard(ctx context.Context, c *model.Card) error {
	if f.dupCardKeys[c.Player] {
		return repository.ErrDuplicate
	}
	f.createdCards = append(f.createdCards, *c)
	return nil
}

func (f *fakeTransferStore) UpdateCard(ctx context.Context, c *model.Card) error {
	if !f.knownCardIDs[c.ID] {
		return repository.ErrNotFound
	}
	f.updatedCards = append(f.updatedCards, *c)
	return nil
}

func (f *fakeTransferStore) CreateComic(ctx context.Context, c *model.Comic) error {
	f.createdComics = append(f.createdComics, *c)
	return nil
}

func (f *fakeTransferStore) UpdateComic(ctx context.Context, c *model.Comic) error {
	if !f.knownComicIDs[c.ID] {
		return repository.ErrNotFound
	}
	f.updatedComics = append(f.updatedComics, *c)
	return nil
}

// buildWorkbook assembles an in-memory workbook from header plus rows
// per sheet.
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for sheet, rows := range sheets {
		if first {
			f.SetSheetName("Sheet1", sheet)
			first = false
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, cells := range rows {
			for c, v := range cells {
				name, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(sheet, name, v))
			}
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func cardRows(rows ...[]interface{}) [][]interface{} {
	header := []interface{}{"id", "container_name", "player", "team", "manufacturer", "sport", "year", "number", "rookie", "grade", "quantity", "cost", "price"}
	return append([][]interface{}{header}, rows...)
}

func comicRows(rows ...[]interface{}) [][]interface{} {
	header := []interface{}{"id", "container_name", "title", "publisher", "issue", "year", "quantity"}
	return append([][]interface{}{header}, rows...)
}

func box() model.Container {
	return model.Container{ID: "box-1", Name: "Box A"}
}

func TestImportCreatesRows(t *testing.T) {
	store := newFakeStore(box())
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		SheetCards: cardRows(
			[]interface{}{"", "Box A", "Mickey Mantle", "Yankees", "Topps", "Baseball", 1952, "311", "yes", 8.5, 2, 10, 100},
		),
		SheetComics: comicRows(
			[]interface{}{"", "Box A", "Batman", "DC", "1", 1940, 1},
		),
	})

	result, err := svc.Import(context.Background(), 7, r)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CardsCreated)
	assert.Equal(t, 1, result.ComicsCreated)
	assert.Empty(t, result.Errors)
	assert.Equal(t, model.ImportSuccess, result.Outcome())

	require.Len(t, store.createdCards, 1)
	card := store.createdCards[0]
	assert.Equal(t, int64(7), card.AccountID)
	assert.Equal(t, "box-1", card.ContainerID)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "Mickey Mantle", card.Player)
	require.NotNil(t, card.Year)
	assert.Equal(t, 1952, *card.Year)
	assert.True(t, card.Rookie)
	assert.Equal(t, 2, card.Quantity)
}

func TestImportContainerLookupIsCaseInsensitive(t *testing.T) {
	store := newFakeStore(box())
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		SheetCards: cardRows(
			[]interface{}{"", "  bOx a ", "Hank Aaron", "", "Topps", "Baseball", 1954, "128"},
		),
	})

	result, err := svc.Import(context.Background(), 7, r)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CardsCreated)
	assert.Empty(t, result.Errors)
}

func TestImportUnknownContainerFailsRowOnly(t *testing.T) {
	store := newFakeStore(box())
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		SheetCards: cardRows(
			[]interface{}{"", "Nope", "Hank Aaron", "", "Topps", "Baseball", 1954, "128"},
			[]interface{}{"", "Box A", "Willie Mays", "", "Bowman", "Baseball", 1951, "305"},
		),
	})

	result, err := svc.Import(context.Background(), 7, r)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CardsCreated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, SheetCards, result.Errors[0].Sheet)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, `"Nope"`)
	assert.Equal(t, model.ImportPartial, result.Outcome())
}

func TestImportMissingFields(t *testing.T) {
	store := newFakeStore(box())
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		SheetCards: cardRows(
			[]interface{}{"", "Box A", "", "", "", "Baseball", 1954, ""},
		),
	})

	result, err := svc.Import(context.Background(), 7, r)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "player")
	assert.Contains(t, result.Errors[0].Message, "manufacturer")
	assert.Contains(t, result.Errors[0].Message, "number")
	assert.Equal(t, model.ImportFailed, result.Outcome())
}

func TestImportUpdatesByID(t *testing.T) {
	store := newFakeStore(box())
	store.knownCardIDs["card-9"] = true
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		SheetCards: cardRows(
			[]interface{}{"card-9", "Box A", "Mickey Mantle", "", "Topps", "Baseball", 1956, "135"},
			[]interface{}{"ghost", "Box A", "Hank Aaron", "", "Topps", "Baseball", 1954, "128"},
		),
	})

	result, err := svc.Import(context.Background(), 7, r)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CardsUpdated)
	assert.Zero(t, result.CardsCreated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "not found")
}

func TestImportDuplicateKey(t *testing.T) {
	store := newFakeStore(box())
	store.dupCardKeys["Mickey Mantle"] = true
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		SheetCards: cardRows(
			[]interface{}{"", "Box A", "Mickey Mantle", "", "Topps", "Baseball", 1952, "311"},
		),
	})

	result, err := svc.Import(context.Background(), 7, r)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "duplicate")
	assert.Equal(t, model.ImportFailed, result.Outcome())
}

func TestImportNeitherSheetIsFatal(t *testing.T) {
	store := newFakeStore(box())
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		"Whatever": {{"id"}},
	})

	_, err := svc.Import(context.Background(), 7, r)
	assert.Error(t, err)
}

func TestImportSkipsBlankRows(t *testing.T) {
	store := newFakeStore(box())
	svc := NewTransferService(store)

	r := buildWorkbook(t, map[string][][]interface{}{
		SheetCards: cardRows(
			[]interface{}{"", "", "", "", "", "", "", ""},
			[]interface{}{"", "Box A", "Willie Mays", "", "Bowman", "Baseball", 1951, "305"},
		),
	})

	result, err := svc.Import(context.Background(), 7, r)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CardsCreated)
	assert.Empty(t, result.Errors)
}

func TestSplitCardNumber(t *testing.T) {
	n, out := splitCardNumber("7 out of 99", "")
	assert.Equal(t, "7", n)
	require.NotNil(t, out)
	assert.Equal(t, "99", *out)

	n, out = splitCardNumber("311", "")
	assert.Equal(t, "311", n)
	assert.Nil(t, out)

	// An explicit number_out_of wins over splitting.
	n, out = splitCardNumber("7 out of 99", "100")
	assert.Equal(t, "7 out of 99", n)
	require.NotNil(t, out)
	assert.Equal(t, "100", *out)
}

func TestBuildWorkbookRoundTrip(t *testing.T) {
	items := []model.Item{
		{
			Kind: model.KindCard, ID: "card-1", Name: "Mickey Mantle", Year: intp(1952),
			Quantity: 1, Manufacturer: "Topps", Sport: "Baseball", Number: "311",
			Rookie:    true,
			Container: &model.ContainerRef{ID: "box-1", Name: "Box A", ZoneName: "Attic"},
		},
		{
			Kind: model.KindComic, ID: "comic-1", Name: "Batman", Year: intp(1940),
			Quantity: 1, Publisher: "DC", Issue: "1",
			Container: &model.ContainerRef{ID: "box-1", Name: "Box A", ZoneName: "Attic"},
		},
	}

	f, err := BuildWorkbook(items)
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	store := newFakeStore(box())
	store.knownCardIDs["card-1"] = true
	store.knownComicIDs["comic-1"] = true
	svc := NewTransferService(store)

	// Exported rows keep their ids, so a straight re-import updates.
	result, err := svc.Import(context.Background(), 7, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.CardsUpdated)
	assert.Equal(t, 1, result.ComicsUpdated)

	require.Len(t, store.updatedCards, 1)
	assert.Equal(t, "Mickey Mantle", store.updatedCards[0].Player)
	assert.True(t, store.updatedCards[0].Rookie)
}
