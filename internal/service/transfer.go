package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/internal/repository"
	"cardvault-rest-api/pkg/uid"

	"github.com/xuri/excelize/v2"
)

// Sheet names are a bit-exact external contract: round-tripping breaks
// if they change.
const (
	SheetCards  = "Cards"
	SheetComics = "Comics"
)

// Column headers, in export order. Import maps columns by header name,
// not position.
var (
	cardHeader = []string{"id", "container_name", "zone_name", "player", "team", "manufacturer",
		"sport", "year", "number", "number_out_of", "rookie", "grade", "condition",
		"quantity", "cost", "price", "description"}
	comicHeader = []string{"id", "container_name", "zone_name", "title", "publisher", "issue",
		"year", "grade", "condition", "quantity", "cost", "price", "description"}
)

// TransferStore is the persistence surface the reconciliation engine
// needs.
type TransferStore interface {
	ListContainers(ctx context.Context, accountID int64) ([]model.Container, error)
	CreateCard(ctx context.Context, c *model.Card) error
	UpdateCard(ctx context.Context, c *model.Card) error
	CreateComic(ctx context.Context, c *model.Comic) error
	UpdateComic(ctx context.Context, c *model.Comic) error
}

// TransferService imports and exports the two-sheet workbook format.
type TransferService struct {
	store TransferStore
}

// NewTransferService creates a new transfer service.
func NewTransferService(store TransferStore) *TransferService {
	return &TransferService{store: store}
}

// Import reconciles an uploaded workbook against the account's records.
// Rows are processed sequentially in file order so error reporting stays
// deterministic by row number; a failed row never aborts the rest of the
// batch. A workbook with neither sheet is a fatal error for the whole
// operation. Callers must refresh their item list whenever
// result.Processed() > 0, even on a partial outcome.
func (s *TransferService) Import(ctx context.Context, accountID int64, r io.Reader) (*model.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workbook: %w", err)
	}
	defer f.Close()

	cardsIdx, _ := f.GetSheetIndex(SheetCards)
	comicsIdx, _ := f.GetSheetIndex(SheetComics)
	if cardsIdx < 0 && comicsIdx < 0 {
		return nil, fmt.Errorf("workbook has neither a %q nor a %q sheet", SheetCards, SheetComics)
	}

	containers, err := s.store.ListContainers(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	byName := make(map[string]model.Container, len(containers))
	for _, c := range containers {
		byName[strings.ToLower(strings.TrimSpace(c.Name))] = c
	}

	result := &model.ImportResult{}
	if cardsIdx >= 0 {
		if err := s.importCards(ctx, accountID, f, byName, result); err != nil {
			return nil, err
		}
	}
	if comicsIdx >= 0 {
		if err := s.importComics(ctx, accountID, f, byName, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *TransferService) importCards(ctx context.Context, accountID int64, f *excelize.File, byName map[string]model.Container, result *model.ImportResult) error {
	rows, err := f.GetRows(SheetCards)
	if err != nil {
		return fmt.Errorf("failed to read %s sheet: %w", SheetCards, err)
	}
	if len(rows) < 2 {
		return nil
	}
	cols := headerIndex(rows[0])

	for i, row := range rows[1:] {
		// Sheet row 2 is data row 0.
		sheetRow := i + 2
		if blankRow(row) {
			continue
		}
		fail := func(msg string) {
			result.Errors = append(result.Errors, model.RowError{Sheet: SheetCards, Row: sheetRow, Message: msg})
		}

		container, ok := lookupContainer(cell(row, cols, "container_name"), byName)
		if !ok {
			fail(containerError(cell(row, cols, "container_name")))
			continue
		}

		missing := missingFields(row, cols, "player", "manufacturer", "sport", "year", "number")
		if len(missing) > 0 {
			fail("missing required field(s): " + strings.Join(missing, ", "))
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(cell(row, cols, "year")))
		if err != nil {
			fail(fmt.Sprintf("invalid year %q", cell(row, cols, "year")))
			continue
		}
		grade, err := optFloat(cell(row, cols, "grade"))
		if err != nil {
			fail(fmt.Sprintf("invalid grade %q", cell(row, cols, "grade")))
			continue
		}
		cost, err := optFloat(cell(row, cols, "cost"))
		if err != nil {
			fail(fmt.Sprintf("invalid cost %q", cell(row, cols, "cost")))
			continue
		}
		price, err := optFloat(cell(row, cols, "price"))
		if err != nil {
			fail(fmt.Sprintf("invalid price %q", cell(row, cols, "price")))
			continue
		}

		number, numberOutOf := splitCardNumber(cell(row, cols, "number"), cell(row, cols, "number_out_of"))
		card := model.Card{
			AccountID:    accountID,
			ContainerID:  container.ID,
			Player:       cell(row, cols, "player"),
			Team:         optStr(cell(row, cols, "team")),
			Manufacturer: cell(row, cols, "manufacturer"),
			Sport:        cell(row, cols, "sport"),
			Year:         &year,
			Number:       number,
			NumberOutOf:  numberOutOf,
			Rookie:       parseBool(cell(row, cols, "rookie")),
			Grade:        grade,
			Condition:    optStr(cell(row, cols, "condition")),
			Quantity:     parseQuantity(cell(row, cols, "quantity")),
			Cost:         cost,
			Price:        price,
			Description:  cell(row, cols, "description"),
		}

		if id := strings.TrimSpace(cell(row, cols, "id")); id != "" {
			card.ID = id
			switch err := s.store.UpdateCard(ctx, &card); {
			case errors.Is(err, repository.ErrNotFound):
				fail("card not found or belongs to another user")
			case errors.Is(err, repository.ErrDuplicate):
				fail("duplicate card: another card already has this player, team, manufacturer, sport and year")
			case err != nil:
				log.Printf("[TransferService] update card row %d: %v", sheetRow, err)
				fail("failed to update card")
			default:
				result.CardsUpdated++
			}
			continue
		}

		card.ID = uid.New()
		switch err := s.store.CreateCard(ctx, &card); {
		case errors.Is(err, repository.ErrDuplicate):
			fail("duplicate card: another card already has this player, team, manufacturer, sport and year")
		case err != nil:
			log.Printf("[TransferService] create card row %d: %v", sheetRow, err)
			fail("failed to create card")
		default:
			result.CardsCreated++
		}
	}
	return nil
}

func (s *TransferService) importComics(ctx context.Context, accountID int64, f *excelize.File, byName map[string]model.Container, result *model.ImportResult) error {
	rows, err := f.GetRows(SheetComics)
	if err != nil {
		return fmt.Errorf("failed to read %s sheet: %w", SheetComics, err)
	}
	if len(rows) < 2 {
		return nil
	}
	cols := headerIndex(rows[0])

	for i, row := range rows[1:] {
		sheetRow := i + 2
		if blankRow(row) {
			continue
		}
		fail := func(msg string) {
			result.Errors = append(result.Errors, model.RowError{Sheet: SheetComics, Row: sheetRow, Message: msg})
		}

		container, ok := lookupContainer(cell(row, cols, "container_name"), byName)
		if !ok {
			fail(containerError(cell(row, cols, "container_name")))
			continue
		}

		missing := missingFields(row, cols, "title", "publisher", "issue", "year")
		if len(missing) > 0 {
			fail("missing required field(s): " + strings.Join(missing, ", "))
			continue
		}

		year, err := strconv.Atoi(strings.TrimSpace(cell(row, cols, "year")))
		if err != nil {
			fail(fmt.Sprintf("invalid year %q", cell(row, cols, "year")))
			continue
		}
		grade, err := optFloat(cell(row, cols, "grade"))
		if err != nil {
			fail(fmt.Sprintf("invalid grade %q", cell(row, cols, "grade")))
			continue
		}
		cost, err := optFloat(cell(row, cols, "cost"))
		if err != nil {
			fail(fmt.Sprintf("invalid cost %q", cell(row, cols, "cost")))
			continue
		}
		price, err := optFloat(cell(row, cols, "price"))
		if err != nil {
			fail(fmt.Sprintf("invalid price %q", cell(row, cols, "price")))
			continue
		}

		comic := model.Comic{
			AccountID:   accountID,
			ContainerID: container.ID,
			Title:       cell(row, cols, "title"),
			Publisher:   cell(row, cols, "publisher"),
			Issue:       cell(row, cols, "issue"),
			Year:        &year,
			Grade:       grade,
			Condition:   optStr(cell(row, cols, "condition")),
			Quantity:    parseQuantity(cell(row, cols, "quantity")),
			Cost:        cost,
			Price:       price,
			Description: cell(row, cols, "description"),
		}

		if id := strings.TrimSpace(cell(row, cols, "id")); id != "" {
			comic.ID = id
			switch err := s.store.UpdateComic(ctx, &comic); {
			case errors.Is(err, repository.ErrNotFound):
				fail("comic not found or belongs to another user")
			case errors.Is(err, repository.ErrDuplicate):
				fail("duplicate comic: another comic already has this title, publisher, issue and year")
			case err != nil:
				log.Printf("[TransferService] update comic row %d: %v", sheetRow, err)
				fail("failed to update comic")
			default:
				result.ComicsUpdated++
			}
			continue
		}

		comic.ID = uid.New()
		switch err := s.store.CreateComic(ctx, &comic); {
		case errors.Is(err, repository.ErrDuplicate):
			fail("duplicate comic: another comic already has this title, publisher, issue and year")
		case err != nil:
			log.Printf("[TransferService] create comic row %d: %v", sheetRow, err)
			fail("failed to create comic")
		default:
			result.ComicsCreated++
		}
	}
	return nil
}

// BuildWorkbook serializes an already filtered and sorted item view into
// the two-sheet format. Rows keep their record id so a re-imported,
// edited copy performs updates rather than duplicate creates, and
// container/zone ids are replaced by their display names.
func BuildWorkbook(items []model.Item) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetCards)
	if _, err := f.NewSheet(SheetComics); err != nil {
		return nil, err
	}

	if err := writeRow(f, SheetCards, 1, toCells(cardHeader)); err != nil {
		return nil, err
	}
	if err := writeRow(f, SheetComics, 1, toCells(comicHeader)); err != nil {
		return nil, err
	}

	cardRow, comicRow := 2, 2
	for i := range items {
		it := &items[i]
		containerName, zoneName := "", ""
		if it.Container != nil {
			containerName = it.Container.Name
			zoneName = it.Container.ZoneName
		}
		switch it.Kind {
		case model.KindCard:
			cells := []interface{}{
				it.ID, containerName, zoneName, it.Name, deref(it.Team), it.Manufacturer,
				it.Sport, yearCell(it.Year), it.Number, deref(it.NumberOutOf), boolCell(it.Rookie),
				floatCell(it.Grade), deref(it.Condition), it.Quantity, floatCell(it.Cost),
				floatCell(it.Price), it.Description,
			}
			if err := writeRow(f, SheetCards, cardRow, cells); err != nil {
				return nil, err
			}
			cardRow++
		case model.KindComic:
			cells := []interface{}{
				it.ID, containerName, zoneName, it.Name, it.Publisher, it.Issue,
				yearCell(it.Year), floatCell(it.Grade), deref(it.Condition), it.Quantity,
				floatCell(it.Cost), floatCell(it.Price), it.Description,
			}
			if err := writeRow(f, SheetComics, comicRow, cells); err != nil {
				return nil, err
			}
			comicRow++
		}
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, v); err != nil {
			return err
		}
	}
	return nil
}

func toCells(header []string) []interface{} {
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

// --- cell parsing helpers ---

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func lookupContainer(name string, byName map[string]model.Container) (model.Container, bool) {
	c, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if strings.TrimSpace(name) == "" {
		return model.Container{}, false
	}
	return c, ok
}

func containerError(name string) string {
	if strings.TrimSpace(name) == "" {
		return "container_name is required"
	}
	return fmt.Sprintf("container %q not found", strings.TrimSpace(name))
}

func missingFields(row []string, cols map[string]int, fields ...string) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(cell(row, cols, f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// splitCardNumber materializes the "N out of M" form into number plus
// number_out_of when the latter was not supplied on its own.
func splitCardNumber(number, outOf string) (string, *string) {
	number = strings.TrimSpace(number)
	if strings.TrimSpace(outOf) != "" {
		return number, optStr(outOf)
	}
	if n, m, found := strings.Cut(number, " out of "); found {
		return strings.TrimSpace(n), optStr(m)
	}
	return number, nil
}

func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// parseQuantity defaults absent or invalid quantities to 1.
func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}

func yearCell(y *int) interface{} {
	if y == nil {
		return ""
	}
	return *y
}

func floatCell(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}

func boolCell(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
