package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cardvault-rest-api/internal/cache"
	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/internal/repository"
	"cardvault-rest-api/pkg/apierror"
	"cardvault-rest-api/pkg/uid"
)

// groupsTTL bounds how stale a cached dashboard snapshot can get if an
// invalidation is ever missed.
const groupsTTL = 5 * time.Minute

// CollectionService orchestrates all zone/container/card/comic access
// for the API. Every operation is scoped to the calling account.
type CollectionService struct {
	store  repository.CollectionStore
	cache  cache.Cache
	buffer *EditBuffer
}

// NewCollectionService creates a new collection service.
// Returns nil if store is nil (required dependency).
func NewCollectionService(store repository.CollectionStore, c cache.Cache, buffer *EditBuffer) *CollectionService {
	if store == nil {
		return nil
	}
	return &CollectionService{store: store, cache: c, buffer: buffer}
}

// Snapshot fetches the account's cards, comics, containers and zones
// and merges them into the normalized item sequence, newest first.
// Fetch errors propagate as-is.
func (s *CollectionService) Snapshot(ctx context.Context, accountID int64) ([]model.Item, error) {
	cards, err := s.store.ListCards(ctx, accountID)
	if err != nil {
		return nil, err
	}
	comics, err := s.store.ListComics(ctx, accountID)
	if err != nil {
		return nil, err
	}
	containers, err := s.store.ListContainers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	zones, err := s.store.ListZones(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return Normalize(cards, comics, containers, zones), nil
}

// ListItems runs the view pipeline over a fresh snapshot with pending
// edits overlaid for display.
func (s *CollectionService) ListItems(ctx context.Context, accountID int64, v ViewState) (ViewResult, error) {
	items, err := s.Snapshot(ctx, accountID)
	if err != nil {
		return ViewResult{}, err
	}
	if s.buffer != nil {
		items = s.buffer.Overlay(accountID, items)
	}
	return ApplyView(items, v), nil
}

// FilteredItems returns the full filtered and sorted set without the
// page window; the export path serializes this.
func (s *CollectionService) FilteredItems(ctx context.Context, accountID int64, v ViewState) ([]model.Item, error) {
	items, err := s.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return ApplyFilterSort(items, v.Tab, v.Filters, v.Sort), nil
}

// Groups returns the by-name dashboard aggregation, cached per account
// until the next write.
func (s *CollectionService) Groups(ctx context.Context, accountID int64) ([]model.GroupedItem, error) {
	if s.cache == nil {
		items, err := s.Snapshot(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return GroupByName(items), nil
	}

	data, err := s.cache.GetOrSet(ctx, cache.GroupsKey(accountID), groupsTTL, func() ([]byte, error) {
		items, err := s.Snapshot(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(GroupByName(items))
	})
	if err != nil {
		return nil, err
	}

	var groups []model.GroupedItem
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode cached groups: %w", err)
	}
	return groups, nil
}

// GroupYears returns the by-year drill-down for one display name.
func (s *CollectionService) GroupYears(ctx context.Context, accountID int64, name string, byNumber bool) (model.YearBreakdown, error) {
	items, err := s.Snapshot(ctx, accountID)
	if err != nil {
		return model.YearBreakdown{}, err
	}
	return BreakdownByYear(items, name, byNumber), nil
}

// invalidateGroups drops the cached dashboard snapshot after a write.
func (s *CollectionService) invalidateGroups(ctx context.Context, accountID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.GroupsKey(accountID)); err != nil {
		log.Printf("[CollectionService] failed to invalidate groups cache: %v", err)
	}
}

// --- view state ---

// LoadViewState returns the account's persisted view state, or the
// default view when none is stored.
func (s *CollectionService) LoadViewState(ctx context.Context, accountID int64) ViewState {
	if s.cache == nil {
		return DefaultViewState()
	}
	data, err := s.cache.Get(ctx, cache.ViewStateKey(accountID))
	if err != nil {
		return DefaultViewState()
	}
	var v ViewState
	if err := json.Unmarshal(data, &v); err != nil {
		return DefaultViewState()
	}
	if v.Page < 1 {
		v.Page = 1
	}
	if !model.ValidPageSize(v.PageSize) {
		v.PageSize = model.DefaultPreferences().PageSize
	}
	return v
}

// SaveViewState persists the account's view state.
func (s *CollectionService) SaveViewState(ctx context.Context, accountID int64, v ViewState) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cache.ViewStateKey(accountID), data, 0)
}

// --- zones ---

// CreateZone creates a zone.
func (s *CollectionService) CreateZone(ctx context.Context, accountID int64, name string) (*model.Zone, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierror.ValidationError("zone name is required",
			apierror.FieldError{Field: "name", Message: "required"})
	}
	z := &model.Zone{ID: uid.New(), AccountID: accountID, Name: name}
	if err := s.store.CreateZone(ctx, z); err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return z, nil
}

// GetZone fetches one zone.
func (s *CollectionService) GetZone(ctx context.Context, accountID int64, id string) (*model.Zone, error) {
	z, err := s.store.GetZone(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("zone not found")
	}
	return z, err
}

// ListZones lists the account's zones.
func (s *CollectionService) ListZones(ctx context.Context, accountID int64) ([]model.Zone, error) {
	return s.store.ListZones(ctx, accountID)
}

// UpdateZone renames a zone.
func (s *CollectionService) UpdateZone(ctx context.Context, accountID int64, id, name string) (*model.Zone, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierror.ValidationError("zone name is required",
			apierror.FieldError{Field: "name", Message: "required"})
	}
	z := &model.Zone{ID: id, AccountID: accountID, Name: name}
	err := s.store.UpdateZone(ctx, z)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("zone not found")
	}
	if err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return z, nil
}

// DeleteZone deletes a zone. Containers keep their dangling reference
// and degrade to "Unknown Zone" in listings.
func (s *CollectionService) DeleteZone(ctx context.Context, accountID int64, id string) error {
	err := s.store.DeleteZone(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("zone not found")
	}
	if err != nil {
		return err
	}
	s.invalidateGroups(ctx, accountID)
	return nil
}

// --- containers ---

// CreateContainer creates a container, verifying the optional zone
// reference resolves to one of the caller's zones.
func (s *CollectionService) CreateContainer(ctx context.Context, accountID int64, name string, zoneID *string) (*model.Container, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierror.ValidationError("container name is required",
			apierror.FieldError{Field: "name", Message: "required"})
	}
	if zoneID != nil {
		if _, err := s.store.GetZone(ctx, accountID, *zoneID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apierror.NotFound("zone not found")
			}
			return nil, err
		}
	}
	c := &model.Container{ID: uid.New(), AccountID: accountID, Name: name, ZoneID: zoneID}
	if err := s.store.CreateContainer(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return c, nil
}

// GetContainer fetches one container.
func (s *CollectionService) GetContainer(ctx context.Context, accountID int64, id string) (*model.Container, error) {
	c, err := s.store.GetContainer(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("container not found")
	}
	return c, err
}

// ListContainers lists the account's containers, optionally narrowed to
// one zone.
func (s *CollectionService) ListContainers(ctx context.Context, accountID int64, zoneID string) ([]model.Container, error) {
	if zoneID != "" {
		return s.store.ListContainersByZone(ctx, accountID, zoneID)
	}
	return s.store.ListContainers(ctx, accountID)
}

// UpdateContainer updates a container's name and zone reference.
func (s *CollectionService) UpdateContainer(ctx context.Context, accountID int64, id, name string, zoneID *string) (*model.Container, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apierror.ValidationError("container name is required",
			apierror.FieldError{Field: "name", Message: "required"})
	}
	if zoneID != nil {
		if _, err := s.store.GetZone(ctx, accountID, *zoneID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apierror.NotFound("zone not found")
			}
			return nil, err
		}
	}
	c := &model.Container{ID: id, AccountID: accountID, Name: name, ZoneID: zoneID}
	err := s.store.UpdateContainer(ctx, c)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("container not found")
	}
	if err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return c, nil
}

// DeleteContainer deletes a container.
func (s *CollectionService) DeleteContainer(ctx context.Context, accountID int64, id string) error {
	err := s.store.DeleteContainer(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("container not found")
	}
	if err != nil {
		return err
	}
	s.invalidateGroups(ctx, accountID)
	return nil
}

// --- cards ---

// CreateCard validates and creates a card. The single-record path
// pre-checks the natural key explicitly so the caller sees a duplicate
// error before any write is attempted.
func (s *CollectionService) CreateCard(ctx context.Context, accountID int64, c *model.Card) (*model.Card, error) {
	if err := validateCard(c); err != nil {
		return nil, err
	}
	if _, err := s.GetContainer(ctx, accountID, c.ContainerID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindCardByKey(ctx, accountID, c.Player, c.Team, c.Manufacturer, c.Sport, c.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.Duplicate("a card with this player, team, manufacturer, sport and year already exists")
	}

	c.AccountID = accountID
	if c.ID == "" {
		c.ID = uid.New()
	}
	err = s.store.CreateCard(ctx, c)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the race against a concurrent insert; same outcome.
		return nil, apierror.Duplicate("a card with this player, team, manufacturer, sport and year already exists")
	}
	if err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return c, nil
}

// GetCard fetches one card.
func (s *CollectionService) GetCard(ctx context.Context, accountID int64, id string) (*model.Card, error) {
	c, err := s.store.GetCard(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("card not found")
	}
	return c, err
}

// UpdateCard validates and updates a card. Updates are last-write-wins
// across sessions.
func (s *CollectionService) UpdateCard(ctx context.Context, accountID int64, c *model.Card) (*model.Card, error) {
	if err := validateCard(c); err != nil {
		return nil, err
	}
	c.AccountID = accountID
	err := s.store.UpdateCard(ctx, c)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("card not found or belongs to another user")
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.Duplicate("a card with this player, team, manufacturer, sport and year already exists")
	}
	if err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return c, nil
}

// DeleteCard deletes a card.
func (s *CollectionService) DeleteCard(ctx context.Context, accountID int64, id string) error {
	err := s.store.DeleteCard(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("card not found")
	}
	if err != nil {
		return err
	}
	s.invalidateGroups(ctx, accountID)
	return nil
}

func validateCard(c *model.Card) error {
	var details []apierror.FieldError
	if strings.TrimSpace(c.Player) == "" {
		details = append(details, apierror.FieldError{Field: "player", Message: "required"})
	}
	if strings.TrimSpace(c.Manufacturer) == "" {
		details = append(details, apierror.FieldError{Field: "manufacturer", Message: "required"})
	}
	if strings.TrimSpace(c.Sport) == "" {
		details = append(details, apierror.FieldError{Field: "sport", Message: "required"})
	}
	if strings.TrimSpace(c.ContainerID) == "" {
		details = append(details, apierror.FieldError{Field: "container_id", Message: "required"})
	}
	if len(details) > 0 {
		return apierror.ValidationError("missing required card fields", details...)
	}
	return nil
}

// --- comics ---

// CreateComic validates and creates a comic with an explicit duplicate
// pre-check, mirroring CreateCard.
func (s *CollectionService) CreateComic(ctx context.Context, accountID int64, c *model.Comic) (*model.Comic, error) {
	if err := validateComic(c); err != nil {
		return nil, err
	}
	if _, err := s.GetContainer(ctx, accountID, c.ContainerID); err != nil {
		return nil, err
	}

	existing, err := s.store.FindComicByKey(ctx, accountID, c.Title, c.Publisher, c.Issue, c.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.Duplicate("a comic with this title, publisher, issue and year already exists")
	}

	c.AccountID = accountID
	if c.ID == "" {
		c.ID = uid.New()
	}
	err = s.store.CreateComic(ctx, c)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.Duplicate("a comic with this title, publisher, issue and year already exists")
	}
	if err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return c, nil
}

// GetComic fetches one comic.
func (s *CollectionService) GetComic(ctx context.Context, accountID int64, id string) (*model.Comic, error) {
	c, err := s.store.GetComic(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("comic not found")
	}
	return c, err
}

// UpdateComic validates and updates a comic.
func (s *CollectionService) UpdateComic(ctx context.Context, accountID int64, c *model.Comic) (*model.Comic, error) {
	if err := validateComic(c); err != nil {
		return nil, err
	}
	c.AccountID = accountID
	err := s.store.UpdateComic(ctx, c)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound("comic not found or belongs to another user")
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apierror.Duplicate("a comic with this title, publisher, issue and year already exists")
	}
	if err != nil {
		return nil, err
	}
	s.invalidateGroups(ctx, accountID)
	return c, nil
}

// DeleteComic deletes a comic.
func (s *CollectionService) DeleteComic(ctx context.Context, accountID int64, id string) error {
	err := s.store.DeleteComic(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("comic not found")
	}
	if err != nil {
		return err
	}
	s.invalidateGroups(ctx, accountID)
	return nil
}

func validateComic(c *model.Comic) error {
	var details []apierror.FieldError
	if strings.TrimSpace(c.Title) == "" {
		details = append(details, apierror.FieldError{Field: "title", Message: "required"})
	}
	if strings.TrimSpace(c.Publisher) == "" {
		details = append(details, apierror.FieldError{Field: "publisher", Message: "required"})
	}
	if strings.TrimSpace(c.Issue) == "" {
		details = append(details, apierror.FieldError{Field: "issue", Message: "required"})
	}
	if strings.TrimSpace(c.ContainerID) == "" {
		details = append(details, apierror.FieldError{Field: "container_id", Message: "required"})
	}
	if len(details) > 0 {
		return apierror.ValidationError("missing required comic fields", details...)
	}
	return nil
}

// --- row editing ---

// BeginEdit snapshots an existing item into the edit buffer.
func (s *CollectionService) BeginEdit(ctx context.Context, accountID int64, id string) (model.Item, error) {
	item, err := s.findItem(ctx, accountID, id)
	if err != nil {
		return model.Item{}, err
	}
	s.buffer.Begin(accountID, item)
	return item, nil
}

// CloneItem opens a pending copy of an existing item under a fresh id.
// Nothing is written until the pending edit is committed.
func (s *CollectionService) CloneItem(ctx context.Context, accountID int64, id string) (model.Item, error) {
	item, err := s.findItem(ctx, accountID, id)
	if err != nil {
		return model.Item{}, err
	}
	return s.buffer.BeginClone(accountID, item), nil
}

// UpdateEdit replaces the pending snapshot for a row.
func (s *CollectionService) UpdateEdit(accountID int64, item model.Item) error {
	err := s.buffer.Update(accountID, item)
	if errors.Is(err, ErrNoPendingEdit) {
		return apierror.NotFound("no pending edit for this item")
	}
	return err
}

// CancelEdit discards the pending snapshot for a row.
func (s *CollectionService) CancelEdit(accountID int64, id string) {
	s.buffer.Cancel(accountID, id)
}

// CommitEdit writes the pending snapshot through the normal create or
// update path. The buffer entry is only dropped once the write
// succeeds, so a failed commit keeps the user's pending work.
func (s *CollectionService) CommitEdit(ctx context.Context, accountID int64, id string) error {
	item, isNew, err := s.buffer.Peek(accountID, id)
	if errors.Is(err, ErrNoPendingEdit) {
		return apierror.NotFound("no pending edit for this item")
	}
	if err != nil {
		return err
	}

	switch item.Kind {
	case model.KindCard:
		card := itemToCard(&item)
		if isNew {
			_, err = s.CreateCard(ctx, accountID, card)
		} else {
			_, err = s.UpdateCard(ctx, accountID, card)
		}
	case model.KindComic:
		comic := itemToComic(&item)
		if isNew {
			_, err = s.CreateComic(ctx, accountID, comic)
		} else {
			_, err = s.UpdateComic(ctx, accountID, comic)
		}
	default:
		return apierror.BadRequest(fmt.Sprintf("unknown item kind %q", item.Kind))
	}
	if err != nil {
		return err
	}
	s.buffer.Cancel(accountID, id)
	return nil
}

// findItem fetches one record of either kind and normalizes it. The id
// is unique across both collections (uuids), so the card lookup misses
// cleanly for comics.
func (s *CollectionService) findItem(ctx context.Context, accountID int64, id string) (model.Item, error) {
	card, err := s.store.GetCard(ctx, accountID, id)
	if err == nil {
		return s.resolveOne(ctx, accountID, func(containers []model.Container, zones []model.Zone) []model.Item {
			return Normalize([]model.Card{*card}, nil, containers, zones)
		})
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.Item{}, err
	}

	comic, err := s.store.GetComic(ctx, accountID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Item{}, apierror.NotFound("item not found")
	}
	if err != nil {
		return model.Item{}, err
	}
	return s.resolveOne(ctx, accountID, func(containers []model.Container, zones []model.Zone) []model.Item {
		return Normalize(nil, []model.Comic{*comic}, containers, zones)
	})
}

func (s *CollectionService) resolveOne(ctx context.Context, accountID int64, build func([]model.Container, []model.Zone) []model.Item) (model.Item, error) {
	containers, err := s.store.ListContainers(ctx, accountID)
	if err != nil {
		return model.Item{}, err
	}
	zones, err := s.store.ListZones(ctx, accountID)
	if err != nil {
		return model.Item{}, err
	}
	items := build(containers, zones)
	if len(items) == 0 {
		return model.Item{}, apierror.NotFound("item not found")
	}
	return items[0], nil
}

// Stats returns the account's record counts for the admin endpoint.
func (s *CollectionService) Stats(ctx context.Context, accountID int64) (map[string]interface{}, error) {
	return s.store.Stats(ctx, accountID)
}

// itemToCard converts a normalized item back into a card record.
func itemToCard(it *model.Item) *model.Card {
	containerID := ""
	if it.Container != nil {
		containerID = it.Container.ID
	}
	return &model.Card{
		ID:           it.ID,
		ContainerID:  containerID,
		Player:       it.Name,
		Team:         it.Team,
		Manufacturer: it.Manufacturer,
		Sport:        it.Sport,
		Year:         it.Year,
		Number:       it.Number,
		NumberOutOf:  it.NumberOutOf,
		Rookie:       it.Rookie,
		Grade:        it.Grade,
		Condition:    it.Condition,
		Quantity:     it.Quantity,
		Cost:         it.Cost,
		Price:        it.Price,
		Description:  it.Description,
	}
}

// itemToComic converts a normalized item back into a comic record.
func itemToComic(it *model.Item) *model.Comic {
	containerID := ""
	if it.Container != nil {
		containerID = it.Container.ID
	}
	return &model.Comic{
		ID:          it.ID,
		ContainerID: containerID,
		Title:       it.Name,
		Publisher:   it.Publisher,
		Issue:       it.Issue,
		Year:        it.Year,
		Grade:       it.Grade,
		Condition:   it.Condition,
		Quantity:    it.Quantity,
		Cost:        it.Cost,
		Price:       it.Price,
		Description: it.Description,
	}
}
