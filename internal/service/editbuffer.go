package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"cardvault-rest-api/internal/model"
	"cardvault-rest-api/pkg/uid"
)

// ErrNoPendingEdit is returned when an edit operation references a row
// with no pending buffer entry.
var ErrNoPendingEdit = errors.New("no pending edit for this item")

// EditBuffer holds uncommitted row edits keyed by (account, item id).
// The canonical fetched list is never mutated; pending snapshots are
// merged into the display layer only, and a save commits them through
// the normal write path. Buffers are isolated per row: editing two rows
// at once cannot corrupt either row's pending state.
type EditBuffer struct {
	mu      sync.Mutex
	entries map[string]*editEntry
	ttl     time.Duration
}

type editEntry struct {
	accountID int64
	item      model.Item
	isNew     bool
	touched   time.Time
}

// NewEditBuffer creates an edit buffer whose entries expire after ttl
// without activity.
func NewEditBuffer(ttl time.Duration) *EditBuffer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &EditBuffer{
		entries: make(map[string]*editEntry),
		ttl:     ttl,
	}
}

func editKey(accountID int64, id string) string {
	return fmt.Sprintf("%d/%s", accountID, id)
}

// Begin opens a pending edit for an existing row, snapshotting its
// current state.
func (b *EditBuffer) Begin(accountID int64, item model.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[editKey(accountID, item.ID)] = &editEntry{
		accountID: accountID,
		item:      item,
		isNew:     false,
		touched:   time.Now(),
	}
}

// BeginClone opens a pending edit copied from src under a fresh id. The
// clone only reaches the store when the edit is committed, at which
// point it runs through the usual duplicate checks.
func (b *EditBuffer) BeginClone(accountID int64, src model.Item) model.Item {
	clone := src
	clone.ID = uid.New()
	clone.CreatedAt = time.Now().UTC()
	clone.UpdatedAt = clone.CreatedAt

	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[editKey(accountID, clone.ID)] = &editEntry{
		accountID: accountID,
		item:      clone,
		isNew:     true,
		touched:   time.Now(),
	}
	return clone
}

// Update replaces the pending snapshot for one row.
func (b *EditBuffer) Update(accountID int64, item model.Item) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[editKey(accountID, item.ID)]
	if !ok {
		return ErrNoPendingEdit
	}
	entry.item = item
	entry.touched = time.Now()
	return nil
}

// Get returns the pending snapshot for one row, if any.
func (b *EditBuffer) Get(accountID int64, id string) (model.Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[editKey(accountID, id)]
	if !ok {
		return model.Item{}, false
	}
	return entry.item, true
}

// Cancel discards the pending edit for one row.
func (b *EditBuffer) Cancel(accountID int64, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, editKey(accountID, id))
}

// Peek returns the pending edit for committing without removing it, so
// a failed commit keeps the user's work. The second return reports
// whether the entry is a clone (create) rather than an edit of an
// existing row.
func (b *EditBuffer) Peek(accountID int64, id string) (model.Item, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.entries[editKey(accountID, id)]
	if !ok {
		return model.Item{}, false, ErrNoPendingEdit
	}
	return entry.item, entry.isNew, nil
}

// Overlay merges pending snapshots into a display copy of items. Rows
// with a pending edit are replaced in place; pending clones are
// prepended (they are the newest rows). The input slice is not mutated.
func (b *EditBuffer) Overlay(accountID int64, items []model.Item) []model.Item {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]bool, len(items))
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		seen[it.ID] = true
		if entry, ok := b.entries[editKey(accountID, it.ID)]; ok {
			out = append(out, entry.item)
		} else {
			out = append(out, it)
		}
	}

	var clones []model.Item
	for _, entry := range b.entries {
		if entry.accountID == accountID && entry.isNew && !seen[entry.item.ID] {
			clones = append(clones, entry.item)
		}
	}
	if len(clones) == 0 {
		return out
	}
	return append(clones, out...)
}

// SweepExpired drops entries untouched for longer than the TTL and
// returns how many were removed.
func (b *EditBuffer) SweepExpired() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := time.Now().Add(-b.ttl)
	removed := 0
	for key, entry := range b.entries {
		if entry.touched.Before(cutoff) {
			delete(b.entries, key)
			removed++
		}
	}
	return removed
}
