package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cardvault-rest-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteStore implements CollectionStore using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite collection store.
// dbPath is the path to the SQLite database file (e.g., "./data/collection.db")
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS zones (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_zones_account ON zones(account_id);

	CREATE TABLE IF NOT EXISTS containers (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		zone_id TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_containers_account ON containers(account_id);
	CREATE INDEX IF NOT EXISTS idx_containers_zone ON containers(zone_id);

	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL,
		container_id TEXT NOT NULL,
		player TEXT NOT NULL,
		team TEXT,
		manufacturer TEXT NOT NULL,
		sport TEXT NOT NULL,
		year INTEGER,
		number TEXT NOT NULL DEFAULT '',
		number_out_of TEXT,
		rookie INTEGER NOT NULL DEFAULT 0,
		grade REAL,
		condition TEXT,
		quantity INTEGER NOT NULL DEFAULT 1,
		cost REAL,
		price REAL,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cards_account ON cards(account_id);
	CREATE INDEX IF NOT EXISTS idx_cards_container ON cards(container_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_cards_natural_key
		ON cards(account_id, player, COALESCE(team, ''), manufacturer, sport, COALESCE(year, -1));

	CREATE TABLE IF NOT EXISTS comics (
		id TEXT PRIMARY KEY,
		account_id INTEGER NOT NULL,
		container_id TEXT NOT NULL,
		title TEXT NOT NULL,
		publisher TEXT NOT NULL,
		issue TEXT NOT NULL,
		year INTEGER,
		grade REAL,
		condition TEXT,
		quantity INTEGER NOT NULL DEFAULT 1,
		cost REAL,
		price REAL,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_comics_account ON comics(account_id);
	CREATE INDEX IF NOT EXISTS idx_comics_container ON comics(container_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_comics_natural_key
		ON comics(account_id, title, publisher, issue, COALESCE(year, -1));
	`
	_, err := db.Exec(query)
	return err
}

// isSQLiteDuplicate reports whether err is a unique-constraint violation.
func isSQLiteDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- zones ---

// CreateZone inserts a new zone.
func (s *SQLiteStore) CreateZone(ctx context.Context, z *model.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	z.CreatedAt = now
	z.UpdatedAt = now

	query := `INSERT INTO zones (id, account_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, z.ID, z.AccountID, z.Name, z.CreatedAt, z.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create zone: %w", err)
	}
	return nil
}

// GetZone retrieves a zone by id, scoped to the account.
func (s *SQLiteStore) GetZone(ctx context.Context, accountID int64, id string) (*model.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, account_id, name, created_at, updated_at FROM zones WHERE id = ? AND account_id = ?`

	var z model.Zone
	err := s.db.QueryRowContext(ctx, query, id, accountID).Scan(&z.ID, &z.AccountID, &z.Name, &z.CreatedAt, &z.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return &z, nil
}

// ListZones returns all zones for the account, newest first.
func (s *SQLiteStore) ListZones(ctx context.Context, accountID int64) ([]model.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, account_id, name, created_at, updated_at FROM zones WHERE account_id = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		var z model.Zone
		if err := rows.Scan(&z.ID, &z.AccountID, &z.Name, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// UpdateZone updates a zone scoped to (id, account). Zero rows affected
// reports ErrNotFound; this must never silently succeed.
func (s *SQLiteStore) UpdateZone(ctx context.Context, z *model.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	z.UpdatedAt = time.Now().UTC()

	query := `UPDATE zones SET name = ?, updated_at = ? WHERE id = ? AND account_id = ?`
	result, err := s.db.ExecContext(ctx, query, z.Name, z.UpdatedAt, z.ID, z.AccountID)
	if err != nil {
		return fmt.Errorf("failed to update zone: %w", err)
	}
	return checkAffected(result)
}

// DeleteZone deletes a zone. Containers referencing it keep their zone_id
// and degrade to "Unknown Zone" in listings.
func (s *SQLiteStore) DeleteZone(ctx context.Context, accountID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM zones WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	return checkAffected(result)
}

// --- containers ---

// CreateContainer inserts a new container.
func (s *SQLiteStore) CreateContainer(ctx context.Context, c *model.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `INSERT INTO containers (id, account_id, name, zone_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, c.ID, c.AccountID, c.Name, c.ZoneID, c.CreatedAt, c.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	return nil
}

// GetContainer retrieves a container by id, scoped to the account.
func (s *SQLiteStore) GetContainer(ctx context.Context, accountID int64, id string) (*model.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, account_id, name, zone_id, created_at, updated_at FROM containers WHERE id = ? AND account_id = ?`

	c, err := scanContainer(s.db.QueryRowContext(ctx, query, id, accountID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get container: %w", err)
	}
	return c, nil
}

// ListContainers returns all containers for the account, newest first.
func (s *SQLiteStore) ListContainers(ctx context.Context, accountID int64) ([]model.Container, error) {
	query := `SELECT id, account_id, name, zone_id, created_at, updated_at FROM containers WHERE account_id = ? ORDER BY created_at DESC`
	return s.queryContainers(ctx, query, accountID)
}

// ListContainersByZone returns the account's containers in one zone.
func (s *SQLiteStore) ListContainersByZone(ctx context.Context, accountID int64, zoneID string) ([]model.Container, error) {
	query := `SELECT id, account_id, name, zone_id, created_at, updated_at FROM containers WHERE account_id = ? AND zone_id = ? ORDER BY created_at DESC`
	return s.queryContainers(ctx, query, accountID, zoneID)
}

func (s *SQLiteStore) queryContainers(ctx context.Context, query string, args ...interface{}) ([]model.Container, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}
	defer rows.Close()

	var containers []model.Container
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan container: %w", err)
		}
		containers = append(containers, *c)
	}
	return containers, rows.Err()
}

// UpdateContainer updates a container scoped to (id, account).
func (s *SQLiteStore) UpdateContainer(ctx context.Context, c *model.Container) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = time.Now().UTC()

	query := `UPDATE containers SET name = ?, zone_id = ?, updated_at = ? WHERE id = ? AND account_id = ?`
	result, err := s.db.ExecContext(ctx, query, c.Name, c.ZoneID, c.UpdatedAt, c.ID, c.AccountID)
	if err != nil {
		return fmt.Errorf("failed to update container: %w", err)
	}
	return checkAffected(result)
}

// DeleteContainer deletes a container scoped to (id, account).
func (s *SQLiteStore) DeleteContainer(ctx context.Context, accountID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM containers WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}
	return checkAffected(result)
}

// --- cards ---

const cardColumns = `id, account_id, container_id, player, team, manufacturer, sport, year,
	number, number_out_of, rookie, grade, condition, quantity, cost, price, description,
	created_at, updated_at`

// CreateCard inserts a new card. A natural-key collision reports
// ErrDuplicate.
func (s *SQLiteStore) CreateCard(ctx context.Context, c *model.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Quantity < 1 {
		c.Quantity = 1
	}

	query := `INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.AccountID, c.ContainerID, c.Player, c.Team, c.Manufacturer, c.Sport, c.Year,
		c.Number, c.NumberOutOf, c.Rookie, c.Grade, c.Condition, c.Quantity, c.Cost, c.Price, c.Description,
		c.CreatedAt, c.UpdatedAt)
	if isSQLiteDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetCard retrieves a card by id, scoped to the account.
func (s *SQLiteStore) GetCard(ctx context.Context, accountID int64, id string) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ? AND account_id = ?`
	c, err := scanCard(s.db.QueryRowContext(ctx, query, id, accountID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return c, nil
}

// ListCards returns all cards for the account, newest first.
func (s *SQLiteStore) ListCards(ctx context.Context, accountID int64) ([]model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + cardColumns + ` FROM cards WHERE account_id = ? ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

// FindCardByKey looks up a card by its natural key. Returns (nil, nil)
// when no card matches.
func (s *SQLiteStore) FindCardByKey(ctx context.Context, accountID int64, player string, team *string, manufacturer, sport string, year *int) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teamKey := ""
	if team != nil {
		teamKey = *team
	}
	yearKey := model.UnknownYear
	if year != nil {
		yearKey = *year
	}

	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE account_id = ? AND player = ? AND COALESCE(team, '') = ?
		AND manufacturer = ? AND sport = ? AND COALESCE(year, -1) = ?`
	c, err := scanCard(s.db.QueryRowContext(ctx, query, accountID, player, teamKey, manufacturer, sport, yearKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card by key: %w", err)
	}
	return c, nil
}

// UpdateCard updates a card scoped to (id, account). Zero rows affected
// reports ErrNotFound. Concurrent updates are last-write-wins.
func (s *SQLiteStore) UpdateCard(ctx context.Context, c *model.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = time.Now().UTC()
	if c.Quantity < 1 {
		c.Quantity = 1
	}

	query := `UPDATE cards SET container_id = ?, player = ?, team = ?, manufacturer = ?, sport = ?,
		year = ?, number = ?, number_out_of = ?, rookie = ?, grade = ?, condition = ?,
		quantity = ?, cost = ?, price = ?, description = ?, updated_at = ?
		WHERE id = ? AND account_id = ?`
	result, err := s.db.ExecContext(ctx, query,
		c.ContainerID, c.Player, c.Team, c.Manufacturer, c.Sport,
		c.Year, c.Number, c.NumberOutOf, c.Rookie, c.Grade, c.Condition,
		c.Quantity, c.Cost, c.Price, c.Description, c.UpdatedAt,
		c.ID, c.AccountID)
	if isSQLiteDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return checkAffected(result)
}

// DeleteCard deletes a card scoped to (id, account).
func (s *SQLiteStore) DeleteCard(ctx context.Context, accountID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return checkAffected(result)
}

// --- comics ---

const comicColumns = `id, account_id, container_id, title, publisher, issue, year,
	grade, condition, quantity, cost, price, description, created_at, updated_at`

// CreateComic inserts a new comic. A natural-key collision reports
// ErrDuplicate.
func (s *SQLiteStore) CreateComic(ctx context.Context, c *model.Comic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Quantity < 1 {
		c.Quantity = 1
	}

	query := `INSERT INTO comics (` + comicColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.AccountID, c.ContainerID, c.Title, c.Publisher, c.Issue, c.Year,
		c.Grade, c.Condition, c.Quantity, c.Cost, c.Price, c.Description,
		c.CreatedAt, c.UpdatedAt)
	if isSQLiteDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create comic: %w", err)
	}
	return nil
}

// GetComic retrieves a comic by id, scoped to the account.
func (s *SQLiteStore) GetComic(ctx context.Context, accountID int64, id string) (*model.Comic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + comicColumns + ` FROM comics WHERE id = ? AND account_id = ?`
	c, err := scanComic(s.db.QueryRowContext(ctx, query, id, accountID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comic: %w", err)
	}
	return c, nil
}

// ListComics returns all comics for the account, newest first.
func (s *SQLiteStore) ListComics(ctx context.Context, accountID int64) ([]model.Comic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + comicColumns + ` FROM comics WHERE account_id = ? ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comics: %w", err)
	}
	defer rows.Close()

	var comics []model.Comic
	for rows.Next() {
		c, err := scanComic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comic: %w", err)
		}
		comics = append(comics, *c)
	}
	return comics, rows.Err()
}

// FindComicByKey looks up a comic by its natural key. Returns (nil, nil)
// when no comic matches.
func (s *SQLiteStore) FindComicByKey(ctx context.Context, accountID int64, title, publisher, issue string, year *int) (*model.Comic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	yearKey := model.UnknownYear
	if year != nil {
		yearKey = *year
	}

	query := `SELECT ` + comicColumns + ` FROM comics
		WHERE account_id = ? AND title = ? AND publisher = ? AND issue = ? AND COALESCE(year, -1) = ?`
	c, err := scanComic(s.db.QueryRowContext(ctx, query, accountID, title, publisher, issue, yearKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comic by key: %w", err)
	}
	return c, nil
}

// UpdateComic updates a comic scoped to (id, account). Zero rows affected
// reports ErrNotFound. Concurrent updates are last-write-wins.
func (s *SQLiteStore) UpdateComic(ctx context.Context, c *model.Comic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = time.Now().UTC()
	if c.Quantity < 1 {
		c.Quantity = 1
	}

	query := `UPDATE comics SET container_id = ?, title = ?, publisher = ?, issue = ?, year = ?,
		grade = ?, condition = ?, quantity = ?, cost = ?, price = ?, description = ?, updated_at = ?
		WHERE id = ? AND account_id = ?`
	result, err := s.db.ExecContext(ctx, query,
		c.ContainerID, c.Title, c.Publisher, c.Issue, c.Year,
		c.Grade, c.Condition, c.Quantity, c.Cost, c.Price, c.Description, c.UpdatedAt,
		c.ID, c.AccountID)
	if isSQLiteDuplicate(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to update comic: %w", err)
	}
	return checkAffected(result)
}

// DeleteComic deletes a comic scoped to (id, account).
func (s *SQLiteStore) DeleteComic(ctx context.Context, accountID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM comics WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete comic: %w", err)
	}
	return checkAffected(result)
}

// Stats returns per-account record counts.
func (s *SQLiteStore) Stats(ctx context.Context, accountID int64) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})
	counts := map[string]string{
		"zones":      "SELECT COUNT(*) FROM zones WHERE account_id = ?",
		"containers": "SELECT COUNT(*) FROM containers WHERE account_id = ?",
		"cards":      "SELECT COUNT(*) FROM cards WHERE account_id = ?",
		"comics":     "SELECT COUNT(*) FROM comics WHERE account_id = ?",
	}
	for name, query := range counts {
		var n int64
		if err := s.db.QueryRowContext(ctx, query, accountID).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		stats[name] = n
	}
	return stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements CollectionStore
var _ CollectionStore = (*SQLiteStore)(nil)
