package repository

import (
	"context"

	"cardvault-rest-api/internal/model"
)

// ZoneRepository defines zone data access methods. All reads and writes
// are scoped to an account id; cross-account visibility must never occur.
type ZoneRepository interface {
	CreateZone(ctx context.Context, z *model.Zone) error
	GetZone(ctx context.Context, accountID int64, id string) (*model.Zone, error)
	ListZones(ctx context.Context, accountID int64) ([]model.Zone, error)
	UpdateZone(ctx context.Context, z *model.Zone) error
	DeleteZone(ctx context.Context, accountID int64, id string) error
}

// ContainerRepository defines container data access methods.
type ContainerRepository interface {
	CreateContainer(ctx context.Context, c *model.Container) error
	GetContainer(ctx context.Context, accountID int64, id string) (*model.Container, error)
	ListContainers(ctx context.Context, accountID int64) ([]model.Container, error)
	ListContainersByZone(ctx context.Context, accountID int64, zoneID string) ([]model.Container, error)
	UpdateContainer(ctx context.Context, c *model.Container) error
	DeleteContainer(ctx context.Context, accountID int64, id string) error
}

// CardRepository defines trading card data access methods.
//
// CreateCard returns ErrDuplicate when the natural key
// (player, team, manufacturer, sport, year) already exists for the
// account. UpdateCard and DeleteCard return ErrNotFound when zero rows
// match the id and account. Concurrent updates are last-write-wins.
type CardRepository interface {
	CreateCard(ctx context.Context, c *model.Card) error
	GetCard(ctx context.Context, accountID int64, id string) (*model.Card, error)
	ListCards(ctx context.Context, accountID int64) ([]model.Card, error)
	FindCardByKey(ctx context.Context, accountID int64, player string, team *string, manufacturer, sport string, year *int) (*model.Card, error)
	UpdateCard(ctx context.Context, c *model.Card) error
	DeleteCard(ctx context.Context, accountID int64, id string) error
}

// ComicRepository defines comic book data access methods. Same error
// contract as CardRepository, with the natural key
// (title, publisher, issue, year).
type ComicRepository interface {
	CreateComic(ctx context.Context, c *model.Comic) error
	GetComic(ctx context.Context, accountID int64, id string) (*model.Comic, error)
	ListComics(ctx context.Context, accountID int64) ([]model.Comic, error)
	FindComicByKey(ctx context.Context, accountID int64, title, publisher, issue string, year *int) (*model.Comic, error)
	UpdateComic(ctx context.Context, c *model.Comic) error
	DeleteComic(ctx context.Context, accountID int64, id string) error
}

// CollectionStore is the full persistence surface for one backend.
type CollectionStore interface {
	ZoneRepository
	ContainerRepository
	CardRepository
	ComicRepository

	// Stats returns per-account record counts for the admin endpoint.
	Stats(ctx context.Context, accountID int64) (map[string]interface{}, error)

	// Close closes the store connection.
	Close() error
}

// AccountRepository defines account data access methods.
type AccountRepository interface {
	// ValidateCredentials checks an email + API key pair and returns the
	// account for token generation.
	ValidateCredentials(ctx context.Context, email, apiKey string) (*model.Account, error)
}
