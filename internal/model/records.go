package model

import "time"

// Zone is a physical storage location owned by one account.
type Zone struct {
	ID        string    `json:"id"`
	AccountID int64     `json:"account_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Container is a storage unit inside a zone. The zone reference is
// nullable; listings must degrade gracefully when it is absent.
type Container struct {
	ID        string    `json:"id"`
	AccountID int64     `json:"account_id"`
	Name      string    `json:"name"`
	ZoneID    *string   `json:"zone_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Card is a trading card record. Pointer fields map to nullable columns.
// The duplicate key is (player, team, manufacturer, sport, year); the card
// number is deliberately not part of it.
type Card struct {
	ID           string    `json:"id"`
	AccountID    int64     `json:"account_id"`
	ContainerID  string    `json:"container_id"`
	Player       string    `json:"player"`
	Team         *string   `json:"team,omitempty"`
	Manufacturer string    `json:"manufacturer"`
	Sport        string    `json:"sport"`
	Year         *int      `json:"year,omitempty"`
	Number       string    `json:"number"`
	NumberOutOf  *string   `json:"number_out_of,omitempty"`
	Rookie       bool      `json:"rookie"`
	Grade        *float64  `json:"grade,omitempty"`
	Condition    *string   `json:"condition,omitempty"`
	Quantity     int       `json:"quantity"`
	Cost         *float64  `json:"cost,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comic is a comic book record. The duplicate key is
// (title, publisher, issue, year).
type Comic struct {
	ID          string    `json:"id"`
	AccountID   int64     `json:"account_id"`
	ContainerID string    `json:"container_id"`
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Issue       string    `json:"issue"`
	Year        *int      `json:"year,omitempty"`
	Grade       *float64  `json:"grade,omitempty"`
	Condition   *string   `json:"condition,omitempty"`
	Quantity    int       `json:"quantity"`
	Cost        *float64  `json:"cost,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
