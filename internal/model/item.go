package model

import (
	"strings"
	"time"
)

// ItemKind discriminates the two concrete item kinds. KindMixed only
// appears on aggregates that merged both kinds under one name.
type ItemKind string

const (
	KindCard  ItemKind = "card"
	KindComic ItemKind = "comic"
	KindMixed ItemKind = "mixed"
)

// UnknownZoneName is rendered for containers whose zone reference cannot
// be resolved.
const UnknownZoneName = "Unknown Zone"

// UnknownName is the display name for items with no player/title.
const UnknownName = "Unknown"

// ContainerRef is a container with its zone resolved for display.
type ContainerRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ZoneID   string `json:"zone_id,omitempty"`
	ZoneName string `json:"zone_name"`
}

// Item is the normalized view row: one uniform shape for both record
// kinds, tagged by Kind. Kind-specific fields are zero-valued for the
// other kind; call sites switch on Kind.
type Item struct {
	Kind        ItemKind      `json:"kind"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Year        *int          `json:"year,omitempty"`
	Quantity    int           `json:"quantity"`
	Grade       *float64      `json:"grade,omitempty"`
	Condition   *string       `json:"condition,omitempty"`
	Cost        *float64      `json:"cost,omitempty"`
	Price       *float64      `json:"price,omitempty"`
	Description string        `json:"description"`
	Container   *ContainerRef `json:"container,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Card fields.
	Team         *string `json:"team,omitempty"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Sport        string  `json:"sport,omitempty"`
	Number       string  `json:"number,omitempty"`
	NumberOutOf  *string `json:"number_out_of,omitempty"`
	Rookie       bool    `json:"rookie,omitempty"`

	// Comic fields.
	Publisher string `json:"publisher,omitempty"`
	Issue     string `json:"issue,omitempty"`
}

// DisplayName returns the name used for grouping, falling back to
// "Unknown" for blank names.
func DisplayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnknownName
	}
	return name
}

// Graded reports whether the item carries a grade. A grade of 0 counts
// as graded; only an absent value does not.
func (i *Item) Graded() bool {
	return i.Grade != nil
}

// Profit returns (price - cost) * quantity, treating absent price and
// cost as 0.
func (i *Item) Profit() float64 {
	var price, cost float64
	if i.Price != nil {
		price = *i.Price
	}
	if i.Cost != nil {
		cost = *i.Cost
	}
	return (price - cost) * float64(i.Quantity)
}
