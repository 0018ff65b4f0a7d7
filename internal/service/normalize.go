package service

import (
	"sort"

	"cardvault-rest-api/internal/model"
)

// Normalize merges card and comic records into one uniform item sequence
// ordered by creation time, newest first. It is a pure transform: fetch
// errors are handled by the caller, and the inputs are not mutated.
//
// Container and zone references are resolved from the provided slices. A
// container whose zone cannot be resolved degrades to "Unknown Zone"; an
// unresolvable container leaves Item.Container nil. Neither case is an
// error.
func Normalize(cards []model.Card, comics []model.Comic, containers []model.Container, zones []model.Zone) []model.Item {
	zonesByID := make(map[string]model.Zone, len(zones))
	for _, z := range zones {
		zonesByID[z.ID] = z
	}
	containersByID := make(map[string]model.Container, len(containers))
	for _, c := range containers {
		containersByID[c.ID] = c
	}

	resolve := func(containerID string) *model.ContainerRef {
		c, ok := containersByID[containerID]
		if !ok {
			return nil
		}
		ref := &model.ContainerRef{
			ID:       c.ID,
			Name:     c.Name,
			ZoneName: model.UnknownZoneName,
		}
		if c.ZoneID != nil {
			if z, ok := zonesByID[*c.ZoneID]; ok {
				ref.ZoneID = z.ID
				ref.ZoneName = z.Name
			}
		}
		return ref
	}

	items := make([]model.Item, 0, len(cards)+len(comics))
	for _, c := range cards {
		items = append(items, normalizeCard(c, resolve(c.ContainerID)))
	}
	for _, c := range comics {
		items = append(items, normalizeComic(c, resolve(c.ContainerID)))
	}

	// Stable keeps cards ahead of comics on equal timestamps.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return items
}

func normalizeCard(c model.Card, container *model.ContainerRef) model.Item {
	return model.Item{
		Kind:         model.KindCard,
		ID:           c.ID,
		Name:         model.DisplayName(c.Player),
		Year:         c.Year,
		Quantity:     clampQuantity(c.Quantity),
		Grade:        c.Grade,
		Condition:    c.Condition,
		Cost:         c.Cost,
		Price:        c.Price,
		Description:  c.Description,
		Container:    container,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Team:         c.Team,
		Manufacturer: c.Manufacturer,
		Sport:        c.Sport,
		Number:       c.Number,
		NumberOutOf:  c.NumberOutOf,
		Rookie:       c.Rookie,
	}
}

func normalizeComic(c model.Comic, container *model.ContainerRef) model.Item {
	return model.Item{
		Kind:        model.KindComic,
		ID:          c.ID,
		Name:        model.DisplayName(c.Title),
		Year:        c.Year,
		Quantity:    clampQuantity(c.Quantity),
		Grade:       c.Grade,
		Condition:   c.Condition,
		Cost:        c.Cost,
		Price:       c.Price,
		Description: c.Description,
		Container:   container,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Publisher:   c.Publisher,
		Issue:       c.Issue,
	}
}

// clampQuantity enforces the quantity >= 1 invariant.
func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
