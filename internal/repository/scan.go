package repository

import (
	"database/sql"

	"cardvault-rest-api/internal/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// checkAffected maps a zero-row write to ErrNotFound. The record is
// either missing or owned by another account.
func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContainer(row rowScanner) (*model.Container, error) {
	var c model.Container
	var zoneID sql.NullString
	err := row.Scan(&c.ID, &c.AccountID, &c.Name, &zoneID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ZoneID = strPtr(zoneID)
	return &c, nil
}

func scanCard(row rowScanner) (*model.Card, error) {
	var c model.Card
	var team, numberOutOf, condition sql.NullString
	var year sql.NullInt64
	var grade, cost, price sql.NullFloat64
	err := row.Scan(&c.ID, &c.AccountID, &c.ContainerID, &c.Player, &team, &c.Manufacturer, &c.Sport, &year,
		&c.Number, &numberOutOf, &c.Rookie, &grade, &condition, &c.Quantity, &cost, &price, &c.Description,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Team = strPtr(team)
	c.NumberOutOf = strPtr(numberOutOf)
	c.Condition = strPtr(condition)
	c.Year = intPtr(year)
	c.Grade = floatPtr(grade)
	c.Cost = floatPtr(cost)
	c.Price = floatPtr(price)
	return &c, nil
}

func scanComic(row rowScanner) (*model.Comic, error) {
	var c model.Comic
	var condition sql.NullString
	var year sql.NullInt64
	var grade, cost, price sql.NullFloat64
	err := row.Scan(&c.ID, &c.AccountID, &c.ContainerID, &c.Title, &c.Publisher, &c.Issue, &year,
		&grade, &condition, &c.Quantity, &cost, &price, &c.Description,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Condition = strPtr(condition)
	c.Year = intPtr(year)
	c.Grade = floatPtr(grade)
	c.Cost = floatPtr(cost)
	c.Price = floatPtr(price)
	return &c, nil
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
