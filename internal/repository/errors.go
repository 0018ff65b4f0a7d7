package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist for the given
	// id and account. An update or delete matching zero rows reports this
	// too: the record is either missing or belongs to another account,
	// and the store cannot tell which without a second query.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update violates a
	// natural-key unique constraint. Callers surface it distinctly from
	// generic failures.
	ErrDuplicate = errors.New("duplicate record")
)
