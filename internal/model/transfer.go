package model

import "fmt"

// ImportOutcome classifies a bulk import run.
type ImportOutcome string

const (
	// ImportSuccess: at least one row processed, zero errors.
	ImportSuccess ImportOutcome = "success"
	// ImportPartial: at least one row processed and at least one error.
	ImportPartial ImportOutcome = "partial"
	// ImportFailed: zero rows processed, regardless of error count.
	ImportFailed ImportOutcome = "failed"
)

// RowError is a per-row import failure. Row is the 1-based sheet row
// (data row index + 2, accounting for the header).
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.Sheet, e.Row, e.Message)
}

// ImportResult accumulates counters and ordered per-row errors for one
// bulk import. Errors never abort the batch.
type ImportResult struct {
	CardsCreated  int        `json:"cards_created"`
	CardsUpdated  int        `json:"cards_updated"`
	ComicsCreated int        `json:"comics_created"`
	ComicsUpdated int        `json:"comics_updated"`
	Errors        []RowError `json:"errors"`
}

// Processed returns the number of rows that produced a write. Callers
// must refresh their item list whenever this is positive, even on a
// partial outcome.
func (r *ImportResult) Processed() int {
	return r.CardsCreated + r.CardsUpdated + r.ComicsCreated + r.ComicsUpdated
}

// Outcome classifies the run.
func (r *ImportResult) Outcome() ImportOutcome {
	if r.Processed() == 0 {
		return ImportFailed
	}
	if len(r.Errors) > 0 {
		return ImportPartial
	}
	return ImportSuccess
}
