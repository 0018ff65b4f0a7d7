package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cardvault-rest-api/internal/model"
)

// MySQLAccountRepository implements AccountRepository using MySQL.
// Accounts live in a separate database from collection data.
type MySQLAccountRepository struct {
	db *sql.DB
}

// NewMySQLAccountRepository creates a new MySQL account repository.
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

// ValidateCredentials checks an email + API key pair against active
// accounts and returns the matching account.
func (r *MySQLAccountRepository) ValidateCredentials(ctx context.Context, email, apiKey string) (*model.Account, error) {
	query := `SELECT id, email FROM accounts WHERE email = ? AND api_key = ? AND is_active = 1 LIMIT 1`

	var acc model.Account
	err := r.db.QueryRowContext(ctx, query, email, apiKey).Scan(&acc.ID, &acc.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, fmt.Errorf("failed to validate credentials: %w", err)
	}

	return &acc, nil
}

// Ensure MySQLAccountRepository implements AccountRepository
var _ AccountRepository = (*MySQLAccountRepository)(nil)
