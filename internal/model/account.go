package model

import "time"

// Account is an API account row from the account database. Every record
// read or write is scoped to one account id.
type Account struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// TokenData contains the data stored with a session token.
type TokenData struct {
	AccountID int64     `json:"account_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
