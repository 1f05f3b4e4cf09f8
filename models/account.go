package models

import "time"

// Account represents a registered viewer. Detail pages are only reachable
// for authenticated accounts; browsing and search are open.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized to API responses
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountStorage is the on-disk representation. Unlike Account it carries
// the password hash, so it must never be returned over the API.
type AccountStorage struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToStorage converts an Account for persistence.
func (a Account) ToStorage() AccountStorage {
	return AccountStorage{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToAccount converts a stored record back to an Account.
func (s AccountStorage) ToAccount() Account {
	return Account{
		ID:           s.ID,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
