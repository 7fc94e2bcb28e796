package domain

import "time"

// AccountStatus enumerates possible account states.
type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusActive   AccountStatus = "active"
	AccountStatusDisabled AccountStatus = "disabled"
)

// Account mirrors the persisted representation in the accounts table.
// Accounts are created inactive by the two-step workflows and flipped to
// active exactly once on successful activation.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	PasswordAlgo string
	Status       AccountStatus
	IsActive     bool
	RegisteredAt time.Time
	ActivatedAt  *time.Time
}
