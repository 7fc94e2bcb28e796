package domain

import "time"

// ActivationStatus tracks the lifecycle of a stored activation record.
type ActivationStatus string

const (
	ActivationStatusPending   ActivationStatus = "pending"
	ActivationStatusActivated ActivationStatus = "activated"
)

// ActivationRecord is the server-side activation key used by the legacy
// stored-key workflow. The raw key is random and never persisted; only its
// SHA-256 hash is stored. One record exists per account.
type ActivationRecord struct {
	ID        string
	AccountID string
	KeyHash   string
	Status    ActivationStatus
	IP        *string
	UserAgent *string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// Expired reports whether the record's activation window has elapsed.
func (r ActivationRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
