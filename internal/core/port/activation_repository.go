package port

import (
	"context"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
)

// ActivationRepository manages stored activation records for the legacy
// stored-key workflow.
type ActivationRepository interface {
	Create(ctx context.Context, record domain.ActivationRecord) error
	GetByKeyHash(ctx context.Context, hash string) (*domain.ActivationRecord, error)
	// Consume marks a pending record as activated. The update is conditional
	// on status = 'pending' so a key can be redeemed at most once; a lost
	// race surfaces as repository.ErrNotFound.
	Consume(ctx context.Context, id string, usedAt time.Time) error
	// DeleteExpired removes pending records whose window closed before the
	// cutoff. Returns the number of rows removed.
	DeleteExpired(ctx context.Context, expiredBefore time.Time) (int, error)
}
