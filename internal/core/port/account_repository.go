package port

import (
	"context"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts. It is the only
// component permitted to flip Account.IsActive.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// GetInactiveByUsername looks up an account constrained to is_active =
	// false. An already-active account is reported as not found so that a
	// replayed activation token has nothing to act on.
	GetInactiveByUsername(ctx context.Context, username string) (*domain.Account, error)
	// Activate flips the active flag with a conditional update; it returns
	// repository.ErrNotFound when the account is missing or already active,
	// which makes concurrent activation attempts race safely.
	Activate(ctx context.Context, id string) error
	// UsernameTaken and EmailTaken perform case-insensitive existence checks
	// against the case-folded candidate value.
	UsernameTaken(ctx context.Context, folded string) (bool, error)
	EmailTaken(ctx context.Context, folded string) (bool, error)
	// DeleteExpiredPending removes never-activated accounts registered
	// before the cutoff. Returns the number of rows removed.
	DeleteExpiredPending(ctx context.Context, registeredBefore time.Time) (int, error)
}
