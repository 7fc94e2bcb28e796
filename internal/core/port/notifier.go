package port

import (
	"context"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
)

// Notifier renders and delivers workflow emails. Implementations own the
// templates; workflows only supply the account and the raw activation key.
type Notifier interface {
	// SendActivationEmail delivers activation instructions carrying the raw
	// key. The window is how long the key stays redeemable, for display.
	SendActivationEmail(ctx context.Context, account domain.Account, activationKey string, window time.Duration) error

	// SendWelcomeEmail confirms a completed signup. Used by workflows that
	// need no activation step.
	SendWelcomeEmail(ctx context.Context, account domain.Account) error
}
