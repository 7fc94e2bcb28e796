package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/logger"
)

// SweepService deletes registrations that were never completed: pending
// activation records past their window and inactive accounts older than the
// window. Intended to run periodically from the sweep binary.
type SweepService struct {
	accounts    port.AccountRepository
	activations port.ActivationRepository
	window      time.Duration
}

// SweepResult reports how many rows a sweep removed.
type SweepResult struct {
	ActivationRecords int
	Accounts          int
}

// NewSweepService constructs a sweeper. activations may be nil when the
// deployment uses a workflow without stored keys.
func NewSweepService(accounts port.AccountRepository, activations port.ActivationRepository, window time.Duration) *SweepService {
	return &SweepService{accounts: accounts, activations: activations, window: window}
}

// Sweep removes expired registration state. Accounts that never activated
// are deleted once their activation window has fully elapsed, so a user who
// lost the email can re-register the same username afterwards.
func (s *SweepService) Sweep(ctx context.Context) (SweepResult, error) {
	now := time.Now().UTC()
	var result SweepResult

	if s.activations != nil {
		removed, err := s.activations.DeleteExpired(ctx, now)
		if err != nil {
			return result, fmt.Errorf("delete expired activation records: %w", err)
		}
		result.ActivationRecords = removed
	}

	removed, err := s.accounts.DeleteExpiredPending(ctx, now.Add(-s.window))
	if err != nil {
		return result, fmt.Errorf("delete expired pending accounts: %w", err)
	}
	result.Accounts = removed

	logger.WithContext(ctx).Info("expired registrations swept",
		zap.Int("activation_records", result.ActivationRecords),
		zap.Int("accounts", result.Accounts))

	return result, nil
}
