package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/logger"
	"github.com/avelir/registration-service/internal/infra/security"
	"github.com/avelir/registration-service/internal/repository"
)

const storedKeyBytes = 32

// StoredKeyWorkflow is the legacy two-step workflow: the activation key is a
// random value persisted (hashed) alongside the account and redeemable once.
// Kept for deployments that need server-side key revocation; new setups
// should prefer the signed workflow.
type StoredKeyWorkflow struct {
	pipeline    *signupPipeline
	accounts    port.AccountRepository
	activations port.ActivationRepository
	notifier    port.Notifier
	publisher   port.EventPublisher
	settings    Settings
}

// NewStoredKeyWorkflow constructs the stored-key workflow.
func NewStoredKeyWorkflow(
	accounts port.AccountRepository,
	activations port.ActivationRepository,
	notifier port.Notifier,
	publisher port.EventPublisher,
	passwordValidator *security.PasswordValidator,
	settings Settings,
) *StoredKeyWorkflow {
	return &StoredKeyWorkflow{
		pipeline:    newSignupPipeline(accounts, passwordValidator, settings),
		accounts:    accounts,
		activations: activations,
		notifier:    notifier,
		publisher:   publisher,
		settings:    settings,
	}
}

// Name reports the configured workflow identifier.
func (w *StoredKeyWorkflow) Name() string { return WorkflowStoredKey }

// Register creates an inactive account plus one pending activation record
// holding the SHA-256 of a freshly generated random key. Only the raw key
// leaves the service, inside the activation email.
func (w *StoredKeyWorkflow) Register(ctx context.Context, in SignupInput, req domain.RequestContext) (*RegisterResult, error) {
	if !w.settings.Open {
		return nil, ErrRegistrationClosed
	}

	errs, err := w.pipeline.validateSignup(ctx, in)
	if err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, errs
	}

	account, err := w.pipeline.createAccount(ctx, in, false)
	if err != nil {
		return nil, err
	}

	rawKey, err := security.GenerateSecureToken(storedKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("generate activation key: %w", err)
	}

	now := time.Now().UTC()
	record := domain.ActivationRecord{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		KeyHash:   security.HashToken(rawKey),
		Status:    domain.ActivationStatusPending,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(w.settings.ActivationWindow),
	}
	if err := w.activations.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create activation record: %w", err)
	}

	if err := w.notifier.SendActivationEmail(ctx, *account, rawKey, w.settings.ActivationWindow); err != nil {
		return nil, fmt.Errorf("send activation email: %w", err)
	}

	logger.WithContext(ctx).Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("workflow", WorkflowStoredKey))

	publishRegistered(ctx, w.publisher, registeredEvent(*account, WorkflowStoredKey, req))

	return &RegisterResult{Account: account, ActivationRequired: true}, nil
}

// Activate redeems a stored key. The record consume and the account flip are
// both conditional updates, so a key is single-use even under concurrent
// redemption attempts.
func (w *StoredKeyWorkflow) Activate(ctx context.Context, key string, req domain.RequestContext) (*ActivateResult, error) {
	record, err := w.activations.GetByKeyHash(ctx, security.HashToken(key))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newActivationError(ActivationCodeInvalidKey, nil)
		}
		return nil, fmt.Errorf("load activation record: %w", err)
	}

	now := time.Now().UTC()
	if record.Status == domain.ActivationStatusActivated {
		return nil, newActivationError(ActivationCodeAlreadyActivated, nil)
	}
	if record.Expired(now) {
		return nil, newActivationError(ActivationCodeExpired, nil)
	}

	if err := w.activations.Consume(ctx, record.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newActivationError(ActivationCodeAlreadyActivated, nil)
		}
		return nil, fmt.Errorf("consume activation record: %w", err)
	}

	if err := w.accounts.Activate(ctx, record.AccountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newActivationError(ActivationCodeAlreadyActivated, nil)
		}
		return nil, fmt.Errorf("activate account: %w", err)
	}

	activated, err := w.accounts.GetByID(ctx, record.AccountID)
	if err != nil {
		return nil, fmt.Errorf("reload activated account: %w", err)
	}

	logger.WithContext(ctx).Info("account activated",
		zap.String("account_id", activated.ID),
		zap.String("workflow", WorkflowStoredKey))

	publishActivated(ctx, w.publisher, activatedEvent(*activated, WorkflowStoredKey, req))

	return &ActivateResult{Account: activated}, nil
}
