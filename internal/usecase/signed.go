package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/logger"
	"github.com/avelir/registration-service/internal/infra/security"
	"github.com/avelir/registration-service/internal/repository"
)

// SignedWorkflow is the default two-step workflow. The activation key is an
// HMAC-signed token over the username; nothing key-related is stored server
// side, so activation links survive database restores and cost no writes at
// signup time.
type SignedWorkflow struct {
	pipeline  *signupPipeline
	accounts  port.AccountRepository
	signer    *security.ActivationSigner
	notifier  port.Notifier
	publisher port.EventPublisher
	settings  Settings
}

// NewSignedWorkflow constructs the signed-token workflow.
func NewSignedWorkflow(
	accounts port.AccountRepository,
	signer *security.ActivationSigner,
	notifier port.Notifier,
	publisher port.EventPublisher,
	passwordValidator *security.PasswordValidator,
	settings Settings,
) *SignedWorkflow {
	return &SignedWorkflow{
		pipeline:  newSignupPipeline(accounts, passwordValidator, settings),
		accounts:  accounts,
		signer:    signer,
		notifier:  notifier,
		publisher: publisher,
		settings:  settings,
	}
}

// Name reports the configured workflow identifier.
func (w *SignedWorkflow) Name() string { return WorkflowSigned }

// Register creates an inactive account and emails a signed activation key.
func (w *SignedWorkflow) Register(ctx context.Context, in SignupInput, req domain.RequestContext) (*RegisterResult, error) {
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

	key := w.signer.Issue(account.Username)
	if err := w.notifier.SendActivationEmail(ctx, *account, key, w.settings.ActivationWindow); err != nil {
		return nil, fmt.Errorf("send activation email: %w", err)
	}

	logger.WithContext(ctx).Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("workflow", WorkflowSigned))

	publishRegistered(ctx, w.publisher, registeredEvent(*account, WorkflowSigned, req))

	return &RegisterResult{Account: account, ActivationRequired: true}, nil
}

// Activate verifies the signed key and flips the account to active. The
// conditional update in the repository makes concurrent redemptions of the
// same key race safely: exactly one wins, the rest see already_activated.
func (w *SignedWorkflow) Activate(ctx context.Context, key string, req domain.RequestContext) (*ActivateResult, error) {
	username, err := w.signer.Verify(key, w.settings.ActivationWindow)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrExpired):
			return nil, newActivationError(ActivationCodeExpired, err)
		default:
			return nil, newActivationError(ActivationCodeBadSignature, err)
		}
	}

	account, err := w.accounts.GetInactiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, w.classifyMissingInactive(ctx, username)
		}
		return nil, fmt.Errorf("load account for activation: %w", err)
	}

	if err := w.accounts.Activate(ctx, account.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with a concurrent activation of the same key.
			return nil, newActivationError(ActivationCodeAlreadyActivated, nil)
		}
		return nil, fmt.Errorf("activate account: %w", err)
	}

	activated, err := w.accounts.GetByID(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("reload activated account: %w", err)
	}

	logger.WithContext(ctx).Info("account activated",
		zap.String("account_id", activated.ID),
		zap.String("workflow", WorkflowSigned))

	publishActivated(ctx, w.publisher, activatedEvent(*activated, WorkflowSigned, req))

	return &ActivateResult{Account: activated}, nil
}

// classifyMissingInactive distinguishes a valid key for a vanished account
// from a replayed key for an already-active one. The distinction is internal
// only; the transport layer reports both identically.
func (w *SignedWorkflow) classifyMissingInactive(ctx context.Context, username string) *ActivationError {
	if _, err := w.accounts.GetByUsername(ctx, username); err == nil {
		return newActivationError(ActivationCodeAlreadyActivated, nil)
	}
	return newActivationError(ActivationCodeNoSuchAccount, nil)
}
