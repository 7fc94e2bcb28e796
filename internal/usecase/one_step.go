package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/logger"
	"github.com/avelir/registration-service/internal/infra/security"
)

// OneStepWorkflow registers and activates in a single call. There is no
// activation step; accounts are usable immediately.
type OneStepWorkflow struct {
	pipeline  *signupPipeline
	notifier  port.Notifier
	publisher port.EventPublisher
	settings  Settings
}

// NewOneStepWorkflow constructs the immediate-activation workflow.
func NewOneStepWorkflow(
	accounts port.AccountRepository,
	notifier port.Notifier,
	publisher port.EventPublisher,
	passwordValidator *security.PasswordValidator,
	settings Settings,
) *OneStepWorkflow {
	return &OneStepWorkflow{
		pipeline:  newSignupPipeline(accounts, passwordValidator, settings),
		notifier:  notifier,
		publisher: publisher,
		settings:  settings,
	}
}

// Name reports the configured workflow identifier.
func (w *OneStepWorkflow) Name() string { return WorkflowOneStep }

// Register creates an account already active and sends a welcome email.
// Welcome delivery failure does not undo the signup.
func (w *OneStepWorkflow) Register(ctx context.Context, in SignupInput, req domain.RequestContext) (*RegisterResult, error) {
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

	account, err := w.pipeline.createAccount(ctx, in, true)
	if err != nil {
		return nil, err
	}

	if w.notifier != nil {
		if err := w.notifier.SendWelcomeEmail(ctx, *account); err != nil {
			logger.WithContext(ctx).Warn("send welcome email failed",
				zap.String("account_id", account.ID),
				zap.Error(err))
		}
	}

	logger.WithContext(ctx).Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.String("workflow", WorkflowOneStep))

	publishRegistered(ctx, w.publisher, registeredEvent(*account, WorkflowOneStep, req))
	publishActivated(ctx, w.publisher, activatedEvent(*account, WorkflowOneStep, req))

	return &RegisterResult{Account: account, ActivationRequired: false}, nil
}

// Activate always fails: this workflow issues no keys.
func (w *OneStepWorkflow) Activate(ctx context.Context, key string, req domain.RequestContext) (*ActivateResult, error) {
	return nil, newActivationError(ActivationCodeInvalidKey, errors.New("workflow has no activation step"))
}
