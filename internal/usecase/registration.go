package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/logger"
	"github.com/avelir/registration-service/internal/infra/security"
	"github.com/avelir/registration-service/internal/validate"
)

// Settings carries the workflow knobs resolved from configuration. Every
// workflow receives them explicitly; nothing reads ambient global state.
type Settings struct {
	Open             bool
	ActivationWindow time.Duration
	RequireTOS       bool
	ReservedNames    []string
	FreeEmailDomains []string
}

// signupPipeline is the validation and account-creation machinery shared by
// every workflow. Validators run independently so a single submission
// reports every failing field at once.
type signupPipeline struct {
	accounts          port.AccountRepository
	reservedNames     *validate.ReservedNames
	freeEmailDomains  *validate.FreeEmailDomains
	passwordValidator *security.PasswordValidator
	settings          Settings
}

func newSignupPipeline(accounts port.AccountRepository, passwordValidator *security.PasswordValidator, settings Settings) *signupPipeline {
	if passwordValidator == nil {
		passwordValidator = security.DefaultPasswordValidator()
	}
	reserved := settings.ReservedNames
	if reserved == nil {
		reserved = validate.DefaultReservedNames()
	}
	return &signupPipeline{
		accounts:          accounts,
		reservedNames:     validate.NewReservedNames(reserved),
		freeEmailDomains:  validate.NewFreeEmailDomains(settings.FreeEmailDomains),
		passwordValidator: passwordValidator,
		settings:          settings,
	}
}

// validateSignup runs every field validator and returns the collected
// failures, or nil when the input is clean. Uniqueness checks compare
// case-folded values so "STAFF" cannot coexist with "staff".
func (p *signupPipeline) validateSignup(ctx context.Context, in SignupInput) (validate.Errors, error) {
	var errs validate.Errors

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" {
		errs = append(errs, validate.FieldError{Field: "username", Code: validate.CodeRequired, Message: "This field is required."})
	} else {
		errs.Add(p.reservedNames.Validate("username", username))
		errs.Add(validate.Confusables("username", username))

		taken, err := p.accounts.UsernameTaken(ctx, validate.Fold(username))
		if err != nil {
			return nil, fmt.Errorf("check username uniqueness: %w", err)
		}
		if taken {
			errs = append(errs, validate.FieldError{
				Field:   "username",
				Code:    validate.CodeDuplicateUsername,
				Message: "A user with that username already exists.",
			})
		}
	}

	if email == "" {
		errs = append(errs, validate.FieldError{Field: "email", Code: validate.CodeRequired, Message: "This field is required."})
	} else {
		errs.Add(validate.Email("email", email))
		errs.Add(validate.ConfusablesEmail("email", email))
		errs.Add(p.freeEmailDomains.Validate("email", email))

		taken, err := p.accounts.EmailTaken(ctx, validate.Fold(email))
		if err != nil {
			return nil, fmt.Errorf("check email uniqueness: %w", err)
		}
		if taken {
			errs = append(errs, validate.FieldError{
				Field:   "email",
				Code:    validate.CodeDuplicateEmail,
				Message: "This email address is already in use. Please supply a different email address.",
			})
		}
	}

	if in.Password == "" {
		errs = append(errs, validate.FieldError{Field: "password", Code: validate.CodeRequired, Message: "This field is required."})
	} else {
		if err := p.passwordValidator.Validate(in.Password); err != nil {
			errs = append(errs, validate.FieldError{Field: "password", Code: "weak_password", Message: err.Error()})
		}
		if in.Password != in.PasswordConfirm {
			errs = append(errs, validate.FieldError{
				Field:   "password_confirm",
				Code:    validate.CodePasswordMismatch,
				Message: "The two password fields didn't match.",
			})
		}
	}

	if p.settings.RequireTOS && !in.AcceptedTOS {
		errs = append(errs, validate.FieldError{
			Field:   "tos",
			Code:    validate.CodeTOSRequired,
			Message: "You must agree to the terms to register.",
		})
	}

	if len(errs) > 0 {
		return errs, nil
	}
	return nil, nil
}

// createAccount hashes the password and persists a new account. Nothing is
// written unless validation already passed.
func (p *signupPipeline) createAccount(ctx context.Context, in SignupInput, active bool) (*domain.Account, error) {
	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: passwordHash,
		PasswordAlgo: security.PasswordAlgo,
		Status:       domain.AccountStatusPending,
		IsActive:     active,
		RegisteredAt: now,
	}
	if active {
		account.Status = domain.AccountStatusActive
		account.ActivatedAt = &now
	}

	if err := p.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &account, nil
}

func registeredEvent(account domain.Account, workflow string, req domain.RequestContext) domain.AccountRegisteredEvent {
	return domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Username:     account.Username,
		Email:        account.Email,
		Status:       string(account.Status),
		Workflow:     workflow,
		RegisteredAt: account.RegisteredAt,
		Request:      req,
	}
}

func activatedEvent(account domain.Account, workflow string, req domain.RequestContext) domain.AccountActivatedEvent {
	activatedAt := time.Now().UTC()
	if account.ActivatedAt != nil {
		activatedAt = *account.ActivatedAt
	}
	return domain.AccountActivatedEvent{
		EventID:     uuid.NewString(),
		AccountID:   account.ID,
		Username:    account.Username,
		ActivatedAt: activatedAt,
		Workflow:    workflow,
		Request:     req,
	}
}

// publishRegistered emits the lifecycle event without affecting the caller.
func publishRegistered(ctx context.Context, publisher port.EventPublisher, event domain.AccountRegisteredEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishAccountRegistered(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish account registered event failed",
			zap.String("account_id", event.AccountID),
			zap.Error(err))
	}
}

func publishActivated(ctx context.Context, publisher port.EventPublisher, event domain.AccountActivatedEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishAccountActivated(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("publish account activated event failed",
			zap.String("account_id", event.AccountID),
			zap.Error(err))
	}
}
