package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/validate"
)

// Workflow names selectable in configuration. Each names one concrete
// implementation of the Workflow interface; the set is closed.
const (
	WorkflowSigned    = "signed"
	WorkflowOneStep   = "one_step"
	WorkflowStoredKey = "stored_key"
)

// ErrRegistrationClosed is returned by Register when signups are disabled.
var ErrRegistrationClosed = errors.New("registration is closed")

// SignupInput carries the raw, untrusted signup form fields.
type SignupInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	AcceptedTOS     bool
}

// RegisterResult reports the outcome of a successful Register call.
type RegisterResult struct {
	Account *domain.Account

	// ActivationRequired is false for workflows that activate accounts
	// immediately on signup.
	ActivationRequired bool
}

// ActivateResult reports the outcome of a successful Activate call.
type ActivateResult struct {
	Account *domain.Account
}

// Workflow is the registration strategy contract. Implementations differ in
// how (and whether) a second activation step is required, but share the
// validation pipeline and the account store semantics.
type Workflow interface {
	Name() string

	// Register validates input and creates an account. Validation failures
	// are returned as *validate.Errors covering every failing field.
	Register(ctx context.Context, in SignupInput, req domain.RequestContext) (*RegisterResult, error)

	// Activate redeems an activation key. Failures are returned as
	// *ActivationError.
	Activate(ctx context.Context, key string, req domain.RequestContext) (*ActivateResult, error)
}

// Activation failure codes. bad_signature, expired and invalid_key describe
// the key itself; no_such_account and already_activated describe account
// state. The HTTP layer collapses them into one generic response so the
// endpoint cannot be used to probe which usernames exist.
const (
	ActivationCodeBadSignature     = "bad_signature"
	ActivationCodeExpired          = "expired"
	ActivationCodeInvalidKey       = "invalid_key"
	ActivationCodeNoSuchAccount    = "no_such_account"
	ActivationCodeAlreadyActivated = "already_activated"
)

// ActivationError describes why an activation key could not be redeemed.
type ActivationError struct {
	Code string
	err  error
}

func newActivationError(code string, err error) *ActivationError {
	return &ActivationError{Code: code, err: err}
}

func (e *ActivationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("activation failed (%s): %v", e.Code, e.err)
	}
	return fmt.Sprintf("activation failed (%s)", e.Code)
}

func (e *ActivationError) Unwrap() error { return e.err }

// AsActivationError extracts an *ActivationError from an error chain.
func AsActivationError(err error) (*ActivationError, bool) {
	var ae *ActivationError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// AsValidationErrors extracts field validation errors from an error chain.
func AsValidationErrors(err error) (validate.Errors, bool) {
	var ve validate.Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
