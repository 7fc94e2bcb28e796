package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/infra/security"
	"github.com/avelir/registration-service/internal/validate"
)

const testPassword = "orbit-valley-magnet-42"

func testSettings() Settings {
	return Settings{Open: true, ActivationWindow: 7 * 24 * time.Hour}
}

func testSignupInput(username, email string) SignupInput {
	return SignupInput{
		Username:        username,
		Email:           email,
		Password:        testPassword,
		PasswordConfirm: testPassword,
	}
}

func newTestSignedWorkflow(accounts *mockAccountRepository, settings Settings) (*SignedWorkflow, *stubNotifier, *stubPublisher) {
	notifier := &stubNotifier{}
	publisher := &stubPublisher{}
	signer := security.NewActivationSigner([]byte("test-secret"), "activation")
	return NewSignedWorkflow(accounts, signer, notifier, publisher, nil, settings), notifier, publisher
}

func TestSignedWorkflowRegisterAndActivate(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, notifier, publisher := newTestSignedWorkflow(accounts, testSettings())
	ctx := context.Background()

	result, err := workflow.Register(ctx, testSignupInput("alice", "alice@example.com"), domain.RequestContext{})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !result.ActivationRequired {
		t.Fatal("expected activation to be required")
	}
	if result.Account.IsActive {
		t.Fatal("expected account to be created inactive")
	}
	if got := notifier.lastKey(); got == "" {
		t.Fatal("expected an activation email carrying a key")
	}
	if len(publisher.registered) != 1 {
		t.Fatalf("expected 1 registered event, got %d", len(publisher.registered))
	}

	activated, err := workflow.Activate(ctx, notifier.lastKey(), domain.RequestContext{})
	if err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if !activated.Account.IsActive {
		t.Fatal("expected account active after activation")
	}
	if activated.Account.ActivatedAt == nil {
		t.Fatal("expected ActivatedAt to be set")
	}
	if len(publisher.activated) != 1 {
		t.Fatalf("expected 1 activated event, got %d", len(publisher.activated))
	}
}

func TestSignedWorkflowActivationIsIdempotent(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, notifier, _ := newTestSignedWorkflow(accounts, testSettings())
	ctx := context.Background()

	if _, err := workflow.Register(ctx, testSignupInput("alice", "alice@example.com"), domain.RequestContext{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	key := notifier.lastKey()

	if _, err := workflow.Activate(ctx, key, domain.RequestContext{}); err != nil {
		t.Fatalf("first Activate returned error: %v", err)
	}

	_, err := workflow.Activate(ctx, key, domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok {
		t.Fatalf("expected ActivationError on replay, got %v", err)
	}
	if ae.Code != ActivationCodeAlreadyActivated {
		t.Fatalf("expected code %s, got %s", ActivationCodeAlreadyActivated, ae.Code)
	}

	account, err := accounts.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if !account.IsActive {
		t.Fatal("replayed activation must not deactivate the account")
	}
}

func TestSignedWorkflowTamperedKey(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, notifier, _ := newTestSignedWorkflow(accounts, testSettings())
	ctx := context.Background()

	if _, err := workflow.Register(ctx, testSignupInput("alice", "alice@example.com"), domain.RequestContext{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := workflow.Activate(ctx, notifier.lastKey()+"x", domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok || ae.Code != ActivationCodeBadSignature {
		t.Fatalf("expected bad_signature, got %v", err)
	}
}

func TestSignedWorkflowExpiredKey(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, _, _ := newTestSignedWorkflow(accounts, testSettings())
	ctx := context.Background()

	if _, err := workflow.Register(ctx, testSignupInput("alice", "alice@example.com"), domain.RequestContext{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// Issue a key backdated past the window using the same secret and salt.
	past := time.Now().Add(-8 * 24 * time.Hour)
	backdated := security.NewActivationSigner([]byte("test-secret"), "activation").
		WithClock(func() time.Time { return past })
	staleKey := backdated.Issue("alice")

	_, err := workflow.Activate(ctx, staleKey, domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok || ae.Code != ActivationCodeExpired {
		t.Fatalf("expected expired, got %v", err)
	}

	account, err := accounts.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if account.IsActive {
		t.Fatal("expired key must not activate the account")
	}
}

func TestSignedWorkflowValidKeyUnknownAccount(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, _, _ := newTestSignedWorkflow(accounts, testSettings())

	key := security.NewActivationSigner([]byte("test-secret"), "activation").Issue("ghost")

	_, err := workflow.Activate(context.Background(), key, domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok || ae.Code != ActivationCodeNoSuchAccount {
		t.Fatalf("expected no_such_account, got %v", err)
	}
}

func TestSignedWorkflowRegistrationClosed(t *testing.T) {
	settings := testSettings()
	settings.Open = false
	accounts := newMockAccountRepository()
	workflow, _, _ := newTestSignedWorkflow(accounts, settings)

	_, err := workflow.Register(context.Background(), testSignupInput("alice", "alice@example.com"), domain.RequestContext{})
	if !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("expected ErrRegistrationClosed, got %v", err)
	}
	if accounts.count() != 0 {
		t.Fatal("closed registration must not create accounts")
	}
}

func TestSignedWorkflowReservedUsername(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, notifier, _ := newTestSignedWorkflow(accounts, testSettings())

	_, err := workflow.Register(context.Background(), testSignupInput("admin", "admin@example.com"), domain.RequestContext{})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if !hasCode(errs, "username", validate.CodeReservedName) {
		t.Fatalf("expected reserved_name on username, got %v", errs)
	}
	if accounts.count() != 0 {
		t.Fatal("rejected signup must not create an account")
	}
	if len(notifier.sent) != 0 {
		t.Fatal("rejected signup must not send email")
	}
}

func TestSignedWorkflowConfusableUsername(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, _, _ := newTestSignedWorkflow(accounts, testSettings())

	// Mixed-script homoglyph: Cyrillic о inside Latin letters.
	in := testSignupInput("gооgle", "someone@example.com")
	_, err := workflow.Register(context.Background(), in, domain.RequestContext{})
	errs, ok := AsValidationErrors(err)
	if !ok || !hasCode(errs, "username", validate.CodeConfusable) {
		t.Fatalf("expected confusable on username, got %v", err)
	}
}

func TestSignedWorkflowCollectsAllErrors(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, _, _ := newTestSignedWorkflow(accounts, testSettings())

	in := SignupInput{
		Username:        "admin",
		Email:           "not-an-email",
		Password:        testPassword,
		PasswordConfirm: "different",
	}
	_, err := workflow.Register(context.Background(), in, domain.RequestContext{})
	errs, ok := AsValidationErrors(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if !hasCode(errs, "username", validate.CodeReservedName) {
		t.Errorf("missing reserved_name: %v", errs)
	}
	if !hasCode(errs, "email", validate.CodeInvalidEmail) {
		t.Errorf("missing invalid_email: %v", errs)
	}
	if !hasCode(errs, "password_confirm", validate.CodePasswordMismatch) {
		t.Errorf("missing password_mismatch: %v", errs)
	}
	if accounts.count() != 0 {
		t.Fatal("rejected signup must not create an account")
	}
}

func TestSignedWorkflowDuplicateUsernameCaseFolded(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow, _, _ := newTestSignedWorkflow(accounts, testSettings())
	ctx := context.Background()

	if _, err := workflow.Register(ctx, testSignupInput("alice", "alice@example.com"), domain.RequestContext{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := workflow.Register(ctx, testSignupInput("ALICE", "other@example.com"), domain.RequestContext{})
	errs, ok := AsValidationErrors(err)
	if !ok || !hasCode(errs, "username", validate.CodeDuplicateUsername) {
		t.Fatalf("expected duplicate_username for case variant, got %v", err)
	}
}

func TestSignedWorkflowRequiresTOSWhenConfigured(t *testing.T) {
	settings := testSettings()
	settings.RequireTOS = true
	accounts := newMockAccountRepository()
	workflow, _, _ := newTestSignedWorkflow(accounts, settings)

	_, err := workflow.Register(context.Background(), testSignupInput("alice", "alice@example.com"), domain.RequestContext{})
	errs, ok := AsValidationErrors(err)
	if !ok || !hasCode(errs, "tos", validate.CodeTOSRequired) {
		t.Fatalf("expected tos_required, got %v", err)
	}
}

func hasCode(errs validate.Errors, field, code string) bool {
	for _, fe := range errs {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}
