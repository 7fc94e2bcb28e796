package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/infra/security"
)

func newTestStoredKeyWorkflow(accounts *mockAccountRepository, activations *mockActivationRepository, settings Settings) (*StoredKeyWorkflow, *stubNotifier, *stubPublisher) {
	notifier := &stubNotifier{}
	publisher := &stubPublisher{}
	return NewStoredKeyWorkflow(accounts, activations, notifier, publisher, nil, settings), notifier, publisher
}

func TestStoredKeyWorkflowRegisterAndActivate(t *testing.T) {
	accounts := newMockAccountRepository()
	activations := newMockActivationRepository()
	workflow, notifier, publisher := newTestStoredKeyWorkflow(accounts, activations, testSettings())
	ctx := context.Background()

	result, err := workflow.Register(ctx, testSignupInput("bob", "bob@example.com"), domain.RequestContext{})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.Account.IsActive {
		t.Fatal("expected account to be created inactive")
	}

	key := notifier.lastKey()
	if key == "" {
		t.Fatal("expected an activation email carrying a key")
	}

	// Only the hash is persisted.
	record, err := activations.GetByKeyHash(ctx, security.HashToken(key))
	if err != nil {
		t.Fatalf("expected stored record for key hash: %v", err)
	}
	if record.KeyHash == key {
		t.Fatal("raw key must not be stored")
	}

	activated, err := workflow.Activate(ctx, key, domain.RequestContext{})
	if err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if !activated.Account.IsActive {
		t.Fatal("expected account active after activation")
	}
	if len(publisher.activated) != 1 {
		t.Fatalf("expected 1 activated event, got %d", len(publisher.activated))
	}
}

func TestStoredKeyWorkflowKeyIsSingleUse(t *testing.T) {
	accounts := newMockAccountRepository()
	activations := newMockActivationRepository()
	workflow, notifier, _ := newTestStoredKeyWorkflow(accounts, activations, testSettings())
	ctx := context.Background()

	if _, err := workflow.Register(ctx, testSignupInput("bob", "bob@example.com"), domain.RequestContext{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	key := notifier.lastKey()

	if _, err := workflow.Activate(ctx, key, domain.RequestContext{}); err != nil {
		t.Fatalf("first Activate returned error: %v", err)
	}

	_, err := workflow.Activate(ctx, key, domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok || ae.Code != ActivationCodeAlreadyActivated {
		t.Fatalf("expected already_activated on reuse, got %v", err)
	}
}

func TestStoredKeyWorkflowUnknownKey(t *testing.T) {
	accounts := newMockAccountRepository()
	activations := newMockActivationRepository()
	workflow, _, _ := newTestStoredKeyWorkflow(accounts, activations, testSettings())

	_, err := workflow.Activate(context.Background(), "no-such-key", domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok || ae.Code != ActivationCodeInvalidKey {
		t.Fatalf("expected invalid_key, got %v", err)
	}
}

func TestStoredKeyWorkflowExpiredKey(t *testing.T) {
	settings := testSettings()
	settings.ActivationWindow = -time.Hour // record expires immediately
	accounts := newMockAccountRepository()
	activations := newMockActivationRepository()
	workflow, notifier, _ := newTestStoredKeyWorkflow(accounts, activations, settings)
	ctx := context.Background()

	if _, err := workflow.Register(ctx, testSignupInput("bob", "bob@example.com"), domain.RequestContext{}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := workflow.Activate(ctx, notifier.lastKey(), domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok || ae.Code != ActivationCodeExpired {
		t.Fatalf("expected expired, got %v", err)
	}

	account, err := accounts.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if account.IsActive {
		t.Fatal("expired key must not activate the account")
	}
}

func TestSweepServiceRemovesExpiredRegistrations(t *testing.T) {
	accounts := newMockAccountRepository()
	activations := newMockActivationRepository()
	ctx := context.Background()

	old := time.Now().UTC().Add(-30 * 24 * time.Hour)
	stale := domain.Account{
		ID:           "stale",
		Username:     "stale",
		Email:        "stale@example.com",
		Status:       domain.AccountStatusPending,
		RegisteredAt: old,
	}
	if err := accounts.Create(ctx, stale); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := activations.Create(ctx, domain.ActivationRecord{
		ID:        "rec",
		AccountID: "stale",
		KeyHash:   "hash",
		Status:    domain.ActivationStatusPending,
		CreatedAt: old,
		ExpiresAt: old.Add(7 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("Create record returned error: %v", err)
	}

	fresh := domain.Account{
		ID:           "fresh",
		Username:     "fresh",
		Email:        "fresh@example.com",
		Status:       domain.AccountStatusPending,
		RegisteredAt: time.Now().UTC(),
	}
	if err := accounts.Create(ctx, fresh); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	sweeper := NewSweepService(accounts, activations, 7*24*time.Hour)
	result, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if result.Accounts != 1 {
		t.Errorf("expected 1 swept account, got %d", result.Accounts)
	}
	if result.ActivationRecords != 1 {
		t.Errorf("expected 1 swept record, got %d", result.ActivationRecords)
	}
	if accounts.count() != 1 {
		t.Errorf("expected fresh account to survive, have %d accounts", accounts.count())
	}
}
