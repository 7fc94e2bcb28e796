package usecase

import (
	"context"
	"testing"

	"github.com/avelir/registration-service/internal/core/domain"
)

func TestOneStepWorkflowRegistersActive(t *testing.T) {
	accounts := newMockAccountRepository()
	notifier := &stubNotifier{}
	publisher := &stubPublisher{}
	workflow := NewOneStepWorkflow(accounts, notifier, publisher, nil, testSettings())
	ctx := context.Background()

	result, err := workflow.Register(ctx, testSignupInput("carol", "carol@example.com"), domain.RequestContext{})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.ActivationRequired {
		t.Fatal("one-step signup must not require activation")
	}
	if !result.Account.IsActive {
		t.Fatal("expected account active immediately")
	}
	if result.Account.ActivatedAt == nil {
		t.Fatal("expected ActivatedAt to be set")
	}

	if len(notifier.sent) != 0 {
		t.Fatal("one-step signup must not send an activation email")
	}
	if len(notifier.welcomed) != 1 {
		t.Fatalf("expected 1 welcome email, got %d", len(notifier.welcomed))
	}

	if len(publisher.registered) != 1 || len(publisher.activated) != 1 {
		t.Fatalf("expected registered and activated events, got %d/%d",
			len(publisher.registered), len(publisher.activated))
	}
}

func TestOneStepWorkflowHasNoActivationStep(t *testing.T) {
	accounts := newMockAccountRepository()
	workflow := NewOneStepWorkflow(accounts, &stubNotifier{}, &stubPublisher{}, nil, testSettings())

	_, err := workflow.Activate(context.Background(), "any-key", domain.RequestContext{})
	ae, ok := AsActivationError(err)
	if !ok || ae.Code != ActivationCodeInvalidKey {
		t.Fatalf("expected invalid_key, got %v", err)
	}
}
