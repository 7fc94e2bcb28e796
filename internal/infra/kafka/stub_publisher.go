package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs user.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"account_id":    event.AccountID,
		"username":      event.Username,
		"email":         event.Email,
		"status":        event.Status,
		"workflow":      event.Workflow,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent(EventTypeUserRegistered, event.AccountID, event.RegisteredAt, payload)
	return nil
}

// PublishAccountActivated logs user.activated events.
func (p *StubPublisher) PublishAccountActivated(_ context.Context, event domain.AccountActivatedEvent) error {
	payload := map[string]any{
		"account_id":   event.AccountID,
		"username":     event.Username,
		"workflow":     event.Workflow,
		"activated_at": event.ActivatedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent(EventTypeUserActivated, event.AccountID, event.ActivatedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
