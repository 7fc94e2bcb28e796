package port

import (
	"context"

	"github.com/avelir/registration-service/internal/core/domain"
)

// EventPublisher publishes registration lifecycle events to the message bus.
// Publishing is fire-and-forget from the workflows' point of view: a
// publisher failure is logged by the caller and never aborts the workflow.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountActivated(ctx context.Context, event domain.AccountActivatedEvent) error
}
