package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/core/port"
	"github.com/avelir/registration-service/internal/infra/config"
)

const schemaVersion = "1.0"

// Lifecycle event types, published under the configured topic prefix.
const (
	EventTypeUserRegistered = "user.registered"
	EventTypeUserActivated  = "user.activated"
)

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AccountID string           `json:"account_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes user.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    string         `json:"account_id"`
		Username     string         `json:"username"`
		Email        string         `json:"email"`
		Status       string         `json:"status"`
		Workflow     string         `json:"workflow"`
		RegisteredAt time.Time      `json:"registered_at"`
		RequestID    string         `json:"request_id,omitempty"`
		IPAddress    *string        `json:"ip_address,omitempty"`
		UserAgent    *string        `json:"user_agent,omitempty"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:    event.AccountID,
		Username:     event.Username,
		Email:        event.Email,
		Status:       event.Status,
		Workflow:     event.Workflow,
		RegisteredAt: event.RegisteredAt.UTC(),
		RequestID:    event.Request.RequestID,
		IPAddress:    event.Request.IP,
		UserAgent:    event.Request.UserAgent,
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, EventTypeUserRegistered, event.AccountID, event.RegisteredAt, payload)
}

// PublishAccountActivated publishes user.activated events.
func (p *EventPublisher) PublishAccountActivated(ctx context.Context, event domain.AccountActivatedEvent) error {
	payload := struct {
		AccountID   string         `json:"account_id"`
		Username    string         `json:"username"`
		Workflow    string         `json:"workflow"`
		ActivatedAt time.Time      `json:"activated_at"`
		RequestID   string         `json:"request_id,omitempty"`
		IPAddress   *string        `json:"ip_address,omitempty"`
		UserAgent   *string        `json:"user_agent,omitempty"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		AccountID:   event.AccountID,
		Username:    event.Username,
		Workflow:    event.Workflow,
		ActivatedAt: event.ActivatedAt.UTC(),
		RequestID:   event.Request.RequestID,
		IPAddress:   event.Request.IP,
		UserAgent:   event.Request.UserAgent,
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, EventTypeUserActivated, event.AccountID, event.ActivatedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
