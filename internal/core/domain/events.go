package domain

import "time"

// RequestContext carries origin metadata from the HTTP layer into events.
type RequestContext struct {
	RequestID string
	IP        *string
	UserAgent *string
}

// AccountRegisteredEvent represents the payload for signup.user.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Username     string
	Email        string
	Status       string
	Workflow     string
	RegisteredAt time.Time
	Request      RequestContext
	Metadata     map[string]any
}

// AccountActivatedEvent represents the payload for signup.user.activated messages.
type AccountActivatedEvent struct {
	EventID     string
	AccountID   string
	Username    string
	ActivatedAt time.Time
	Workflow    string
	Request     RequestContext
	Metadata    map[string]any
}
