package port

import "context"

// Message is a rendered outbound email. Subject must already be collapsed to
// a single line by the renderer; implementations may reject multi-line
// subjects outright to prevent header injection.
type Message struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
}

// Mailer delivers activation instructions out-of-band. Delivery failures are
// surfaced to the caller; the workflows do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
