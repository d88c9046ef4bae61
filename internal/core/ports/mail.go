package ports

import "context"

// Email is a single outgoing message with a plain-text body and an HTML alternative.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender delivers an Email. Implementations must be safe for concurrent use.
type EmailSender interface {
	Send(ctx context.Context, email Email) error
}
