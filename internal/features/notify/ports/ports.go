package ports

import "context"

// Notifier defines the interface for delivering messages to the admin channel.
// This is a Secondary Port (Driven Port).
type Notifier interface {
	// SendMessage delivers an HTML-formatted text message.
	SendMessage(ctx context.Context, text string) error

	// SendDocument delivers a file (e.g., a label PDF) with the given name.
	SendDocument(ctx context.Context, filename string, data []byte) error
}
