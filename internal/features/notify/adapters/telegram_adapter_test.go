package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTelegramNotifier_CancelledContext verifies that a cancelled context
// short-circuits before any network call is attempted.
func TestTelegramNotifier_CancelledContext(t *testing.T) {
	notifier := NewTelegramNotifier(nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := notifier.SendMessage(ctx, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	err = notifier.SendDocument(ctx, "label.pdf", []byte("%PDF"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
