package adapters

import (
	"context"
	"fmt"

	"ozon-order-bot/internal/core/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier implements the Notifier interface using the Telegram Bot API.
// It pushes messages to the configured admin chat.
type TelegramNotifier struct {
	// bot is the shared Telegram client.
	bot *tgbotapi.BotAPI
	// chatID is the admin chat receiving notifications.
	chatID int64
}

// NewTelegramNotifier creates a new TelegramNotifier on top of an existing bot client.
func NewTelegramNotifier(bot *tgbotapi.BotAPI, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
	}
}

// SendMessage delivers an HTML-formatted text message to the admin chat.
// The Telegram client has no context support, so cancellation is checked upfront.
func (n *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	logger.Get().Debug("Telegram message sent", zap.Int64("chat_id", n.chatID))
	return nil
}

// SendDocument delivers a file to the admin chat.
func (n *TelegramNotifier) SendDocument(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(n.chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	})

	if _, err := n.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram document: %w", err)
	}

	logger.Get().Debug("Telegram document sent",
		zap.Int64("chat_id", n.chatID),
		zap.String("filename", filename),
	)
	return nil
}
