package handler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"ozon-order-bot/internal/core/logger"
	monitorservice "ozon-order-bot/internal/features/monitor/service"
	notifyservice "ozon-order-bot/internal/features/notify/service"
	"ozon-order-bot/internal/features/orders/domain"
	orderservice "ozon-order-bot/internal/features/orders/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	// listFetchLimit is how many postings the list commands request.
	listFetchLimit = 20
	// listShowLimit is how many postings the list commands render.
	listShowLimit = 10
	// statsFetchLimit is how many postings the stats command counts.
	statsFetchLimit = 1000
)

const helpText = `🤖 <b>Ozon Seller Order Bot</b>

/orders — orders awaiting packaging
/deliver — orders awaiting shipment
/order &lt;posting&gt; — order details
/ship &lt;posting&gt; — assemble an order
/label &lt;posting&gt; — shipping label PDF
/monitor start|stop|status — control monitoring
/stats — order statistics
/help — this message`

// reply is the outcome of one command: a text message and/or a document.
type reply struct {
	text     string
	document *replyDocument
}

// replyDocument is a file attached to a reply.
type replyDocument struct {
	name string
	data []byte
}

// BotHandler routes Telegram commands to the order and monitor services.
type BotHandler struct {
	// bot is the Telegram client used for the update loop and replies.
	bot *tgbotapi.BotAPI
	// orders serves the listing and management commands.
	orders *orderservice.OrderService
	// monitor is the poll loop controlled by /monitor.
	monitor *monitorservice.Monitor
	// adminChatID is the only chat allowed to issue commands.
	adminChatID int64
}

// NewBotHandler creates a new BotHandler.
func NewBotHandler(bot *tgbotapi.BotAPI, orders *orderservice.OrderService, monitor *monitorservice.Monitor, adminChatID int64) *BotHandler {
	return &BotHandler{
		bot:         bot,
		orders:      orders,
		monitor:     monitor,
		adminChatID: adminChatID,
	}
}

// Run consumes Telegram updates until the context is cancelled.
func (h *BotHandler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := h.bot.GetUpdatesChan(u)
	logger.Get().Info("Telegram update loop started", zap.String("bot", h.bot.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			logger.Get().Info("Telegram update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate processes a single update. Only admin commands are served.
func (h *BotHandler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	chatID := update.Message.Chat.ID
	if !h.isAdmin(update.Message.From.ID) {
		logger.Get().Warn("Command from non-admin user",
			zap.Int64("user_id", update.Message.From.ID),
			zap.String("command", update.Message.Command()),
		)
		h.send(chatID, reply{text: "🚫 <b>Access denied</b>\n\nYou are not allowed to use this bot."})
		return
	}

	r := h.handleCommand(ctx, update.Message.Command(), update.Message.CommandArguments())
	h.send(chatID, r)
}

// handleCommand executes a command and returns the reply to send.
func (h *BotHandler) handleCommand(ctx context.Context, command, args string) reply {
	args = strings.TrimSpace(args)

	switch command {
	case "start", "help":
		return reply{text: helpText}
	case "orders":
		return h.listOrders(ctx, "Orders awaiting packaging", h.orders.ListAwaitingPackaging)
	case "deliver":
		return h.listOrders(ctx, "Orders awaiting shipment", h.orders.ListAwaitingDeliver)
	case "order":
		return h.orderDetails(ctx, args)
	case "ship":
		return h.shipOrder(ctx, args)
	case "label":
		return h.orderLabel(ctx, args)
	case "monitor":
		return h.monitorCommand(ctx, args)
	case "stats":
		return h.stats(ctx)
	default:
		return reply{text: "Unknown command. Use /help for the list of commands."}
	}
}

// listOrders runs a listing command against the given service method.
func (h *BotHandler) listOrders(ctx context.Context, title string, list func(context.Context, int) ([]domain.Posting, error)) reply {
	postings, err := list(ctx, listFetchLimit)
	if err != nil {
		return errorReply("Failed to load orders", err)
	}
	return reply{text: notifyservice.PostingListMessage(title, postings, listShowLimit)}
}

// orderDetails handles /order <posting>.
func (h *BotHandler) orderDetails(ctx context.Context, postingNumber string) reply {
	if postingNumber == "" {
		return reply{text: "Usage: /order <posting number>"}
	}

	posting, err := h.orders.GetPosting(ctx, postingNumber)
	if errors.Is(err, orderservice.ErrPostingNotFound) {
		return reply{text: fmt.Sprintf("❌ Order <b>%s</b> not found", html.EscapeString(postingNumber))}
	}
	if err != nil {
		return errorReply("Failed to load order", err)
	}
	return reply{text: notifyservice.PostingDetailsMessage(posting)}
}

// shipOrder handles /ship <posting>.
func (h *BotHandler) shipOrder(ctx context.Context, postingNumber string) reply {
	if postingNumber == "" {
		return reply{text: "Usage: /ship <posting number>"}
	}

	if err := h.orders.Ship(ctx, postingNumber); err != nil {
		return errorReply("Failed to ship order", err)
	}
	return reply{text: fmt.Sprintf("✅ Order <b>%s</b> assembled", html.EscapeString(postingNumber))}
}

// orderLabel handles /label <posting>.
func (h *BotHandler) orderLabel(ctx context.Context, postingNumber string) reply {
	if postingNumber == "" {
		return reply{text: "Usage: /label <posting number>"}
	}

	data, err := h.orders.Label(ctx, postingNumber)
	if err != nil {
		return errorReply("Failed to fetch label", err)
	}
	return reply{
		text: fmt.Sprintf("🏷️ Label for <b>%s</b>", html.EscapeString(postingNumber)),
		document: &replyDocument{
			name: fmt.Sprintf("label_%s.pdf", postingNumber),
			data: data,
		},
	}
}

// monitorCommand handles /monitor start|stop|status.
func (h *BotHandler) monitorCommand(ctx context.Context, args string) reply {
	switch args {
	case "start":
		err := h.monitor.Start(context.WithoutCancel(ctx))
		if errors.Is(err, monitorservice.ErrAlreadyRunning) {
			return reply{text: "✅ Monitoring is already running"}
		}
		if err != nil {
			return errorReply("Failed to start monitoring", err)
		}
		return reply{text: fmt.Sprintf("✅ Monitoring started (every %s)", h.monitor.Interval())}
	case "stop":
		err := h.monitor.Stop()
		if errors.Is(err, monitorservice.ErrNotRunning) {
			return reply{text: "❌ Monitoring is not running"}
		}
		if err != nil {
			return errorReply("Failed to stop monitoring", err)
		}
		return reply{text: "⏹️ Monitoring stopped"}
	case "status", "":
		status, err := h.monitor.Status(ctx)
		if err != nil {
			return errorReply("Failed to read monitoring status", err)
		}
		return reply{text: notifyservice.MonitorStatusMessage(status.Running, status.Processed, status.Interval, status.LastCheck)}
	default:
		return reply{text: "Usage: /monitor start|stop|status"}
	}
}

// stats handles /stats.
func (h *BotHandler) stats(ctx context.Context) reply {
	packaging, err := h.orders.ListAwaitingPackaging(ctx, statsFetchLimit)
	if err != nil {
		return errorReply("Failed to load statistics", err)
	}

	deliver, err := h.orders.ListAwaitingDeliver(ctx, statsFetchLimit)
	if err != nil {
		return errorReply("Failed to load statistics", err)
	}

	status, err := h.monitor.Status(ctx)
	if err != nil {
		return errorReply("Failed to load statistics", err)
	}

	return reply{text: notifyservice.StatsMessage(len(packaging), len(deliver), status.Processed, time.Now())}
}

// isAdmin reports whether the user may issue commands.
func (h *BotHandler) isAdmin(userID int64) bool {
	return userID == h.adminChatID
}

// send delivers a reply, logging failures instead of propagating them.
func (h *BotHandler) send(chatID int64, r reply) {
	if r.text != "" {
		msg := tgbotapi.NewMessage(chatID, r.text)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := h.bot.Send(msg); err != nil {
			logger.Get().Error("Failed to send reply", zap.Error(err))
		}
	}

	if r.document != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  r.document.name,
			Bytes: r.document.data,
		})
		if _, err := h.bot.Send(doc); err != nil {
			logger.Get().Error("Failed to send document", zap.Error(err))
		}
	}
}

// errorReply renders a command failure message.
func errorReply(prefix string, err error) reply {
	return reply{text: fmt.Sprintf("❌ %s: %s", prefix, html.EscapeString(err.Error()))}
}
