package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"ozon-order-bot/internal/features/orders/domain"
)

// shipmentDateLayout is how shipment deadlines are rendered in messages.
const shipmentDateLayout = "02.01.2006 15:04"

// NewPostingsMessage renders the notification for newly discovered postings.
// At most batchSize postings are listed; the rest are summarized in a trailer.
func NewPostingsMessage(postings []domain.Posting, batchSize int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔔 <b>New orders awaiting packaging (%d)</b>\n\n", len(postings))

	shown := postings
	if batchSize > 0 && len(shown) > batchSize {
		shown = shown[:batchSize]
	}

	for _, p := range shown {
		fmt.Fprintf(&b, "📦 <b>%s</b>\n", html.EscapeString(p.PostingNumber))
		fmt.Fprintf(&b, "Ship by: %s\n\n", formatDate(p.ShipmentDate))
	}

	if rest := len(postings) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "… and %d more\n\n", rest)
	}

	b.WriteString("Use /orders to view all orders")
	return b.String()
}

// PostingListMessage renders a titled list of postings for the list commands.
// At most maxShown postings are included.
func PostingListMessage(title string, postings []domain.Posting, maxShown int) string {
	if len(postings) == 0 {
		return fmt.Sprintf("✅ %s: none found", title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 <b>%s (%d)</b>\n\n", html.EscapeString(title), len(postings))

	shown := postings
	if maxShown > 0 && len(shown) > maxShown {
		shown = shown[:maxShown]
	}

	for _, p := range shown {
		fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(p.PostingNumber))
		fmt.Fprintf(&b, "📅 %s\n\n", formatDate(p.ShipmentDate))
	}

	if rest := len(postings) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "… and %d more\n", rest)
	}

	return b.String()
}

// PostingDetailsMessage renders the full detail view of a posting.
func PostingDetailsMessage(p *domain.Posting) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📦 <b>Order %s</b>\n\n", html.EscapeString(p.PostingNumber))
	fmt.Fprintf(&b, "Status: <b>%s</b>\n", html.EscapeString(p.Status.Label()))
	if p.OrderNumber != "" {
		fmt.Fprintf(&b, "Order number: %s\n", html.EscapeString(p.OrderNumber))
	}
	fmt.Fprintf(&b, "Ship by: %s\n", formatDate(p.ShipmentDate))

	if len(p.Products) > 0 {
		b.WriteString("\n<b>Products:</b>\n")
		for _, product := range p.Products {
			fmt.Fprintf(&b, "• %s ×%d", html.EscapeString(product.Name), product.Quantity)
			if product.Price != "" {
				fmt.Fprintf(&b, " — %s %s", formatPrice(product.Price), html.EscapeString(product.CurrencyCode))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// StatsMessage renders the order statistics view.
func StatsMessage(packagingCount, deliverCount int, processed int64, now time.Time) string {
	var b strings.Builder

	b.WriteString("📊 <b>Order statistics</b>\n\n")
	fmt.Fprintf(&b, "📦 Awaiting packaging: <b>%d</b>\n", packagingCount)
	fmt.Fprintf(&b, "🚚 Awaiting shipment: <b>%d</b>\n", deliverCount)
	fmt.Fprintf(&b, "🔔 Notifications processed: <b>%d</b>\n\n", processed)
	fmt.Fprintf(&b, "📅 Updated: %s", now.Format(shipmentDateLayout))

	return b.String()
}

// MonitorStatusMessage renders the monitoring status view.
func MonitorStatusMessage(running bool, processed int64, interval time.Duration, lastCheck time.Time) string {
	state := "🔴 Stopped"
	if running {
		state = "🟢 Running"
	}

	last := "never"
	if !lastCheck.IsZero() {
		last = lastCheck.Format("15:04:05")
	}

	var b strings.Builder
	b.WriteString("📊 <b>Monitoring status</b>\n\n")
	fmt.Fprintf(&b, "State: %s\n", state)
	fmt.Fprintf(&b, "Orders processed: %d\n", processed)
	fmt.Fprintf(&b, "Check interval: %s\n", interval)
	fmt.Fprintf(&b, "Last check: %s", last)

	return b.String()
}

// formatDate renders a timestamp, or a dash when unset.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format(shipmentDateLayout)
}

// formatPrice trims the trailing zeros the Seller API pads prices with.
func formatPrice(price string) string {
	if !strings.Contains(price, ".") {
		return price
	}
	trimmed := strings.TrimRight(price, "0")
	return strings.TrimSuffix(trimmed, ".")
}
