package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ozon-order-bot/internal/core/config"
	"ozon-order-bot/internal/core/logger"
	notifyports "ozon-order-bot/internal/features/notify/ports"
	notifyservice "ozon-order-bot/internal/features/notify/service"
	"ozon-order-bot/internal/features/orders/domain"
	"ozon-order-bot/internal/features/orders/ports"

	"go.uber.org/zap"
)

var (
	// ErrAlreadyRunning is returned when the monitor is started twice.
	ErrAlreadyRunning = errors.New("monitoring already running")
	// ErrNotRunning is returned when the monitor is stopped while idle.
	ErrNotRunning = errors.New("monitoring not running")
)

// Status describes the current state of the monitor.
type Status struct {
	// Running reports whether the poll loop is active.
	Running bool `json:"running"`
	// Polling reports whether a check is in flight right now.
	Polling bool `json:"polling"`
	// Interval is the delay between checks.
	Interval time.Duration `json:"interval"`
	// LastCheck is when the last check finished (zero if never).
	LastCheck time.Time `json:"last_check"`
	// Processed is the number of postings notified so far.
	Processed int64 `json:"processed"`
}

// Monitor polls the seller platform for new postings on a fixed interval,
// deduplicates against the order store, and relays notifications.
type Monitor struct {
	provider ports.OrderProvider
	store    ports.OrderStore
	notifier notifyports.Notifier
	cfg      config.MonitorConfig

	mu        sync.Mutex
	running   bool
	polling   bool
	lastCheck time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewMonitor creates a new Monitor.
func NewMonitor(provider ports.OrderProvider, store ports.OrderStore, notifier notifyports.Notifier, cfg config.MonitorConfig) *Monitor {
	return &Monitor{
		provider: provider,
		store:    store,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Interval returns the configured delay between checks.
func (m *Monitor) Interval() time.Duration {
	return time.Duration(m.cfg.IntervalSeconds) * time.Second
}

// Start launches the poll loop. The first check runs immediately.
func (m *Monitor) Start(parent context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(parent)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.loop(ctx)

	logger.Get().Info("Order monitoring started", zap.Duration("interval", m.Interval()))
	return nil
}

// Stop halts the poll loop and waits for the in-flight check to finish.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNotRunning
	}
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	logger.Get().Info("Order monitoring stopped")
	return nil
}

// Status returns the current monitor state.
func (m *Monitor) Status(ctx context.Context) (Status, error) {
	processed, err := m.store.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to count processed postings: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Running:   m.running,
		Polling:   m.polling,
		Interval:  m.Interval(),
		LastCheck: m.lastCheck,
		Processed: processed,
	}, nil
}

// loop drives the periodic checks until the context is cancelled.
func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.Interval())
	defer ticker.Stop()

	m.runCheck(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runCheck(ctx)
		}
	}
}

// runCheck executes one tick. All failures are logged and the loop continues.
func (m *Monitor) runCheck(ctx context.Context) {
	m.mu.Lock()
	m.polling = true
	m.mu.Unlock()

	if err := m.CheckNewOrders(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Get().Error("Order check failed", zap.Error(err))
	}

	m.mu.Lock()
	m.polling = false
	m.lastCheck = time.Now()
	m.mu.Unlock()
}

// CheckNewOrders fetches postings awaiting packaging, notifies the unseen
// ones, and marks them seen. Postings are only marked after the notification
// was delivered, so a failed send is retried on the next tick.
func (m *Monitor) CheckNewOrders(ctx context.Context) error {
	postings, err := m.provider.ListPostings(ctx, domain.StatusAwaitingPackaging, m.cfg.MaxOrdersPerRequest)
	if err != nil {
		return fmt.Errorf("failed to fetch postings: %w", err)
	}

	if len(postings) == 0 {
		logger.Get().Debug("No postings awaiting packaging")
		return nil
	}

	fresh := make([]domain.Posting, 0, len(postings))
	for _, posting := range postings {
		isNew, err := m.isNew(ctx, posting)
		if err != nil {
			logger.Get().Warn("Failed to check posting against store",
				zap.String("posting_number", posting.PostingNumber),
				zap.Error(err),
			)
			continue
		}
		if isNew {
			fresh = append(fresh, posting)
		}
	}

	if len(fresh) == 0 {
		logger.Get().Debug("All postings already notified")
		return nil
	}

	message := notifyservice.NewPostingsMessage(fresh, m.cfg.NotificationBatchSize)
	if err := m.notifier.SendMessage(ctx, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	for _, posting := range fresh {
		if err := m.store.MarkSeen(ctx, posting.PostingNumber, posting.Status); err != nil {
			logger.Get().Warn("Failed to mark posting seen",
				zap.String("posting_number", posting.PostingNumber),
				zap.Error(err),
			)
		}
	}

	logger.Get().Info("Notified about new postings", zap.Int("count", len(fresh)))
	return nil
}

// isNew decides whether the posting warrants a notification.
func (m *Monitor) isNew(ctx context.Context, posting domain.Posting) (bool, error) {
	if m.cfg.NotifyOnStatusChange {
		status, found, err := m.store.SeenStatus(ctx, posting.PostingNumber)
		if err != nil {
			return false, err
		}
		return !found || status != posting.Status, nil
	}

	seen, err := m.store.HasSeen(ctx, posting.PostingNumber)
	if err != nil {
		return false, err
	}
	return !seen, nil
}
