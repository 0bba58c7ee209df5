package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ozon-order-bot/internal/core/config"
	"ozon-order-bot/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider is a mock OrderProvider for monitor tests.
type mockProvider struct {
	mu       sync.Mutex
	postings []domain.Posting
	listErr  error
	calls    int
}

func (m *mockProvider) ListPostings(ctx context.Context, status domain.Status, limit int) ([]domain.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.postings, nil
}

func (m *mockProvider) GetPosting(ctx context.Context, postingNumber string) (*domain.Posting, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProvider) ShipPosting(ctx context.Context, postingNumber string, packages []domain.Package) error {
	return errors.New("not implemented")
}

func (m *mockProvider) PackageLabel(ctx context.Context, postingNumbers []string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProvider) HealthCheck(ctx context.Context) error {
	return nil
}

// mockStore is an in-memory OrderStore for monitor tests.
type mockStore struct {
	mu      sync.Mutex
	seen    map[string]domain.Status
	markErr error
	hasErr  error
}

func newMockStore() *mockStore {
	return &mockStore{seen: map[string]domain.Status{}}
}

func (m *mockStore) HasSeen(ctx context.Context, postingNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasErr != nil {
		return false, m.hasErr
	}
	_, ok := m.seen[postingNumber]
	return ok, nil
}

func (m *mockStore) SeenStatus(ctx context.Context, postingNumber string) (domain.Status, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.seen[postingNumber]
	return status, ok, nil
}

func (m *mockStore) MarkSeen(ctx context.Context, postingNumber string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.seen[postingNumber] = status
	return nil
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.seen)), nil
}

// mockNotifier records sent messages.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	sendErr  error
}

func (m *mockNotifier) SendMessage(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockNotifier) SendDocument(ctx context.Context, filename string, data []byte) error {
	return nil
}

func (m *mockNotifier) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func testConfig() config.MonitorConfig {
	return config.MonitorConfig{
		IntervalSeconds:       300,
		MaxOrdersPerRequest:   100,
		NotificationBatchSize: 5,
	}
}

func posting(number string) domain.Posting {
	return domain.Posting{
		PostingNumber: number,
		Status:        domain.StatusAwaitingPackaging,
		ShipmentDate:  time.Date(2024, 6, 17, 10, 0, 0, 0, time.UTC),
	}
}

// TestMonitor_Check_EmptyStore verifies: store empty, API returns [A, B]
// => one batched notification covering both, store now contains {A, B}.
func TestMonitor_Check_EmptyStore(t *testing.T) {
	provider := &mockProvider{postings: []domain.Posting{posting("A"), posting("B")}}
	store := newMockStore()
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, testConfig())

	require.NoError(t, m.CheckNewOrders(context.Background()))

	messages := notifier.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "(2)")
	assert.Contains(t, messages[0], "A")
	assert.Contains(t, messages[0], "B")

	assert.Contains(t, store.seen, "A")
	assert.Contains(t, store.seen, "B")
}

// TestMonitor_Check_PartiallySeen verifies: store contains {A}, API returns
// [A, B] => notification covers B only.
func TestMonitor_Check_PartiallySeen(t *testing.T) {
	provider := &mockProvider{postings: []domain.Posting{posting("A"), posting("B")}}
	store := newMockStore()
	store.seen["A"] = domain.StatusAwaitingPackaging
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, testConfig())

	require.NoError(t, m.CheckNewOrders(context.Background()))

	messages := notifier.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "(1)")
	assert.Contains(t, messages[0], "B")
}

// TestMonitor_Check_AllSeen verifies that already-notified postings produce
// no additional notification.
func TestMonitor_Check_AllSeen(t *testing.T) {
	provider := &mockProvider{postings: []domain.Posting{posting("A")}}
	store := newMockStore()
	store.seen["A"] = domain.StatusAwaitingPackaging
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, testConfig())

	require.NoError(t, m.CheckNewOrders(context.Background()))
	assert.Empty(t, notifier.sent())
}

// TestMonitor_Check_RepeatedChecks verifies exactly one notification per
// posting across repeated polls.
func TestMonitor_Check_RepeatedChecks(t *testing.T) {
	provider := &mockProvider{postings: []domain.Posting{posting("A")}}
	store := newMockStore()
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, testConfig())
	ctx := context.Background()

	require.NoError(t, m.CheckNewOrders(ctx))
	require.NoError(t, m.CheckNewOrders(ctx))
	require.NoError(t, m.CheckNewOrders(ctx))

	assert.Len(t, notifier.sent(), 1)
}

// TestMonitor_Check_FetchError verifies that a fetch failure skips the tick
// without touching the store.
func TestMonitor_Check_FetchError(t *testing.T) {
	provider := &mockProvider{listErr: errors.New("api down")}
	store := newMockStore()
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, testConfig())

	err := m.CheckNewOrders(context.Background())
	require.Error(t, err)
	assert.Empty(t, notifier.sent())
	assert.Empty(t, store.seen)
}

// TestMonitor_Check_NotifyError verifies that postings are not marked seen
// when the notification fails, so the next tick retries them.
func TestMonitor_Check_NotifyError(t *testing.T) {
	provider := &mockProvider{postings: []domain.Posting{posting("A")}}
	store := newMockStore()
	notifier := &mockNotifier{sendErr: errors.New("telegram down")}

	m := NewMonitor(provider, store, notifier, testConfig())
	ctx := context.Background()

	require.Error(t, m.CheckNewOrders(ctx))
	assert.Empty(t, store.seen)

	// Delivery recovers: the posting is notified on the next tick.
	notifier.sendErr = nil
	require.NoError(t, m.CheckNewOrders(ctx))
	assert.Len(t, notifier.sent(), 1)
	assert.Contains(t, store.seen, "A")
}

// TestMonitor_Check_StoreErrorSkipsPosting verifies that a store read error
// skips the posting rather than notifying blindly.
func TestMonitor_Check_StoreErrorSkipsPosting(t *testing.T) {
	provider := &mockProvider{postings: []domain.Posting{posting("A")}}
	store := newMockStore()
	store.hasErr = errors.New("disk error")
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, testConfig())

	require.NoError(t, m.CheckNewOrders(context.Background()))
	assert.Empty(t, notifier.sent())
}

// TestMonitor_Check_StatusChange verifies renotification when enabled and
// the stored status differs.
func TestMonitor_Check_StatusChange(t *testing.T) {
	cfg := testConfig()
	cfg.NotifyOnStatusChange = true

	provider := &mockProvider{postings: []domain.Posting{posting("A")}}
	store := newMockStore()
	store.seen["A"] = domain.StatusAwaitingApprove
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, cfg)

	require.NoError(t, m.CheckNewOrders(context.Background()))

	require.Len(t, notifier.sent(), 1)
	assert.Equal(t, domain.StatusAwaitingPackaging, store.seen["A"])
}

// TestMonitor_Check_StatusChange_SameStatus verifies no renotification when
// the status is unchanged.
func TestMonitor_Check_StatusChange_SameStatus(t *testing.T) {
	cfg := testConfig()
	cfg.NotifyOnStatusChange = true

	provider := &mockProvider{postings: []domain.Posting{posting("A")}}
	store := newMockStore()
	store.seen["A"] = domain.StatusAwaitingPackaging
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, cfg)

	require.NoError(t, m.CheckNewOrders(context.Background()))
	assert.Empty(t, notifier.sent())
}

// TestMonitor_StartStop verifies lifecycle transitions and idempotence errors.
func TestMonitor_StartStop(t *testing.T) {
	cfg := testConfig()
	cfg.IntervalSeconds = 3600 // only the immediate first check fires

	provider := &mockProvider{}
	store := newMockStore()
	notifier := &mockNotifier{}

	m := NewMonitor(provider, store, notifier, cfg)
	ctx := context.Background()

	assert.ErrorIs(t, m.Stop(), ErrNotRunning)

	require.NoError(t, m.Start(ctx))
	assert.ErrorIs(t, m.Start(ctx), ErrAlreadyRunning)

	// Wait for the immediate first check.
	assert.Eventually(t, func() bool {
		provider.mu.Lock()
		defer provider.mu.Unlock()
		return provider.calls >= 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.ErrorIs(t, m.Stop(), ErrNotRunning)

	status, err := m.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.False(t, status.LastCheck.IsZero())
}

// TestMonitor_Status verifies the status snapshot contents.
func TestMonitor_Status(t *testing.T) {
	provider := &mockProvider{}
	store := newMockStore()
	store.seen["A"] = domain.StatusAwaitingPackaging
	store.seen["B"] = domain.StatusAwaitingPackaging

	m := NewMonitor(provider, store, &mockNotifier{}, testConfig())

	status, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, int64(2), status.Processed)
	assert.Equal(t, 5*time.Minute, status.Interval)
}
