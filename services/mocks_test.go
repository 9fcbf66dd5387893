package services

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thinhchuht/ResiBuy-sub001/models"
)

// --- Mock cart repository ---

// mockCartRepo mirrors the store's compare-and-swap semantics under a mutex.
type mockCartRepo struct {
	mu     sync.Mutex
	carts  map[uuid.UUID]*models.Cart
	onFind func(cart *models.Cart) // runs after a read, before returning

	updateCalls int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[uuid.UUID]*models.Cart)}
}

func (m *mockCartRepo) seed(cart *models.Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart.ConcurrencyStamp == uuid.Nil {
		cart.ConcurrencyStamp = uuid.New()
	}
	m.carts[cart.ID] = cart
}

func (m *mockCartRepo) Create(_ context.Context, cart *models.Cart) error {
	m.seed(cart)
	return nil
}

func (m *mockCartRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	cart, ok := m.carts[id]
	if !ok {
		m.mu.Unlock()
		return nil, nil
	}
	copied := *cart
	m.mu.Unlock()

	if m.onFind != nil {
		m.onFind(&copied)
	}
	return &copied, nil
}

func (m *mockCartRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cart := range m.carts {
		if cart.UserID == userID {
			copied := *cart
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockCartRepo) UpdateCheckoutState(_ context.Context, cartID, expectedStamp uuid.UUID, isCheckingOut bool, expiredAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++

	cart, ok := m.carts[cartID]
	if !ok || cart.ConcurrencyStamp != expectedStamp {
		return false, nil
	}

	cart.IsCheckingOut = isCheckingOut
	cart.ExpiredCheckoutTime = expiredAt
	cart.ConcurrencyStamp = uuid.New()
	return true, nil
}

func (m *mockCartRepo) get(id uuid.UUID) models.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.carts[id]
}

// --- Mock voucher repository ---

type mockVoucherRepo struct {
	vouchers map[uuid.UUID]models.Voucher
}

func newMockVoucherRepo(vouchers ...models.Voucher) *mockVoucherRepo {
	m := &mockVoucherRepo{vouchers: make(map[uuid.UUID]models.Voucher)}
	for _, v := range vouchers {
		m.vouchers[v.ID] = v
	}
	return m
}

func (m *mockVoucherRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Voucher, error) {
	var out []models.Voucher
	for _, id := range ids {
		if v, ok := m.vouchers[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockVoucherRepo) FindActive(_ context.Context, _, _ int) ([]models.Voucher, int64, error) {
	var out []models.Voucher
	for _, v := range m.vouchers {
		if v.IsActive {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

// --- Fake cache ---

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	return data, ok, nil
}

func (f *fakeCache) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeCache) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// --- Mock publisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []models.CheckoutEvent
	err    error
}

func (m *mockPublisher) PublishCheckout(_ context.Context, event models.CheckoutEvent) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) published() []models.CheckoutEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CheckoutEvent(nil), m.events...)
}

// --- Mock gateway ---

type mockGateway struct {
	validateResult bool
	successResult  bool
	builtRefs      []string
}

func (m *mockGateway) BuildPaymentURL(_ float64, txnRef, _, _ string) string {
	m.builtRefs = append(m.builtRefs, txnRef)
	return "https://gateway.example/pay?vnp_TxnRef=" + txnRef
}

func (m *mockGateway) ValidateCallback(_ url.Values) bool { return m.validateResult }
func (m *mockGateway) IsSuccess(_ url.Values) bool        { return m.successResult }
func (m *mockGateway) TxnRef(params url.Values) string    { return params.Get("vnp_TxnRef") }
