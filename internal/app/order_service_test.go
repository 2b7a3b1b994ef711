package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kalind02/food-ordering-api/internal/clock"
	"github.com/Kalind02/food-ordering-api/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestOrderService_SubmitOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	validItems := []OrderItemInput{
		{Name: "Pizza", Price: floatPtr(250), Quantity: intPtr(2)},
	}

	t.Run("creates pending order", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		res, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "key-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Created {
			t.Fatalf("expected Created=true")
		}
		if res.Order.ID == "" {
			t.Fatalf("expected order ID to be set")
		}
		if res.Order.Status != domain.OrderStatusPending {
			t.Fatalf("expected status Pending, got %s", res.Order.Status)
		}
		if res.Order.Total != 500 {
			t.Fatalf("expected total 500, got %v", res.Order.Total)
		}
		if res.Order.CreatedAt != now {
			t.Fatalf("expected created_at %v, got %v", now, res.Order.CreatedAt)
		}
		if len(repo.all("u1")) != 1 {
			t.Fatalf("expected exactly one stored order")
		}
	})

	t.Run("replay returns stored order even when payload differs", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		first, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "key-1",
		})
		if err != nil {
			t.Fatalf("first submit: %v", err)
		}

		// The idempotency key, not the payload, is the deduplication
		// identity: a different total must not change the stored order.
		second, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     []OrderItemInput{{Name: "Burger", Quantity: intPtr(1)}},
			Total:     floatPtr(999),
			ClientKey: "key-1",
		})
		if err != nil {
			t.Fatalf("second submit: %v", err)
		}
		if second.Created {
			t.Fatalf("expected Created=false on replay")
		}
		if second.Order.ID != first.Order.ID {
			t.Fatalf("expected same order ID, got %s and %s", first.Order.ID, second.Order.ID)
		}
		if second.Order.Total != 500 {
			t.Fatalf("expected stored total 500, got %v", second.Order.Total)
		}
		if len(repo.all("u1")) != 1 {
			t.Fatalf("expected exactly one stored order")
		}
	})

	t.Run("same key for different users creates distinct orders", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		res1, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "shared-key",
		})
		if err != nil {
			t.Fatalf("u1 submit: %v", err)
		}
		res2, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u2",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "shared-key",
		})
		if err != nil {
			t.Fatalf("u2 submit: %v", err)
		}
		if !res1.Created || !res2.Created {
			t.Fatalf("expected both submissions to create")
		}
		if res1.Order.ID == res2.Order.ID {
			t.Fatalf("expected distinct orders per user")
		}
	})

	t.Run("missing idempotency key rejected before storage", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID: "u1",
			Items:  []OrderItemInput{{Name: "Burger", Quantity: intPtr(1)}},
			Total:  floatPtr(150),
		})
		if err != domain.ErrIdempotencyKeyRequired {
			t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
		}
		if repo.calls() != 0 {
			t.Fatalf("expected no storage access, got %d calls", repo.calls())
		}
	})

	t.Run("empty items rejected", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     nil,
			Total:     floatPtr(150),
			ClientKey: "key-1",
		})
		if err != domain.ErrInvalidItems {
			t.Fatalf("expected ErrInvalidItems, got %v", err)
		}
		if repo.calls() != 0 {
			t.Fatalf("expected no storage access")
		}
	})

	t.Run("negative or missing total rejected", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(-1),
			ClientKey: "key-1",
		})
		if err != domain.ErrInvalidTotal {
			t.Fatalf("expected ErrInvalidTotal for -1, got %v", err)
		}

		_, err = svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     nil,
			ClientKey: "key-1",
		})
		if err != domain.ErrInvalidTotal {
			t.Fatalf("expected ErrInvalidTotal for nil, got %v", err)
		}
		if repo.calls() != 0 {
			t.Fatalf("expected no storage access")
		}
	})

	t.Run("zero total accepted", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		res, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(0),
			ClientKey: "key-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Created {
			t.Fatalf("expected Created=true")
		}
	})

	t.Run("quantity falls back to legacy qty then one", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := NewOrderService(repo, clock.NewFixed(now))

		res, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID: "u1",
			Items: []OrderItemInput{
				{Name: "Pizza", Quantity: intPtr(2)},
				{Name: "Burger", LegacyQty: intPtr(3)},
				{Name: "Fries"},
			},
			Total:     floatPtr(600),
			ClientKey: "key-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		got := res.Order.Items
		if len(got) != 3 {
			t.Fatalf("expected 3 items, got %d", len(got))
		}
		if got[0].Quantity != 2 || got[1].Quantity != 3 || got[2].Quantity != 1 {
			t.Fatalf("unexpected quantities: %d, %d, %d", got[0].Quantity, got[1].Quantity, got[2].Quantity)
		}
	})

	t.Run("re-reads existing order when insert loses the race", func(t *testing.T) {
		stored := domain.Order{
			ID:        "order-raced",
			UserID:    "u1",
			Items:     []domain.OrderItem{{Name: "Pizza", Quantity: 2}},
			Total:     500,
			Status:    domain.OrderStatusPending,
			ClientKey: "key-1",
			CreatedAt: now,
		}
		repo := &raceOrderRepo{winner: stored}
		svc := NewOrderService(repo, clock.NewFixed(now))

		res, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "key-1",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Created {
			t.Fatalf("expected Created=false after losing the race")
		}
		if res.Order.ID != "order-raced" {
			t.Fatalf("expected the winner's order, got %s", res.Order.ID)
		}
	})

	t.Run("conflict with unreadable winner surfaces storage error", func(t *testing.T) {
		repo := &vanishedWinnerRepo{}
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "key-1",
		})
		if err == nil {
			t.Fatalf("expected an error")
		}
		if errors.Is(err, domain.ErrDuplicateOrder) {
			t.Fatalf("expected a storage error, got the internal conflict sentinel: %v", err)
		}
	})

	t.Run("storage failure surfaces", func(t *testing.T) {
		repo := newFakeOrderRepo()
		repo.createErr = errTestStorage
		svc := NewOrderService(repo, clock.NewFixed(now))

		_, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "key-1",
		})
		if err != errTestStorage {
			t.Fatalf("expected storage error to surface, got %v", err)
		}
	})

	t.Run("publishes only on creation", func(t *testing.T) {
		repo := newFakeOrderRepo()
		pub := &capturingPublisher{}
		svc := NewOrderService(repo, clock.NewFixed(now), WithPublisher(pub))

		in := SubmitOrderInput{
			UserID:    "u1",
			Items:     validItems,
			Total:     floatPtr(500),
			ClientKey: "key-1",
		}
		if _, err := svc.SubmitOrder(context.Background(), in); err != nil {
			t.Fatalf("first submit: %v", err)
		}
		if _, err := svc.SubmitOrder(context.Background(), in); err != nil {
			t.Fatalf("second submit: %v", err)
		}
		if pub.count() != 1 {
			t.Fatalf("expected exactly one published event, got %d", pub.count())
		}
	})
}

func TestOrderService_SubmitOrder_Concurrent(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, clock.NewFixed(now))

	const n = 16
	ids := make([]string, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			res, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
				UserID:    "u1",
				Items:     []OrderItemInput{{Name: "Pizza", Quantity: intPtr(i + 1)}},
				Total:     floatPtr(float64(100 * (i + 1))),
				ClientKey: "key-racy",
			})
			if err != nil {
				return err
			}
			ids[i] = res.Order.ID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent submit: %v", err)
	}

	stored := repo.all("u1")
	if len(stored) != 1 {
		t.Fatalf("expected exactly one durable order, got %d", len(stored))
	}
	for i, id := range ids {
		if id != stored[0].ID {
			t.Fatalf("call %d returned order %s, want %s", i, id, stored[0].ID)
		}
	}
}

func TestOrderService_ListOrders(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()
	svc := NewOrderService(repo, clock.NewFixed(now))

	repo.add(domain.Order{ID: "o1", UserID: "u1", ClientKey: "k1", CreatedAt: now.Add(-2 * time.Hour)})
	repo.add(domain.Order{ID: "o2", UserID: "u1", ClientKey: "k2", CreatedAt: now})
	repo.add(domain.Order{ID: "o3", UserID: "u2", ClientKey: "k1", CreatedAt: now})

	orders, err := svc.ListOrders(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "o2" || orders[1].ID != "o1" {
		t.Fatalf("expected newest first, got %s then %s", orders[0].ID, orders[1].ID)
	}
}

var errTestStorage = errors.New("storage down")

// fakeOrderRepo enforces the (user, client key) unique constraint the way
// the real store does, so the race branch is exercised the same way.
type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order // keyed by userID + "\x00" + clientKey
	callCount int
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (f *fakeOrderRepo) key(userID, clientKey string) string {
	return userID + "\x00" + clientKey
}

func (f *fakeOrderRepo) FindByClientKey(_ context.Context, userID, clientKey string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	order, ok := f.orders[f.key(userID, clientKey)]
	if !ok {
		return nil, nil
	}
	copied := order
	return &copied, nil
}

func (f *fakeOrderRepo) Create(_ context.Context, order domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	if f.createErr != nil {
		return f.createErr
	}
	k := f.key(order.UserID, order.ClientKey)
	if _, exists := f.orders[k]; exists {
		return domain.ErrDuplicateOrder
	}
	f.orders[k] = order
	return nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	orders := f.byUserLocked(userID)
	// Newest first, matching the store's ordering contract.
	for i := 0; i < len(orders); i++ {
		for j := i + 1; j < len(orders); j++ {
			if orders[j].CreatedAt.After(orders[i].CreatedAt) {
				orders[i], orders[j] = orders[j], orders[i]
			}
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) add(order domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[f.key(order.UserID, order.ClientKey)] = order
}

func (f *fakeOrderRepo) all(userID string) []domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUserLocked(userID)
}

func (f *fakeOrderRepo) byUserLocked(userID string) []domain.Order {
	var orders []domain.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders
}

func (f *fakeOrderRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// raceOrderRepo simulates a concurrent winner: the lookup sees nothing, the
// insert hits the unique constraint, the re-read finds the winner's order.
type raceOrderRepo struct {
	winner domain.Order
	looked bool
}

func (r *raceOrderRepo) FindByClientKey(_ context.Context, _, _ string) (*domain.Order, error) {
	if r.looked {
		copied := r.winner
		return &copied, nil
	}
	r.looked = true
	return nil, nil
}

func (r *raceOrderRepo) Create(_ context.Context, _ domain.Order) error {
	return domain.ErrDuplicateOrder
}

func (r *raceOrderRepo) ListByUser(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

// vanishedWinnerRepo reports a duplicate key on insert but never finds the
// winning order, as if the store lost the row between conflict and re-read.
type vanishedWinnerRepo struct{}

func (r *vanishedWinnerRepo) FindByClientKey(_ context.Context, _, _ string) (*domain.Order, error) {
	return nil, nil
}

func (r *vanishedWinnerRepo) Create(_ context.Context, _ domain.Order) error {
	return domain.ErrDuplicateOrder
}

func (r *vanishedWinnerRepo) ListByUser(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.Order
}

func (p *capturingPublisher) PublishOrderCreated(_ context.Context, order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, order)
	return nil
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
