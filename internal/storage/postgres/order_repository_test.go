package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Kalind02/food-ordering-api/internal/domain"
	"github.com/Kalind02/food-ordering-api/internal/testutil"
)

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewOrderRepository(pool)
	price := 250.0

	newOrder := func(userID, clientKey string, createdAt time.Time) domain.Order {
		return domain.Order{
			ID:        uuid.NewString(),
			UserID:    userID,
			Items:     []domain.OrderItem{{Name: "Pizza", Price: &price, Quantity: 2}},
			Total:     500,
			Status:    domain.OrderStatusPending,
			ClientKey: clientKey,
			CreatedAt: createdAt,
		}
	}

	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("create and find round trip", func(t *testing.T) {
		order := newOrder("u1", "key-rt", now)
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create: %v", err)
		}

		found, err := repo.FindByClientKey(ctx, "u1", "key-rt")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found == nil {
			t.Fatalf("expected order, got nil")
		}
		if found.ID != order.ID || found.Total != 500 || found.Status != domain.OrderStatusPending {
			t.Fatalf("unexpected order: %+v", found)
		}
		if len(found.Items) != 1 || found.Items[0].Name != "Pizza" || found.Items[0].Quantity != 2 {
			t.Fatalf("unexpected items: %+v", found.Items)
		}
		if found.Items[0].Price == nil || *found.Items[0].Price != 250 {
			t.Fatalf("unexpected item price: %+v", found.Items[0].Price)
		}
	})

	t.Run("find unknown key returns nil", func(t *testing.T) {
		found, err := repo.FindByClientKey(ctx, "u1", "missing")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found != nil {
			t.Fatalf("expected nil, got %+v", found)
		}
	})

	t.Run("duplicate key maps to ErrDuplicateOrder", func(t *testing.T) {
		first := newOrder("u1", "key-dup", now)
		if err := repo.Create(ctx, first); err != nil {
			t.Fatalf("create: %v", err)
		}

		err := repo.Create(ctx, newOrder("u1", "key-dup", now))
		if err != domain.ErrDuplicateOrder {
			t.Fatalf("expected ErrDuplicateOrder, got %v", err)
		}
	})

	t.Run("uniqueness is scoped per owner", func(t *testing.T) {
		if err := repo.Create(ctx, newOrder("u1", "shared-key", now)); err != nil {
			t.Fatalf("u1 create: %v", err)
		}
		if err := repo.Create(ctx, newOrder("u2", "shared-key", now)); err != nil {
			t.Fatalf("u2 create with same key: %v", err)
		}
	})

	t.Run("list by user newest first", func(t *testing.T) {
		testutil.TruncateAll(t, ctx, pool)

		older := newOrder("u1", "key-old", now.Add(-2*time.Hour))
		newer := newOrder("u1", "key-new", now)
		other := newOrder("u2", "key-other", now)
		for _, o := range []domain.Order{older, newer, other} {
			if err := repo.Create(ctx, o); err != nil {
				t.Fatalf("create: %v", err)
			}
		}

		orders, err := repo.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].ID != newer.ID || orders[1].ID != older.ID {
			t.Fatalf("expected newest first, got %s then %s", orders[0].ID, orders[1].ID)
		}
	})
}
