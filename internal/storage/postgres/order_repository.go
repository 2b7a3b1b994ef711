package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kalind02/food-ordering-api/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// FindByClientKey returns the order for (userID, clientKey), or nil when no
// such order exists.
func (r *OrderRepository) FindByClientKey(ctx context.Context, userID, clientKey string) (*domain.Order, error) {
	const query = `
SELECT id, user_id, items, total, status, client_key, created_at
FROM orders
WHERE user_id = $1 AND client_key = $2`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, userID, clientKey))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find order by client key: %w", err)
	}
	return order, nil
}

// Create inserts the order. The unique index on (user_id, client_key) turns
// a duplicate submission into domain.ErrDuplicateOrder.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, user_id, items, total, status, client_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, stmt,
		order.ID,
		order.UserID,
		items,
		order.Total,
		order.Status,
		order.ClientKey,
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOrder
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// ListByUser returns all orders owned by userID, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const query = `
SELECT id, user_id, items, total, status, client_key, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate orders: %w", rows.Err())
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	var items []byte
	if err := row.Scan(&o.ID, &o.UserID, &items, &o.Total, &status, &o.ClientKey, &o.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
