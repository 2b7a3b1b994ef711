package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Kalind02/food-ordering-api/internal/clock"
	"github.com/Kalind02/food-ordering-api/internal/domain"
)

type OrderRepository interface {
	FindByClientKey(ctx context.Context, userID, clientKey string) (*domain.Order, error)
	Create(ctx context.Context, order domain.Order) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// OrderEventPublisher announces newly created orders. Publishing is best
// effort; a failure never fails the submission.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
}

type OrderService struct {
	repo      OrderRepository
	clock     clock.Clock
	publisher OrderEventPublisher
	logger    *slog.Logger
}

func NewOrderService(repo OrderRepository, clk clock.Clock, opts ...OrderServiceOption) *OrderService {
	svc := &OrderService{
		repo:   repo,
		clock:  clk,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type OrderServiceOption func(*OrderService)

// WithPublisher enables order-created events.
func WithPublisher(p OrderEventPublisher) OrderServiceOption {
	return func(s *OrderService) {
		s.publisher = p
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) OrderServiceOption {
	return func(s *OrderService) {
		if l != nil {
			s.logger = l
		}
	}
}

// OrderItemInput is one line entry as submitted by the client. Quantity and
// LegacyQty are pointers so absence is distinguishable from zero; LegacyQty
// carries the old "qty" field still sent by older clients.
type OrderItemInput struct {
	FoodItemID string
	Name       string
	Price      *float64
	Quantity   *int
	LegacyQty  *int
}

type SubmitOrderInput struct {
	UserID    string
	Items     []OrderItemInput
	Total     *float64
	ClientKey string
}

type SubmitOrderResult struct {
	Order   domain.Order
	Created bool
}

// SubmitOrder places an order idempotently. The (UserID, ClientKey) pair is
// the deduplication identity: a repeated submission returns the stored order
// unchanged even when the new payload differs. Concurrency safety rests on
// the store's unique constraint for that pair, not on any application lock.
func (s *OrderService) SubmitOrder(ctx context.Context, in SubmitOrderInput) (SubmitOrderResult, error) {
	if in.ClientKey == "" {
		return SubmitOrderResult{}, domain.ErrIdempotencyKeyRequired
	}
	if len(in.Items) == 0 {
		return SubmitOrderResult{}, domain.ErrInvalidItems
	}
	if in.Total == nil || *in.Total < 0 {
		return SubmitOrderResult{}, domain.ErrInvalidTotal
	}

	existing, err := s.repo.FindByClientKey(ctx, in.UserID, in.ClientKey)
	if err != nil {
		return SubmitOrderResult{}, err
	}
	if existing != nil {
		return SubmitOrderResult{Order: *existing, Created: false}, nil
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Items:     normalizeItems(in.Items),
		Total:     *in.Total,
		Status:    domain.OrderStatusPending,
		ClientKey: in.ClientKey,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Create(ctx, order); err != nil {
		// A concurrent submission with the same key won the race between the
		// lookup and the insert. Re-read and return what it created.
		if errors.Is(err, domain.ErrDuplicateOrder) {
			existing, findErr := s.repo.FindByClientKey(ctx, in.UserID, in.ClientKey)
			if findErr != nil {
				return SubmitOrderResult{}, findErr
			}
			if existing != nil {
				return SubmitOrderResult{Order: *existing, Created: false}, nil
			}
			// Orders are never deleted, so the winner must be readable.
			return SubmitOrderResult{}, fmt.Errorf("re-read order after duplicate key conflict: no order found for user %s", in.UserID)
		}
		return SubmitOrderResult{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Warn("publish order created failed", "order_id", order.ID, "error", err)
		}
	}

	return SubmitOrderResult{Order: order, Created: true}, nil
}

// ListOrders returns the principal's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func normalizeItems(items []OrderItemInput) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		qty := 1
		switch {
		case it.Quantity != nil:
			qty = *it.Quantity
		case it.LegacyQty != nil:
			qty = *it.LegacyQty
		}
		out = append(out, domain.OrderItem{
			FoodItemID: it.FoodItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   qty,
		})
	}
	return out
}
