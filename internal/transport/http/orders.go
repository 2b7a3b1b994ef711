package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Kalind02/food-ordering-api/internal/app"
	"github.com/Kalind02/food-ordering-api/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

// OrderSubmitter is the minimal interface needed to place an order.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, in app.SubmitOrderInput) (app.SubmitOrderResult, error)
}

// OrderLister is the minimal interface needed to list a user's orders.
type OrderLister interface {
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

// HandleSubmitOrder returns an HTTP handler for idempotent order submission.
// A replayed idempotency key answers 200 with the stored order; a fresh key
// answers 201. The payload shape is identical in both cases.
func HandleSubmitOrder(svc OrderSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "no token provided")
			return
		}

		var req submitOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		// Header wins; body clientKey is a fallback for older clients.
		clientKey := r.Header.Get(idempotencyHeader)
		if clientKey == "" {
			clientKey = req.ClientKey
		}

		items := make([]app.OrderItemInput, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, app.OrderItemInput{
				FoodItemID: it.FoodItemID,
				Name:       it.Name,
				Price:      it.Price,
				Quantity:   it.Quantity,
				LegacyQty:  it.Qty,
			})
		}

		res, err := svc.SubmitOrder(r.Context(), app.SubmitOrderInput{
			UserID:    userID,
			Items:     items,
			Total:     req.Total,
			ClientKey: clientKey,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrIdempotencyKeyRequired):
				writeError(w, http.StatusBadRequest, codeIdempotencyRequired, err.Error())
			case errors.Is(err, domain.ErrInvalidItems):
				writeError(w, http.StatusBadRequest, codeInvalidItems, err.Error())
			case errors.Is(err, domain.ErrInvalidTotal):
				writeError(w, http.StatusBadRequest, codeInvalidTotal, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		writeJSON(w, status, toOrderResponse(res.Order))
	}
}

// HandleListOrders returns an HTTP handler for the user's order history.
func HandleListOrders(svc OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "no token provided")
			return
		}

		orders, err := svc.ListOrders(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			out = append(out, toOrderResponse(order))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type submitOrderRequest struct {
	Items     []orderItemRequest `json:"items"`
	Total     *float64           `json:"total"`
	ClientKey string             `json:"clientKey"`
}

type orderItemRequest struct {
	FoodItemID string   `json:"foodItem"`
	Name       string   `json:"name"`
	Price      *float64 `json:"price"`
	Quantity   *int     `json:"quantity"`
	Qty        *int     `json:"qty"`
}

type orderResponse struct {
	ID        string              `json:"id"`
	Items     []orderItemResponse `json:"items"`
	Total     float64             `json:"total"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	FoodItemID string   `json:"food_item_id,omitempty"`
	Name       string   `json:"name,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Quantity   int      `json:"quantity"`
}

func toOrderResponse(order domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, orderItemResponse{
			FoodItemID: it.FoodItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		})
	}
	return orderResponse{
		ID:        order.ID,
		Items:     items,
		Total:     order.Total,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}
}
