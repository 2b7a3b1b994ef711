package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderItem is one line entry of an order. FoodItemID is an optional catalog
// reference; Price is left nil when the client did not declare one.
type OrderItem struct {
	FoodItemID string   `json:"food_item_id,omitempty"`
	Name       string   `json:"name,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Quantity   int      `json:"quantity"`
}

// Order represents one checkout attempt that was durably recorded.
// (UserID, ClientKey) is unique: repeated submissions with the same key
// resolve to the same order.
type Order struct {
	ID        string
	UserID    string
	Items     []OrderItem
	Total     float64
	Status    OrderStatus
	ClientKey string
	CreatedAt time.Time
}
