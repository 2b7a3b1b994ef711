package domain

import "errors"

var (
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrInvalidItems           = errors.New("items are required")
	ErrInvalidTotal           = errors.New("total must be a number >= 0")
	ErrDuplicateOrder         = errors.New("order already exists for idempotency key")
	ErrRestaurantNotFound     = errors.New("restaurant not found")
	ErrContactFieldsRequired  = errors.New("name, email and message are required")
	ErrInvalidID              = errors.New("invalid id")
)
