package domain

import (
	"context"
	"errors"
)

// Engine prices a shipment for a single courier. Pricing is deterministic
// and side-effect free: identical inputs produce identical quotes.
type Engine interface {
	Price(ctx context.Context, req Request) (*Quote, error)
}

// Service is the package alias for Engine.
type Service = Engine

var (
	ErrInvalidDeclaredValue = errors.New("invalid_declared_value")
)
