package domain

import (
	"context"
	"errors"

	providerdomain "github.com/aerwok/rocketrybox/internal/provider/domain"
	rateshopdomain "github.com/aerwok/rocketrybox/internal/rateshop/domain"
)

// Orchestrator sequences zone resolution, rate comparison, wallet debit,
// order persistence, and transaction linkage. It is the only component
// permitted to trigger wallet mutations.
type Orchestrator interface {
	QuoteShipment(ctx context.Context, req ShipmentRequest) (*rateshopdomain.Comparison, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*BindingResult, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	TrackOrder(ctx context.Context, orderID string) (*providerdomain.Tracking, error)
	CancelOrder(ctx context.Context, orderID string) (*Order, error)
}

// Service is the package alias for Orchestrator.
type Service = Orchestrator

var (
	ErrInvalidOrderID     = errors.New("invalid_order_id")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrOrderNotBooked     = errors.New("order_not_booked")
	ErrOrderCancelled     = errors.New("order_already_cancelled")
	ErrPersistenceFailure = errors.New("order_persistence_failure")
)
