package domain

import (
	"context"
	"errors"

	providerdomain "github.com/aerwok/rocketrybox/internal/provider/domain"
)

// Comparator fans out to all active couriers and selects the cheapest
// serviceable option.
type Comparator interface {
	Compare(ctx context.Context, params providerdomain.ShipmentParams) (*Comparison, error)
}

// Service is the package alias for Comparator.
type Service = Comparator

var (
	ErrNoServiceableProvider = errors.New("no_serviceable_provider")
)
