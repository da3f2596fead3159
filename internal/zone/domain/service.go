package domain

import (
	"context"
	"errors"
)

// Resolver classifies a pincode pair into a pricing zone.
type Resolver interface {
	Resolve(ctx context.Context, originPincode, destinationPincode string) (*Resolution, error)
}

// Service is the package alias for Resolver.
type Service = Resolver

var (
	ErrInvalidZone = errors.New("invalid_zone")
)
