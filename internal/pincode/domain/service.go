package domain

import (
	"context"
	"errors"
)

// Directory resolves postal codes to their geographic record.
type Directory interface {
	Lookup(ctx context.Context, pincode string) (*Record, error)
}

// Service is the package alias for Directory.
type Service = Directory

var (
	ErrInvalidPincode = errors.New("invalid_pincode")
	ErrUnknownPincode = errors.New("unknown_pincode")
)
