package domain

import (
	"context"
	"errors"
)

// Store holds tariffs and answers point lookups. Admin mutations version
// cards by activation flag; nothing is deleted.
type Store interface {
	Create(ctx context.Context, req CreateRequest) (*RateCard, error)
	Update(ctx context.Context, req UpdateRequest) (*RateCard, error)
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, courier string) ([]RateCard, error)
	Find(ctx context.Context, key LookupKey) (*RateCard, error)
}

// Service is the package alias for Store.
type Service = Store

var (
	ErrInvalidCourier     = errors.New("invalid_courier")
	ErrInvalidZone        = errors.New("invalid_zone")
	ErrInvalidMode        = errors.New("invalid_mode")
	ErrInvalidRate        = errors.New("invalid_rate")
	ErrInvalidWeightSlab  = errors.New("invalid_weight_slab")
	ErrInvalidID          = errors.New("invalid_rate_card_id")
	ErrRateCardNotFound   = errors.New("rate_card_not_found")
	ErrDuplicateActive    = errors.New("duplicate_active_rate_card")
	ErrNoRateCardForZone  = errors.New("no_rate_card_for_zone")
)
