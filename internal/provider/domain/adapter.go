package domain

import (
	"context"
	"errors"

	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
)

// Adapter is the boundary through which one courier is consumed. Each
// implementation translates provider-specific payloads into this contract;
// nothing outside the adapter sees a courier's wire format.
type Adapter interface {
	Name() string
	CheckServiceability(ctx context.Context, pincode string) (*Serviceability, error)
	Quote(ctx context.Context, params ShipmentParams) (*quotedomain.Quote, error)
	BookShipment(ctx context.Context, req BookingRequest) (*Booking, error)
	TrackShipment(ctx context.Context, awb string) (*Tracking, error)
	CancelShipment(ctx context.Context, awb string) (*Cancellation, error)
}

// Per-provider failures. These are non-fatal to a comparison run: the
// comparison service records them and keeps going.
var (
	ErrProviderUnavailable = errors.New("provider_unavailable")
	ErrNotServiceable      = errors.New("not_serviceable")
	ErrTimeout             = errors.New("provider_timeout")
	ErrUnknownProvider     = errors.New("unknown_provider")
	ErrUnknownShipment     = errors.New("unknown_shipment")
)
