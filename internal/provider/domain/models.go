package domain

import (
	"time"

	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	"github.com/aerwok/rocketrybox/internal/weight"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/shopspring/decimal"
)

// ShipmentParams are the courier-neutral inputs for serviceability and
// quoting.
type ShipmentParams struct {
	OriginPincode      string
	DestinationPincode string
	Zone               zonedomain.Zone
	Mode               ratecarddomain.ShipMode
	ActualWeightKg     float64
	Dimensions         *weight.Dimensions
	IsCOD              bool
	DeclaredValue      decimal.Decimal
	RateBand           string
}

// Serviceability reports whether a courier can deliver to a pincode.
type Serviceability struct {
	Serviceable bool   `json:"serviceable"`
	Details     string `json:"details,omitempty"`
}

// BookingRequest carries the details a courier needs to create a shipment.
type BookingRequest struct {
	OrderRef           string
	OriginPincode      string
	DestinationPincode string
	Mode               ratecarddomain.ShipMode
	WeightKg           float64
	IsCOD              bool
	CODAmount          decimal.Decimal
	ConsigneeName      string
	ConsigneeAddress   string
	ConsigneePhone     string
}

// Booking is the outcome of a book call. Booking never fails hard: when the
// courier API rejects or errors, the adapter returns a manual-processing
// fallback so the order can still be completed by the ops team.
type Booking struct {
	AWB              string `json:"awb,omitempty"`
	TrackingURL      string `json:"tracking_url,omitempty"`
	ManualProcessing bool   `json:"manual_processing"`
	Notes            string `json:"notes,omitempty"`
}

// TrackingEvent is one scan in a shipment's history.
type TrackingEvent struct {
	Status   string    `json:"status"`
	Location string    `json:"location,omitempty"`
	At       time.Time `json:"at"`
}

// Tracking is the current state and scan history for an AWB.
type Tracking struct {
	AWB     string          `json:"awb"`
	Status  string          `json:"status"`
	History []TrackingEvent `json:"history"`
}

// Cancellation reports whether the courier confirmed a cancel request.
type Cancellation struct {
	Confirmed bool   `json:"confirmed"`
	Details   string `json:"details,omitempty"`
}
