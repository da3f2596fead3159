package domain

import (
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	"github.com/aerwok/rocketrybox/internal/weight"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/shopspring/decimal"
)

// Request carries everything needed to price one courier for one shipment.
type Request struct {
	Courier        string
	Zone           zonedomain.Zone
	Mode           ratecarddomain.ShipMode
	ActualWeightKg float64
	Dimensions     *weight.Dimensions
	IsCOD          bool
	DeclaredValue  decimal.Decimal
	RateBand       string
}

// Quote is a fully-taxed price for one courier. Quotes are request-scoped:
// they are either discarded or folded into an order's payment breakdown,
// never persisted on their own.
type Quote struct {
	Courier            string                  `json:"courier"`
	Zone               zonedomain.Zone         `json:"zone"`
	Mode               ratecarddomain.ShipMode `json:"mode"`
	ChargeableWeightKg float64                 `json:"chargeable_weight_kg"`
	BaseRate           decimal.Decimal         `json:"base_rate"`
	AdditionalCharges  decimal.Decimal         `json:"additional_charges"`
	CODCharge          decimal.Decimal         `json:"cod_charge"`
	Subtotal           decimal.Decimal         `json:"subtotal"`
	GST                decimal.Decimal         `json:"gst"`
	TotalAmount        decimal.Decimal         `json:"total_amount"`
}
