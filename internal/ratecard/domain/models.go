package domain

import (
	"time"

	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ShipMode is the transport mode a tariff applies to.
type ShipMode string

const (
	ModeSurface ShipMode = "surface"
	ModeAir     ShipMode = "air"
)

// Valid reports whether m is a known transport mode.
func (m ShipMode) Valid() bool {
	return m == ModeSurface || m == ModeAir
}

// DefaultRateBand is the tariff band applied to sellers without a custom band.
const DefaultRateBand = "default"

// RateCard is an administrator-managed tariff for a (courier, zone, mode,
// band) tuple. At most one card per tuple may be active; the partial unique
// index ux_rate_cards_active_tuple enforces that at the storage boundary.
type RateCard struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	Courier        string          `gorm:"type:text;not null" json:"courier"`
	Zone           zonedomain.Zone `gorm:"type:text;not null" json:"zone"`
	Mode           ShipMode        `gorm:"type:text;not null" json:"mode"`
	BaseRate       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"base_rate"`
	AdditionalRate decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"additional_rate"`
	BaseWeightKg   decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"base_weight_kg"`
	IncrementKg    decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"increment_kg"`
	MinWeightKg    decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"min_weight_kg"`
	CODFlatAmount  decimal.Decimal `gorm:"column:cod_flat_amount;type:numeric(12,2);not null" json:"cod_flat_amount"`
	CODPercent     decimal.Decimal `gorm:"column:cod_percent;type:numeric(5,2);not null" json:"cod_percent"`
	RateBand       string          `gorm:"type:text;not null;default:default" json:"rate_band"`
	Active         bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RateCard) TableName() string { return "rate_cards" }

// CreateRequest carries the admin payload for a new tariff.
type CreateRequest struct {
	Courier        string          `json:"courier"`
	Zone           zonedomain.Zone `json:"zone"`
	Mode           ShipMode        `json:"mode"`
	BaseRate       decimal.Decimal `json:"base_rate"`
	AdditionalRate decimal.Decimal `json:"additional_rate"`
	BaseWeightKg   decimal.Decimal `json:"base_weight_kg"`
	IncrementKg    decimal.Decimal `json:"increment_kg"`
	MinWeightKg    decimal.Decimal `json:"min_weight_kg"`
	CODFlatAmount  decimal.Decimal `json:"cod_flat_amount"`
	CODPercent     decimal.Decimal `json:"cod_percent"`
	RateBand       string          `json:"rate_band"`
}

// UpdateRequest replaces the mutable pricing fields of an existing card.
type UpdateRequest struct {
	ID             string          `json:"id"`
	BaseRate       decimal.Decimal `json:"base_rate"`
	AdditionalRate decimal.Decimal `json:"additional_rate"`
	BaseWeightKg   decimal.Decimal `json:"base_weight_kg"`
	IncrementKg    decimal.Decimal `json:"increment_kg"`
	MinWeightKg    decimal.Decimal `json:"min_weight_kg"`
	CODFlatAmount  decimal.Decimal `json:"cod_flat_amount"`
	CODPercent     decimal.Decimal `json:"cod_percent"`
}

// LookupKey identifies the active tariff for a quote.
type LookupKey struct {
	Courier  string
	Zone     zonedomain.Zone
	Mode     ShipMode
	RateBand string
}
