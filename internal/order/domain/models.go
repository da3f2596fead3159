package domain

import (
	"time"

	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	rateshopdomain "github.com/aerwok/rocketrybox/internal/rateshop/domain"
	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	"github.com/aerwok/rocketrybox/internal/weight"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BindingState tracks the order-binding saga. Aborted is reachable from any
// non-terminal state; TransactionLinked is the terminal success.
type BindingState string

const (
	StateQuoting           BindingState = "quoting"
	StateRateSelected      BindingState = "rate_selected"
	StateWalletDebited     BindingState = "wallet_debited"
	StateOrderPersisted    BindingState = "order_persisted"
	StateTransactionLinked BindingState = "transaction_linked"
	StateAborted           BindingState = "aborted"
)

// OrderStatus is the persisted lifecycle of a booked order.
type OrderStatus string

const (
	StatusCreated   OrderStatus = "created"
	StatusCancelled OrderStatus = "cancelled"
)

// Order embeds the winning quote's payment breakdown and references the
// wallet transaction that funded it. Orders exist only after a successful
// debit.
type Order struct {
	ID                  snowflake.ID            `gorm:"primaryKey" json:"id"`
	OrderRef            uuid.UUID               `gorm:"type:uuid;not null;unique" json:"order_ref"`
	SellerID            snowflake.ID            `gorm:"not null;index" json:"seller_id"`
	Courier             string                  `gorm:"type:text;not null" json:"courier"`
	Zone                zonedomain.Zone         `gorm:"type:text;not null" json:"zone"`
	Mode                ratecarddomain.ShipMode `gorm:"type:text;not null" json:"mode"`
	Status              OrderStatus             `gorm:"type:text;not null" json:"status"`
	AWB                 *string                 `gorm:"type:text" json:"awb,omitempty"`
	TrackingURL         *string                 `gorm:"type:text" json:"tracking_url,omitempty"`
	ManualProcessing    bool                    `gorm:"not null;default:false" json:"manual_processing"`
	ChargeableWeightKg  decimal.Decimal         `gorm:"type:numeric(6,2);not null" json:"chargeable_weight_kg"`
	ShippingCharge      decimal.Decimal         `gorm:"type:numeric(12,2);not null" json:"shipping_charge"`
	CODCharge           decimal.Decimal         `gorm:"column:cod_charge;type:numeric(12,2);not null" json:"cod_charge"`
	GST                 decimal.Decimal         `gorm:"column:gst;type:numeric(12,2);not null" json:"gst"`
	TotalAmount         decimal.Decimal         `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	WalletTransactionID *snowflake.ID           `gorm:"column:wallet_transaction_id" json:"wallet_transaction_id,omitempty"`
	CreatedAt           time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// ShipmentRequest is the common input for quoting and booking.
type ShipmentRequest struct {
	SellerID           snowflake.ID
	OriginPincode      string
	DestinationPincode string
	Mode               ratecarddomain.ShipMode
	ActualWeightKg     float64
	Dimensions         *weight.Dimensions
	IsCOD              bool
	DeclaredValue      decimal.Decimal
}

// CreateOrderRequest books the cheapest serviceable option for a shipment.
type CreateOrderRequest struct {
	ShipmentRequest

	ConsigneeName    string
	ConsigneeAddress string
	ConsigneePhone   string
}

// BindingResult is the orchestrator's terminal outcome for a booking run.
type BindingResult struct {
	State       BindingState               `json:"state"`
	Order       *Order                     `json:"order,omitempty"`
	Quote       *quotedomain.Quote         `json:"quote,omitempty"`
	Transaction *walletdomain.Transaction  `json:"transaction,omitempty"`
	Comparison  *rateshopdomain.Comparison `json:"comparison,omitempty"`
}
