package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType labels ledger entries.
type TransactionType string

const (
	TransactionDebit    TransactionType = "debit"
	TransactionCredit   TransactionType = "credit"
	TransactionRecharge TransactionType = "recharge"
)

// Seller holds the prepaid wallet balance. The balance is mutated only by
// the wallet ledger's debit/credit operations; no other code path writes it.
type Seller struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"type:text;not null" json:"name"`
	Email         string          `gorm:"type:text;not null;unique" json:"email"`
	WalletBalance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"wallet_balance"`
	RateBand      *string         `gorm:"type:text" json:"rate_band,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Seller) TableName() string { return "sellers" }

// Transaction is an immutable, append-only ledger row. ClosingBalance
// snapshots the wallet immediately after the entry, so consecutive rows for
// a seller form an internally consistent chain.
type Transaction struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	SellerID       snowflake.ID    `gorm:"not null;index" json:"seller_id"`
	Type           TransactionType `gorm:"type:text;not null" json:"type"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ClosingBalance decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"closing_balance"`
	Reason         string          `gorm:"type:text;not null" json:"reason"`
	OrderRef       *uuid.UUID      `gorm:"type:uuid" json:"order_ref,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "wallet_transactions" }

// DebitRequest debits a seller's wallet. OrderRef is generated before the
// debit so the ledger row is born linked to its order.
type DebitRequest struct {
	SellerID snowflake.ID
	Amount   decimal.Decimal
	Reason   string
	OrderRef *uuid.UUID
}

// CreditRequest credits a seller's wallet.
type CreditRequest struct {
	SellerID snowflake.ID
	Amount   decimal.Decimal
	Reason   string
	Type     TransactionType
	OrderRef *uuid.UUID
}
