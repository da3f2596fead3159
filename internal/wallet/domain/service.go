package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Ledger is the only sanctioned mutator of seller wallet balances. Debits
// are serialized per seller at the storage level: the balance decrement
// carries a sufficiency guard, so concurrent debits cannot both consume the
// same funds.
type Ledger interface {
	GetBalance(ctx context.Context, sellerID snowflake.ID) (decimal.Decimal, error)
	Debit(ctx context.Context, req DebitRequest) (*Transaction, error)
	Credit(ctx context.Context, req CreditRequest) (*Transaction, error)
	ListTransactions(ctx context.Context, sellerID snowflake.ID, limit int) ([]Transaction, error)
}

// Service is the package alias for Ledger.
type Service = Ledger

var (
	ErrInvalidSeller             = errors.New("invalid_seller")
	ErrSellerNotFound            = errors.New("seller_not_found")
	ErrInvalidAmount             = errors.New("invalid_amount")
	ErrInvalidTransactionType    = errors.New("invalid_transaction_type")
	ErrInsufficientWalletBalance = errors.New("insufficient_wallet_balance")
)
