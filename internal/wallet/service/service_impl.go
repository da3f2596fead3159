package service

import (
	"context"
	"strings"

	"github.com/aerwok/rocketrybox/internal/clock"
	"github.com/aerwok/rocketrybox/internal/events"
	"github.com/aerwok/rocketrybox/internal/observability/metrics"
	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service implements the wallet ledger over the sellers and
// wallet_transactions tables. Balances are never read through a cache.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	outbox  *events.Outbox
	metrics *metrics.PipelineMetrics
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Outbox *events.Outbox
}

func NewService(p Params) walletdomain.Ledger {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("wallet.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		outbox:  p.Outbox,
		metrics: metrics.Pipeline(),
	}
}

func (s *Service) GetBalance(ctx context.Context, sellerID snowflake.ID) (decimal.Decimal, error) {
	if sellerID == 0 {
		return decimal.Zero, walletdomain.ErrInvalidSeller
	}
	balance, found, err := s.readBalance(ctx, s.db, sellerID)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, walletdomain.ErrSellerNotFound
	}
	return balance, nil
}

// Debit atomically decrements the seller balance with a sufficiency guard.
// The guarded UPDATE is the serialization point: under concurrent debits the
// database applies decrements one at a time and rejects any that would
// overdraft, so a lost-update race cannot corrupt the balance.
func (s *Service) Debit(ctx context.Context, req walletdomain.DebitRequest) (*walletdomain.Transaction, error) {
	if req.SellerID == 0 {
		return nil, walletdomain.ErrInvalidSeller
	}
	if !req.Amount.IsPositive() {
		return nil, walletdomain.ErrInvalidAmount
	}
	reason := strings.TrimSpace(req.Reason)

	var txn walletdomain.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		result := tx.Exec(
			`UPDATE sellers
			 SET wallet_balance = wallet_balance - ?, updated_at = ?
			 WHERE id = ? AND wallet_balance >= ?`,
			req.Amount, now, req.SellerID, req.Amount,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			_, found, err := s.readBalance(ctx, tx, req.SellerID)
			if err != nil {
				return err
			}
			if !found {
				return walletdomain.ErrSellerNotFound
			}
			return walletdomain.ErrInsufficientWalletBalance
		}

		closing, _, err := s.readBalance(ctx, tx, req.SellerID)
		if err != nil {
			return err
		}

		txn = walletdomain.Transaction{
			ID:             s.genID.Generate(),
			SellerID:       req.SellerID,
			Type:           walletdomain.TransactionDebit,
			Amount:         req.Amount,
			ClosingBalance: closing,
			Reason:         reason,
			OrderRef:       req.OrderRef,
			CreatedAt:      now,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			SellerID: req.SellerID,
			Type:     events.EventWalletDebited,
			Payload: map[string]any{
				"transaction_id":  txn.ID.String(),
				"amount":          req.Amount.String(),
				"closing_balance": closing.String(),
				"reason":          reason,
			},
			DedupeKey: "wallet_debited:" + txn.ID.String(),
		})
	})
	if err != nil {
		if err == walletdomain.ErrInsufficientWalletBalance {
			s.metrics.IncWalletDebitRejected()
		}
		return nil, err
	}

	return &txn, nil
}

// Credit increments the seller balance; credits always succeed for existing
// sellers.
func (s *Service) Credit(ctx context.Context, req walletdomain.CreditRequest) (*walletdomain.Transaction, error) {
	if req.SellerID == 0 {
		return nil, walletdomain.ErrInvalidSeller
	}
	if !req.Amount.IsPositive() {
		return nil, walletdomain.ErrInvalidAmount
	}
	entryType := req.Type
	if entryType == "" {
		entryType = walletdomain.TransactionCredit
	}
	if entryType != walletdomain.TransactionCredit && entryType != walletdomain.TransactionRecharge {
		return nil, walletdomain.ErrInvalidTransactionType
	}
	reason := strings.TrimSpace(req.Reason)

	var txn walletdomain.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		result := tx.Exec(
			`UPDATE sellers
			 SET wallet_balance = wallet_balance + ?, updated_at = ?
			 WHERE id = ?`,
			req.Amount, now, req.SellerID,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return walletdomain.ErrSellerNotFound
		}

		closing, _, err := s.readBalance(ctx, tx, req.SellerID)
		if err != nil {
			return err
		}

		txn = walletdomain.Transaction{
			ID:             s.genID.Generate(),
			SellerID:       req.SellerID,
			Type:           entryType,
			Amount:         req.Amount,
			ClosingBalance: closing,
			Reason:         reason,
			OrderRef:       req.OrderRef,
			CreatedAt:      now,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			SellerID: req.SellerID,
			Type:     events.EventWalletCredited,
			Payload: map[string]any{
				"transaction_id":  txn.ID.String(),
				"type":            string(entryType),
				"amount":          req.Amount.String(),
				"closing_balance": closing.String(),
				"reason":          reason,
			},
			DedupeKey: "wallet_credited:" + txn.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, sellerID snowflake.ID, limit int) ([]walletdomain.Transaction, error) {
	if sellerID == 0 {
		return nil, walletdomain.ErrInvalidSeller
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var txns []walletdomain.Transaction
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM wallet_transactions
		 WHERE seller_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		sellerID, limit,
	).Scan(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (s *Service) readBalance(ctx context.Context, db *gorm.DB, sellerID snowflake.ID) (decimal.Decimal, bool, error) {
	var row struct {
		ID            snowflake.ID
		WalletBalance decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT id, wallet_balance FROM sellers WHERE id = ?`,
		sellerID,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, false, err
	}
	if row.ID == 0 {
		return decimal.Zero, false, nil
	}
	return row.WalletBalance, true, nil
}
