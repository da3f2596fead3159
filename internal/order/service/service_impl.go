package service

import (
	"context"
	"strings"

	"github.com/aerwok/rocketrybox/internal/clock"
	"github.com/aerwok/rocketrybox/internal/events"
	"github.com/aerwok/rocketrybox/internal/logger"
	"github.com/aerwok/rocketrybox/internal/observability/metrics"
	orderdomain "github.com/aerwok/rocketrybox/internal/order/domain"
	"github.com/aerwok/rocketrybox/internal/provider/adapters"
	providerdomain "github.com/aerwok/rocketrybox/internal/provider/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	rateshopdomain "github.com/aerwok/rocketrybox/internal/rateshop/domain"
	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service runs the order-binding saga. Failures at any step abort the run;
// a failure after the wallet debit triggers a mandatory compensating credit
// so a debit without a matching order is never left standing.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	zones    zonedomain.Resolver
	rateshop rateshopdomain.Comparator
	wallet   walletdomain.Ledger
	registry *adapters.Registry
	outbox   *events.Outbox
	metrics  *metrics.PipelineMetrics
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Zones    zonedomain.Resolver
	RateShop rateshopdomain.Comparator
	Wallet   walletdomain.Ledger
	Registry *adapters.Registry
	Outbox   *events.Outbox
}

func NewService(p Params) orderdomain.Orchestrator {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		zones:    p.Zones,
		rateshop: p.RateShop,
		wallet:   p.Wallet,
		registry: p.Registry,
		outbox:   p.Outbox,
		metrics:  metrics.Pipeline(),
	}
}

// QuoteShipment resolves the zone and fans out to all couriers. It never
// touches the wallet.
func (s *Service) QuoteShipment(ctx context.Context, req orderdomain.ShipmentRequest) (*rateshopdomain.Comparison, error) {
	params, err := s.buildShipmentParams(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.rateshop.Compare(ctx, *params)
}

// CreateOrder drives the saga to its terminal state.
func (s *Service) CreateOrder(ctx context.Context, req orderdomain.CreateOrderRequest) (*orderdomain.BindingResult, error) {
	log := logger.FromContext(ctx).Named("order.service")

	// Quoting
	params, err := s.buildShipmentParams(ctx, req.ShipmentRequest)
	if err != nil {
		return &orderdomain.BindingResult{State: orderdomain.StateAborted}, err
	}
	comparison, err := s.rateshop.Compare(ctx, *params)
	if err != nil {
		return &orderdomain.BindingResult{State: orderdomain.StateAborted}, err
	}

	// RateSelected
	best := comparison.BestOption

	// The order reference exists before the debit so the wallet transaction
	// is created already linked; there is no second update pass to race.
	orderRef := uuid.New()

	txn, err := s.wallet.Debit(ctx, walletdomain.DebitRequest{
		SellerID: req.SellerID,
		Amount:   best.TotalAmount,
		Reason:   "shipping charge " + best.Courier,
		OrderRef: &orderRef,
	})
	if err != nil {
		return &orderdomain.BindingResult{State: orderdomain.StateAborted, Comparison: comparison}, err
	}

	// WalletDebited: book with the winning courier. Booking never fails
	// hard; a rejected booking becomes a manual-processing order.
	booking := s.book(ctx, best.Courier, orderRef, req, best.CODCharge)

	now := s.clock.Now()
	order := orderdomain.Order{
		ID:                 s.genID.Generate(),
		OrderRef:           orderRef,
		SellerID:           req.SellerID,
		Courier:            best.Courier,
		Zone:               best.Zone,
		Mode:               best.Mode,
		Status:             orderdomain.StatusCreated,
		ManualProcessing:   booking.ManualProcessing,
		ChargeableWeightKg: decimal.NewFromFloat(best.ChargeableWeightKg),
		ShippingCharge:     best.BaseRate.Add(best.AdditionalCharges),
		CODCharge:          best.CODCharge,
		GST:                best.GST,
		TotalAmount:        best.TotalAmount,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if booking.AWB != "" {
		awb := booking.AWB
		order.AWB = &awb
	}
	if booking.TrackingURL != "" {
		trackingURL := booking.TrackingURL
		order.TrackingURL = &trackingURL
	}
	txnID := txn.ID
	order.WalletTransactionID = &txnID

	persistErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			SellerID: req.SellerID,
			Type:     events.EventOrderCreated,
			Payload: events.OrderCreatedPayload{
				OrderID:  order.ID.String(),
				OrderRef: orderRef.String(),
				Courier:  order.Courier,
				AWB:      booking.AWB,
				Total:    order.TotalAmount.String(),
			}.ToMap(),
			DedupeKey: "order_created:" + orderRef.String(),
		}); err != nil {
			return err
		}
		if booking.ManualProcessing {
			return s.outbox.PublishTx(ctx, tx, events.Event{
				SellerID: req.SellerID,
				Type:     events.EventBookingManualFallback,
				Payload: map[string]any{
					"order_ref": orderRef.String(),
					"courier":   order.Courier,
					"notes":     booking.Notes,
				},
				DedupeKey: "manual_fallback:" + orderRef.String(),
			})
		}
		return nil
	})
	if persistErr != nil {
		// Mandatory compensation: reverse the debit before surfacing the
		// failure, restoring the pre-debit balance.
		s.compensate(ctx, req.SellerID, best.TotalAmount, orderRef, log, persistErr)
		return &orderdomain.BindingResult{State: orderdomain.StateAborted, Comparison: comparison}, orderdomain.ErrPersistenceFailure
	}

	// OrderPersisted → TransactionLinked: the ledger row carried the order
	// reference from birth, so linkage holds by construction.
	log.Info("order bound",
		zap.String("order_ref", orderRef.String()),
		zap.String("courier", order.Courier),
		zap.String("total", order.TotalAmount.String()),
		zap.Bool("manual_processing", order.ManualProcessing),
	)

	return &orderdomain.BindingResult{
		State:       orderdomain.StateTransactionLinked,
		Order:       &order,
		Quote:       best,
		Transaction: txn,
		Comparison:  comparison,
	}, nil
}

func (s *Service) GetOrder(ctx context.Context, rawID string) (*orderdomain.Order, error) {
	return s.loadOrder(ctx, rawID)
}

func (s *Service) TrackOrder(ctx context.Context, rawID string) (*providerdomain.Tracking, error) {
	order, err := s.loadOrder(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if order.AWB == nil || *order.AWB == "" {
		return nil, orderdomain.ErrOrderNotBooked
	}
	adapter, ok := s.registry.Get(order.Courier)
	if !ok {
		return nil, providerdomain.ErrUnknownProvider
	}
	return adapter.TrackShipment(ctx, *order.AWB)
}

// CancelOrder cancels with the courier and refunds the order total to the
// seller's wallet once the courier confirms. The refund is credited before
// the status flips to cancelled: a failed credit leaves the order open so
// the caller can retry, instead of stranding the seller's money behind the
// already-cancelled guard.
func (s *Service) CancelOrder(ctx context.Context, rawID string) (*orderdomain.Order, error) {
	log := logger.FromContext(ctx).Named("order.service")

	order, err := s.loadOrder(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if order.Status == orderdomain.StatusCancelled {
		return nil, orderdomain.ErrOrderCancelled
	}

	if order.AWB != nil && *order.AWB != "" {
		adapter, ok := s.registry.Get(order.Courier)
		if !ok {
			return nil, providerdomain.ErrUnknownProvider
		}
		cancellation, err := adapter.CancelShipment(ctx, *order.AWB)
		if err != nil {
			return nil, err
		}
		if !cancellation.Confirmed {
			return nil, orderdomain.ErrOrderNotBooked
		}
	}

	orderRef := order.OrderRef
	refunded, err := s.refundExists(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if !refunded {
		if _, err := s.wallet.Credit(ctx, walletdomain.CreditRequest{
			SellerID: order.SellerID,
			Amount:   order.TotalAmount,
			Reason:   "order cancelled " + orderRef.String(),
			OrderRef: &orderRef,
		}); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	if err := s.db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		orderdomain.StatusCancelled, now, order.ID,
	).Error; err != nil {
		return nil, err
	}
	order.Status = orderdomain.StatusCancelled
	order.UpdatedAt = now

	if err := s.outbox.Publish(ctx, events.Event{
		SellerID: order.SellerID,
		Type:     events.EventOrderCancelled,
		Payload: map[string]any{
			"order_ref": orderRef.String(),
			"courier":   order.Courier,
		},
		DedupeKey: "order_cancelled:" + orderRef.String(),
	}); err != nil {
		log.Warn("order cancelled event not recorded",
			zap.String("order_ref", orderRef.String()),
			zap.Error(err),
		)
	}

	return order, nil
}

// refundExists reports whether a cancellation credit already landed for the
// order reference. It makes refund retries safe: a cancel attempt that
// credited the wallet but failed to flip the status will not credit twice.
func (s *Service) refundExists(ctx context.Context, orderRef uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM wallet_transactions WHERE order_ref = ? AND type = ?`,
		orderRef, walletdomain.TransactionCredit,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) buildShipmentParams(ctx context.Context, req orderdomain.ShipmentRequest) (*providerdomain.ShipmentParams, error) {
	if req.SellerID == 0 {
		return nil, walletdomain.ErrInvalidSeller
	}
	if !req.Mode.Valid() {
		return nil, ratecarddomain.ErrInvalidMode
	}

	resolution, err := s.zones.Resolve(ctx, req.OriginPincode, req.DestinationPincode)
	if err != nil {
		return nil, err
	}

	band, err := s.sellerRateBand(ctx, req.SellerID)
	if err != nil {
		return nil, err
	}

	return &providerdomain.ShipmentParams{
		OriginPincode:      req.OriginPincode,
		DestinationPincode: req.DestinationPincode,
		Zone:               resolution.Zone,
		Mode:               req.Mode,
		ActualWeightKg:     req.ActualWeightKg,
		Dimensions:         req.Dimensions,
		IsCOD:              req.IsCOD,
		DeclaredValue:      req.DeclaredValue,
		RateBand:           band,
	}, nil
}

func (s *Service) sellerRateBand(ctx context.Context, sellerID snowflake.ID) (string, error) {
	var row struct {
		ID       snowflake.ID
		RateBand *string
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, rate_band FROM sellers WHERE id = ?`,
		sellerID,
	).Scan(&row).Error
	if err != nil {
		return "", err
	}
	if row.ID == 0 {
		return "", walletdomain.ErrSellerNotFound
	}
	if row.RateBand == nil {
		return "", nil
	}
	return *row.RateBand, nil
}

func (s *Service) book(ctx context.Context, courier string, orderRef uuid.UUID, req orderdomain.CreateOrderRequest, codCharge decimal.Decimal) providerdomain.Booking {
	adapter, ok := s.registry.Get(courier)
	if !ok {
		return providerdomain.Booking{ManualProcessing: true, Notes: "no adapter for courier " + courier}
	}

	booking, err := adapter.BookShipment(ctx, providerdomain.BookingRequest{
		OrderRef:           orderRef.String(),
		OriginPincode:      req.OriginPincode,
		DestinationPincode: req.DestinationPincode,
		Mode:               req.Mode,
		WeightKg:           req.ActualWeightKg,
		IsCOD:              req.IsCOD,
		CODAmount:          codCharge,
		ConsigneeName:      req.ConsigneeName,
		ConsigneeAddress:   req.ConsigneeAddress,
		ConsigneePhone:     req.ConsigneePhone,
	})
	if err != nil || booking == nil {
		notes := "booking error"
		if err != nil {
			notes = err.Error()
		}
		return providerdomain.Booking{ManualProcessing: true, Notes: notes}
	}
	return *booking
}

func (s *Service) compensate(ctx context.Context, sellerID snowflake.ID, amount decimal.Decimal, orderRef uuid.UUID, log *zap.Logger, cause error) {
	s.metrics.IncOrderCompensation()
	if _, err := s.wallet.Credit(ctx, walletdomain.CreditRequest{
		SellerID: sellerID,
		Amount:   amount,
		Reason:   "compensation for failed order " + orderRef.String(),
		OrderRef: &orderRef,
	}); err != nil {
		// A failed compensation leaves a debit without an order; this must
		// page operations.
		log.Error("compensating credit failed",
			zap.String("order_ref", orderRef.String()),
			zap.String("amount", amount.String()),
			zap.NamedError("persist_error", cause),
			zap.Error(err),
		)
		return
	}
	log.Warn("order persistence failed, wallet debit reversed",
		zap.String("order_ref", orderRef.String()),
		zap.Error(cause),
	)
}

func (s *Service) loadOrder(ctx context.Context, rawID string) (*orderdomain.Order, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, orderdomain.ErrInvalidOrderID
	}

	var order orderdomain.Order
	if err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM orders WHERE id = ?`, id,
	).Scan(&order).Error; err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, orderdomain.ErrOrderNotFound
	}
	return &order, nil
}
