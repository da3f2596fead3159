package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aerwok/rocketrybox/internal/clock"
	"github.com/aerwok/rocketrybox/internal/events"
	orderdomain "github.com/aerwok/rocketrybox/internal/order/domain"
	"github.com/aerwok/rocketrybox/internal/provider/adapters"
	providerdomain "github.com/aerwok/rocketrybox/internal/provider/domain"
	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	rateshopdomain "github.com/aerwok/rocketrybox/internal/rateshop/domain"
	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	walletservice "github.com/aerwok/rocketrybox/internal/wallet/service"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type staticResolver struct{}

func (staticResolver) Resolve(_ context.Context, origin, destination string) (*zonedomain.Resolution, error) {
	return &zonedomain.Resolution{Zone: zonedomain.ZoneMetroToMetro}, nil
}

type staticComparator struct {
	comparison *rateshopdomain.Comparison
	err        error
}

func (c staticComparator) Compare(context.Context, providerdomain.ShipmentParams) (*rateshopdomain.Comparison, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.comparison, nil
}

type bookingAdapter struct {
	name       string
	bookErr    error
	cancelErr  error
	confirmed  bool
	trackCalls int
}

func (a *bookingAdapter) Name() string { return a.name }

func (a *bookingAdapter) CheckServiceability(context.Context, string) (*providerdomain.Serviceability, error) {
	return &providerdomain.Serviceability{Serviceable: true}, nil
}

func (a *bookingAdapter) Quote(context.Context, providerdomain.ShipmentParams) (*quotedomain.Quote, error) {
	return nil, providerdomain.ErrNotServiceable
}

func (a *bookingAdapter) BookShipment(_ context.Context, req providerdomain.BookingRequest) (*providerdomain.Booking, error) {
	if a.bookErr != nil {
		return nil, a.bookErr
	}
	return &providerdomain.Booking{
		AWB:         a.name + "-" + req.OrderRef[:8],
		TrackingURL: "https://track.test/" + req.OrderRef[:8],
	}, nil
}

func (a *bookingAdapter) TrackShipment(_ context.Context, awb string) (*providerdomain.Tracking, error) {
	a.trackCalls++
	return &providerdomain.Tracking{AWB: awb, Status: "in_transit"}, nil
}

func (a *bookingAdapter) CancelShipment(context.Context, string) (*providerdomain.Cancellation, error) {
	if a.cancelErr != nil {
		return nil, a.cancelErr
	}
	return &providerdomain.Cancellation{Confirmed: a.confirmed}, nil
}

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Each test gets its own named in-memory database so rows and generated
	// ids never leak across tests.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sellers (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			wallet_balance NUMERIC NOT NULL DEFAULT 0 CHECK (wallet_balance >= 0),
			rate_band TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS wallet_transactions (
			id BIGINT PRIMARY KEY,
			seller_id BIGINT NOT NULL,
			type TEXT NOT NULL,
			amount NUMERIC NOT NULL CHECK (amount > 0),
			closing_balance NUMERIC NOT NULL,
			reason TEXT NOT NULL,
			order_ref TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT PRIMARY KEY,
			order_ref TEXT NOT NULL UNIQUE,
			seller_id BIGINT NOT NULL,
			courier TEXT NOT NULL,
			zone TEXT NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			awb TEXT,
			tracking_url TEXT,
			manual_processing BOOLEAN NOT NULL DEFAULT FALSE,
			chargeable_weight_kg NUMERIC NOT NULL,
			shipping_charge NUMERIC NOT NULL,
			cod_charge NUMERIC NOT NULL DEFAULT 0,
			gst NUMERIC NOT NULL,
			total_amount NUMERIC NOT NULL,
			wallet_transaction_id BIGINT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS shipping_events (
			id BIGINT PRIMARY KEY,
			seller_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_shipping_events_dedupe
			ON shipping_events (seller_id, dedupe_key)
			WHERE dedupe_key IS NOT NULL`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type orderTestEnv struct {
	db      *gorm.DB
	svc     *Service
	wallet  walletdomain.Ledger
	adapter *bookingAdapter
}

func metroQuote(courier string) quotedomain.Quote {
	return quotedomain.Quote{
		Courier:            courier,
		Zone:               zonedomain.ZoneMetroToMetro,
		Mode:               ratecarddomain.ModeSurface,
		ChargeableWeightKg: 1.7,
		BaseRate:           decimal.NewFromInt(40),
		AdditionalCharges:  decimal.NewFromInt(60),
		CODCharge:          decimal.Zero,
		Subtotal:           decimal.NewFromInt(100),
		GST:                decimal.NewFromInt(18),
		TotalAmount:        decimal.NewFromInt(118),
	}
}

func newOrderTestEnv(t *testing.T, db *gorm.DB, comparator rateshopdomain.Comparator, adapter *bookingAdapter) orderTestEnv {
	t.Helper()
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	fixed := clock.Fixed{At: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	outbox := events.NewOutbox(db, node)

	ledger := walletservice.NewService(walletservice.Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fixed,
		Outbox: outbox,
	})

	svc := &Service{
		db:       db,
		log:      zap.NewNop(),
		genID:    node,
		clock:    fixed,
		zones:    staticResolver{},
		rateshop: comparator,
		wallet:   ledger,
		registry: adapters.NewRegistry(adapter),
		outbox:   outbox,
	}
	return orderTestEnv{db: db, svc: svc, wallet: ledger, adapter: adapter}
}

func insertOrderTestSeller(t *testing.T, db *gorm.DB, id snowflake.ID, email string, balance int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO sellers (id, name, email, wallet_balance) VALUES (?, ?, ?, ?)`,
		id, "Seller "+email, email, balance,
	).Error; err != nil {
		t.Fatalf("insert seller: %v", err)
	}
}

func createRequestFor(sellerID snowflake.ID) orderdomain.CreateOrderRequest {
	return orderdomain.CreateOrderRequest{
		ShipmentRequest: orderdomain.ShipmentRequest{
			SellerID:           sellerID,
			OriginPincode:      "110001",
			DestinationPincode: "400001",
			Mode:               ratecarddomain.ModeSurface,
			ActualWeightKg:     1.7,
		},
		ConsigneeName:    "Asha Rao",
		ConsigneeAddress: "12 MG Road, Mumbai",
		ConsigneePhone:   "9800000000",
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		&bookingAdapter{name: "alpha"},
	)
	insertOrderTestSeller(t, db, 301, "happy@test.in", 1000)

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(301))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if result.State != orderdomain.StateTransactionLinked {
		t.Fatalf("expected transaction_linked, got %s", result.State)
	}
	if result.Order == nil || result.Transaction == nil {
		t.Fatalf("expected order and transaction in result: %+v", result)
	}
	if result.Order.AWB == nil {
		t.Fatalf("expected AWB on booked order")
	}
	if result.Order.WalletTransactionID == nil || *result.Order.WalletTransactionID != result.Transaction.ID {
		t.Fatalf("order not linked to its wallet transaction")
	}
	if result.Transaction.OrderRef == nil || *result.Transaction.OrderRef != result.Order.OrderRef {
		t.Fatalf("ledger row not linked to the order reference")
	}

	balance, err := env.wallet.GetBalance(context.Background(), 301)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got := balance.String(); got != "882" {
		t.Fatalf("expected balance 882 after debit, got %s", got)
	}

	loaded, err := env.svc.GetOrder(context.Background(), result.Order.ID.String())
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got := loaded.TotalAmount.String(); got != "118" {
		t.Fatalf("expected persisted total 118, got %s", got)
	}

	var eventCount int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM shipping_events WHERE seller_id = ? AND event_type = ?`,
		301, events.EventOrderCreated,
	).Scan(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected one order_created event, got %d", eventCount)
	}
}

func TestCreateOrderInsufficientBalance(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		&bookingAdapter{name: "alpha"},
	)
	insertOrderTestSeller(t, db, 302, "short@test.in", 50)

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(302))
	if !errors.Is(err, walletdomain.ErrInsufficientWalletBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if result.State != orderdomain.StateAborted {
		t.Fatalf("expected aborted, got %s", result.State)
	}

	balance, _ := env.wallet.GetBalance(context.Background(), 302)
	if got := balance.String(); got != "50" {
		t.Fatalf("failed binding must leave the balance unchanged, got %s", got)
	}

	var orderCount int64
	if err := db.Raw(`SELECT COUNT(1) FROM orders WHERE seller_id = ?`, 302).Scan(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("expected no order rows, got %d", orderCount)
	}
}

func TestCreateOrderNoServiceableProviderLeavesWalletUntouched(t *testing.T) {
	db := setupOrderTestDB(t)
	env := newOrderTestEnv(t, db,
		staticComparator{err: rateshopdomain.ErrNoServiceableProvider},
		&bookingAdapter{name: "alpha"},
	)
	insertOrderTestSeller(t, db, 303, "unserviceable@test.in", 1000)

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(303))
	if !errors.Is(err, rateshopdomain.ErrNoServiceableProvider) {
		t.Fatalf("expected no serviceable provider, got %v", err)
	}
	if result.State != orderdomain.StateAborted {
		t.Fatalf("expected aborted, got %s", result.State)
	}

	txns, err := env.wallet.ListTransactions(context.Background(), 303, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("wallet must be untouched before rate selection, got %d rows", len(txns))
	}
}

func TestCreateOrderPersistenceFailureCompensates(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		&bookingAdapter{name: "alpha"},
	)
	insertOrderTestSeller(t, db, 304, "compensated@test.in", 1000)

	// Break order persistence after the debit point.
	if err := db.Exec(`DROP TABLE orders`).Error; err != nil {
		t.Fatalf("drop orders: %v", err)
	}

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(304))
	if !errors.Is(err, orderdomain.ErrPersistenceFailure) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if result.State != orderdomain.StateAborted {
		t.Fatalf("expected aborted, got %s", result.State)
	}

	balance, err := env.wallet.GetBalance(context.Background(), 304)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got := balance.String(); got != "1000" {
		t.Fatalf("compensation must restore the pre-debit balance, got %s", got)
	}

	txns, err := env.wallet.ListTransactions(context.Background(), 304, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected debit plus compensating credit, got %d rows", len(txns))
	}
}

func TestCreateOrderBookingFailureFallsBackToManual(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		&bookingAdapter{name: "alpha", bookErr: providerdomain.ErrProviderUnavailable},
	)
	insertOrderTestSeller(t, db, 305, "manual@test.in", 1000)

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(305))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if result.State != orderdomain.StateTransactionLinked {
		t.Fatalf("booking failure must not abort the order, got %s", result.State)
	}
	if !result.Order.ManualProcessing {
		t.Fatalf("expected manual processing flag")
	}
	if result.Order.AWB != nil {
		t.Fatalf("manual order must not carry an AWB")
	}

	balance, _ := env.wallet.GetBalance(context.Background(), 305)
	if got := balance.String(); got != "882" {
		t.Fatalf("expected debit to stand for manual order, got %s", got)
	}
}

func TestCancelOrderRefundsWallet(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		&bookingAdapter{name: "alpha", confirmed: true},
	)
	insertOrderTestSeller(t, db, 306, "cancel@test.in", 1000)

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(306))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	cancelled, err := env.svc.CancelOrder(context.Background(), result.Order.ID.String())
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != orderdomain.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}

	balance, _ := env.wallet.GetBalance(context.Background(), 306)
	if got := balance.String(); got != "1000" {
		t.Fatalf("expected refund to restore balance, got %s", got)
	}

	if _, err := env.svc.CancelOrder(context.Background(), result.Order.ID.String()); !errors.Is(err, orderdomain.ErrOrderCancelled) {
		t.Fatalf("expected already cancelled, got %v", err)
	}
}

func TestCancelOrderRefundFailureLeavesOrderOpen(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		&bookingAdapter{name: "alpha", confirmed: true},
	)
	insertOrderTestSeller(t, db, 309, "refund-retry@test.in", 1000)

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(309))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Break the refund credit after the courier confirms the cancellation.
	if err := db.Exec(`ALTER TABLE wallet_transactions RENAME TO wallet_transactions_broken`).Error; err != nil {
		t.Fatalf("rename wallet_transactions: %v", err)
	}
	if _, err := env.svc.CancelOrder(context.Background(), result.Order.ID.String()); err == nil {
		t.Fatalf("expected cancel to fail while the refund cannot be credited")
	}

	loaded, err := env.svc.GetOrder(context.Background(), result.Order.ID.String())
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if loaded.Status == orderdomain.StatusCancelled {
		t.Fatalf("order must stay open when the refund fails")
	}

	// With the ledger healthy again, a retry must refund exactly once and
	// only then mark the order cancelled.
	if err := db.Exec(`ALTER TABLE wallet_transactions_broken RENAME TO wallet_transactions`).Error; err != nil {
		t.Fatalf("restore wallet_transactions: %v", err)
	}
	cancelled, err := env.svc.CancelOrder(context.Background(), result.Order.ID.String())
	if err != nil {
		t.Fatalf("retry cancel: %v", err)
	}
	if cancelled.Status != orderdomain.StatusCancelled {
		t.Fatalf("expected cancelled status after retry, got %s", cancelled.Status)
	}

	balance, err := env.wallet.GetBalance(context.Background(), 309)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if got := balance.String(); got != "1000" {
		t.Fatalf("expected refund to restore balance, got %s", got)
	}

	var refunds int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM wallet_transactions WHERE seller_id = ? AND type = ?`,
		309, walletdomain.TransactionCredit,
	).Scan(&refunds).Error; err != nil {
		t.Fatalf("count refunds: %v", err)
	}
	if refunds != 1 {
		t.Fatalf("expected exactly one refund credit, got %d", refunds)
	}
}

func TestTrackOrderProxiesAdapter(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	adapter := &bookingAdapter{name: "alpha"}
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		adapter,
	)
	insertOrderTestSeller(t, db, 307, "track@test.in", 1000)

	result, err := env.svc.CreateOrder(context.Background(), createRequestFor(307))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	tracking, err := env.svc.TrackOrder(context.Background(), result.Order.ID.String())
	if err != nil {
		t.Fatalf("track order: %v", err)
	}
	if tracking.Status != "in_transit" || adapter.trackCalls != 1 {
		t.Fatalf("expected adapter-backed tracking, got %+v after %d calls", tracking, adapter.trackCalls)
	}
}

func TestGetOrderErrors(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote}},
		&bookingAdapter{name: "alpha"},
	)

	if _, err := env.svc.GetOrder(context.Background(), "not-a-number"); !errors.Is(err, orderdomain.ErrInvalidOrderID) {
		t.Fatalf("expected invalid order id, got %v", err)
	}
	if _, err := env.svc.GetOrder(context.Background(), "424242"); !errors.Is(err, orderdomain.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}

func TestQuoteShipmentNeverTouchesWallet(t *testing.T) {
	db := setupOrderTestDB(t)
	quote := metroQuote("alpha")
	env := newOrderTestEnv(t, db,
		staticComparator{comparison: &rateshopdomain.Comparison{BestOption: &quote, Options: []quotedomain.Quote{quote}}},
		&bookingAdapter{name: "alpha"},
	)
	insertOrderTestSeller(t, db, 308, "quote-only@test.in", 1000)

	req := createRequestFor(308)
	comparison, err := env.svc.QuoteShipment(context.Background(), req.ShipmentRequest)
	if err != nil {
		t.Fatalf("quote shipment: %v", err)
	}
	if comparison.BestOption == nil {
		t.Fatalf("expected a best option")
	}

	balance, _ := env.wallet.GetBalance(context.Background(), 308)
	if got := balance.String(); got != "1000" {
		t.Fatalf("quoting must not move money, got %s", got)
	}
}
