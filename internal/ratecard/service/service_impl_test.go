package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aerwok/rocketrybox/internal/cache"
	"github.com/aerwok/rocketrybox/internal/clock"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRateCardTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS rate_cards (
			id BIGINT PRIMARY KEY,
			courier TEXT NOT NULL,
			zone TEXT NOT NULL,
			mode TEXT NOT NULL,
			base_rate NUMERIC NOT NULL,
			additional_rate NUMERIC NOT NULL,
			base_weight_kg NUMERIC NOT NULL,
			increment_kg NUMERIC NOT NULL,
			min_weight_kg NUMERIC NOT NULL,
			cod_flat_amount NUMERIC NOT NULL DEFAULT 0,
			cod_percent NUMERIC NOT NULL DEFAULT 0,
			rate_band TEXT NOT NULL DEFAULT 'default',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	).Error; err != nil {
		t.Fatalf("create rate_cards: %v", err)
	}
	return db
}

func newRateCardService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	return &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: clock.Fixed{At: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		cache: cache.NewTTL[ratecarddomain.LookupKey, ratecarddomain.RateCard](time.Minute),
	}
}

func createRequest(courier string, zone zonedomain.Zone, band string) ratecarddomain.CreateRequest {
	return ratecarddomain.CreateRequest{
		Courier:        courier,
		Zone:           zone,
		Mode:           ratecarddomain.ModeSurface,
		BaseRate:       decimal.NewFromInt(40),
		AdditionalRate: decimal.NewFromInt(20),
		BaseWeightKg:   decimal.NewFromFloat(0.5),
		IncrementKg:    decimal.NewFromFloat(0.5),
		MinWeightKg:    decimal.NewFromFloat(0.5),
		CODFlatAmount:  decimal.NewFromInt(30),
		CODPercent:     decimal.NewFromFloat(1.5),
		RateBand:       band,
	}
}

func TestCreateRejectsDuplicateActiveTuple(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	if _, err := svc.Create(context.Background(), createRequest("dupes", zonedomain.ZoneMetroToMetro, "")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(context.Background(), createRequest("dupes", zonedomain.ZoneMetroToMetro, ""))
	if !errors.Is(err, ratecarddomain.ErrDuplicateActive) {
		t.Fatalf("expected duplicate active, got %v", err)
	}
}

func TestCreateAllowsNewCardAfterDeactivation(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	card, err := svc.Create(context.Background(), createRequest("versioned", zonedomain.ZoneWithinCity, ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Deactivate(context.Background(), card.ID.String()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Create(context.Background(), createRequest("versioned", zonedomain.ZoneWithinCity, "")); err != nil {
		t.Fatalf("create after deactivate: %v", err)
	}
}

func TestCreateNormalizesCourier(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	card, err := svc.Create(context.Background(), createRequest("  Delhivery ", zonedomain.ZoneSpecial, ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if card.Courier != "delhivery" {
		t.Fatalf("expected lowercased courier, got %q", card.Courier)
	}
	if card.RateBand != ratecarddomain.DefaultRateBand {
		t.Fatalf("expected default band, got %q", card.RateBand)
	}
}

func TestCreateValidation(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	req := createRequest("validate", zonedomain.ZoneWithinCity, "")
	req.BaseRate = decimal.NewFromInt(-1)
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, ratecarddomain.ErrInvalidRate) {
		t.Fatalf("expected invalid rate, got %v", err)
	}

	req = createRequest("validate", zonedomain.ZoneWithinCity, "")
	req.IncrementKg = decimal.Zero
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, ratecarddomain.ErrInvalidWeightSlab) {
		t.Fatalf("expected invalid weight slab, got %v", err)
	}

	req = createRequest("validate", "nowhere", "")
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, ratecarddomain.ErrInvalidZone) {
		t.Fatalf("expected invalid zone, got %v", err)
	}
}

func TestFindFallsBackToDefaultBand(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	if _, err := svc.Create(context.Background(), createRequest("banded", zonedomain.ZoneRestOfIndia, "")); err != nil {
		t.Fatalf("create default: %v", err)
	}

	card, err := svc.Find(context.Background(), ratecarddomain.LookupKey{
		Courier:  "banded",
		Zone:     zonedomain.ZoneRestOfIndia,
		Mode:     ratecarddomain.ModeSurface,
		RateBand: "enterprise",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if card.RateBand != ratecarddomain.DefaultRateBand {
		t.Fatalf("expected fallback to default band, got %q", card.RateBand)
	}
}

func TestFindPrefersSellerBandOverDefault(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	if _, err := svc.Create(context.Background(), createRequest("tiered", zonedomain.ZoneRestOfIndia, "")); err != nil {
		t.Fatalf("create default: %v", err)
	}
	banded := createRequest("tiered", zonedomain.ZoneRestOfIndia, "enterprise")
	banded.BaseRate = decimal.NewFromInt(35)
	if _, err := svc.Create(context.Background(), banded); err != nil {
		t.Fatalf("create banded: %v", err)
	}

	card, err := svc.Find(context.Background(), ratecarddomain.LookupKey{
		Courier:  "tiered",
		Zone:     zonedomain.ZoneRestOfIndia,
		Mode:     ratecarddomain.ModeSurface,
		RateBand: "enterprise",
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if card.RateBand != "enterprise" {
		t.Fatalf("expected enterprise band, got %q", card.RateBand)
	}
	if got := card.BaseRate.String(); got != "35" {
		t.Fatalf("expected banded base rate 35, got %s", got)
	}
}

func TestFindMissingTuple(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	_, err := svc.Find(context.Background(), ratecarddomain.LookupKey{
		Courier: "ghost",
		Zone:    zonedomain.ZoneWithinCity,
		Mode:    ratecarddomain.ModeSurface,
	})
	if !errors.Is(err, ratecarddomain.ErrNoRateCardForZone) {
		t.Fatalf("expected no rate card, got %v", err)
	}
}

func TestDeactivatedCardStopsServingLookups(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	card, err := svc.Create(context.Background(), createRequest("retired", zonedomain.ZoneWithinState, ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Deactivate(context.Background(), card.ID.String()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = svc.Find(context.Background(), ratecarddomain.LookupKey{
		Courier: "retired",
		Zone:    zonedomain.ZoneWithinState,
		Mode:    ratecarddomain.ModeSurface,
	})
	if !errors.Is(err, ratecarddomain.ErrNoRateCardForZone) {
		t.Fatalf("expected no rate card after deactivation, got %v", err)
	}
}

func TestUpdateReplacesPricingAndInvalidatesCache(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	card, err := svc.Create(context.Background(), createRequest("repriced", zonedomain.ZoneWithinCity, ""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Warm the cache.
	key := ratecarddomain.LookupKey{Courier: "repriced", Zone: zonedomain.ZoneWithinCity, Mode: ratecarddomain.ModeSurface}
	if _, err := svc.Find(context.Background(), key); err != nil {
		t.Fatalf("find: %v", err)
	}

	updated, err := svc.Update(context.Background(), ratecarddomain.UpdateRequest{
		ID:             card.ID.String(),
		BaseRate:       decimal.NewFromInt(55),
		AdditionalRate: decimal.NewFromInt(25),
		BaseWeightKg:   decimal.NewFromFloat(0.5),
		IncrementKg:    decimal.NewFromFloat(0.5),
		MinWeightKg:    decimal.NewFromFloat(0.5),
		CODFlatAmount:  decimal.NewFromInt(30),
		CODPercent:     decimal.NewFromFloat(1.5),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := updated.BaseRate.String(); got != "55" {
		t.Fatalf("expected base rate 55, got %s", got)
	}

	found, err := svc.Find(context.Background(), key)
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if got := found.BaseRate.String(); got != "55" {
		t.Fatalf("expected lookup to see new rate 55, got %s", got)
	}
}

func TestUpdateUnknownCard(t *testing.T) {
	db := setupRateCardTestDB(t)
	svc := newRateCardService(t, db)

	_, err := svc.Update(context.Background(), ratecarddomain.UpdateRequest{
		ID:             "12345",
		BaseRate:       decimal.NewFromInt(10),
		AdditionalRate: decimal.NewFromInt(5),
		BaseWeightKg:   decimal.NewFromFloat(0.5),
		IncrementKg:    decimal.NewFromFloat(0.5),
		MinWeightKg:    decimal.NewFromFloat(0.5),
	})
	if !errors.Is(err, ratecarddomain.ErrRateCardNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
