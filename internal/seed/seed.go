package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	pincodedomain "github.com/aerwok/rocketrybox/internal/pincode/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	walletdomain "github.com/aerwok/rocketrybox/internal/wallet/domain"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoSellerName  = "Demo Seller"
	demoSellerEmail = "demo@rocketrybox.in"
)

var demoOpeningBalance = decimal.NewFromInt(5000)

var demoPincodes = []pincodedomain.Record{
	{Pincode: "110001", City: "Delhi", State: "Delhi", Region: "North"},
	{Pincode: "110096", City: "Delhi", State: "Delhi", Region: "North"},
	{Pincode: "400001", City: "Mumbai", State: "Maharashtra", Region: "West"},
	{Pincode: "411001", City: "Pune", State: "Maharashtra", Region: "West"},
	{Pincode: "560001", City: "Bengaluru", State: "Karnataka", Region: "South"},
	{Pincode: "600001", City: "Chennai", State: "Tamil Nadu", Region: "South"},
	{Pincode: "700001", City: "Kolkata", State: "West Bengal", Region: "East"},
	{Pincode: "781001", City: "Guwahati", State: "Assam", Region: "North East"},
	{Pincode: "190001", City: "Srinagar", State: "Jammu and Kashmir", Region: "Jammu & Kashmir"},
	{Pincode: "302001", City: "Jaipur", State: "Rajasthan", Region: "North"},
}

type tariff struct {
	zone       zonedomain.Zone
	base       int64
	additional int64
}

// Per-zone surface tariffs; air cards are priced at a fixed uplift.
var demoTariffs = []tariff{
	{zone: zonedomain.ZoneWithinCity, base: 30, additional: 15},
	{zone: zonedomain.ZoneWithinState, base: 35, additional: 18},
	{zone: zonedomain.ZoneMetroToMetro, base: 40, additional: 20},
	{zone: zonedomain.ZoneRestOfIndia, base: 50, additional: 25},
	{zone: zonedomain.ZoneSpecial, base: 70, additional: 35},
}

var demoCouriers = []string{"delhivery", "xpressbees"}

// EnsureDemoData seeds the serviceability directory, a starter tariff set,
// and a funded demo seller. Every insert is idempotent, so repeated startups
// leave existing rows untouched.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePincodes(ctx, tx); err != nil {
			return err
		}
		if err := ensureRateCards(ctx, tx, node); err != nil {
			return err
		}
		return ensureDemoSeller(ctx, tx, node)
	})
}

func ensurePincodes(ctx context.Context, tx *gorm.DB) error {
	for _, record := range demoPincodes {
		var existing pincodedomain.Record
		err := tx.WithContext(ctx).Where("pincode = ?", record.Pincode).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		record.CreatedAt = time.Now().UTC()
		if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureRateCards(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	airUplift := decimal.NewFromInt(20)

	for _, courier := range demoCouriers {
		for _, t := range demoTariffs {
			base := decimal.NewFromInt(t.base)
			additional := decimal.NewFromInt(t.additional)

			cards := []ratecarddomain.RateCard{
				{
					Courier:        courier,
					Zone:           t.zone,
					Mode:           ratecarddomain.ModeSurface,
					BaseRate:       base,
					AdditionalRate: additional,
				},
				{
					Courier:        courier,
					Zone:           t.zone,
					Mode:           ratecarddomain.ModeAir,
					BaseRate:       base.Add(airUplift),
					AdditionalRate: additional.Add(airUplift.Div(decimal.NewFromInt(2))),
				},
			}

			for _, card := range cards {
				var existing ratecarddomain.RateCard
				err := tx.WithContext(ctx).
					Where("courier = ? AND zone = ? AND mode = ? AND rate_band = ? AND active", courier, t.zone, card.Mode, ratecarddomain.DefaultRateBand).
					First(&existing).Error
				if err == nil {
					continue
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}

				now := time.Now().UTC()
				card.ID = node.Generate()
				card.BaseWeightKg = decimal.NewFromFloat(0.5)
				card.IncrementKg = decimal.NewFromFloat(0.5)
				card.MinWeightKg = decimal.NewFromFloat(0.5)
				card.CODFlatAmount = decimal.NewFromInt(30)
				card.CODPercent = decimal.NewFromFloat(1.5)
				card.RateBand = ratecarddomain.DefaultRateBand
				card.Active = true
				card.CreatedAt = now
				card.UpdatedAt = now
				if err := tx.WithContext(ctx).Create(&card).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func ensureDemoSeller(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var seller walletdomain.Seller
	err := tx.WithContext(ctx).Where("email = ?", demoSellerEmail).First(&seller).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	seller = walletdomain.Seller{
		ID:            node.Generate(),
		Name:          demoSellerName,
		Email:         strings.ToLower(demoSellerEmail),
		WalletBalance: demoOpeningBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.WithContext(ctx).Create(&seller).Error; err != nil {
		return err
	}

	opening := walletdomain.Transaction{
		ID:             node.Generate(),
		SellerID:       seller.ID,
		Type:           walletdomain.TransactionRecharge,
		Amount:         demoOpeningBalance,
		ClosingBalance: demoOpeningBalance,
		Reason:         "opening_balance",
		CreatedAt:      now,
	}
	return tx.WithContext(ctx).Create(&opening).Error
}
