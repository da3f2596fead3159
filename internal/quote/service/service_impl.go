package service

import (
	"context"

	"github.com/aerwok/rocketrybox/internal/config"
	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	"github.com/aerwok/rocketrybox/internal/weight"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const currencyPlaces = 2

// Service combines the weight calculator and a rate card lookup into a
// fully-taxed quote.
type Service struct {
	log     *zap.Logger
	cards   ratecarddomain.Store
	calc    weight.Calculator
	gstRate decimal.Decimal
}

type Params struct {
	fx.In

	Log   *zap.Logger
	Cards ratecarddomain.Store
	Cfg   config.Config
}

func NewService(p Params) (quotedomain.Engine, error) {
	calc, err := weight.NewCalculator(p.Cfg.Pricing.VolumetricDivisor)
	if err != nil {
		return nil, err
	}
	return &Service{
		log:     p.Log.Named("quote.service"),
		cards:   p.Cards,
		calc:    calc,
		gstRate: decimal.NewFromInt(p.Cfg.Pricing.GSTRatePercent),
	}, nil
}

func (s *Service) Price(ctx context.Context, req quotedomain.Request) (*quotedomain.Quote, error) {
	if req.IsCOD && req.DeclaredValue.IsNegative() {
		return nil, quotedomain.ErrInvalidDeclaredValue
	}

	card, err := s.cards.Find(ctx, ratecarddomain.LookupKey{
		Courier:  req.Courier,
		Zone:     req.Zone,
		Mode:     req.Mode,
		RateBand: req.RateBand,
	})
	if err != nil {
		return nil, err
	}

	chargeable, err := s.calc.Chargeable(req.ActualWeightKg, req.Dimensions, card.MinWeightKg.InexactFloat64())
	if err != nil {
		return nil, err
	}

	units := weight.AdditionalUnits(chargeable, card.BaseWeightKg.InexactFloat64(), card.IncrementKg.InexactFloat64())
	additional := card.AdditionalRate.Mul(decimal.NewFromInt(units))
	shipping := card.BaseRate.Add(additional)

	cod := decimal.Zero
	if req.IsCOD {
		percentCharge := card.CODPercent.Mul(req.DeclaredValue).Div(decimal.NewFromInt(100))
		cod = card.CODFlatAmount.Add(percentCharge).Round(currencyPlaces)
	}

	subtotal := shipping.Add(cod)
	// decimal.Round is half-away-from-zero, which is half-up for the
	// non-negative amounts produced here.
	gst := subtotal.Mul(s.gstRate).Div(decimal.NewFromInt(100)).Round(currencyPlaces)
	total := subtotal.Add(gst)

	return &quotedomain.Quote{
		Courier:            card.Courier,
		Zone:               card.Zone,
		Mode:               card.Mode,
		ChargeableWeightKg: chargeable,
		BaseRate:           card.BaseRate,
		AdditionalCharges:  additional,
		CODCharge:          cod,
		Subtotal:           subtotal,
		GST:                gst,
		TotalAmount:        total,
	}, nil
}
