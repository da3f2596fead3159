package service

import (
	"context"
	"strings"

	"github.com/aerwok/rocketrybox/internal/cache"
	"github.com/aerwok/rocketrybox/internal/clock"
	"github.com/aerwok/rocketrybox/internal/config"
	ratecarddomain "github.com/aerwok/rocketrybox/internal/ratecard/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service stores tariffs in the rate_cards table. Point lookups are served
// through a short-lived cache; tariffs change rarely and staleness of a few
// seconds is acceptable.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	cache cache.Cache[ratecarddomain.LookupKey, ratecarddomain.RateCard]
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cfg   config.Config
}

func NewService(p Params) ratecarddomain.Store {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ratecard.service"),
		genID: p.GenID,
		clock: p.Clock,
		cache: cache.NewLookup[ratecarddomain.LookupKey, ratecarddomain.RateCard](p.Cfg.Pricing.LookupCacheEnabled, p.Cfg.Pricing.LookupCacheTTL),
	}
}

func (s *Service) Create(ctx context.Context, req ratecarddomain.CreateRequest) (*ratecarddomain.RateCard, error) {
	courier := strings.ToLower(strings.TrimSpace(req.Courier))
	if courier == "" {
		return nil, ratecarddomain.ErrInvalidCourier
	}
	if !req.Zone.Valid() {
		return nil, ratecarddomain.ErrInvalidZone
	}
	if !req.Mode.Valid() {
		return nil, ratecarddomain.ErrInvalidMode
	}
	if err := validateRates(req.BaseRate, req.AdditionalRate, req.CODFlatAmount, req.CODPercent); err != nil {
		return nil, err
	}
	if err := validateSlab(req.BaseWeightKg, req.IncrementKg, req.MinWeightKg); err != nil {
		return nil, err
	}

	band := strings.TrimSpace(req.RateBand)
	if band == "" {
		band = ratecarddomain.DefaultRateBand
	}

	now := s.clock.Now()
	card := ratecarddomain.RateCard{
		ID:             s.genID.Generate(),
		Courier:        courier,
		Zone:           req.Zone,
		Mode:           req.Mode,
		BaseRate:       req.BaseRate,
		AdditionalRate: req.AdditionalRate,
		BaseWeightKg:   req.BaseWeightKg,
		IncrementKg:    req.IncrementKg,
		MinWeightKg:    req.MinWeightKg,
		CODFlatAmount:  req.CODFlatAmount,
		CODPercent:     req.CODPercent,
		RateBand:       band,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Raw(
			`SELECT COUNT(1) FROM rate_cards
			 WHERE courier = ? AND zone = ? AND mode = ? AND rate_band = ? AND active`,
			card.Courier, card.Zone, card.Mode, card.RateBand,
		).Scan(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ratecarddomain.ErrDuplicateActive
		}
		return tx.Create(&card).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(lookupKey(card))
	return &card, nil
}

func (s *Service) Update(ctx context.Context, req ratecarddomain.UpdateRequest) (*ratecarddomain.RateCard, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, ratecarddomain.ErrInvalidID
	}
	if err := validateRates(req.BaseRate, req.AdditionalRate, req.CODFlatAmount, req.CODPercent); err != nil {
		return nil, err
	}
	if err := validateSlab(req.BaseWeightKg, req.IncrementKg, req.MinWeightKg); err != nil {
		return nil, err
	}

	var card ratecarddomain.RateCard
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(
			`SELECT * FROM rate_cards WHERE id = ?`, id,
		).Scan(&card).Error; err != nil {
			return err
		}
		if card.ID == 0 {
			return ratecarddomain.ErrRateCardNotFound
		}

		card.BaseRate = req.BaseRate
		card.AdditionalRate = req.AdditionalRate
		card.BaseWeightKg = req.BaseWeightKg
		card.IncrementKg = req.IncrementKg
		card.MinWeightKg = req.MinWeightKg
		card.CODFlatAmount = req.CODFlatAmount
		card.CODPercent = req.CODPercent
		card.UpdatedAt = s.clock.Now()

		return tx.Exec(
			`UPDATE rate_cards
			 SET base_rate = ?, additional_rate = ?, base_weight_kg = ?, increment_kg = ?,
			     min_weight_kg = ?, cod_flat_amount = ?, cod_percent = ?, updated_at = ?
			 WHERE id = ?`,
			card.BaseRate, card.AdditionalRate, card.BaseWeightKg, card.IncrementKg,
			card.MinWeightKg, card.CODFlatAmount, card.CODPercent, card.UpdatedAt, id,
		).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(lookupKey(card))
	return &card, nil
}

func (s *Service) Deactivate(ctx context.Context, rawID string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return ratecarddomain.ErrInvalidID
	}

	var card ratecarddomain.RateCard
	if err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM rate_cards WHERE id = ?`, id,
	).Scan(&card).Error; err != nil {
		return err
	}
	if card.ID == 0 {
		return ratecarddomain.ErrRateCardNotFound
	}

	if err := s.db.WithContext(ctx).Exec(
		`UPDATE rate_cards SET active = FALSE, updated_at = ? WHERE id = ?`,
		s.clock.Now(), id,
	).Error; err != nil {
		return err
	}

	s.cache.Delete(lookupKey(card))
	return nil
}

func (s *Service) List(ctx context.Context, courier string) ([]ratecarddomain.RateCard, error) {
	courier = strings.ToLower(strings.TrimSpace(courier))

	query := `SELECT * FROM rate_cards`
	args := []any{}
	if courier != "" {
		query += ` WHERE courier = ?`
		args = append(args, courier)
	}
	query += ` ORDER BY courier, zone, mode, created_at DESC`

	var cards []ratecarddomain.RateCard
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// Find returns the active card for the lookup tuple. When the seller's band
// has no card of its own the default band serves the lookup.
func (s *Service) Find(ctx context.Context, key ratecarddomain.LookupKey) (*ratecarddomain.RateCard, error) {
	key.Courier = strings.ToLower(strings.TrimSpace(key.Courier))
	if key.Courier == "" {
		return nil, ratecarddomain.ErrInvalidCourier
	}
	if !key.Zone.Valid() {
		return nil, ratecarddomain.ErrInvalidZone
	}
	if !key.Mode.Valid() {
		return nil, ratecarddomain.ErrInvalidMode
	}
	if strings.TrimSpace(key.RateBand) == "" {
		key.RateBand = ratecarddomain.DefaultRateBand
	}

	if cached, ok := s.cache.Get(key); ok {
		return &cached, nil
	}

	card, err := s.findActive(ctx, key)
	if err != nil {
		return nil, err
	}
	if card == nil && key.RateBand != ratecarddomain.DefaultRateBand {
		fallback := key
		fallback.RateBand = ratecarddomain.DefaultRateBand
		card, err = s.findActive(ctx, fallback)
		if err != nil {
			return nil, err
		}
	}
	if card == nil {
		return nil, ratecarddomain.ErrNoRateCardForZone
	}

	s.cache.Set(key, *card)
	return card, nil
}

func (s *Service) findActive(ctx context.Context, key ratecarddomain.LookupKey) (*ratecarddomain.RateCard, error) {
	var card ratecarddomain.RateCard
	err := s.db.WithContext(ctx).Raw(
		`SELECT * FROM rate_cards
		 WHERE courier = ? AND zone = ? AND mode = ? AND rate_band = ? AND active
		 LIMIT 1`,
		key.Courier, key.Zone, key.Mode, key.RateBand,
	).Scan(&card).Error
	if err != nil {
		return nil, err
	}
	if card.ID == 0 {
		return nil, nil
	}
	return &card, nil
}

func validateRates(values ...decimal.Decimal) error {
	for _, value := range values {
		if value.IsNegative() {
			return ratecarddomain.ErrInvalidRate
		}
	}
	return nil
}

func validateSlab(baseKg, incrementKg, minKg decimal.Decimal) error {
	if !baseKg.IsPositive() || !incrementKg.IsPositive() || minKg.IsNegative() {
		return ratecarddomain.ErrInvalidWeightSlab
	}
	return nil
}

func lookupKey(card ratecarddomain.RateCard) ratecarddomain.LookupKey {
	return ratecarddomain.LookupKey{
		Courier:  card.Courier,
		Zone:     card.Zone,
		Mode:     card.Mode,
		RateBand: card.RateBand,
	}
}
