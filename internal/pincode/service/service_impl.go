package service

import (
	"context"
	"strings"

	"github.com/aerwok/rocketrybox/internal/cache"
	"github.com/aerwok/rocketrybox/internal/config"
	pincodedomain "github.com/aerwok/rocketrybox/internal/pincode/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers pincode lookups from the pincodes table, fronted by a
// short-lived cache since the directory changes rarely.
type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cache cache.Cache[string, pincodedomain.Record]
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Cfg config.Config
}

func NewService(p Params) pincodedomain.Directory {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pincode.service"),
		cache: cache.NewLookup[string, pincodedomain.Record](p.Cfg.Pricing.LookupCacheEnabled, p.Cfg.Pricing.LookupCacheTTL),
	}
}

func (s *Service) Lookup(ctx context.Context, pincode string) (*pincodedomain.Record, error) {
	pincode = strings.TrimSpace(pincode)
	if !validPincode(pincode) {
		return nil, pincodedomain.ErrInvalidPincode
	}

	if cached, ok := s.cache.Get(pincode); ok {
		return &cached, nil
	}

	var record pincodedomain.Record
	err := s.db.WithContext(ctx).Raw(
		`SELECT pincode, city, state, region, created_at
		 FROM pincodes
		 WHERE pincode = ?`,
		pincode,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.Pincode == "" {
		return nil, pincodedomain.ErrUnknownPincode
	}

	s.cache.Set(pincode, record)
	return &record, nil
}

// validPincode accepts the six-digit Indian postal code format.
func validPincode(pincode string) bool {
	if len(pincode) != 6 {
		return false
	}
	for _, r := range pincode {
		if r < '0' || r > '9' {
			return false
		}
	}
	return pincode[0] != '0'
}
