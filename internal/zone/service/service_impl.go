package service

import (
	"context"
	"strings"

	"github.com/aerwok/rocketrybox/internal/config"
	pincodedomain "github.com/aerwok/rocketrybox/internal/pincode/domain"
	zonedomain "github.com/aerwok/rocketrybox/internal/zone/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service classifies pincode pairs. Precedence is a contract: within-city
// beats within-state beats metro-to-metro beats special-zone, and
// rest-of-india is the fallback.
type Service struct {
	log       *zap.Logger
	directory pincodedomain.Directory

	metros  map[string]struct{}
	regions map[string]struct{}
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Directory pincodedomain.Directory
	Cfg       config.Config
}

func NewService(p Params) zonedomain.Resolver {
	return &Service{
		log:       p.Log.Named("zone.service"),
		directory: p.Directory,
		metros:    normalizeSet(p.Cfg.Zones.MetroCities),
		regions:   normalizeSet(p.Cfg.Zones.SpecialRegions),
	}
}

func (s *Service) Resolve(ctx context.Context, originPincode, destinationPincode string) (*zonedomain.Resolution, error) {
	origin, err := s.directory.Lookup(ctx, originPincode)
	if err != nil {
		return nil, err
	}
	destination, err := s.directory.Lookup(ctx, destinationPincode)
	if err != nil {
		return nil, err
	}

	return &zonedomain.Resolution{
		Zone:        s.classify(*origin, *destination),
		Origin:      *origin,
		Destination: *destination,
	}, nil
}

func (s *Service) classify(origin, destination pincodedomain.Record) zonedomain.Zone {
	if equalFold(origin.City, destination.City) {
		return zonedomain.ZoneWithinCity
	}
	if equalFold(origin.State, destination.State) {
		return zonedomain.ZoneWithinState
	}
	if s.isMetro(origin.City) && s.isMetro(destination.City) {
		return zonedomain.ZoneMetroToMetro
	}
	if s.isSpecialRegion(destination.Region) {
		return zonedomain.ZoneSpecial
	}
	return zonedomain.ZoneRestOfIndia
}

func (s *Service) isMetro(city string) bool {
	_, ok := s.metros[normalize(city)]
	return ok
}

func (s *Service) isSpecialRegion(region string) bool {
	_, ok := s.regions[normalize(region)]
	return ok
}

func normalizeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if key := normalize(value); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
