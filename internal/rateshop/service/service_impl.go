package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aerwok/rocketrybox/internal/config"
	"github.com/aerwok/rocketrybox/internal/observability/metrics"
	"github.com/aerwok/rocketrybox/internal/provider/adapters"
	providerdomain "github.com/aerwok/rocketrybox/internal/provider/domain"
	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
	rateshopdomain "github.com/aerwok/rocketrybox/internal/rateshop/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Service fans out quote calls to every registered courier, bounded by a
// per-provider timeout, and gathers every result (success or typed failure)
// before deciding. A provider's failure never blocks or fails the others.
type Service struct {
	log      *zap.Logger
	registry *adapters.Registry
	timeout  time.Duration
	metrics  *metrics.PipelineMetrics
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Registry *adapters.Registry
	Cfg      config.Config
}

func NewService(p Params) rateshopdomain.Comparator {
	return &Service{
		log:      p.Log.Named("rateshop.service"),
		registry: p.Registry,
		timeout:  p.Cfg.Provider.QuoteTimeout,
		metrics:  metrics.Pipeline(),
	}
}

type providerResult struct {
	provider string
	quote    *quotedomain.Quote
	err      error
}

func (s *Service) Compare(ctx context.Context, params providerdomain.ShipmentParams) (*rateshopdomain.Comparison, error) {
	active := s.registry.All()
	if len(active) == 0 {
		s.metrics.IncNoServiceableProvider()
		return nil, rateshopdomain.ErrNoServiceableProvider
	}

	results := make(chan providerResult, len(active))
	for _, adapter := range active {
		go func(adapter providerdomain.Adapter) {
			results <- s.quoteOne(ctx, adapter, params)
		}(adapter)
	}

	comparison := &rateshopdomain.Comparison{}
	for range active {
		result := <-results
		if result.err != nil {
			comparison.Failures = append(comparison.Failures, rateshopdomain.ProviderFailure{
				Provider: result.provider,
				Reason:   result.err.Error(),
			})
			continue
		}
		comparison.Options = append(comparison.Options, *result.quote)
	}

	if len(comparison.Options) == 0 {
		s.metrics.IncNoServiceableProvider()
		s.log.Warn("no serviceable provider",
			zap.String("destination", params.DestinationPincode),
			zap.Int("providers_tried", len(active)),
		)
		return nil, rateshopdomain.ErrNoServiceableProvider
	}

	sort.Slice(comparison.Options, func(i, j int) bool {
		a, b := comparison.Options[i], comparison.Options[j]
		if cmp := a.TotalAmount.Cmp(b.TotalAmount); cmp != 0 {
			return cmp < 0
		}
		return a.Courier < b.Courier
	})
	comparison.BestOption = &comparison.Options[0]

	return comparison, nil
}

func (s *Service) quoteOne(ctx context.Context, adapter providerdomain.Adapter, params providerdomain.ShipmentParams) providerResult {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	quote, err := adapter.Quote(callCtx, params)
	if err == nil && callCtx.Err() != nil {
		err = providerdomain.ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = providerdomain.ErrTimeout
	}

	reason := ""
	if err != nil {
		reason = err.Error()
		s.log.Debug("provider excluded from comparison",
			zap.String("provider", adapter.Name()),
			zap.Error(err),
		)
	}
	s.metrics.ObserveProviderQuote(adapter.Name(), time.Since(start), reason)

	return providerResult{provider: adapter.Name(), quote: quote, err: err}
}
