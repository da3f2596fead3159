package domain

import (
	quotedomain "github.com/aerwok/rocketrybox/internal/quote/domain"
)

// ProviderFailure records why a courier was excluded from a comparison.
// Failures are diagnostic only; they never fail the overall run unless every
// provider failed.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// Comparison is the aggregated outcome of fanning out to all active
// couriers. Options are sorted ascending by total amount; BestOption is the
// cheapest serviceable quote.
type Comparison struct {
	BestOption *quotedomain.Quote  `json:"best_option"`
	Options    []quotedomain.Quote `json:"options"`
	Failures   []ProviderFailure   `json:"failures,omitempty"`
}
