package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks the quote/booking pipeline: provider fan-out
// outcomes, wallet rejections, and order compensation events.
type PipelineMetrics struct {
	providerQuoteDuration *prometheus.HistogramVec
	providerQuoteFailures *prometheus.CounterVec
	comparisonNoProvider  prometheus.Counter
	walletDebitRejected   prometheus.Counter
	orderCompensations    prometheus.Counter
}

var (
	pipelineOnce    sync.Once
	pipelineMetrics *PipelineMetrics
)

// Pipeline returns the process-wide pipeline metrics, registering them on
// first use.
func Pipeline() *PipelineMetrics {
	pipelineOnce.Do(func() {
		pipelineMetrics = newPipelineMetrics(prometheus.DefaultRegisterer)
	})
	return pipelineMetrics
}

// ResetPipelineMetricsForTest clears the singleton between test runs.
func ResetPipelineMetricsForTest() {
	pipelineOnce = sync.Once{}
	pipelineMetrics = nil
}

func newPipelineMetrics(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &PipelineMetrics{
		providerQuoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rocketrybox_provider_quote_duration_seconds",
			Help:    "Latency of provider quote calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		providerQuoteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rocketrybox_provider_quote_failures_total",
			Help: "Provider quote failures by reason.",
		}, []string{"provider", "reason"}),
		comparisonNoProvider: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rocketrybox_comparison_no_serviceable_provider_total",
			Help: "Comparison runs where no provider returned a serviceable quote.",
		}),
		walletDebitRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rocketrybox_wallet_debit_rejected_total",
			Help: "Wallet debits rejected for insufficient balance.",
		}),
		orderCompensations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rocketrybox_order_compensating_credits_total",
			Help: "Compensating credits issued after order persistence failures.",
		}),
	}

	registerer.MustRegister(
		m.providerQuoteDuration,
		m.providerQuoteFailures,
		m.comparisonNoProvider,
		m.walletDebitRejected,
		m.orderCompensations,
	)
	return m
}

// ObserveProviderQuote records one provider quote call.
func (m *PipelineMetrics) ObserveProviderQuote(provider string, duration time.Duration, failureReason string) {
	if m == nil {
		return
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	m.providerQuoteDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if failureReason != "" {
		m.providerQuoteFailures.WithLabelValues(provider, failureReason).Inc()
	}
}

// IncNoServiceableProvider counts an empty comparison outcome.
func (m *PipelineMetrics) IncNoServiceableProvider() {
	if m == nil {
		return
	}
	m.comparisonNoProvider.Inc()
}

// IncWalletDebitRejected counts an insufficient-balance rejection.
func (m *PipelineMetrics) IncWalletDebitRejected() {
	if m == nil {
		return
	}
	m.walletDebitRejected.Inc()
}

// IncOrderCompensation counts a compensating credit.
func (m *PipelineMetrics) IncOrderCompensation() {
	if m == nil {
		return
	}
	m.orderCompensations.Inc()
}
