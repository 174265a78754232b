// Package metrics provides the centralized Prometheus registry for the
// betting engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BetsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "bets_placed_total",
		Help:      "Total number of paper bets placed",
	})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled by outcome",
	}, []string{"outcome"})
	EdgeSignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "edge_signals_total",
		Help:      "Total number of edge evaluations by decision",
	}, []string{"decision"})
	DevigFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "devig_fallbacks_total",
		Help:      "Total number of de-vig solves that fell back to the multiplicative method",
	})
	ChronologyViolationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "chronology_violations_total",
		Help:      "Total number of out-of-order game sequences that aborted a replay",
	})
	OddsQuotesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "odds_quotes_ingested_total",
		Help:      "Total number of odds quotes ingested by provider",
	}, []string{"provider"})
	IngestionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "ingestion_errors_total",
		Help:      "Total number of ingestion failures by provider",
	}, []string{"provider"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "current_bankroll",
		Help:      "Current paper trading bankroll in currency units",
	})
	CurrentDrawdown = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "current_drawdown",
		Help:      "Current peak-to-trough drawdown as a fraction of peak",
	})
	PendingBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "pending_bets",
		Help:      "Number of placed bets awaiting settlement",
	})
	RatedTeams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "rated_teams",
		Help:      "Number of teams with a trained rating",
	})
)

// Histogram metrics
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	IngestionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of ingestion runs in seconds by provider",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
	DetectedEdge = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "detected_edge",
		Help:      "Distribution of edges on placed bets",
		Buckets:   []float64{0.04, 0.06, 0.08, 0.10, 0.15, 0.20, 0.30},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(EdgeSignalsTotal)
		registry.MustRegister(DevigFallbacksTotal)
		registry.MustRegister(ChronologyViolationsTotal)
		registry.MustRegister(OddsQuotesIngestedTotal)
		registry.MustRegister(IngestionErrorsTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(CurrentDrawdown)
		registry.MustRegister(PendingBets)
		registry.MustRegister(RatedTeams)

		registry.MustRegister(BacktestDuration)
		registry.MustRegister(IngestionDuration)
		registry.MustRegister(DetectedEdge)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBetPlaced records a bet placement with its detected edge.
func RecordBetPlaced(edge float64) {
	BetsPlacedTotal.Inc()
	DetectedEdge.Observe(edge)
}

// RecordBetSettled records a settlement event by outcome.
func RecordBetSettled(outcome string) {
	BetsSettledTotal.WithLabelValues(outcome).Inc()
}

// RecordEdgeDecision records an edge evaluation decision.
func RecordEdgeDecision(decision string) {
	EdgeSignalsTotal.WithLabelValues(decision).Inc()
}

// RecordDevigFallback records a de-vig method falling back to
// multiplicative.
func RecordDevigFallback() {
	DevigFallbacksTotal.Inc()
}

// RecordQuotesIngested records ingested quotes for a provider.
func RecordQuotesIngested(provider string, count int) {
	OddsQuotesIngestedTotal.WithLabelValues(provider).Add(float64(count))
}

// RecordIngestionError records an ingestion failure for a provider.
func RecordIngestionError(provider string) {
	IngestionErrorsTotal.WithLabelValues(provider).Inc()
}

// UpdateBankroll updates the bankroll and drawdown gauges.
func UpdateBankroll(balance, drawdown float64) {
	CurrentBankroll.Set(balance)
	CurrentDrawdown.Set(drawdown)
}
