package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CowAMMMetrics holds all Prometheus metrics for the cowamm module
type CowAMMMetrics struct {
	// Generation metrics
	OrdersGenerated   *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
	OracleFailures    *prometheus.CounterVec

	// Verification metrics
	Verifications *prometheus.CounterVec

	// Commitment metrics
	Commitments       *prometheus.CounterVec
	CommitmentsPruned prometheus.Counter
}

var (
	cowammMetricsOnce sync.Once
	cowammMetrics     *CowAMMMetrics
)

// NewCowAMMMetrics creates and registers cowamm metrics (singleton pattern)
func NewCowAMMMetrics() *CowAMMMetrics {
	cowammMetricsOnce.Do(func() {
		cowammMetrics = &CowAMMMetrics{
			OrdersGenerated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cowamm",
					Name:      "orders_generated_total",
					Help:      "Order generation attempts by outcome",
				},
				[]string{"pool_id", "sell_token", "status"},
			),
			GenerationLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "paw",
					Subsystem: "cowamm",
					Name:      "generation_latency_seconds",
					Help:      "Tradeable order generation latency in seconds",
					Buckets:   prometheus.DefBuckets,
				},
			),
			OracleFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cowamm",
					Name:      "oracle_failures_total",
					Help:      "Reference price lookups that failed",
				},
				[]string{"pool_id"},
			),
			Verifications: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cowamm",
					Name:      "verifications_total",
					Help:      "Order verifications by result or rejection reason",
				},
				[]string{"pool_id", "result"},
			),
			Commitments: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cowamm",
					Name:      "commitments_total",
					Help:      "Commitment attempts by status",
				},
				[]string{"pool_id", "status"},
			),
			CommitmentsPruned: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cowamm",
					Name:      "commitments_pruned_total",
					Help:      "Expired period commitments removed from state",
				},
			),
		}
	})
	return cowammMetrics
}
