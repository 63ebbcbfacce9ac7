package cmd

import (
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runnerTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowamm_runner_ticks_total",
			Help: "Per-pool run loop iterations by outcome",
		},
		[]string{"pool_id", "outcome"},
	)

	runnerPeriod = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cowamm_runner_period",
			Help: "Trading period of the last run loop iteration",
		},
	)

	configReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowamm_config_reloads_total",
			Help: "Config file reloads by status",
		},
		[]string{"status"},
	)
)

// StartPrometheusServer starts a Prometheus metrics HTTP server on the given port.
// It runs in a background goroutine and logs failures after startup.
func StartPrometheusServer(port int, logger log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("prometheus server error", "error", err)
		}
	}()

	return server
}
