package cmd

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const readinessCacheTTL = 5 * time.Second

var (
	healthCheckTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowamm_health_check_total",
			Help: "Total number of health check requests",
		},
		[]string{"endpoint", "status"},
	)

	healthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cowamm_health_check_duration_seconds",
			Help:    "Health check request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"endpoint"},
	)
)

// HealthResponse is the response for /health
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

// ReadinessResponse is the response for /health/ready. A pool is ready when an order can be
// generated for it, which needs its reserves and reference price.
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Period uint64                 `json:"period"`
	Pools  map[string]CheckResult `json:"pools"`
}

// CheckResult represents a single health check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// readinessCache keeps readiness probes from regenerating orders on every request
type readinessCache struct {
	mu          sync.Mutex
	result      *ReadinessResponse
	lastChecked time.Time
	ttl         time.Duration
}

func (c *readinessCache) get(now time.Time) (*ReadinessResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.result == nil || now.Sub(c.lastChecked) > c.ttl {
		return nil, false
	}
	return c.result, true
}

func (c *readinessCache) set(now time.Time, result *ReadinessResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.result = result
	c.lastChecked = now
}

// withHealthMetrics wraps health check handlers with metrics
func withHealthMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		healthCheckTotal.WithLabelValues(endpoint, strconv.Itoa(rw.statusCode)).Inc()
		healthCheckDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// handleHealth handles GET /health - always returns 200 if the process is alive
func (s *OrderServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(now.Sub(s.started).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
	})
}

// handleReadiness handles GET /health/ready - 503 while any configured pool cannot produce an order
func (s *OrderServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	result, ok := s.readiness.get(now)
	if !ok {
		result = &ReadinessResponse{
			Status: "ready",
			Period: s.host.Period(s.interval),
			Pools:  make(map[string]CheckResult),
		}
		for _, poolID := range s.host.PoolIDs() {
			check := CheckResult{Status: "ok"}
			if _, err := s.host.Preview(r.Context(), poolID); err != nil {
				check = CheckResult{Status: "failed", Message: err.Error()}
				result.Status = "not_ready"
			}
			result.Pools[strconv.FormatUint(poolID, 10)] = check
		}
		s.readiness.set(now, result)
	}

	status := http.StatusOK
	if result.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, result)
}
