package cmd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/paw-chain/cowamm/x/cowamm/types"
)

const maxOrderBodyBytes = 64 << 10

// OrderServer exposes order generation, verification and commitments over HTTP
type OrderServer struct {
	host      *Host
	interval  time.Duration
	logger    log.Logger
	started   time.Time
	readiness *readinessCache
}

// NewOrderServer creates a server whose accepted orders are committed for the period
// containing the request time.
func NewOrderServer(host *Host, interval time.Duration, logger log.Logger) *OrderServer {
	return &OrderServer{
		host:      host,
		interval:  interval,
		logger:    logger.With("component", "api"),
		started:   time.Now(),
		readiness: &readinessCache{ttl: readinessCacheTTL},
	}
}

// RegisterRoutes registers all order routes
func (s *OrderServer) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/pools", s.handleListPools).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/pools/{poolID}/order", s.handleGetOrder).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/pools/{poolID}/verify", s.handleVerify).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/pools/{poolID}/orders", s.handleAcceptOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/pools/{poolID}/commitments/{period}", s.handleGetCommitment).Methods(http.MethodGet)
	r.HandleFunc("/health", withHealthMetrics("health", s.handleHealth)).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", withHealthMetrics("ready", s.handleReadiness)).Methods(http.MethodGet)
}

// Handler returns the routed handler with recovery, access logging and JSON enforcement.
func (s *OrderServer) Handler(accessLog io.Writer) http.Handler {
	router := mux.NewRouter()
	s.RegisterRoutes(router)

	var h http.Handler = handlers.ContentTypeHandler(router, "application/json")
	h = handlers.CombinedLoggingHandler(accessLog, h)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(h)
}

// Start serves the API on addr in a background goroutine.
func (s *OrderServer) Start(addr string, accessLog io.Writer) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(accessLog),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		s.logger.Info("order API listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("order API server error", "error", err)
		}
	}()

	return server
}

func (s *OrderServer) handleListPools(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"pool_ids": s.host.PoolIDs()})
}

func (s *OrderServer) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	poolID, ok := s.poolID(w, r)
	if !ok {
		return
	}

	order, err := s.host.Generate(r.Context(), poolID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if order.IsEmpty() {
		s.writeJSON(w, http.StatusOK, noTrade{NoTrade: true})
		return
	}
	s.writeJSON(w, http.StatusOK, order)
}

func (s *OrderServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	poolID, ok := s.poolID(w, r)
	if !ok {
		return
	}
	order, ok := s.decodeOrder(w, r)
	if !ok {
		return
	}

	result := verifyResult{PoolID: poolID, OrderHash: hex.EncodeToString(order.Hash())}
	if err := s.host.Verify(r.Context(), poolID, order); err != nil {
		s.writeRejection(w, result, err)
		return
	}
	result.Valid = true
	s.writeJSON(w, http.StatusOK, result)
}

func (s *OrderServer) handleAcceptOrder(w http.ResponseWriter, r *http.Request) {
	poolID, ok := s.poolID(w, r)
	if !ok {
		return
	}

	period := s.host.Period(s.interval)
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeErrorMessage(w, http.StatusBadRequest, "invalid period")
			return
		}
		period = parsed
	}

	order, ok := s.decodeOrder(w, r)
	if !ok {
		return
	}

	result := verifyResult{PoolID: poolID, OrderHash: hex.EncodeToString(order.Hash()), Period: period}
	if err := s.host.Accept(r.Context(), poolID, period, order); err != nil {
		s.writeRejection(w, result, err)
		return
	}
	result.Valid = true
	result.Committed = true
	s.writeJSON(w, http.StatusCreated, result)
}

func (s *OrderServer) handleGetCommitment(w http.ResponseWriter, r *http.Request) {
	poolID, ok := s.poolID(w, r)
	if !ok {
		return
	}
	period, err := strconv.ParseUint(mux.Vars(r)["period"], 10, 64)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid period")
		return
	}

	hash, found := s.host.Commitment(r.Context(), poolID, period)
	if !found {
		s.writeJSON(w, http.StatusNotFound, commitmentResult{PoolID: poolID, Period: period})
		return
	}
	s.writeJSON(w, http.StatusOK, commitmentResult{
		PoolID:    poolID,
		Period:    period,
		Committed: true,
		OrderHash: hex.EncodeToString(hash),
	})
}

func (s *OrderServer) poolID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	poolID, err := strconv.ParseUint(mux.Vars(r)["poolID"], 10, 64)
	if err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid pool id")
		return 0, false
	}
	return poolID, true
}

func (s *OrderServer) decodeOrder(w http.ResponseWriter, r *http.Request) (types.Order, bool) {
	var order types.Order
	if err := json.NewDecoder(io.LimitReader(r.Body, maxOrderBodyBytes)).Decode(&order); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid order body")
		return types.Order{}, false
	}
	return order, true
}

// writeRejection reports a verification outcome. Orders the pool refuses are 422, or 409
// when the period is already committed.
func (s *OrderServer) writeRejection(w http.ResponseWriter, result verifyResult, err error) {
	reason, ok := types.ReasonOf(err)
	if !ok {
		s.writeError(w, err)
		return
	}

	result.Reason = reason
	result.Error = err.Error()
	status := http.StatusUnprocessableEntity
	if reason == types.ReasonCommitmentMismatch {
		status = http.StatusConflict
	}
	s.writeJSON(w, status, result)
}

func (s *OrderServer) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrPoolNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrOracleUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, types.ErrInvalidConfiguration), errors.Is(err, types.ErrInvalidOracleData):
		status = http.StatusFailedDependency
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeErrorMessage(w, status, err.Error())
}

func (s *OrderServer) writeErrorMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{"error": message})
}

func (s *OrderServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// recoveryLogger routes handler panics to the host logger
type recoveryLogger struct {
	logger log.Logger
}

func (l recoveryLogger) Println(args ...any) {
	l.logger.Error("handler panic", "panic", args)
}
