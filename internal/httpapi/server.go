package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"swapCore/internal/exchange"
	"swapCore/internal/pool"
	"swapCore/internal/settlement"
)

// Reconciler resolves an indeterminate settlement reference. The EVM
// implementation lives in the settlement package; the server only needs this
// slice of it.
type Reconciler interface {
	Resolve(ctx context.Context, reference string) (settlement.Reconciliation, error)
}

// Server exposes the exchange over HTTP.
type Server struct {
	registry   *pool.Registry
	executor   *exchange.Executor
	reconciler Reconciler
	logger     *zap.Logger
}

// NewServer builds the HTTP surface. reconciler may be nil when no chain RPC
// is configured.
func NewServer(registry *pool.Registry, executor *exchange.Executor, reconciler Reconciler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry:   registry,
		executor:   executor,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Handler builds the routed handler with CORS and request logging.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/v1/pools", s.handleListPools).Methods(http.MethodGet)
	router.HandleFunc("/v1/pools", s.handleInitPool).Methods(http.MethodPost)
	router.HandleFunc("/v1/pools/{assetA}/{assetB}", s.handlePoolInfo).Methods(http.MethodGet)
	router.HandleFunc("/v1/pools/{assetA}/{assetB}/quote", s.handleQuote).Methods(http.MethodGet)
	router.HandleFunc("/v1/pools/{assetA}/{assetB}/swap", s.handleSwap).Methods(http.MethodPost)
	router.HandleFunc("/v1/reconcile", s.handleReconcile).Methods(http.MethodPost)

	return cors.Default().Handler(s.logRequests(router))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}
