package alexa

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vending-backend/application/dialog"
	"vending-backend/pkg/observability"
)

// Pinger reports whether the backing store is reachable, for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router creates and configures the HTTP router
type Router struct {
	machine  *dialog.StateMachine
	pinger   Pinger
	metrics  *observability.Collector
	logger   *zap.Logger
	validate *validator.Validate
}

// NewRouter creates a new router instance
func NewRouter(machine *dialog.StateMachine, pinger Pinger, metrics *observability.Collector, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		machine:  machine,
		pinger:   pinger,
		metrics:  metrics,
		logger:   logger,
		validate: validator.New(),
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(rt.logger))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	router.Post("/alexa", rt.handleTurn)

	return router
}

// handleTurn decodes one skill request, runs the dialog machine and writes
// the response envelope.
func (rt *Router) handleTurn(w http.ResponseWriter, r *http.Request) {
	var env RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		rt.logger.Warn("malformed request envelope", zap.Error(err))
		http.Error(w, "malformed request envelope", http.StatusBadRequest)
		return
	}
	if err := rt.validate.Struct(env); err != nil {
		rt.logger.Warn("invalid request envelope", zap.Error(err))
		http.Error(w, "invalid request envelope", http.StatusBadRequest)
		return
	}

	in := DecodeTurn(env)

	start := time.Now()
	out := rt.machine.Handle(r.Context(), in)

	outcome := "continue"
	if out.EndSession {
		outcome = "end"
	}
	rt.metrics.ObserveTurn(in.Kind.String(), outcome, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(EncodeOutcome(out)); err != nil {
		rt.logger.Error("write response envelope", zap.Error(err))
	}
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready only when the store answers a ping.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if rt.pinger != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.pinger.Ping(ctx); err != nil {
			rt.logger.Warn("readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// requestLogger logs one line per handled request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
