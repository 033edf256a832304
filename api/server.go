// Package api serves the settle engine and the wallet ledger over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/etnz/settle"
	"github.com/etnz/settle/wallet"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

// Server is the settle HTTP API server.
type Server struct {
	ledger  *wallet.Ledger
	logger  *slog.Logger
	metrics prometheus.Gatherer
	now     func() time.Time
}

// NewServer creates a server over ledger. A nil logger discards logs.
func NewServer(ledger *wallet.Ledger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{ledger: ledger, logger: logger, now: time.Now}
}

// EnableMetrics serves the metrics of g under /metrics.
func (s *Server) EnableMetrics(g prometheus.Gatherer) { s.metrics = g }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/balances", s.handleBalances)
		r.Post("/simplify", s.handleSimplify)
		r.Post("/loans/repay", s.handleRepay)

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/", s.handleListPaymentMethods)
			r.Post("/", s.handleCreatePaymentMethod)
			r.Get("/{id}", s.handleGetPaymentMethod)
			r.Delete("/{id}", s.handleDeletePaymentMethod)
			r.Post("/{id}/operations", s.handleOperation)
		})
	})

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
	return r
}

// logRequests logs one line per request once it is served.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}

// fail writes err with the status of its kind.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

// statusOf maps the error taxonomy to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, settle.ErrUnbalancedLedger):
		return http.StatusInternalServerError
	case errors.Is(err, wallet.ErrUnknownAccount):
		return http.StatusNotFound
	case errors.Is(err, settle.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrInUse),
		errors.Is(err, wallet.ErrExists),
		errors.Is(err, wallet.ErrIdempotencyConflict),
		errors.Is(err, settle.ErrLoanClosed):
		return http.StatusConflict
	case errors.Is(err, settle.ErrMalformedSplit),
		errors.Is(err, settle.ErrInvalidAmount),
		errors.Is(err, settle.ErrOverRepayment),
		errors.Is(err, settle.ErrUnsupportedCurrency),
		errors.Is(err, settle.ErrInvalidRecord),
		errors.Is(err, wallet.ErrInvalidBucket),
		errors.Is(err, wallet.ErrInvalidAction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
