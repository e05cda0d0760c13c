// Package server exposes the deal simulator over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/deal-risk/internal/config"
	"github.com/iwvelando/deal-risk/internal/engine"
	"github.com/iwvelando/deal-risk/internal/metrics"
	"github.com/iwvelando/deal-risk/internal/simulation"
	"github.com/iwvelando/deal-risk/pkg/constants"
	"github.com/iwvelando/deal-risk/pkg/genre"
	"github.com/iwvelando/deal-risk/pkg/output"
	"github.com/iwvelando/deal-risk/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options bounds the work a single request may ask for.
type Options struct {
	MaxUploadSize int64
	MaxIterations int
	RateLimit     float64 // requests per second, 0 disables
	RateBurst     int
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	maxIterations int
	limiter       *rate.Limiter
	version       string
}

// NewHandler constructs the HTTP handler that serves the simulation API.
func NewHandler(logger *zap.Logger, opts Options, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = constants.DefaultMaxIterations
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: opts.MaxUploadSize,
		maxIterations: opts.MaxIterations,
		version:       trimmedVersion,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = constants.DefaultRateBurst
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	mux := http.NewServeMux()

	// Simulation endpoints
	mux.Handle("/api/simulate", h.rateLimited(http.HandlerFunc(h.handleSimulate)))
	mux.Handle("/api/optimize", h.rateLimited(http.HandlerFunc(h.handleOptimize)))

	// Metadata endpoints
	mux.HandleFunc("/api/genres", h.handleGenres)
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// the server down gracefully.
func ListenAndServe(ctx context.Context, logger *zap.Logger, addr string, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			zap.String("op", "server.ListenAndServe"),
			zap.String("address", addr),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("shutting down HTTP server",
			zap.String("op", "server.ListenAndServe"),
		)
		return srv.Shutdown(shutdownCtx)
	}
}

type simulateRequest struct {
	Deal          config.DealConfig       `json:"deal"`
	Genre         string                  `json:"genre"`
	Iterations    int                     `json:"iterations" validate:"gte=0"`
	Seed          uint64                  `json:"seed"`
	Workers       int                     `json:"workers" validate:"gte=0,lte=256"`
	HistogramBins int                     `json:"histogramBins" validate:"gte=0"`
	ScatterPoints int                     `json:"scatterPoints" validate:"gte=0"`
	Optimizer     *config.OptimizerConfig `json:"optimizer,omitempty"`
}

type simulateResponse struct {
	output.Report
	Warnings []string `json:"warnings,omitempty"`
	Elapsed  string   `json:"elapsed"`
}

// iterations resolves an omitted trial count to the default.
func (req simulateRequest) iterations() int {
	if req.Iterations == 0 {
		return constants.DefaultIterations
	}
	return req.Iterations
}

func (req simulateRequest) configuration() *config.Configuration {
	iterations := req.iterations()
	return &config.Configuration{
		Deal:  req.Deal,
		Genre: req.Genre,
		Simulation: config.SimulationConfig{
			Iterations: iterations,
			Seed:       req.Seed,
			Workers:    req.Workers,
		},
		Optimizer: req.Optimizer,
		Output: config.OutputConfig{
			Format:        constants.OutputFormatJSON,
			HistogramBins: req.HistogramBins,
			ScatterPoints: req.ScatterPoints,
		},
	}
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, false, "server.handleSimulate")
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	h.evaluate(w, r, true, "server.handleOptimize")
}

func (h *handler) evaluate(w http.ResponseWriter, r *http.Request, optimize bool, op string) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req simulateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	if err := validation.Struct(req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if n := req.iterations(); n > h.maxIterations {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("iterations %d exceeds server limit of %d", n, h.maxIterations), op)
		return
	}
	if optimize && req.Optimizer == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "optimizer directive is required", op)
		return
	}

	cfg := req.configuration()
	if err := cfg.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	report, err := engine.Evaluate(r.Context(), h.logger, cfg, optimize)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, simulation.ErrInvalidIterations),
			errors.Is(err, simulation.ErrZeroInvestment),
			errors.Is(err, simulation.ErrNonFiniteInput),
			errors.Is(err, engine.ErrNoOptimizer):
			status = http.StatusBadRequest
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("simulation request served",
		zap.String("op", op),
		zap.String("runId", report.RunID),
		zap.Int("trials", report.Metrics.Trials),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, simulateResponse{
		Report:   *report,
		Warnings: warnings,
		Elapsed:  elapsed.String(),
	})
}

func (h *handler) handleGenres(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"genres":  genre.All(),
		"default": constants.DefaultGenre,
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) rateLimited(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			metrics.RateLimitedTotal.Inc()
			h.respondErrorWithOp(w, http.StatusTooManyRequests, "rate limit exceeded", "server.rateLimited")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("simulation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}
