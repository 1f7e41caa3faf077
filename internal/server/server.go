// Package server exposes the forecaster over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/rpgo/lifecastor/internal/cache"
	"github.com/rpgo/lifecastor/internal/calculation"
	"github.com/rpgo/lifecastor/internal/config"
	"github.com/rpgo/lifecastor/internal/domain"
)

const (
	// DefaultTimeout bounds a single forecast request.
	DefaultTimeout = 2 * time.Minute
	// DefaultMaxRuns bounds simulation.runs in a single request.
	DefaultMaxRuns = 100000
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Runner executes a forecast batch.
type Runner interface {
	Run(ctx context.Context, params *domain.PlanningParameters) (*domain.BatchResult, error)
}

// Server handles forecast requests.
type Server struct {
	runner  Runner
	parser  *config.InputParser
	cache   cache.Cache
	log     zerolog.Logger
	Timeout time.Duration
	// MaxRuns rejects larger batches with 400; zero disables the limit.
	MaxRuns int

	// base is cancelled when ListenAndServe shuts down.
	base context.Context
}

// New creates a server. c may be nil to disable caching.
func New(runner Runner, c cache.Cache, log zerolog.Logger) *Server {
	return &Server{
		runner:  runner,
		parser:  config.NewInputParser(),
		cache:   c,
		log:     log,
		Timeout: DefaultTimeout,
		MaxRuns: DefaultMaxRuns,
		base:    context.Background(),
	}
}

// Handler routes a request and logs its outcome.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	switch string(ctx.Path()) {
	case "/healthz":
		if !ctx.IsGet() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
			break
		}
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case "/v1/forecast":
		if !ctx.IsPost() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
			break
		}
		s.handleForecast(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}

	s.log.Info().
		Str("method", string(ctx.Method())).
		Str("path", string(ctx.Path())).
		Int("status", ctx.Response.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("request")
}

func (s *Server) handleForecast(ctx *fasthttp.RequestCtx) {
	params, err := s.parser.Parse(ctx.PostBody(), "json")
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if s.MaxRuns > 0 && params.Simulation.Runs > s.MaxRuns {
		writeError(ctx, fasthttp.StatusBadRequest,
			fmt.Sprintf("simulation.runs %d exceeds the server limit of %d", params.Simulation.Runs, s.MaxRuns))
		return
	}
	summary := ctx.QueryArgs().GetBool("summary")

	key, err := cache.Key(*params)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	if summary {
		key += ":summary"
	}

	runCtx, cancel := context.WithTimeout(s.base, s.Timeout)
	defer cancel()

	if s.cache != nil {
		body, ok, err := s.cache.Get(runCtx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok {
			ctx.Response.Header.Set("X-Cache", "HIT")
			writeBody(ctx, fasthttp.StatusOK, body)
			return
		}
	}

	batch, err := s.runner.Run(runCtx, params)
	if err != nil {
		writeError(ctx, statusFor(err), err.Error())
		return
	}
	if summary {
		batch = batch.Summary()
	}

	body, err := json.Marshal(batch)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("encoding result: %v", err))
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(runCtx, key, body); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	ctx.Response.Header.Set("X-Cache", "MISS")
	writeBody(ctx, fasthttp.StatusOK, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, calculation.ErrConfiguration):
		return fasthttp.StatusBadRequest
	case errors.Is(err, calculation.ErrNonConvergence):
		return fasthttp.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fasthttp.StatusServiceUnavailable
	default:
		return fasthttp.StatusInternalServerError
	}
}

func writeBody(ctx *fasthttp.RequestCtx, status int, body []byte) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	writeBody(ctx, status, body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	body, _ := json.Marshal(ErrorResponse{Status: status, Message: message})
	writeBody(ctx, status, body)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.base = ctx
	srv := &fasthttp.Server{
		Handler:     s.Handler,
		Name:        "lifecastor",
		ReadTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(); err != nil {
			return err
		}
		return <-errCh
	}
}
