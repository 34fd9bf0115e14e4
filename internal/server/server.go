package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/prose-humanizer/internal/batch"
	"github.com/jonathan/prose-humanizer/internal/db"
	"github.com/jonathan/prose-humanizer/internal/pipeline"
	"github.com/jonathan/prose-humanizer/internal/server/middleware"
	"github.com/jonathan/prose-humanizer/internal/server/ratelimit"
	"github.com/jonathan/prose-humanizer/internal/types"
)

// Store persists runs and detections. *db.DB implements it.
type Store interface {
	SaveRun(ctx context.Context, input string, cfg types.PipelineConfig, result *types.PipelineResult) (uuid.UUID, error)
	GetRun(ctx context.Context, id uuid.UUID) (*db.Run, error)
	ListRuns(ctx context.Context, filters db.RunFilters) ([]db.RunSummary, error)
	FindRunByDigest(ctx context.Context, digest string) (*db.Run, error)
	SaveDetection(ctx context.Context, text string, d types.Detection) (uuid.UUID, error)
	Close()
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	pipeline    *pipeline.Pipeline
	runner      *batch.Runner
	defaults    types.PipelineConfig
	rateLimiter *ratelimit.Limiter
	verbose     bool
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string // empty disables run storage
	Concurrency int
	Defaults    types.PipelineConfig
	Verbose     bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	var store Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		store = database
	}

	s := newServer(store, cfg, ratelimit.NewLimiter(ratelimit.LoadConfig()))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for chunked and batch runs
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// newServer wires the handlers around an optional store
func newServer(store Store, cfg Config, limiter *ratelimit.Limiter) *Server {
	defaults := cfg.Defaults
	if defaults.Profile == "" {
		defaults = types.DefaultConfig()
	}
	p := pipeline.New(pipeline.WithVerbose(cfg.Verbose))
	return &Server{
		store:       store,
		pipeline:    p,
		runner:      batch.New(p, batch.WithConcurrency(cfg.Concurrency), batch.WithVerbose(cfg.Verbose)),
		defaults:    defaults,
		rateLimiter: limiter,
		verbose:     cfg.Verbose,
	}
}

// routes builds the router with its middleware chain
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transform", s.handleTransform)
	mux.HandleFunc("POST /transform/batch", s.handleTransformBatch)
	mux.HandleFunc("POST /transform/stream", s.handleTransformStream)
	mux.HandleFunc("POST /detect", s.handleDetect)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /profiles", s.handleProfiles)
	mux.HandleFunc("GET /health", s.handleHealth)

	return middleware.RequestID(s.withRateLimit(s.withLogging(s.withCORS(mux))))
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[server] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] error: %v", err)
		}
	}()

	<-stop
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("[server] stopped")
	return nil
}

// Close releases the rate limiter and the store
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.store != nil {
		s.store.Close()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetRequestID(r)
		log.Printf("[server] [%s] %s %s %s", requestID, r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[server] [%s] %s %s completed in %v", requestID, r.Method, r.URL.Path, time.Since(start))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFrom writes an error JSON response with the status HTTPStatus assigns to err
func (s *Server) errorFrom(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] limit exceeded: limit=%d remaining=%d reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
