package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/examprep/internal/cache"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/itemgen"
)

// maxRequestBytes bounds the generation request body.
const maxRequestBytes = 1 << 20

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Server is the generation backend HTTP server.
type Server struct {
	synth    itemgen.Synthesizer
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  RateLimiter
	pingers  map[string]Pinger
	logger   *slog.Logger
	timeout  time.Duration
	router   *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithCache serves repeated requests from c.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithRateLimiter rejects requests l does not allow with 429.
func WithRateLimiter(l RateLimiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithHealthCheck adds a named dependency to GET /health.
func WithHealthCheck(name string, p Pinger) Option {
	return func(s *Server) { s.pingers[name] = p }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithTimeout bounds each request. The default is two minutes.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// NewServer creates a backend serving synth.
func NewServer(synth itemgen.Synthesizer, opts ...Option) *Server {
	s := &Server{
		synth:   synth,
		pingers: make(map[string]Pinger),
		logger:  slog.Default(),
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow(clientKey(r)) {
		respondError(w, http.StatusTooManyRequests, "rate_limited", "too many generation requests")
		return
	}

	var req itemgen.BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	log := s.logger.With("session_id", req.SessionID, "batch", req.BatchIndex, "items", len(req.Items))

	var fp string
	if s.cache != nil {
		fp = cache.Fingerprint(req)
		items, ok, err := s.cache.Get(r.Context(), fp)
		if err != nil {
			log.Warn("cache lookup failed", "error", err)
		} else if ok && len(items) == len(req.Items) {
			log.Debug("cache hit", "fingerprint", fp)
			respondItems(w, items)
			return
		}
	}

	items, err := s.synth.Synthesize(r.Context(), req)
	if err != nil {
		status, code := errorStatus(err)
		log.Warn("generation failed", "status", status, "error", err)
		respondError(w, status, code, err.Error())
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(context.WithoutCancel(r.Context()), fp, items, s.cacheTTL); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}
	respondItems(w, items)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(s.pingers))
	for name, p := range s.pingers {
		if err := p.Ping(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	respondJSON(w, status, map[string]any{
		"status": state,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
	})
}

// errorStatus maps a synthesis error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, exam.ErrGenerationInvalid):
		return http.StatusBadGateway, "generation_invalid"
	case errors.Is(err, exam.ErrGenerationTransport):
		return http.StatusServiceUnavailable, "generation_unavailable"
	case errors.Is(err, exam.ErrGenerationCancelled):
		return http.StatusServiceUnavailable, "generation_cancelled"
	}
	return http.StatusInternalServerError, "internal"
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
