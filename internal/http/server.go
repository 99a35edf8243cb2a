// Package http serves the ledger page, its HTMX partials and the CSV download.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Pinger probes the persistent store for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerChecker reports whether the message broker connection is usable.
type BrokerChecker interface {
	Ping() error
}

// Options tune the server. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	Headers            *security.HeadersConfig
	StaticMaxAge       int
	// Broker is reported by the readiness probe when set. A broker outage
	// does not make the server unready since mutations never depend on it.
	Broker BrokerChecker
}

// Server is the web surface of the Tracker.
type Server struct {
	http.Server
	templates       *template.Template
	tracker         *services.Tracker
	store           Pinger
	broker          BrokerChecker
	logger          *log.Logger
	traceMiddleware *trace.Middleware
	rateLimiter     *ratelimit.Limiter
	appMetrics      *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	transactionsCreated int64
	transactionsDeleted int64
	categoriesCreated   int64
	validationErrors    int64
	uptime              time.Time
}

// NewServer parses the embedded templates and wires routes and middleware.
// store may be nil, in which case readiness skips the store probe.
func NewServer(addr string, tracker *services.Tracker, store Pinger, opts Options) (*Server, error) {
	if tracker == nil {
		return nil, fmt.Errorf("http: tracker is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.New("fintrack").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	headers := security.DefaultHeadersConfig()
	if opts.Headers != nil {
		headers = *opts.Headers
	}
	staticMaxAge := opts.StaticMaxAge
	if staticMaxAge <= 0 {
		staticMaxAge = 3600
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		templates:       t,
		tracker:         tracker,
		store:           store,
		broker:          opts.Broker,
		logger:          logger,
		traceMiddleware: trace.NewMiddleware(clientIP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		appMetrics: &appMetrics{uptime: time.Now()},
	}

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/transactions/delete", s.handleDeleteTransaction)
	mux.HandleFunc("/categories", s.handleCreateCategory)
	mux.HandleFunc("/export/transactions.csv", s.handleExportCSV)

	// UI partials
	mux.HandleFunc("/ui/transactions", s.handleLedgerPartial)
	mux.HandleFunc("/ui/chart", s.handleChartPartial)
	mux.HandleFunc("/ui/form", s.handleFormPartial)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(clientIP, s.onRateLimit, http.MethodPost, http.MethodDelete)(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = log.Middleware(logger)(handler)
	s.Handler = handler

	return s, nil
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, clientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldComponent, log.ComponentRateLimit)

	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", "60").
		TriggerErrorNotification("Too many requests, please wait a minute").
		BodyHTML(`<div class="error">Rate limit exceeded. Please try again later.</div>`).
		Write(w)
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
