// Package http serves the web UI: auth, transactions, analytics and
// operational endpoints.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	appweb "fintrack/web"
)

// Config holds server construction parameters.
type Config struct {
	Addr              string
	SessionTTL        time.Duration
	RequestsPerMinute int
	SecureCookie      bool
}

type appMetrics struct {
	uptime            time.Time
	totalTransactions int64
	cacheHits         int64
	cacheMisses       int64
}

type Server struct {
	http.Server

	repo      *storage.SQLiteRepository
	txService *services.TransactionService
	templates *template.Template
	logger    *log.Logger

	sessionTTL   time.Duration
	secureCookie bool

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	headers         *security.HeadersMiddleware

	// Per-user analytics caches, invalidated on mutation
	summaryCache *cache.LRUCache[[]core.CategoryTotal]
	trendCache   *cache.LRUCache[[]core.MonthPoint]
	cacheManager *cache.Manager

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config, repo *storage.SQLiteRepository, txService *services.TransactionService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			Handler:           nil, // set below, after middleware wrapping
			ReadHeaderTimeout: 10 * time.Second,
		},
		repo:         repo,
		txService:    txService,
		logger:       logger.WithComponent(log.ComponentHTTP),
		sessionTTL:   cfg.SessionTTL,
		secureCookie: cfg.SecureCookie,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RequestsPerMinute,
		}),
		traceMiddleware: trace.NewMiddleware(clientIP),
		headers:         security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		summaryCache:    cache.NewLRUCache[[]core.CategoryTotal](200, 5*time.Minute),
		trendCache:      cache.NewLRUCache[[]core.MonthPoint](100, 5*time.Minute),
		cacheManager:    cache.NewManager(),
		appMetrics:      appMetrics{uptime: time.Now()},
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.trendCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(template.FuncMap{
		"money": func(m core.Money) string { return m.String() },
		"label": core.CategoryLabel,
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	// Public routes
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /logout", s.handleLogout)

	// Authenticated routes
	mux.Handle("GET /{$}", s.requireAuth(s.handleDashboard))
	mux.Handle("GET /transactions", s.requireAuth(s.handleListTransactions))
	mux.Handle("GET /transactions/add", s.requireAuth(s.handleTransactionForm))
	mux.Handle("POST /transactions/add", s.requireAuth(s.handleCreateTransaction))
	mux.Handle("POST /transactions/{id}/delete", s.requireAuth(s.handleDeleteTransaction))
	mux.Handle("GET /analytics", s.requireAuth(s.handleAnalytics))

	// Operational endpoints
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	handler := log.Middleware(s.logger)(mux)
	handler = s.headers.Middleware(handler)
	handler = s.rateLimiter.Middleware(clientIP, nil)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Server.Handler = handler

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateAnalytics drops a user's cached analytics after a mutation.
func (s *Server) invalidateAnalytics(userID int64) {
	s.summaryCache.DeletePrefix(summaryCachePrefix(userID))
	s.trendCache.Delete(trendCacheKey(userID))
}

func (s *Server) recordCacheHit()  { atomic.AddInt64(&s.appMetrics.cacheHits, 1) }
func (s *Server) recordCacheMiss() { atomic.AddInt64(&s.appMetrics.cacheMisses, 1) }
