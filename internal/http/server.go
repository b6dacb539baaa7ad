// Package http serves the finance tracker UI: the dashboard page, the
// htmx partials for metrics, charts, the transaction list and the
// monthly report, plus the CSV export and the analysis endpoint.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"duit/internal/analysis"
	"duit/internal/cache"
	"duit/internal/core"
	applog "duit/internal/log"
	"duit/internal/middleware/ratelimit"
	"duit/internal/middleware/security"
	"duit/internal/middleware/trace"
	"duit/internal/services"
	appweb "duit/web"
)

// Analyzer is the generative-text boundary. *analysis.Client satisfies
// it; a nil analyzer renders the unconfigured message inline.
type Analyzer interface {
	Analyze(ctx context.Context, pairs []core.CategoryAmount) (string, error)
}

var _ Analyzer = (*analysis.Client)(nil)

type Server struct {
	http.Server

	templates *template.Template
	service   *services.TransactionService
	analyzer  Analyzer
	logger    *applog.Logger

	limiter  *ratelimit.Limiter
	cacheMgr *cache.Manager

	// List snapshots keyed by the store's version counter. A mutation
	// bumps the version, so stale entries simply stop being referenced
	// and age out.
	listCache *cache.LRUCache[[]core.Transaction]

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, service *services.TransactionService, analyzer Analyzer, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		service:   service,
		analyzer:  analyzer,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		cacheMgr:  cache.NewManager(),
		listCache: cache.NewLRUCache[[]core.Transaction](16, 5*time.Minute),
	}

	s.cacheMgr.Register(s.listCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("failed parsing templates", applog.FieldError, err.Error())
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Error("failed to mount embedded static FS", applog.FieldError, err.Error())
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions/{id}/edit", s.handleEditTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /ui/metrics", s.handleMetrics)
	mux.HandleFunc("GET /ui/charts", s.handleCharts)
	mux.HandleFunc("GET /ui/transactions", s.handleTransactionList)
	mux.HandleFunc("GET /ui/report", s.handleReport)

	mux.HandleFunc("GET /export/csv", s.handleExportCSV)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)

	// Anything else is a missing page.
	mux.HandleFunc("/", s.handleNotFound)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(trace.ExtractClientIP, logger)

	handler := s.limitMutations(mux)
	handler = headers.Middleware(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// limitMutations rate limits state-changing methods per client IP. Reads
// stay unlimited: the dashboard fires several partial requests per page.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(trace.ExtractClientIP, s.handleRateLimited)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// handleRateLimited answers a limited mutation. The completion log line
// belongs to the trace middleware; this one records which request hit the
// limit so the two can be correlated.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "mutation rate limited",
		applog.FieldRequestID, trace.GetRequestID(r.Context()),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldClientIP, trace.ExtractClientIP(r))
	w.Header().Set("Retry-After", "60")
	writeInlineError(w, http.StatusTooManyRequests, "Terlalu banyak permintaan, coba lagi nanti")
}

// Shutdown stops background goroutines and the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// reqLogger returns the request-scoped logger injected by the trace
// middleware, which carries the request ID.
func (s *Server) reqLogger(r *http.Request) *applog.Logger {
	return applog.FromContext(r.Context())
}

// transactions returns the current list snapshot, cached per store
// version.
func (s *Server) transactions(ctx context.Context) ([]core.Transaction, error) {
	key := fmt.Sprintf("v%d", s.service.Version())
	if txs, ok := s.listCache.Get(key); ok {
		return txs, nil
	}

	txs, err := s.service.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	s.listCache.Set(key, txs)
	return txs, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
