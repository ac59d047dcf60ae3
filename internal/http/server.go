// Package http serves the web UI: full pages for login and the
// dashboard, plus the partials the dashboard swaps in as data changes.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/Cherval/me-my-cal/internal/auth"
	"github.com/Cherval/me-my-cal/internal/core"
	applog "github.com/Cherval/me-my-cal/internal/log"
	"github.com/Cherval/me-my-cal/internal/middleware/ratelimit"
	"github.com/Cherval/me-my-cal/internal/middleware/security"
	"github.com/Cherval/me-my-cal/internal/middleware/trace"
	appweb "github.com/Cherval/me-my-cal/web"
)

type Server struct {
	http.Server
	templates *template.Template
	registry  *Registry
	auth      *auth.Service
	logger    *slog.Logger

	rateLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, authSvc *auth.Service, registry *Registry) *Server {
	mux := http.NewServeMux()

	s := &Server{
		registry:    registry,
		auth:        authSvc,
		logger:      applog.WithComponent(applog.ComponentHTTP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	t, err := template.New("").Funcs(template.FuncMap{
		"baht": core.FormatBaht,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /grid", s.handleGrid)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /demo", s.handleDemo)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("POST /transactions", s.handleAddTransaction)
	mux.HandleFunc("POST /transactions/delete", s.handleDeleteTransaction)
	mux.HandleFunc("POST /transactions/update", s.handleUpdateTransaction)

	// UI partials
	mux.HandleFunc("GET /ui/summary", s.handleSummary)
	mux.HandleFunc("GET /ui/transactions", s.handleTransactions)
	mux.HandleFunc("GET /ui/charts", s.handleCharts)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	traced := trace.NewMiddleware(extractClientIP)

	handler := traced.Handler(headers.Middleware(s.withWriteLimit(mux)))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// withWriteLimit rate limits mutating requests per client IP. Reads are
// cheap renders over in-memory state and stay unlimited.
func (s *Server) withWriteLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.rateLimiter.Allow(extractClientIP(r)) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", extractClientIP(r), "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter alongside the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	s.logger.DebugContext(r.Context(), "Readiness check", "sessions", s.registry.Count())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes a template, logging failures instead of leaking them
// to the client mid-response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
	}
}
