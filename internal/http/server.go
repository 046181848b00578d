// Package http serves the apartment cost tracker UI: an htmx-driven
// dashboard over the record store, plus export, auth, and operational
// endpoints.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aptcost/internal/cache"
	"aptcost/internal/core"
	"aptcost/internal/middleware/ratelimit"
	"aptcost/internal/middleware/security"
	"aptcost/internal/middleware/trace"
	"aptcost/internal/store"
	appweb "aptcost/web"
)

const snapshotKey = "records"

type Server struct {
	http.Server
	templates *template.Template
	store     store.ExpenseStore

	limiter  *ratelimit.Limiter
	detector *security.Detector
	headers  *security.HeadersMiddleware
	tracer   *trace.Middleware
	auth     *authGate

	// Snapshot read path: a short-TTL cache in front of the backend, plus
	// the last snapshot that loaded successfully for stale fallback when
	// the backend is down.
	snapshots *cache.LRUCache[[]core.ExpenseRecord]
	lastGood  atomic.Pointer[[]core.ExpenseRecord]
	cacheMgr  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes, templates, and middleware around the given store.
// authHash is the hex SHA-256 of the access passphrase; empty disables the
// auth gate.
func NewServer(addr string, st store.ExpenseStore, authHash string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:     st,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(),
		headers:   security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		snapshots: cache.NewLRUCache[[]core.ExpenseRecord](4, 30*time.Second),
		cacheMgr:  cache.NewManager(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	s.auth = newAuthGate(authHash)

	s.cacheMgr.Register(s.snapshots)
	s.cacheMgr.StartCleanup(5 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /auth", s.handleAuthPage)
	mux.HandleFunc("POST /auth", s.handleAuthSubmit)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)

	mux.HandleFunc("GET /{$}", s.protected(s.handleIndex))
	mux.HandleFunc("GET /ui/stats", s.protected(s.handleStats))
	mux.HandleFunc("GET /ui/sections", s.protected(s.handleSections))
	mux.HandleFunc("POST /expenses", s.protected(s.handleCreateExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.protected(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.protected(s.handleDeleteExpense))
	mux.HandleFunc("GET /export", s.protected(s.handleExport))

	return s
}

// protected stacks the standard middleware for UI routes: tracing, security
// headers, rate limiting on mutations, and the auth gate.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	handler := s.auth.require(next)
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)

		if isMutation(r.Method) && !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request",
				"client_ip", clientIP,
				"path", r.URL.Path)
		}

		s.tracer.Middleware(s.headers.Middleware(handler)).ServeHTTP(w, r)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// loadRecords returns the current record snapshot, newest first. Reads go
// through the short-TTL cache; when the backend fails the last good snapshot
// is served stale rather than erroring the whole page.
func (s *Server) loadRecords(ctx context.Context) ([]core.ExpenseRecord, error) {
	if records, found := s.snapshots.Get(snapshotKey); found {
		return records, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()

	records, err := s.store.List(cctx)
	if err != nil {
		if stale := s.lastGood.Load(); stale != nil {
			slog.WarnContext(ctx, "Record list failed, serving stale snapshot",
				"error", err,
				"stale_count", len(*stale))
			return *stale, nil
		}
		return nil, err
	}

	s.snapshots.Set(snapshotKey, records)
	s.lastGood.Store(&records)
	return records, nil
}

// invalidateSnapshot drops the cached record list after a mutation so the
// next partial render sees the change.
func (s *Server) invalidateSnapshot() {
	s.snapshots.Delete(snapshotKey)
}

// Shutdown stops the background cleanup goroutines and then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.loadRecords(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("backend unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// render executes a named template. The template set can be nil when the
// embedded files fail to parse at startup; every handler goes through here
// so that case answers 500 instead of panicking per request.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name, "path", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Today       string
		AuthEnabled bool
	}{
		Today:       time.Now().Format("2006-01-02"),
		AuthEnabled: s.auth.enabled(),
	}
	s.render(w, r, "index.html", data)
}
