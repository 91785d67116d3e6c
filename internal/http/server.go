package http

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"painel/internal/core"
	applog "painel/internal/log"
	"painel/internal/middleware/ratelimit"
	"painel/internal/middleware/security"
	"painel/internal/middleware/trace"
	"painel/internal/services"
	"painel/internal/store"
)

// EntryManager is the admin side of the entry repository.
type EntryManager interface {
	Add(ctx context.Context, amount float64, seller, client string) (services.AddResult, error)
	Update(ctx context.Context, id string, amount float64, seller, client string) (core.Entry, error)
	Delete(ctx context.Context, id string) error
	ResetCurrent(ctx context.Context, confirm bool) error
	DayState(ctx context.Context, date string) (services.DayState, error)
}

// GoalTracker owns goals, arc checkpoints and the progress summary.
type GoalTracker interface {
	SetGoals(ctx context.Context, weekly, monthly *float64) (core.Goals, error)
	ResetWeekArc(ctx context.Context) (int64, error)
	ResetMonthArc(ctx context.Context) (int64, error)
	Summary(ctx context.Context) (core.Summary, error)
}

type WeekReader interface {
	WeekView(ctx context.Context, date string) (core.WeekView, error)
}

type StorageInspector interface {
	Describe(ctx context.Context) (store.Info, error)
}

// Deps wires the server to the core services.
type Deps struct {
	Entries   EntryManager
	Goals     GoalTracker
	Week      WeekReader
	Storage   StorageInspector
	PublicDir string
	// RateLimitRPM caps mutating API calls per client per minute.
	RateLimitRPM int
	Logger       *applog.Logger
}

type Server struct {
	http.Server
	entries  EntryManager
	goals    GoalTracker
	week     WeekReader
	storage  StorageInspector
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	limitCfg := ratelimit.DefaultConfig()
	if deps.RateLimitRPM > 0 {
		limitCfg.RequestsPerMinute = deps.RateLimitRPM
	}

	s := &Server{
		entries:  deps.Entries,
		goals:    deps.Goals,
		week:     deps.Week,
		storage:  deps.Storage,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(limitCfg),
		detector: security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, handleRateLimited,
		http.MethodPost, http.MethodPut, http.MethodDelete)
	api := func(h http.HandlerFunc) http.Handler {
		return security.NoStoreMiddleware(limit(h))
	}

	mux.Handle("GET /api/admin/state", api(s.handleState))
	mux.Handle("POST /api/admin/add", api(s.handleAdd))
	mux.Handle("PUT /api/admin/update/{id}", api(s.handleUpdate))
	mux.Handle("DELETE /api/admin/delete/{id}", api(s.handleDelete))
	mux.Handle("POST /api/reset", api(s.handleReset))
	mux.Handle("POST /api/set-goals", api(s.handleSetGoals))
	mux.Handle("POST /api/reset-week", api(s.handleResetWeek))
	mux.Handle("POST /api/reset-month", api(s.handleResetMonth))
	mux.Handle("GET /api/summary", api(s.handleSummary))
	mux.Handle("GET /api/week", api(s.handleWeek))
	mux.Handle("GET /debug/storage", api(s.handleDebugStorage))
	mux.Handle("GET /debug/metrics", api(s.handleDebugMetrics))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin.html", http.StatusFound)
	})

	if deps.PublicDir != "" {
		if info, err := os.Stat(deps.PublicDir); err == nil && info.IsDir() {
			mux.Handle("GET /", security.StaticAssetMiddleware(300)(http.FileServer(http.Dir(deps.PublicDir))))
		} else {
			logger.Warn("Public directory not available, static files disabled", "public_dir", deps.PublicDir, "error", err)
		}
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "Muitas requisições, tente novamente em instantes")
}
