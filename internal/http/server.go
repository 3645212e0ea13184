package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finledger/internal/cache"
	"finledger/internal/derive"
	"finledger/internal/ledger"
	"finledger/internal/log"
	"finledger/internal/middleware/ratelimit"
	"finledger/internal/middleware/security"
	"finledger/internal/middleware/trace"
)

// Config holds the server's tunables. Zero values fall back to defaults.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	ReportCacheSize    int
	ReportCacheTTL     time.Duration

	// BlockSuspicious answers flagged requests with 403 instead of only
	// logging them.
	BlockSuspicious bool

	// Ready reports whether dependencies are usable. Nil means always ready.
	Ready func(context.Context) error
}

type Server struct {
	http.Server
	ledger *ledger.Ledger
	engine *derive.Engine
	logger *log.Logger
	ready  func(context.Context) error

	reportCache *cache.LRUCache[[]byte]
	reports     *cache.Loader[[]byte]

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, l *ledger.Ledger, engine *derive.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	if cfg.ReportCacheSize <= 0 {
		cfg.ReportCacheSize = 64
	}
	if cfg.ReportCacheTTL <= 0 {
		cfg.ReportCacheTTL = 5 * time.Minute
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	reportCache := cache.NewLRUCache[[]byte](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	s := &Server{
		ledger:      l,
		engine:      engine,
		logger:      logger,
		ready:       cfg.Ready,
		reportCache: reportCache,
		reports:     cache.NewLoader[[]byte](reportCache),
		limiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:    security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.middleware(mux, cfg.BlockSuspicious),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// middleware wraps h so that, outermost first, requests are traced, screened,
// given security headers and rate limited.
func (s *Server) middleware(h http.Handler, block bool) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(s.logger, block)(h)
	return s.tracer.Middleware(h)
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/reports", s.handleReport)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/savings", s.handleGetSavings)
	mux.HandleFunc("POST /api/savings/deposit", s.handleSavingsDeposit)
	mux.HandleFunc("POST /api/savings/withdraw", s.handleSavingsWithdraw)
	mux.HandleFunc("PUT /api/savings/goal", s.handleSetSavingsGoal)
	mux.HandleFunc("POST /api/savings/goals", s.handleAddSavingsGoal)

	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("POST /api/bills", s.handleCreateBill)
	mux.HandleFunc("PATCH /api/bills/{id}", s.handleUpdateBill)
	mux.HandleFunc("DELETE /api/bills/{id}", s.handleDeleteBill)
	mux.HandleFunc("POST /api/bills/{id}/pay", s.handlePayBill)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /api/budgets", s.handleCreateBudget)
	mux.HandleFunc("PATCH /api/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/tuition-fees", s.handleListTuitionFees)
	mux.HandleFunc("POST /api/tuition-fees", s.handleCreateTuitionFee)
	mux.HandleFunc("PATCH /api/tuition-fees/{id}", s.handleUpdateTuitionFee)
	mux.HandleFunc("DELETE /api/tuition-fees/{id}", s.handleDeleteTuitionFee)
	mux.HandleFunc("POST /api/tuition-fees/{id}/payments", s.handleTuitionPayment)

	mux.HandleFunc("GET /api/scholarships", s.handleListScholarships)
	mux.HandleFunc("POST /api/scholarships", s.handleCreateScholarship)
	mux.HandleFunc("PATCH /api/scholarships/{id}", s.handleUpdateScholarship)
	mux.HandleFunc("PATCH /api/scholarships/{id}/status", s.handleUpdateScholarshipStatus)
	mux.HandleFunc("DELETE /api/scholarships/{id}", s.handleDeleteScholarship)

	mux.HandleFunc("GET /api/loans", s.handleListLoans)
	mux.HandleFunc("POST /api/loans", s.handleCreateLoan)
	mux.HandleFunc("PATCH /api/loans/{id}", s.handleUpdateLoan)
	mux.HandleFunc("DELETE /api/loans/{id}", s.handleDeleteLoan)
	mux.HandleFunc("POST /api/loans/{id}/payments", s.handleLoanPayment)
	mux.HandleFunc("GET /api/loans/{id}/schedule", s.handleLoanSchedule)
}

// ReportCache exposes the rendered-report cache so its expired entries can be
// swept by a cache.Manager.
func (s *Server) ReportCache() cache.Cleaner {
	return s.reportCache
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not_ready", "dependencies unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]any{"status": "ready", "version": s.ledger.Version()}).Write(w)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	hits, misses := s.reportCache.Stats()
	NewJSONResponse().Body(map[string]any{
		"requests":  s.tracer.GetMetrics(),
		"rateLimit": s.limiter.GetMetrics(),
		"security":  s.detector.GetMetrics(),
		"reportCache": map[string]any{
			"size":   s.reportCache.Size(),
			"hits":   hits,
			"misses": misses,
		},
	}).Write(w)
}
