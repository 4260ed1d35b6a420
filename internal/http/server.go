// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/trace"
	"financas/internal/services"
)

type Server struct {
	http.Server

	svc         *services.FinanceService
	logger      *log.Logger
	rateLimiter *ratelimit.Limiter

	// Monthly aggregates are cheap to rebuild but requested on every
	// dashboard render; cached until the next mutation.
	summaryCache   *cache.LRUCache[core.Summary]
	breakdownCache *cache.LRUCache[map[string]core.Money]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server listening on addr.
func NewServer(addr string, svc *services.FinanceService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentHTTP})
	}

	mux := http.NewServeMux()
	s := &Server{
		svc:            svc,
		logger:         logger,
		rateLimiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		summaryCache:   cache.NewLRUCache[core.Summary](64, 5*time.Minute),
		breakdownCache: cache.NewLRUCache[map[string]core.Money](64, 5*time.Minute),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/login", s.withRateLimit(s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("POST /api/signup", s.handleSignUp)

	mux.HandleFunc("POST /api/month/switch", s.handleSwitchMonth)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/breakdown", s.handleBreakdown)

	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleAddGoal)
	mux.HandleFunc("POST /api/goals/{id}/deposit", s.handleDepositToGoal)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("PATCH /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)

	traced := trace.NewMiddleware(logger).Middleware(mux)
	s.Server = http.Server{
		Addr:         addr,
		Handler:      traced,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.Server.Handler }

// invalidateAggregates drops cached summaries after any mutation.
func (s *Server) invalidateAggregates() {
	s.summaryCache.Purge()
	s.breakdownCache.Purge()
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := trace.ClientIP(r)
		if !s.rateLimiter.Allow(ip) {
			s.logger.WarnContext(r.Context(), "rate limited",
				log.FieldClientIP, ip,
				log.FieldPath, r.URL.Path,
			)
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

// Shutdown stops the listener and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
