package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"listkeep/internal/auth"
	"listkeep/internal/config"
	"listkeep/internal/handler"
	"listkeep/internal/middleware"
	"listkeep/internal/store"
	ws "listkeep/internal/websocket"
)

type Server struct {
	db          *sql.DB
	cfg         config.Config
	hub         *ws.Hub
	tokens      *auth.Tokens
	authH       *handler.AuthHandler
	categoryH   *handler.CategoryHandler
	productH    *handler.ProductHandler
	paymentH    *handler.PaymentHandler
	adminH      *handler.AdminHandler
	rateLimiter *middleware.RateLimiter
	accountLock *accountLock
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	accountStore := store.NewAccountStore(db)
	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db, logger.With("component", "product_store"))
	paymentStore := store.NewPaymentStore(db)

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		tokens:      tokens,
		authH:       handler.NewAuthHandler(accountStore, categoryStore, productStore, tokens, logger.With("component", "auth")),
		categoryH:   handler.NewCategoryHandler(categoryStore, logger.With("component", "category")),
		productH:    handler.NewProductHandler(productStore, hub, logger.With("component", "product")),
		paymentH:    handler.NewPaymentHandler(paymentStore, hub, logger.With("component", "payment")),
		adminH:      handler.NewAdminHandler(accountStore, hub, logger.With("component", "admin")),
		rateLimiter: middleware.NewRateLimiter(),
		accountLock: newAccountLock(),
		logger:      logger,
	}
}

// Hub returns the change-feed hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	if s.cfg.TestRoutes {
		outerMux.HandleFunc("DELETE /test/wipe", s.adminH.Wipe)
	}

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens)
	outerMux.Handle("/auth/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/check", s.authH.Check)
	mux.HandleFunc("GET /auth/categories", s.categoryH.List)
	mux.HandleFunc("GET /auth/categories/suggest", s.categoryH.Suggest)
	mux.HandleFunc("GET /auth/products", s.productH.List)
	mux.HandleFunc("PUT /auth/products", s.perAccount(s.productH.Replace))
	mux.HandleFunc("GET /auth/pay", s.paymentH.Summary)
	mux.HandleFunc("POST /auth/pay", s.perAccount(s.paymentH.Pay))
	mux.HandleFunc("GET /auth/payments", s.paymentH.History)
	mux.HandleFunc("GET /auth/ws", ws.HandleWebSocket(s.hub))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, s.cfg.RateLimit, s.cfg.RateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

// perAccount serializes mutating requests for the same account. Replace and
// pay both read-modify-write the sync fingerprint, so two concurrent calls
// for one account must not interleave.
func (s *Server) perAccount(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := auth.AccountID(r.Context())
		unlock := s.accountLock.lock(accountID)
		defer unlock()
		h(w, r)
	}
}
