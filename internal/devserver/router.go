// Package devserver is a development implementation of the storefront REST
// API. It exists to run the client end to end and keeps all state in a Store.
package devserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/pkg/logger"
)

type Config struct {
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// NewRouter mounts the API under /api.
func NewRouter(store Store, cfg Config, log *zap.Logger) http.Handler {
	log = logger.OrNop(log)
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	tokens := NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	authHandler := NewAuthHandler(store, tokens, cfg.RequestTimeout, cfg.BcryptCost)
	productHandler := NewProductHandler(store, cfg.RequestTimeout)
	cartHandler := NewCartHandler(store, cfg.RequestTimeout)
	ordersHandler := NewOrdersHandler(store, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware(log))
	r.Use(AccessLogMiddleware)
	r.Use(AuthMiddleware(tokens))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/me", authHandler.Me)
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/{product_id}", productHandler.Get)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/add", cartHandler.AddItem)
			r.Delete("/remove/{product_id}", cartHandler.RemoveItem)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Post("/", ordersHandler.CreateOrder)
		})
		r.Post("/init-data", productHandler.InitData)
	})

	return otelhttp.NewHandler(r, "storefront-api")
}
