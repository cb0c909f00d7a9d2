package api

import (
	"context"
	"net/http"
	"time"

	"github.com/farhyn/catalog-platform/pkg/auth"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	_ "github.com/farhyn/catalog-platform/services/catalog-service/internal/api/docs"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/api/handlers"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig параметры HTTP слоя
type RouterConfig struct {
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	// RateLimitPerMinute 0 отключает ограничение
	RateLimitPerMinute int
	MetricsEnabled     bool
	MetricsPath        string
	// HealthCheck проверяет зависимости для /health; nil означает всегда OK
	HealthCheck func(ctx context.Context) error
}

// Handlers обработчики маршрутов; SSO может быть nil
type Handlers struct {
	Products *handlers.ProductHandler
	Members  *handlers.MemberHandler
	SSO      *handlers.SSOHandler
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(h Handlers, authPort interfaces.AuthPort, logger interfaces.LoggerPort, cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
		r.Method(http.MethodGet, cfg.MetricsPath, promhttp.Handler())
	}

	r.Get("/health", healthHandler(cfg.HealthCheck))
	r.Head("/health", healthHandler(cfg.HealthCheck))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		// публичные маршруты
		r.Post("/register/", h.Members.Register)
		r.Post("/login/", h.Members.Login)
		r.Post("/token/refresh/", h.Members.Refresh)
		if h.SSO != nil {
			r.Get("/sso/login/", h.SSO.Login)
			r.Get("/sso/callback/", h.SSO.Callback)
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(authPort, logger))

			r.Post("/logout/", h.Members.Logout)
			r.Get("/profile/", h.Members.GetProfile)
			r.Put("/profile/update/", h.Members.UpdateProfile)

			r.Route("/shopify-products", func(r chi.Router) {
				r.Get("/", h.Products.ListShopifyProducts)
				r.Post("/create/", h.Products.CreateShopifyProduct)
				r.Get("/{id}/", h.Products.GetProduct)
				r.Delete("/{id}/delete/", h.Products.DeleteShopifyProduct)
			})

			r.Route("/amazon-products", func(r chi.Router) {
				r.Get("/", h.Products.ListAmazonProducts)
				r.Post("/create/", h.Products.CreateAmazonProduct)
				r.Delete("/{id}/delete/", h.Products.DeleteAmazonProduct)
			})
		})
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}
