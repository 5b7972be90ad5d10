// Package httpapi wires the Gin engine: middleware, the admin whitelist API,
// the webhook test endpoints and operational routes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/cfbot/internal/config"
	"github.com/tbourn/cfbot/internal/http/handlers"
	"github.com/tbourn/cfbot/internal/http/middleware"
	"github.com/tbourn/cfbot/internal/services"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Users    *services.WhitelistService
	Notifier handlers.Notifier
}

var corsHeaders = []string{
	"Origin", "Content-Type", "Accept",
	middleware.HeaderAdminKey, middleware.HeaderIdempotencyKey,
}

// RegisterRoutes attaches middleware and endpoints to r.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger (X-Admin-Key masked)
//  4. Recovery
//  5. Body size limit, metrics, gzip
//  6. CORS and security headers
//
// /api/users additionally runs AdminAuth, then IdempotencyValidator, then
// the rate limiter so replays are not throttled.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderAdminKey},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:    corsHeaders,
			ExposeHeaders:   []string{"X-Request-ID", "ETag"},
			MaxAge:          12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  corsHeaders,
			ExposeHeaders: []string{"X-Request-ID", "ETag"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Users, deps.Notifier)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())

	hooks := r.Group("/webhook", rl.Handler())
	{
		hooks.GET("/test", h.WebhookTest)
		hooks.POST("/test", h.WebhookTest)
	}

	api := r.Group("/api",
		middleware.AdminAuth(cfg.AdminAPIKey),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200},
			func(ctx context.Context, key string, now time.Time) (bool, error) {
				return deps.Users.HasReplay(ctx, key, now), nil
			}),
		rl.Handler(),
	)
	{
		api.GET("/users", h.ListUsers)
		api.POST("/users", h.CreateUser)
		api.DELETE("/users/:id", h.DeleteUser)
	}
}

// limitBody caps request bodies at maxBytes; larger bodies fail to decode.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
