package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geocoin/internal/pkg/metrics"
)

const (
	defaultRateLimit = 600
	requestTimeout   = 10 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	rateLimit := deps.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	app.Use(limiter.New(limiter.Config{
		Max:        rateLimit,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/rules", RulesHandler(deps))

	v1.Post("/sessions", timeout.NewWithContext(CreateSessionHandler(deps), requestTimeout))

	sessions := v1.Group("/sessions")
	sessions.Get("/:id", timeout.NewWithContext(GetSessionHandler(deps), requestTimeout))
	sessions.Delete("/:id", timeout.NewWithContext(CloseSessionHandler(deps), requestTimeout))
	sessions.Get("/:id/trail", timeout.NewWithContext(TrailHandler(deps), requestTimeout))
	sessions.Post("/:id/move/:direction", timeout.NewWithContext(MoveHandler(deps), requestTimeout))
	sessions.Post("/:id/position", timeout.NewWithContext(PositionHandler(deps), requestTimeout))
	sessions.Post("/:id/reset", timeout.NewWithContext(ResetHandler(deps), requestTimeout))
	sessions.Post("/:id/caches/:key/take/:serial", timeout.NewWithContext(TakeHandler(deps), requestTimeout))
	sessions.Post("/:id/caches/:key/deposit", timeout.NewWithContext(DepositHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket position stream
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/:id", websocket.New(WebSocketHandler(deps)))
}
