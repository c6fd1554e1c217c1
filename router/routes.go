package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	handler "github.com/krishkalaria12/imagehost/handlers"
	"github.com/krishkalaria12/imagehost/logger"
	"github.com/krishkalaria12/imagehost/metrics"
	"github.com/krishkalaria12/imagehost/middleware"
	"github.com/krishkalaria12/imagehost/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Handler          *handler.Handler
	Tokens           middleware.TokenVerifier
	Users            middleware.UserFinder
	UploadLimiter    *ratelimit.Limiter
	TransformLimiter *ratelimit.Limiter
	Metrics          *metrics.Metrics
	// Gatherer backs /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
	Logger   *logger.Logger
}

func SetupRoutes(app *fiber.App, d Deps) {
	h := d.Handler

	app.Use(middleware.Metrics(d.Metrics))
	app.Get("/health", h.Health)
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1", fiberlogger.New(fiberlogger.Config{
		Output: d.Logger.Writer(),
	}))
	api.Get("/health", h.Health)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	authenticated := middleware.Authenticate(d.Tokens, d.Users)

	uploadLimit := middleware.RateLimit(d.UploadLimiter, middleware.RateLimitOptions{
		Scope:   "upload",
		Message: "Too many upload requests. Please try again later.",
		Metrics: d.Metrics,
		Logger:  d.Logger,
	})
	transformLimit := middleware.RateLimit(d.TransformLimiter, middleware.RateLimitOptions{
		Scope:   "transform",
		Message: "Too many transformation requests. Please try again later.",
		Metrics: d.Metrics,
		Logger:  d.Logger,
	})

	// User
	api.Get("/users/me", authenticated, h.Me)

	// Images
	api.Post("/images", uploadLimit, authenticated, h.UploadImage)
	api.Get("/images", authenticated, h.ListImages)
	api.Get("/images/:id", authenticated, h.GetImage)
	api.Post("/images/:id/transform", transformLimit, authenticated, h.TransformImage)
}
