package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/krishkalaria12/imagehost/auth"
	"github.com/krishkalaria12/imagehost/cache"
	"github.com/krishkalaria12/imagehost/config"
	"github.com/krishkalaria12/imagehost/database"
	handler "github.com/krishkalaria12/imagehost/handlers"
	"github.com/krishkalaria12/imagehost/logger"
	"github.com/krishkalaria12/imagehost/metrics"
	"github.com/krishkalaria12/imagehost/ratelimit"
	"github.com/krishkalaria12/imagehost/router"
	"github.com/krishkalaria12/imagehost/storage"
	"github.com/krishkalaria12/imagehost/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New("imagehost", cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			appLog.WithError(err).Fatal("sentry.Init")
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	// close the database connection
	defer func() {
		if err := database.Close(db); err != nil {
			appLog.WithError(err).Error("Error closing the database connection")
		}
	}()

	if err := database.Migrate(db); err != nil {
		appLog.WithError(err).Fatal("Failed to migrate database")
	}

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create storage client")
	}

	var images handler.ImageStore = database.NewImageRepository(db)
	var limiterStore ratelimit.Store = ratelimit.NewMemoryStore()

	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to redis")
		}
		defer func(rdb *redis.Client) {
			if err := rdb.Close(); err != nil {
				appLog.WithError(err).Error("Error closing the redis connection")
			}
		}(rdb)

		images = cache.NewImages(images, rdb, cfg.Redis.ImageCacheTTL, appLog)
		limiterStore = ratelimit.NewRedisStore(rdb, "ratelimit:")
	} else {
		appLog.Warn("REDIS_URL not set, rate limits are kept in process memory")
	}

	users := database.NewUserRepository(db)
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	h := handler.New(handler.Options{
		Users:       users,
		Images:      images,
		Blobs:       blobs,
		Tokens:      tokens,
		Transformer: transform.NewPipeline(),
		Logger:      appLog,
		Metrics:     m,
		Environment: cfg.Environment,
	})

	app := fiber.New(fiber.Config{
		AppName:      "imagehost",
		BodyLimit:    cfg.BodyLimit(),
		ErrorHandler: handler.ErrorHandler(appLog),
	})
	app.Use(recover.New())

	router.SetupRoutes(app, router.Deps{
		Handler:          h,
		Tokens:           tokens,
		Users:            users,
		UploadLimiter:    ratelimit.New(limiterStore, cfg.RateLimit.Upload, cfg.RateLimit.Window),
		TransformLimiter: ratelimit.New(limiterStore, cfg.RateLimit.Transform, cfg.RateLimit.Window),
		Metrics:          m,
		Gatherer:         reg,
		Logger:           appLog,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		appLog.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			appLog.WithError(err).Error("Server shutdown failed")
		}
	}()

	appLog.WithField("port", cfg.Port).Info("Server is listening")
	if err := app.Listen(cfg.Addr()); err != nil {
		appLog.WithError(err).Error("Server stopped")
	}
}
