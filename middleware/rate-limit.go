package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/krishkalaria12/imagehost/logger"
	"github.com/krishkalaria12/imagehost/metrics"
	"github.com/krishkalaria12/imagehost/ratelimit"
)

type RateLimitOptions struct {
	Scope   string
	Message string
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// RateLimit rejects a client once it exceeds the limiter's window. It runs
// before authentication so the key is the client IP. A store failure lets
// the request through.
func RateLimit(l *ratelimit.Limiter, opts RateLimitOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision, err := l.Allow(c.UserContext(), opts.Scope+":"+c.IP())
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.WithError(err).WithField("scope", opts.Scope).Warn("rate limiter unavailable")
			}
			return c.Next()
		}

		c.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Set("RateLimit-Reset", strconv.Itoa(seconds(time.Until(decision.ResetAt))))

		if !decision.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(seconds(decision.RetryAfter)))
			opts.Metrics.Limited(opts.Scope)
			return apperror.RateLimit(opts.Message)
		}

		return c.Next()
	}
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
