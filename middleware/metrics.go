package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/krishkalaria12/imagehost/metrics"
)

// Metrics records request count and latency per matched route.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusOf(err)
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))

		return err
	}
}

// StatusOf maps a handler error to the status the error handler will write.
func StatusOf(err error) int {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Status()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
