package handler

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/krishkalaria12/imagehost/logger"
)

const internalMessage = "Internal server error."

// ErrorHandler writes every error as {success:false, message, errors?}.
// Internal causes are logged and reported but never sent to the client.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperror.As(err); ok {
			if appErr.Kind == apperror.KindInternal {
				report(c, log, err)
			}
			return c.Status(appErr.Status()).JSON(errorBody(appErr.Message, appErr.Fields))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code >= fiber.StatusInternalServerError {
				report(c, log, err)
				return c.Status(fe.Code).JSON(errorBody(internalMessage, nil))
			}
			return c.Status(fe.Code).JSON(errorBody(fe.Message, nil))
		}

		report(c, log, err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody(internalMessage, nil))
	}
}

func errorBody(message string, fields []apperror.FieldError) fiber.Map {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	return body
}

func report(c *fiber.Ctx, log *logger.Logger, err error) {
	log.WithError(err).
		WithField("method", c.Method()).
		WithField("path", c.Path()).
		Error("request failed")
	sentry.CaptureException(err)
}
