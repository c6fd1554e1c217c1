package handler

import "github.com/gofiber/fiber/v2"

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     true,
		"status":      "OK",
		"message":     "Image Processing Service is running",
		"environment": h.environment,
	})
}
