package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/imagehost/middleware"
)

// Me returns the authenticated user.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}
