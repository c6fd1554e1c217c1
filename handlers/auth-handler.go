package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/krishkalaria12/imagehost/auth"
	"github.com/krishkalaria12/imagehost/database"
	"github.com/krishkalaria12/imagehost/models"
	"github.com/krishkalaria12/imagehost/validation"
)

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates an account and returns it with a fresh token.
func (h *Handler) Register(c *fiber.Ctx) error {
	input, err := validation.Register(c.Body())
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return apperror.Internal("Registration failed.", err)
	}

	user := &models.User{
		Username:     input.Username,
		PasswordHash: hash,
	}
	if err := h.users.Create(c.UserContext(), user); err != nil {
		if errors.Is(err, database.ErrDuplicateUsername) {
			return apperror.Conflict("Username already exists.")
		}
		return apperror.Internal("Registration failed.", err)
	}

	tokenStr, err := h.tokens.Issue(user.ID.String())
	if err != nil {
		return apperror.Internal("Registration failed.", err)
	}

	h.log.WithUserID(user.ID.String()).Info("user registered")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"data":    authResponse{User: user, Token: tokenStr},
	})
}

// Login exchanges credentials for a token. Unknown users and wrong
// passwords get the same answer.
func (h *Handler) Login(c *fiber.Ctx) error {
	input, err := validation.Login(c.Body())
	if err != nil {
		return err
	}

	user, err := h.users.FindByUsername(c.UserContext(), input.Username)
	if errors.Is(err, database.ErrRecordNotFound) {
		auth.RejectPassword(input.Password)
		return apperror.Authentication("Invalid credentials.")
	}
	if err != nil {
		return apperror.Internal("Login failed.", err)
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		return apperror.Authentication("Invalid credentials.")
	}

	tokenStr, err := h.tokens.Issue(user.ID.String())
	if err != nil {
		return apperror.Internal("Login failed.", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successful.",
		"data":    authResponse{User: user, Token: tokenStr},
	})
}
