package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/krishkalaria12/imagehost/auth"
	"github.com/krishkalaria12/imagehost/database"
	"github.com/krishkalaria12/imagehost/models"
)

const userLocal = "user"

type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate resolves the bearer token to a stored user and keeps it in
// the request locals.
func Authenticate(tokens TokenVerifier, users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return apperror.Authentication("Access denied. No token provided")
		}

		tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenStr == "" {
			return apperror.Authentication("Access denied. No token provided")
		}

		identity, err := tokens.Verify(tokenStr)
		if err != nil {
			return apperror.Authentication("Invalid or expired token.")
		}

		userID, err := uuid.Parse(identity.UserID)
		if err != nil {
			return apperror.Authentication("Invalid or expired token.")
		}

		user, err := users.FindByID(c.UserContext(), userID)
		if errors.Is(err, database.ErrRecordNotFound) {
			return apperror.Authentication("User not found.")
		}
		if err != nil {
			return apperror.Internal("Authentication error.", err)
		}

		c.Locals(userLocal, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userLocal).(*models.User)
	if !ok || user == nil {
		return nil, apperror.Authentication("Access denied. No token provided")
	}
	return user, nil
}
