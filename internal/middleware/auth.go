package middleware

import (
	"errors"
	"strings"

	"glimpse/internal/observability"
	"glimpse/internal/token"

	"github.com/gofiber/fiber/v2"
)

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// AuthRequired enforces authentication for protected routes. On success the
// caller identity is stored in c.Locals under "userID" and "username".
func AuthRequired(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c)
		if err != nil {
			observability.AuthFailures.WithLabelValues("missing_bearer").Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		identity, err := tokens.Validate(raw)
		if err != nil {
			msg := "Invalid token"
			reason := "invalid_token"
			if errors.Is(err, token.ErrTokenExpired) {
				msg = "Token expired"
				reason = "expired_token"
			}
			observability.AuthFailures.WithLabelValues(reason).Inc()
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": msg,
			})
		}

		c.Locals("userID", identity.UserID)
		c.Locals("username", identity.Username)

		return c.Next()
	}
}

// AuthOptional validates a token when one is supplied but lets anonymous
// requests through. Used by read paths whose response is enriched for a
// known caller (e.g. the liked flag on posts).
func AuthOptional(tokens *token.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c)
		if err != nil {
			return c.Next()
		}

		if identity, err := tokens.Validate(raw); err == nil {
			c.Locals("userID", identity.UserID)
			c.Locals("username", identity.Username)
		}

		return c.Next()
	}
}
