package middleware

import (
	"errors"
	"log"

	"belanja/internal/services"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "user"

// TokenValidator checks a raw token and returns its claims.
type TokenValidator interface {
	Validate(tokenString string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware requiring "Authorization: Bearer <token>".
// A missing header or another scheme is answered with 401; a token that fails
// validation with 403.
func AuthRequired(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := services.TokenFromHeader(c.Get(fiber.HeaderAuthorization))
		switch {
		case errors.Is(err, services.ErrTokenMissing):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Access denied. Token missing.",
			})
		case err != nil:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": `Invalid token format. It should start with "Bearer "`,
			})
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			if errors.Is(err, services.ErrTokenMissing) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Access denied. Token missing.",
				})
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Invalid token.",
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthRequired, or nil outside it.
func ClaimsFrom(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(claimsKey).(*services.Claims)
	return claims
}
