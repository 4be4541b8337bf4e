package middleware

import (
	"strings"

	"github.com/David-999-david/man-app-server/services"

	"github.com/gofiber/fiber/v2"
)

const (
	ContextClaimsKey = "jwtClaims"
	ContextUserIDKey = "userID"
)

func RequireAuth(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing Authorization header"})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid Authorization header"})
		}

		tokenString := strings.TrimSpace(parts[1])
		claims, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(ContextClaimsKey, claims)
		c.Locals(ContextUserIDKey, claims.UserID)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals(ContextUserIDKey).(uint)
	return userID, ok
}
