package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classroom-go-api/internal/utils"
	"github.com/noah-isme/classroom-go-api/pkg/token"
)

// JWTProtected returns a middleware that validates bearer tokens and places
// the caller identity in request locals.
func JWTProtected(signer *token.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := bearerClaims(c, signer)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid or missing token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_role", strings.ToUpper(claims.Role))

		return c.Next()
	}
}

// JWTOptional populates the caller identity when a valid token is present and
// lets the request through otherwise. Used by the GraphQL endpoint, where
// login runs unauthenticated and resolvers enforce identity themselves.
func JWTOptional(signer *token.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, ok := bearerClaims(c, signer); ok {
			c.Locals("user_id", claims.UserID)
			c.Locals("user_role", strings.ToUpper(claims.Role))
		}

		return c.Next()
	}
}

func bearerClaims(c *fiber.Ctx, signer *token.Signer) (token.Claims, bool) {
	authorization := c.Get("Authorization")
	if authorization == "" {
		return token.Claims{}, false
	}

	const bearer = "Bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
		return token.Claims{}, false
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return token.Claims{}, false
	}

	claims, err := signer.Verify(tokenString)
	if err != nil {
		return token.Claims{}, false
	}

	return claims, true
}
