package middleware

import (
	"os"
	"strconv"
	"strings"

	"lifeline-backend/constants"
	"lifeline-backend/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// VerifyJWT parses and validates an HMAC-signed token string.
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IsAuthenticated verifies the bearer token and, when allowedRoles is
// non-empty, requires the token's role claim to be one of them. On success
// the party id and role land in c.Locals for controllers.
func IsAuthenticated(allowedRoles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Authorization header missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Invalid token format",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := VerifyJWT(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Invalid or expired token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		role, _ := claims["role"].(string)
		if !constants.IsValidRole(role) {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Invalid role claim",
				Status:  fiber.StatusUnauthorized,
			})
		}

		sub, _ := claims["sub"].(string)
		partyID, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Invalid subject claim",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if len(allowedRoles) > 0 {
			allowed := false
			for _, r := range allowedRoles {
				if r == role {
					allowed = true
					break
				}
			}
			if !allowed {
				return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
					Message: "Access forbidden for role: " + role,
					Status:  fiber.StatusForbidden,
				})
			}
		}

		c.Locals("claims", claims)
		c.Locals("party_id", uint(partyID))
		c.Locals("role", role)

		return c.Next()
	}
}

// RequireRoles is a helper that creates a middleware restricted to specific roles
func RequireRoles(roles ...string) fiber.Handler {
	return IsAuthenticated(roles)
}

// RequireAuthentication only requires a valid token regardless of role
func RequireAuthentication() fiber.Handler {
	return IsAuthenticated(nil)
}
