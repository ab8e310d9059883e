// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

var (
	cfg *config.Config
	rdb *redis.Client
)

// TokenIssuer and TokenAudience are validated on every authenticated request.
const (
	TokenIssuer   = "inkwell"
	TokenAudience = "inkwell-api"
)

// InitMiddleware initializes authentication middleware with the given config
// and Redis client. The Redis client backs the token revocation list and may
// be nil in tests.
func InitMiddleware(c *config.Config, r *redis.Client) {
	cfg = c
	rdb = r
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) (uint, error) {
	subClaim, ok := claims["sub"]
	if !ok {
		return 0, fmt.Errorf("missing subject")
	}

	subStr, ok := subClaim.(string)
	if !ok {
		return 0, fmt.Errorf("invalid token subject type")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in token")
	}
	return uint(userIDVal), nil
}

// TokenRevoked reports whether the token's jti is on the revocation list.
// A nil Redis client means revocation is not enforced.
func TokenRevoked(ctx context.Context, claims jwt.MapClaims) bool {
	if rdb == nil {
		return false
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, "jwt:blacklist:"+jti).Result()
	if err != nil {
		// Revocation check failure must not lock every user out.
		return false
	}
	return n > 0
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	claims, err := parseToken(parts[1])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	if TokenRevoked(c.UserContext(), claims) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token has been revoked",
		})
	}

	userID, err := userIDFromClaims(claims)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if jti, ok := claims["jti"].(string); ok {
		c.Locals("tokenJTI", jti)
	}
	if exp, ok := claims["exp"].(float64); ok {
		c.Locals("tokenExp", time.Unix(int64(exp), 0))
	}
	c.Locals("userID", userID)

	return c.Next()
}

// OptionalAuth resolves the user ID from a bearer token when one is present
// but lets anonymous requests through. Used on feed reads so liked/saved
// flags can be personalized without requiring login.
func OptionalAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Next()
	}

	claims, err := parseToken(parts[1])
	if err != nil {
		return c.Next()
	}
	if TokenRevoked(c.UserContext(), claims) {
		return c.Next()
	}

	if userID, err := userIDFromClaims(claims); err == nil {
		c.Locals("userID", userID)
	}
	return c.Next()
}
