package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/craftbridge/backend/internal/infrastructure/auth"
	"github.com/craftbridge/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	JWTRoleKey    = "jwt_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier *auth.TokenVerifier
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(verifier *auth.TokenVerifier) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Verifier: verifier,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(verifier))
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := cfg.Verifier.Verify(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortWithCode(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortWithCode(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, string(claims.Role))
		c.Next()
	}
}

// GetJWTUserID returns the authenticated user ID, or empty string
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetJWTRole returns the authenticated user's role, or empty string
func GetJWTRole(c *gin.Context) string {
	return c.GetString(JWTRoleKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	abortWithCode(c, dto.ErrCodeUnauthorized, message)
}

func abortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}
