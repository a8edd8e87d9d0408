package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/craftbridge/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrWrongIssuer      = errors.New("token issued by unknown issuer")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Role is the marketplace role carried in the token
type Role string

const (
	RoleArtisan Role = "artisan"
	RoleBuyer   Role = "buyer"
	RoleAdmin   Role = "admin"
)

// Claims represents the marketplace JWT claims. Tokens are issued by the
// platform identity service; this backend only verifies them.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   Role   `json:"role,omitempty"`
}

// TokenVerifier validates access tokens issued by the identity service
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a new token verifier
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates the token string and returns its claims
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.Issuer != v.issuer {
		return nil, ErrWrongIssuer
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}
