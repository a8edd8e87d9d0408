package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftbridge/backend/internal/infrastructure/config"
)

const testSecret = "test-secret-key-that-is-long-enough"

func newTestVerifier() *TokenVerifier {
	return NewTokenVerifier(config.JWTConfig{
		Secret: testSecret,
		Issuer: "craftbridge-marketplace",
	})
}

func signTestToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validTestClaims() *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    "craftbridge-marketplace",
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: uuid.New().String(),
		Role:   RoleArtisan,
	}
}

func TestTokenVerifier_Verify(t *testing.T) {
	t.Run("accepts a valid token", func(t *testing.T) {
		v := newTestVerifier()
		claims := validTestClaims()

		got, err := v.Verify(signTestToken(t, claims, testSecret))

		require.NoError(t, err)
		assert.Equal(t, claims.UserID, got.UserID)
		assert.Equal(t, RoleArtisan, got.Role)
	})

	t.Run("rejects a token signed with the wrong secret", func(t *testing.T) {
		v := newTestVerifier()

		_, err := v.Verify(signTestToken(t, validTestClaims(), "some-other-secret-key-entirely!!"))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		v := newTestVerifier()
		claims := validTestClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

		_, err := v.Verify(signTestToken(t, claims, testSecret))

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token from an unknown issuer", func(t *testing.T) {
		v := newTestVerifier()
		claims := validTestClaims()
		claims.Issuer = "someone-else"

		_, err := v.Verify(signTestToken(t, claims, testSecret))

		assert.ErrorIs(t, err, ErrWrongIssuer)
	})

	t.Run("rejects a token without a user id", func(t *testing.T) {
		v := newTestVerifier()
		claims := validTestClaims()
		claims.UserID = ""

		_, err := v.Verify(signTestToken(t, claims, testSecret))

		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		v := newTestVerifier()

		_, err := v.Verify("not.a.token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
