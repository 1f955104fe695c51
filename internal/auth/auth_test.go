package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.True(t, CheckPassword(hash, "supersecret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateAccessToken(42, "timmy@example.com", RoleMember, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "timmy@example.com", claims.Email)
	assert.Equal(t, RoleMember, claims.Role)
	assert.Equal(t, "access", claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "a@b.com", RoleMember, testSecret)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	claims := &Claims{
		UserID:    1,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshAccessToken(t *testing.T) {
	_, refresh, err := GenerateTokens(7, "m@example.com", RoleAdmin, testSecret)
	require.NoError(t, err)

	newAccess, claims, err := RefreshAccessToken(refresh, testSecret)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.Equal(t, 7, claims.UserID)

	// an access token must not be usable as a refresh token
	access, err := GenerateAccessToken(7, "m@example.com", RoleAdmin, testSecret)
	require.NoError(t, err)
	_, _, err = RefreshAccessToken(access, testSecret)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestEmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(1, "a@b.com", RoleMember, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = ValidateToken("whatever", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}
