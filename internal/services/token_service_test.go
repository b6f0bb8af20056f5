package services_test

import (
	"testing"
	"time"

	"usermanager/internal/models"
	"usermanager/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test_jwt_secret"

func testPrincipal() *models.Principal {
	return &models.Principal{ID: 42, FirstName: "John", LastName: "Doe", Email: "john@example.com"}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	tokens, err := services.NewTokenService("", time.Hour)
	assert.Nil(t, tokens)
	assert.ErrorIs(t, err, services.ErrMissingSigningKey)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens, err := services.NewTokenService(testJWTSecret, time.Hour)
	require.NoError(t, err)

	token, err := tokens.Issue(testPrincipal())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	principal, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testPrincipal(), principal)
}

func TestTokenService_ClaimsLayout(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tokens, err := services.NewTokenService(testJWTSecret, 0, services.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)

	token, err := tokens.Issue(testPrincipal())
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "john@example.com", claims["email"])
	assert.Equal(t, "John", claims["firstName"])
	assert.Equal(t, "Doe", claims["lastName"])
	assert.EqualValues(t, issuedAt.Unix(), claims["iat"])
	assert.EqualValues(t, issuedAt.Add(services.DefaultTokenTTL).Unix(), claims["exp"])
	assert.NotContains(t, claims, "password")
}

func TestTokenService_Expiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	tokens, err := services.NewTokenService(testJWTSecret, time.Hour, services.WithClock(func() time.Time { return clock() }))
	require.NoError(t, err)

	token, err := tokens.Issue(testPrincipal())
	require.NoError(t, err)

	clock = func() time.Time { return now.Add(59 * time.Minute) }
	_, err = tokens.Verify(token)
	assert.NoError(t, err)

	clock = func() time.Time { return now.Add(61 * time.Minute) }
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestTokenService_RejectsUniformly(t *testing.T) {
	tokens, err := services.NewTokenService(testJWTSecret, time.Hour)
	require.NoError(t, err)

	other, err := services.NewTokenService("another_secret", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue(testPrincipal())
	require.NoError(t, err)

	valid, err := tokens.Issue(testPrincipal())
	require.NoError(t, err)
	tampered := valid + "x"

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 42}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"userId": 42,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"malformed":    "invalid.token.string",
		"wrong secret": foreign,
		"tampered":     tampered,
		"no expiry":    noExpiry,
		"wrong alg":    wrongAlg,
	} {
		t.Run(name, func(t *testing.T) {
			principal, err := tokens.Verify(token)
			assert.Nil(t, principal)
			assert.Equal(t, services.ErrUnauthorized, err)
		})
	}
}
