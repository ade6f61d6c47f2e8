package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promoping/promoping-client/internal/lib/token"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func TestParse_ReadsClaimsWithoutKey(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signedToken(t, jwt.MapClaims{
		"sub": "user-17",
		"exp": exp.Unix(),
	})

	claims, err := token.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-17", claims.Subject)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestParse_Garbage(t *testing.T) {
	_, err := token.Parse("not-a-jwt")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	past := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
	future := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	noExp := signedToken(t, jwt.MapClaims{"sub": "user-17"})

	assert.True(t, token.Expired(past, now))
	assert.False(t, token.Expired(future, now))
	assert.False(t, token.Expired(noExp, now), "token without exp never expires")
	assert.False(t, token.Expired("garbage", now), "unparseable token is left to the server to reject")
}
