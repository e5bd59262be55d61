package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/internal/config"
	"github.com/fastygo/lifetrack/pkg/httpcontext"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func run(cfg config.JWTConfig, token string) domain.Claims {
	var rc fasthttp.RequestCtx
	if token != "" {
		rc.Request.Header.Set("Authorization", "Bearer "+token)
	}
	var seen domain.Claims
	Identity(cfg, nil)(func(ctx *fasthttp.RequestCtx) {
		seen = httpcontext.ClaimsOf(ctx)
	})(&rc)
	return seen
}

func TestIdentityResolvesClaims(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub":                "sub-1",
		"oid":                "oid-1",
		"preferred_username": "ada@example.com",
		"name":               "Ada",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"iss":                "lifetrack",
	})

	claims := run(config.JWTConfig{Secret: secret, Issuer: "lifetrack"}, token)
	assert.True(t, claims.Authenticated)
	assert.Equal(t, "oid-1", claims.Identity())
	assert.Equal(t, "ada@example.com", claims.ContactEmail())
	assert.Equal(t, "Ada", claims.DisplayName())
	assert.Equal(t, "lifetrack", claims.Raw["iss"])
}

func TestIdentityFallsBackToLongClaimNames(t *testing.T) {
	claims := ClaimsFromToken(jwt.MapClaims{
		claimNameIdentifier: "nid-1",
		claimEmailAddress:   "x@y.z",
	})
	assert.Equal(t, "nid-1", claims.Identity())
	assert.Equal(t, "x@y.z", claims.ContactEmail())
	assert.Equal(t, "x", claims.DisplayName())
}

func TestIdentityRejectsBadTokens(t *testing.T) {
	cfg := config.JWTConfig{Secret: secret, Issuer: "lifetrack"}

	assert.False(t, run(cfg, "").Authenticated)
	assert.False(t, run(cfg, "garbage").Authenticated)

	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "a"})
	assert.False(t, run(cfg, wrongKey).Authenticated)

	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "a", "iss": "lifetrack", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	assert.False(t, run(cfg, expired).Authenticated)

	wrongIssuer := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "a", "iss": "elsewhere"})
	assert.False(t, run(cfg, wrongIssuer).Authenticated)

	hs512 := sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"sub": "a", "iss": "lifetrack"})
	assert.False(t, run(cfg, hs512).Authenticated)

	anonymous := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"iss": "lifetrack"})
	assert.False(t, run(cfg, anonymous).Authenticated)
}

func TestRequireIdentity(t *testing.T) {
	called := false
	handler := RequireIdentity(func(*fasthttp.RequestCtx) { called = true })

	var anonymous fasthttp.RequestCtx
	handler(&anonymous)
	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, anonymous.Response.StatusCode())
	assert.Contains(t, string(anonymous.Response.Body()), "UNAUTHORIZED")

	var signedIn fasthttp.RequestCtx
	httpcontext.SetClaims(&signedIn, domain.Claims{Authenticated: true, Subject: "s"})
	handler(&signedIn)
	assert.True(t, called)
}
