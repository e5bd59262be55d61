package middleware

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/lifetrack/api/transport"
	"github.com/fastygo/lifetrack/domain"
	"github.com/fastygo/lifetrack/internal/config"
	"github.com/fastygo/lifetrack/pkg/httpcontext"
)

const (
	claimObjectIdentifier = "http://schemas.microsoft.com/identity/claims/objectidentifier"
	claimNameIdentifier   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimEmailAddress     = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	claimName             = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
)

// Identity resolves bearer tokens into claims. Requests without a valid token
// continue unauthenticated; RequireIdentity rejects them where needed.
func Identity(cfg config.JWTConfig, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" || cfg.Secret == "" {
				next(ctx)
				return
			}

			mapClaims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(tokenString, mapClaims, func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.Secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				next(ctx)
				return
			}
			if cfg.Issuer != "" && !mapClaims.VerifyIssuer(cfg.Issuer, true) {
				logger.Warn("jwt issuer mismatch", zap.String("expected", cfg.Issuer))
				next(ctx)
				return
			}

			claims := ClaimsFromToken(mapClaims)
			if claims.Identity() == "" {
				logger.Warn("jwt carries no subject or object id")
				next(ctx)
				return
			}
			httpcontext.SetClaims(ctx, claims)
			next(ctx)
		}
	}
}

// RequireIdentity answers 401 unless Identity resolved an authenticated caller.
func RequireIdentity(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !httpcontext.ClaimsOf(ctx).Authenticated {
			body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrUnauthorized.Error(), nil))
			ctx.Response.Header.SetContentType("application/json")
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			ctx.SetBody(body)
			return
		}
		next(ctx)
	}
}

// ClaimsFromToken maps token claims onto the identity fields the profile uses.
func ClaimsFromToken(mc jwt.MapClaims) domain.Claims {
	raw := make(map[string]string, len(mc))
	for k, v := range mc {
		raw[k] = stringify(v)
	}
	return domain.Claims{
		Authenticated:     true,
		ObjectID:          first(raw, "oid", claimObjectIdentifier),
		Subject:           first(raw, "sub", claimNameIdentifier),
		PreferredUsername: raw["preferred_username"],
		Email:             first(raw, "email", claimEmailAddress),
		Name:              first(raw, "name", claimName),
		Raw:               raw,
	}
}

func first(raw map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := raw[k]; v != "" {
			return v
		}
	}
	return ""
}

func stringify(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	case []interface{}:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(value)
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
