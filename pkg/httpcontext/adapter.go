package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/lifetrack/domain"
	appLogger "github.com/fastygo/lifetrack/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyClaims     Key = "claims"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches
// it with request metadata and the caller's claims.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	claims := ClaimsOf(ctx)
	if claims.Authenticated {
		stdCtx = appLogger.ContextWithIdentity(stdCtx, claims.Identity())
	}
	stdCtx = context.WithValue(stdCtx, KeyClaims, claims)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// SetClaims stores the resolved claims on the request.
func SetClaims(ctx *fasthttp.RequestCtx, claims domain.Claims) {
	ctx.SetUserValue(string(KeyClaims), claims)
}

// ClaimsOf returns the claims stored on the request, or unauthenticated claims.
func ClaimsOf(ctx *fasthttp.RequestCtx) domain.Claims {
	if ctx == nil {
		return domain.Claims{}
	}
	claims, _ := ctx.UserValue(string(KeyClaims)).(domain.Claims)
	return claims
}

// ClaimsFromContext returns the claims attached by Attach.
func ClaimsFromContext(ctx context.Context) domain.Claims {
	if ctx == nil {
		return domain.Claims{}
	}
	claims, _ := ctx.Value(KeyClaims).(domain.Claims)
	return claims
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}
