package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/lifetrack/domain"
	appLogger "github.com/fastygo/lifetrack/pkg/logger"
)

func TestAttachCarriesRequestIDAndClaims(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set("X-Request-ID", "abc")
	SetClaims(&rc, domain.Claims{Authenticated: true, ObjectID: "oid-1"})

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	assert.Equal(t, "abc", appLogger.RequestID(ctx))
	assert.Equal(t, "abc", string(rc.Response.Header.Peek("X-Request-ID")))
	claims := ClaimsFromContext(ctx)
	assert.Equal(t, "oid-1", claims.Identity())

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestAttachGeneratesRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	ctx, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()

	assert.NotEmpty(t, appLogger.RequestID(ctx))
	assert.False(t, ClaimsOf(&rc).Authenticated)
}
