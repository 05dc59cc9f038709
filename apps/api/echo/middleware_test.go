package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/hrms/core"
)

func Test_ipRateLimiter_allow(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1, 2)

	assert.True(t, l.allow("10.0.0.1", now))
	assert.True(t, l.allow("10.0.0.1", now))
	assert.False(t, l.allow("10.0.0.1", now), "burst exhausted")
	assert.True(t, l.allow("10.0.0.2", now), "buckets are per IP")
	assert.True(t, l.allow("10.0.0.1", now.Add(time.Second)), "refilled after a second")

	// idle visitors are forgotten
	l.allow("10.0.0.3", now.Add(visitorTTL+2*time.Second))
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "10.0.0.1")
	assert.NotContains(t, l.visitors, "10.0.0.2")
	assert.Contains(t, l.visitors, "10.0.0.3")
}

func Test_rateLimitMiddleware(t *testing.T) {
	e := echo.New()
	ok := func(ctx echo.Context) error { return ctx.NoContent(http.StatusNoContent) }
	call := func(h echo.HandlerFunc) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
		return h(e.NewContext(req, httptest.NewRecorder()))
	}

	t.Run("disabled", func(t *testing.T) {
		h := rateLimitMiddleware(0, 0)(ok)
		for i := 0; i < 10; i++ {
			assert.NoError(t, call(h))
		}
	})

	t.Run("limited", func(t *testing.T) {
		h := rateLimitMiddleware(0.001, 1)(ok)
		assert.NoError(t, call(h))
		assert.Equal(t, errTooManyRequests, call(h))
	})
}

func Test_newRouteLimits(t *testing.T) {
	e := echo.New()
	ok := func(ctx echo.Context) error { return ctx.NoContent(http.StatusNoContent) }
	call := func(mw echo.MiddlewareFunc) error {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
		return mw(ok)(e.NewContext(req, httptest.NewRecorder()))
	}

	limits := newRouteLimits(core.ServerConfig{
		RateLimitRPS: 0.001, RateLimitBurst: 1,
		ScanRateLimitRPS: 0.001, ScanRateLimitBurst: 3,
	})

	assert.NoError(t, call(limits.auth))
	assert.Equal(t, errTooManyRequests, call(limits.auth), "login bucket exhausted")
	for i := 0; i < 3; i++ {
		assert.NoError(t, call(limits.scan), "scans from the same address still pass")
	}
	assert.Equal(t, errTooManyRequests, call(limits.scan))
	assert.Equal(t, errTooManyRequests, call(limits.auth))
}
