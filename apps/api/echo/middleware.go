package echoapi

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/hrms/core"
	"github.com/trezcool/hrms/core/user"
	metricsvc "github.com/trezcool/hrms/services/metrics"
)

// adminMiddleware lets through admins holding any of roles (any admin if none given).
func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return roleMiddleware([]string{user.RoleAdmin}, roles...)
}

// staffMiddleware lets through admin and HR users.
func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.StaffPrefixes)
}

// kioskOrStaffMiddleware lets through scanner terminals and staff.
func kioskOrStaffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(append([]string{user.RoleKiosk}, user.StaffPrefixes...))
}

func roleMiddleware(prefixes []string, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			usr := user.User{Roles: claims.Roles}
			if usr.RoleStartsWith(prefixes...) && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// ipRateLimiter keeps a token bucket per client IP.
type ipRateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		limit:    rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
	}
}

func (l *ipRateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.seen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	return v.limiter.AllowN(now, 1)
}

// rateLimitMiddleware rejects clients exceeding rps requests per second. A non positive rps disables it.
func rateLimitMiddleware(rps float64, burst int) echo.MiddlewareFunc {
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := newIPRateLimiter(rps, burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !limiter.allow(ctx.RealIP(), time.Now()) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}

// routeLimits keeps separate per-IP buckets for each rate limited route group.
type routeLimits struct {
	auth echo.MiddlewareFunc // login and password reset
	scan echo.MiddlewareFunc // attendance kiosks
}

func newRouteLimits(conf core.ServerConfig) routeLimits {
	return routeLimits{
		auth: rateLimitMiddleware(conf.RateLimitRPS, conf.RateLimitBurst),
		scan: rateLimitMiddleware(conf.ScanRateLimitRPS, conf.ScanRateLimitBurst),
	}
}

// metricsMiddleware observes every request by route pattern.
func metricsMiddleware(m *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}
			m.ObserveHTTP(ctx.Request().Method, ctx.Path(), ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}
