package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"esports-arena/logger"
	"esports-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var testSecret = []byte("middleware-secret")

// stubResolver accepts tokens whose session id is in live.
type stubResolver struct {
	live map[string]bool
}

func (r stubResolver) ResolveSession(_ context.Context, token *jwt.Token) (*models.Session, error) {
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !r.live[claims.ID] {
		return nil, errors.New("revoked")
	}
	return &models.Session{ID: claims.ID, UserID: claims.Subject}, nil
}

func sign(t *testing.T, sessionID, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return raw
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func echoUser(c *fiber.Ctx) error {
	return c.SendString(UserID(c))
}

func TestRequireSession(t *testing.T) {
	resolver := stubResolver{live: map[string]bool{"s1": true}}
	app := fiber.New()
	app.Get("/", RequireSession(testSecret, resolver, logger.Nop()), echoUser)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/", "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/", "garbage").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/", sign(t, "s2", "u1")).StatusCode)

	resp := get(t, app, "/", sign(t, "s1", "u1"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestOptionalSession(t *testing.T) {
	resolver := stubResolver{live: map[string]bool{"s1": true}}
	app := fiber.New()
	app.Get("/", OptionalSession(testSecret, resolver, logger.Nop()), func(c *fiber.Ctx) error {
		if SessionFrom(c) == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(UserID(c))
	})

	for name, tc := range map[string]struct {
		token string
		want  string
	}{
		"no header":     {"", "anonymous"},
		"bad signature": {"garbage", "anonymous"},
		"revoked":       {sign(t, "s9", "u1"), "anonymous"},
		"live":          {sign(t, "s1", "u7"), "u7"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := get(t, app, "/", tc.token)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			buf := make([]byte, 32)
			n, _ := resp.Body.Read(buf)
			assert.Equal(t, tc.want, string(buf[:n]))
		})
	}
}

func TestAdminTokenMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminTokenMiddleware("svc-token", logger.Nop()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/admin", "").StatusCode)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", "svc-token-x").StatusCode)
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", "svc-token").StatusCode)
}

func TestRateLimitPerUser(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Every(time.Hour), 2)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if u := c.Get("X-User"); u != "" {
			c.Locals(userIDKey, u)
		}
		return c.Next()
	}, RateLimit(limiter), echoUser)

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != "" {
			req.Header.Set("X-User", user)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, call("alice"))
	assert.Equal(t, fiber.StatusOK, call("alice"))
	assert.Equal(t, fiber.StatusTooManyRequests, call("alice"))
	// buckets are per user; anonymous callers share the IP bucket
	assert.Equal(t, fiber.StatusOK, call("bob"))
	assert.Equal(t, fiber.StatusOK, call(""))
}

func TestKeyedRateLimiterPrunesIdleEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := NewKeyedRateLimiter(rate.Inf, 1)
	l.now = func() time.Time { return now }

	for i := 0; i <= cleanupThreshold; i++ {
		l.GetLimiter("user-" + strconv.Itoa(i))
	}
	require.Len(t, l.entries, cleanupThreshold+1)

	now = now.Add(maxIdleAge + time.Minute)
	first := l.GetLimiter("fresh")
	assert.Len(t, l.entries, 1)
	assert.Same(t, first, l.GetLimiter("fresh"))
}

func TestRequestMetricsPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMetrics(logger.Nop()))
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp := get(t, app, "/boom", "")
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}
