package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_market/pkg/account"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]account.Actor

func (s stubAuth) Authenticate(token string) (account.Actor, error) {
	if a, ok := s[token]; ok {
		return a, nil
	}
	return account.Guest(), errors.New("invalid")
}

func actorRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		a := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"id": a.ID, "role": a.Role})
	})
	return r
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	m := NewAuthMiddleware(stubAuth{"good": {ID: 7, Role: account.RoleMaster}})

	opt := actorRouter(m.Optional())
	w := do(opt, "/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"role":""}`, w.Body.String())

	w = do(opt, "/me", "Bearer good")
	assert.JSONEq(t, `{"id":7,"role":"master"}`, w.Body.String())

	w = do(opt, "/me", "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := actorRouter(m.Required())
	assert.Equal(t, http.StatusUnauthorized, do(req, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(req, "/me", "Basic good").Code)
	assert.Equal(t, http.StatusOK, do(req, "/me", "Bearer good").Code)
	assert.Equal(t, http.StatusOK, do(req, "/me?token=good", "").Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"market.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://market.example:443/")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://market.example:443", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoginRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewLoginRateLimiter(ctx, 3, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Fail("1.2.3.4"))
	}
	assert.True(t, rl.Blocked("1.2.3.4"))
	assert.False(t, rl.Fail("1.2.3.4"))
	assert.False(t, rl.Blocked("5.6.7.8"))

	now = now.Add(2 * time.Minute)
	assert.False(t, rl.Blocked("1.2.3.4"))

	rl.Fail("5.6.7.8")
	rl.Reset("5.6.7.8")
	assert.False(t, rl.Blocked("5.6.7.8"))
}

func TestMetricsUseRoutePattern(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m))

	r := gin.New()
	r.Use(m.Handle())
	r.GET("/api/tickets/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, "/api/tickets/1", "")
	do(r, "/api/tickets/2", "")
	do(r, "/nope", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/tickets/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))

	n, err := testutil.GatherAndCount(reg, "market_api_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
