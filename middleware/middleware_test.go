package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/db"
)

var secret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims OperatorClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return "Bearer " + s
}

func claims(sub string, groups ...string) OperatorClaims {
	return OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Groups: groups,
	}
}

func protected() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Authenticate(secret))
	r.GET("/any", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(UserIDKey)) })
	r.GET("/admin", GroupAuthMiddleware([]string{"qpde-admin"}), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r := protected()

	w := do(r, "/any", sign(t, jwt.SigningMethodHS256, secret, claims("op-1")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "op-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "/any", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/any", sign(t, jwt.SigningMethodHS256, []byte("other"), claims("op-1"))).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/any", sign(t, jwt.SigningMethodHS384, secret, claims("op-1"))).Code)

	expired := claims("op-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, http.StatusUnauthorized, do(r, "/any", sign(t, jwt.SigningMethodHS256, secret, expired)).Code)

	noExpiry := claims("op-1")
	noExpiry.ExpiresAt = nil
	assert.Equal(t, http.StatusUnauthorized, do(r, "/any", sign(t, jwt.SigningMethodHS256, secret, noExpiry)).Code)
}

func TestGroupAuthMiddleware(t *testing.T) {
	r := protected()
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", sign(t, jwt.SigningMethodHS256, secret, claims("op-1", "qpde-admin"))).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", sign(t, jwt.SigningMethodHS256, secret, claims("op-2", "viewers"))).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CorrelationKey)) })

	w := do(r, "/", "")
	generated := w.Header().Get(CorrelationHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "5b0d4c0e-7d3f-4d6a-9a51-7b8e0d1f2a3b")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "5b0d4c0e-7d3f-4d6a-9a51-7b8e0d1f2a3b", w.Body.String())

	req.Header.Set(CorrelationHeader, "not a uuid\n")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a uuid\n", w.Body.String())
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	db.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer db.CloseRedis()

	r := gin.New()
	r.Use(RateLimiter(db.RateLimit, 2, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "/", "").Code)
	w := do(r, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/", "").Code)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	broken := func(context.Context, string, int, time.Duration) (bool, error) {
		return false, errors.New("redis down")
	}
	r := gin.New()
	r.Use(RateLimiter(broken, 1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "/", "").Code)
}
