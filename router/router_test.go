package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/controller"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/db"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/middleware"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/engine"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/risk"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/router"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/service"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

var secret = []byte("router-secret")

type lowRisk struct{}

func (lowRisk) Assess(context.Context, risk.Input) (pdp_model.RiskScore, error) {
	return pdp_model.RiskScore{TotalScore: 0.2, Level: model.RiskLow, WeightsVersion: "test"}, nil
}

func token(t *testing.T, subject string, groups ...string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Groups: groups,
	}).SignedString(secret)
	require.NoError(t, err)
	return "Bearer " + signed
}

func newRouter(t *testing.T, opts router.Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := matrix.LoadDefault()
	require.NoError(t, err)
	recorder := audit.NewRecorder()
	tuesday := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	decisionEngine := engine.NewEngine(matrix.NewStaticManager(reg), lowRisk{}, engine.Config{},
		engine.WithClock(func() time.Time { return tuesday }),
		engine.WithRecorder(recorder))

	bus := util.NewEventBus()
	services, err := service.InitializeServices(decisionEngine, recorder, nil, util.NewValidationUtil(),
		util.NewNotificationService(), bus, service.SessionConfig{Timeout: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() {
		services.Shutdown(context.Background())
		bus.Wait()
	})

	opts.JWTSecret = secret
	opts.AdminGroups = []string{"qpde-admin"}
	return router.SetupRouter(controller.InitializeControllers(services), opts)
}

func call(r http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_SessionDecisionFlow(t *testing.T) {
	r := newRouter(t, router.Options{})
	operator := token(t, "op-1")

	w := call(r, http.MethodPost, "/api/v1/sessions", operator,
		`{"actor_id":"u-1","role":"finance_manager","trust":{"mfa_verified":true,"device_trusted":true,"location":{"network":"office","secure":true}}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session model.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	w = call(r, http.MethodPost, "/api/v1/sessions/"+session.ID+"/decisions", operator,
		`{"action":"view","resource_id":"bancos","record":{"iban":"ES91 0000","balance":1200,"internal_notes":"x"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp controller.DecisionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Decision.Allowed, resp.Decision.Reason)
	assert.Equal(t, matrix.MaskValue, resp.Record["iban"])
	assert.NotContains(t, resp.Record, "internal_notes")
	assert.Equal(t, float64(1200), resp.Record["balance"])

	w = call(r, http.MethodPost, "/api/v1/sessions/"+session.ID+"/decisions", operator,
		`{"action":"view","resource_id":"profit","record":{"net_margin":0.3}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Decision.Allowed, resp.Decision.Reason)

	w = call(r, http.MethodDelete, "/api/v1/sessions/"+session.ID, operator, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(r, http.MethodPost, "/api/v1/sessions/"+session.ID+"/decisions", operator, `{"action":"view","resource_id":"bancos"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Authorization(t *testing.T) {
	r := newRouter(t, router.Options{})

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/v1/panels", "", "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/panels", token(t, "op-1"), "").Code)

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/audit", token(t, "op-1", "viewers"), "").Code)
	w := call(r, http.MethodGet, "/api/v1/audit", token(t, "op-2", "qpde-admin"), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationHeader))
}

func TestRouter_RateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	db.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer db.CloseRedis()

	r := newRouter(t, router.Options{RateLimit: db.RateLimit, RateLimitRequests: 2, RateLimitWindow: time.Minute})
	operator := token(t, "op-1")

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/panels", operator, "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/panels", operator, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(r, http.MethodGet, "/api/v1/panels", operator, "").Code)
	// other callers have their own budget
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/panels", token(t, "op-2"), "").Code)
}
