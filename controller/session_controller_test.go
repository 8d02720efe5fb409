// controller/session_controller_test.go
package controller_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/controller"
	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/service"
	mock_service "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/test/service_mock"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestSessionController(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSessionService := mock_service.NewMockISessionService(ctrl)
	mockAccessService := mock_service.NewMockIAccessService(ctrl)
	sessionController := controller.NewSessionController(mockSessionService, mockAccessService)
	router := setupRouter()
	api := router.Group("/")
	sessionController.RegisterRoutes(api)

	t.Run("CreateSession_Success", func(t *testing.T) {
		mockSessionService.EXPECT().
			CreateSession(gomock.Any(), "u-1", model.RoleCEO, gomock.Any(), service.SessionOptions{RiskThreshold: 0.6}).
			Return(&model.Session{ID: "s-1", ActorID: "u-1", Role: model.RoleCEO, State: model.SessionActive}, nil)

		w := serve(router, http.MethodPost, "/sessions", `{"actor_id":"u-1","role":"ceo","risk_threshold":0.6,"trust":{"mfa_verified":true}}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var session model.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "s-1", session.ID)
	})

	t.Run("CreateSession_Failure_BadBody", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/sessions", `{"role":"ceo"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreateSession_Failure_Invalid", func(t *testing.T) {
		mockSessionService.EXPECT().
			CreateSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: risk threshold must be within [0,1]", echo_errors.ErrInvalidSessionData))

		w := serve(router, http.MethodPost, "/sessions", `{"actor_id":"u-1","role":"ceo","risk_threshold":3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GetSession_Success", func(t *testing.T) {
		mockSessionService.EXPECT().
			GetSession(gomock.Any(), "s-1").
			Return(&model.Session{ID: "s-1"}, nil)

		w := serve(router, http.MethodGet, "/sessions/s-1", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetSession_Failure_Expired", func(t *testing.T) {
		mockSessionService.EXPECT().
			GetSession(gomock.Any(), "s-old").
			Return(nil, echo_errors.ErrSessionExpired)

		w := serve(router, http.MethodGet, "/sessions/s-old", "")
		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("ListSessions_Success", func(t *testing.T) {
		mockSessionService.EXPECT().
			ListSessions(gomock.Any()).
			Return([]model.Session{{ID: "s-1"}, {ID: "s-2"}})

		w := serve(router, http.MethodGet, "/sessions", "")
		assert.Equal(t, http.StatusOK, w.Code)
		var sessions []model.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
		assert.Len(t, sessions, 2)
	})

	t.Run("TerminateSession_Success", func(t *testing.T) {
		mockSessionService.EXPECT().
			TerminateSession(gomock.Any(), "s-1", model.EndReasonRiskEscalation).
			Return(nil)

		w := serve(router, http.MethodDelete, "/sessions/s-1?reason=risk_escalation", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("TerminateSession_Failure_NotFound", func(t *testing.T) {
		mockSessionService.EXPECT().
			TerminateSession(gomock.Any(), "missing", "").
			Return(echo_errors.ErrSessionNotFound)

		w := serve(router, http.MethodDelete, "/sessions/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("VerifySession_Success", func(t *testing.T) {
		mockSessionService.EXPECT().
			ReVerify(gomock.Any(), "s-1", model.VerificationResult{Method: model.VerificationMFA, Success: true, Confidence: 0.95, Provider: "totp"}).
			Return(true, nil)

		w := serve(router, http.MethodPost, "/sessions/s-1/verify", `{"method":"mfa","success":true,"confidence":0.95,"provider":"totp"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"verified":true}`, w.Body.String())
	})

	t.Run("VerifySession_Failure_InvalidMethod", func(t *testing.T) {
		mockSessionService.EXPECT().
			ReVerify(gomock.Any(), "s-1", gomock.Any()).
			Return(false, fmt.Errorf("%w: unknown method", echo_errors.ErrInvalidVerification))

		w := serve(router, http.MethodPost, "/sessions/s-1/verify", `{"method":"sms","success":true,"confidence":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Evaluate_Allowed_FiltersRecord", func(t *testing.T) {
		decision := &pdp_model.PermissionDecision{
			Allowed:   true,
			Reason:    "allowed",
			FieldMask: &model.FieldVisibility{Masked: []string{"iban"}},
		}
		mockSessionService.EXPECT().
			Evaluate(gomock.Any(), "s-1", model.Action{Type: model.ActionView, ResourceID: "bancos"}, "bancos").
			Return(decision, nil)
		mockAccessService.EXPECT().
			FilterRecord(decision, map[string]any{"iban": "ES91", "balance": float64(10)}).
			Return(map[string]any{"iban": "****", "balance": float64(10)})

		w := serve(router, http.MethodPost, "/sessions/s-1/decisions", `{"action":"view","resource_id":"bancos","record":{"iban":"ES91","balance":10}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp controller.DecisionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Decision.Allowed)
		assert.Equal(t, "****", resp.Record["iban"])
	})

	t.Run("Evaluate_Denied_IsOK", func(t *testing.T) {
		decision := &pdp_model.PermissionDecision{
			Reason: "role analyst is denied",
			Kinds:  []pdp_model.DenialKind{pdp_model.KindRoleDenied},
		}
		mockSessionService.EXPECT().
			Evaluate(gomock.Any(), "s-1", gomock.Any(), "profit").
			Return(decision, nil)
		mockAccessService.EXPECT().FilterRecord(decision, gomock.Any()).Return(nil)

		w := serve(router, http.MethodPost, "/sessions/s-1/decisions", `{"action":"view","resource_id":"profit"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Evaluate_UnknownSession", func(t *testing.T) {
		decision := &pdp_model.PermissionDecision{
			Reason: "session not found",
			Kinds:  []pdp_model.DenialKind{pdp_model.KindSessionNotFound},
		}
		mockSessionService.EXPECT().
			Evaluate(gomock.Any(), "missing", gomock.Any(), gomock.Any()).
			Return(decision, nil)
		mockAccessService.EXPECT().FilterRecord(decision, gomock.Any()).Return(nil)

		w := serve(router, http.MethodPost, "/sessions/missing/decisions", `{"action":"view","resource_id":"bancos"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Evaluate_AuditUnavailable", func(t *testing.T) {
		decision := &pdp_model.PermissionDecision{
			Reason: "audit trail unavailable",
			Kinds:  []pdp_model.DenialKind{pdp_model.KindAuditUnavailable},
		}
		mockSessionService.EXPECT().
			Evaluate(gomock.Any(), "s-1", gomock.Any(), "bancos").
			Return(decision, echo_errors.ErrAuditSinkUnavailable)
		mockAccessService.EXPECT().FilterRecord(decision, gomock.Any()).Return(nil)

		w := serve(router, http.MethodPost, "/sessions/s-1/decisions", `{"action":"view","resource_id":"bancos"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp controller.DecisionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Decision.Allowed)
	})

	t.Run("Evaluate_Failure_BadBody", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/sessions/s-1/decisions", `{"action":"view"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
