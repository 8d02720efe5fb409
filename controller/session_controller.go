// controller/session_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/service"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

type SessionController struct {
	sessionService service.ISessionService
	accessService  service.IAccessService
}

func NewSessionController(sessionService service.ISessionService, accessService service.IAccessService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		accessService:  accessService,
	}
}

// DecisionResponse is returned by the decision endpoint. Record is the
// caller supplied record filtered by the decision's field mask.
type DecisionResponse struct {
	Decision *pdp_model.PermissionDecision `json:"decision"`
	Record   map[string]any                `json:"record,omitempty"`
}

// RegisterRoutes registers the API routes
func (sc *SessionController) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.POST("", sc.CreateSession)
		sessions.GET("", sc.ListSessions)
		sessions.GET("/:id", sc.GetSession)
		sessions.DELETE("/:id", sc.TerminateSession)
		sessions.POST("/:id/verify", sc.VerifySession)
		sessions.POST("/:id/decisions", sc.Evaluate)
	}
}

// CreateSession endpoint
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req pdp_model.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid session data", echo_errors.ErrInvalidSessionData)
		return
	}

	session, err := sc.sessionService.CreateSession(c, req.ActorID, req.Role, req.Trust, service.SessionOptions{RiskThreshold: req.RiskThreshold})
	if err != nil {
		util.RespondWithError(c, util.StatusForError(err), "Failed to create session", err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ListSessions endpoint
func (sc *SessionController) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, sc.sessionService.ListSessions(c))
}

// GetSession endpoint
func (sc *SessionController) GetSession(c *gin.Context) {
	session, err := sc.sessionService.GetSession(c, c.Param("id"))
	if err != nil {
		util.RespondWithError(c, util.StatusForError(err), "Failed to retrieve session", err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// TerminateSession endpoint. The optional reason query parameter defaults
// to logout.
func (sc *SessionController) TerminateSession(c *gin.Context) {
	if err := sc.sessionService.TerminateSession(c, c.Param("id"), c.Query("reason")); err != nil {
		util.RespondWithError(c, util.StatusForError(err), "Failed to terminate session", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// VerifySession applies a re-verification result reported by the client's
// MFA or biometric provider.
func (sc *SessionController) VerifySession(c *gin.Context) {
	var req pdp_model.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid verification data", echo_errors.ErrInvalidVerification)
		return
	}

	verified, err := sc.sessionService.ReVerify(c, c.Param("id"), req.ToResult())
	if err != nil {
		util.RespondWithError(c, util.StatusForError(err), "Failed to verify session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": verified})
}

// Evaluate endpoint. Denials are normal results and answer 200. Missing
// sessions and faults answer with the status of their error.
func (sc *SessionController) Evaluate(c *gin.Context) {
	var req pdp_model.AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access request", echo_errors.ErrMalformedRequest)
		return
	}

	sessionID := c.Param("id")
	decision, err := sc.sessionService.Evaluate(c, sessionID, req.ToAction(), req.ResourceID)
	if decision == nil {
		util.RespondWithError(c, util.StatusForError(err), "Failed to evaluate access", err)
		return
	}
	if err != nil {
		logger.Warn("Decision returned with fault",
			zap.String("sessionID", sessionID),
			zap.String("resourceID", req.ResourceID),
			zap.String("correlationID", c.GetString("correlationID")),
			zap.Error(err))
	}

	status := http.StatusOK
	if decision.HasKind(pdp_model.KindSessionNotFound) ||
		decision.HasKind(pdp_model.KindSessionExpired) ||
		decision.HasKind(pdp_model.KindMalformedRequest) ||
		decision.HasKind(pdp_model.KindAuditUnavailable) {
		status = util.StatusForError(decision.Err())
	}

	c.JSON(status, DecisionResponse{
		Decision: decision,
		Record:   sc.accessService.FilterRecord(decision, req.Record),
	})
}
