// service/session_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/engine"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

type ISessionService interface {
	CreateSession(ctx context.Context, actorID, role string, trust model.TrustSignals, opts SessionOptions) (*model.Session, error)
	Evaluate(ctx context.Context, sessionID string, action model.Action, resourceID string) (*pdp_model.PermissionDecision, error)
	TerminateSession(ctx context.Context, sessionID, reason string) error
	ReVerify(ctx context.Context, sessionID string, result model.VerificationResult) (bool, error)
	Verify(ctx context.Context, sessionID, method string) (bool, error)
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	ListSessions(ctx context.Context) []model.Session
}

// DecisionEngine is the part of the engine sessions depend on.
type DecisionEngine interface {
	EvaluateTraced(ctx context.Context, actor *model.Actor, action model.Action, resourceID string) (engine.Result, error)
	InvalidateActor(actorID string) int
}

// VerificationProvider runs an interactive MFA or biometric check.
type VerificationProvider interface {
	Verify(ctx context.Context, actorID, method string) (model.VerificationResult, error)
}

type SessionOptions struct {
	// RiskThreshold overrides the role threshold for this session. Zero keeps it.
	RiskThreshold float64
}

type SessionConfig struct {
	Timeout                   time.Duration
	RiskCeiling               float64
	MinVerificationConfidence float64
	TombstoneCapacity         int
}

// SessionService owns the session table. Every session has one expiry
// timer; a generation counter discards callbacks of replaced timers.
type SessionService struct {
	mu         sync.Mutex
	sessions   map[string]*sessionState
	tombstones *tombstones
	closed     bool

	engine          DecisionEngine
	auditService    audit.Service
	verifier        VerificationProvider
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
	cfg             SessionConfig
	now             func() time.Time
}

type sessionState struct {
	session    model.Session
	timer      *time.Timer
	generation uint64
}

var _ ISessionService = (*SessionService)(nil)

// SessionChange is the payload of the session.* events.
type SessionChange struct {
	SessionID string
	ActorID   string
	Reason    string
}

func NewSessionService(
	decisionEngine DecisionEngine,
	auditService audit.Service,
	verifier VerificationProvider,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
	cfg SessionConfig,
) *SessionService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.RiskCeiling <= 0 {
		cfg.RiskCeiling = 0.9
	}
	if cfg.MinVerificationConfidence <= 0 {
		cfg.MinVerificationConfidence = 0.9
	}
	s := &SessionService{
		sessions:        make(map[string]*sessionState),
		tombstones:      newTombstones(cfg.TombstoneCapacity),
		engine:          decisionEngine,
		auditService:    auditService,
		verifier:        verifier,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
		cfg:             cfg,
		now:             time.Now,
	}

	eventBus.Subscribe(util.EventSessionStarted, s.handleSessionChange("started"))
	eventBus.Subscribe(util.EventSessionVerified, s.handleSessionChange("verified"))
	eventBus.Subscribe(util.EventSessionEnded, s.handleSessionChange("ended"))

	return s
}

func (s *SessionService) handleSessionChange(changeType string) util.EventHandler {
	return func(ctx context.Context, event util.Event) error {
		change, ok := event.Payload.(SessionChange)
		if !ok {
			return fmt.Errorf("invalid event payload type: %T", event.Payload)
		}
		return s.notificationSvc.NotifySessionChange(ctx, changeType, change.SessionID, change.ActorID, change.Reason)
	}
}

func (s *SessionService) CreateSession(ctx context.Context, actorID, role string, trust model.TrustSignals, opts SessionOptions) (*model.Session, error) {
	req := pdp_model.SessionRequest{ActorID: actorID, Role: role, Trust: trust, RiskThreshold: opts.RiskThreshold}
	if err := s.validationUtil.ValidateSessionRequest(req); err != nil {
		logger.Warn("Invalid session request", zap.String("actorID", actorID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", echo_errors.ErrInvalidSessionData, err)
	}

	now := s.now()
	session := model.Session{
		ID:             uuid.New().String(),
		ActorID:        actorID,
		Role:           role,
		Trust:          trust,
		RiskThreshold:  opts.RiskThreshold,
		State:          model.SessionActive,
		StartedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.cfg.Timeout),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("session service is shut down")
	}
	st := &sessionState{session: session}
	s.sessions[session.ID] = st
	s.scheduleLocked(session.ID, st)
	s.mu.Unlock()

	// a new session may carry different trust than cached decisions
	s.engine.InvalidateActor(actorID)

	if _, err := s.auditService.RecordSessionEvent(ctx, audit.SessionEvent{
		Type:      audit.EntrySessionStart,
		SessionID: session.ID,
		Actor:     session.Actor(),
		Allowed:   true,
		Reason:    "session started",
	}); err != nil {
		logger.Error("Failed to audit session start", zap.String("sessionID", session.ID), zap.Error(err))
	}
	s.eventBus.Publish(ctx, util.EventSessionStarted, SessionChange{SessionID: session.ID, ActorID: actorID})

	logger.Info("Session created",
		zap.String("sessionID", session.ID),
		zap.String("actorID", actorID),
		zap.String("role", role))
	return &session, nil
}

// Evaluate checks one action for an active session. Unknown and expired
// sessions are denied without reaching the engine.
func (s *SessionService) Evaluate(ctx context.Context, sessionID string, action model.Action, resourceID string) (*pdp_model.PermissionDecision, error) {
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	var actor *model.Actor
	if ok {
		actor = st.session.Actor()
	}
	expired := !ok && s.tombstones.contains(sessionID)
	s.mu.Unlock()

	if !ok {
		return s.denyUnknownSession(ctx, sessionID, action, resourceID, expired), nil
	}

	res, err := s.engine.EvaluateTraced(ctx, actor, action, resourceID)
	d := res.Decision
	if d == nil {
		return nil, err
	}

	escalated := false
	s.mu.Lock()
	if current, still := s.sessions[sessionID]; still && current == st {
		now := s.now()
		st.session.LastActivityAt = now
		st.session.ExpiresAt = now.Add(s.cfg.Timeout)
		if d.RiskScore != nil {
			st.session.RiskScore = d.RiskScore.TotalScore
			st.session.RiskLevel = d.RiskScore.Level
		}
		if d.Allowed {
			st.session.GrantedPermissions = appendUnique(st.session.GrantedPermissions, fmt.Sprintf("%s.%s", resourceID, action.Type))
		}
		escalated = st.session.RiskScore > s.cfg.RiskCeiling
		s.scheduleLocked(sessionID, st)
	}
	s.mu.Unlock()

	if escalated {
		logger.Warn("Session risk above ceiling, terminating",
			zap.String("sessionID", sessionID),
			zap.Float64("riskScore", d.TotalRisk()),
			zap.Float64("ceiling", s.cfg.RiskCeiling))
		if termErr := s.TerminateSession(ctx, sessionID, model.EndReasonRiskEscalation); termErr != nil {
			logger.Error("Failed to terminate escalated session", zap.String("sessionID", sessionID), zap.Error(termErr))
		}
	}
	return d, err
}

func (s *SessionService) denyUnknownSession(ctx context.Context, sessionID string, action model.Action, resourceID string, expired bool) *pdp_model.PermissionDecision {
	d := &pdp_model.PermissionDecision{
		Kinds:               []pdp_model.DenialKind{pdp_model.KindSessionNotFound},
		Reason:              "session not found",
		PermissionsChecked:  []string{},
		ConditionsEvaluated: []model.ConditionType{},
		EvaluatedAt:         s.now(),
	}
	if expired {
		d.Kinds = []pdp_model.DenialKind{pdp_model.KindSessionExpired}
		d.Reason = "session expired"
	}
	if action.ResourceID == "" {
		action.ResourceID = resourceID
	}
	if _, err := s.auditService.Record(ctx, nil, action, d, audit.RecordOptions{SessionID: sessionID}); err != nil {
		logger.Error("Failed to audit session denial", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return d
}

func (s *SessionService) TerminateSession(ctx context.Context, sessionID, reason string) error {
	if reason == "" {
		reason = model.EndReasonLogout
	}

	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok {
		expired := s.tombstones.contains(sessionID)
		s.mu.Unlock()
		if expired {
			return echo_errors.ErrSessionExpired
		}
		return echo_errors.ErrSessionNotFound
	}
	s.removeLocked(sessionID, st)
	ended := st.session
	s.mu.Unlock()

	s.finish(ctx, ended, reason)
	return nil
}

// finish audits and announces the end of a session that is already
// removed from the table.
func (s *SessionService) finish(ctx context.Context, ended model.Session, reason string) {
	ended.State = model.SessionTerminated
	ended.EndReason = reason
	s.engine.InvalidateActor(ended.ActorID)

	if _, err := s.auditService.RecordSessionEvent(ctx, audit.SessionEvent{
		Type:      audit.EntrySessionEnd,
		SessionID: ended.ID,
		Actor:     ended.Actor(),
		RiskScore: ended.RiskScore,
		Reason:    reason,
	}); err != nil {
		logger.Error("Failed to audit session end", zap.String("sessionID", ended.ID), zap.Error(err))
	}
	s.eventBus.Publish(ctx, util.EventSessionEnded, SessionChange{SessionID: ended.ID, ActorID: ended.ActorID, Reason: reason})

	logger.Info("Session terminated",
		zap.String("sessionID", ended.ID),
		zap.String("actorID", ended.ActorID),
		zap.String("reason", reason))
}

// ReVerify applies a verification result. A successful result upgrades the
// session trust and drops the actor's cached decisions.
func (s *SessionService) ReVerify(ctx context.Context, sessionID string, result model.VerificationResult) (bool, error) {
	if err := s.validationUtil.ValidateVerifyRequest(pdp_model.VerifyRequest{
		Method:     result.Method,
		Success:    result.Success,
		Confidence: result.Confidence,
	}); err != nil {
		return false, fmt.Errorf("%w: %v", echo_errors.ErrInvalidVerification, err)
	}
	success := result.Success && result.Confidence >= s.cfg.MinVerificationConfidence

	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok {
		expired := s.tombstones.contains(sessionID)
		s.mu.Unlock()
		if expired {
			return false, echo_errors.ErrSessionExpired
		}
		return false, echo_errors.ErrSessionNotFound
	}
	if success {
		switch result.Method {
		case model.VerificationMFA:
			st.session.Trust.MFAVerified = true
		case model.VerificationBiometric:
			st.session.Trust.BiometricVerified = true
		}
		st.session.VerifiedFactors = appendUnique(st.session.VerifiedFactors, result.Method)
		st.session.LastActivityAt = s.now()
		st.session.ExpiresAt = st.session.LastActivityAt.Add(s.cfg.Timeout)
		s.scheduleLocked(sessionID, st)
	}
	actor := st.session.Actor()
	s.mu.Unlock()

	if success {
		s.engine.InvalidateActor(actor.ID)
	}

	reason := "verification failed"
	if success {
		reason = "verification succeeded"
	}
	if _, err := s.auditService.RecordSessionEvent(ctx, audit.SessionEvent{
		Type:      audit.EntryReverification,
		SessionID: sessionID,
		Actor:     actor,
		Allowed:   success,
		Reason:    reason,
		Metadata: map[string]string{
			"method":     result.Method,
			"confidence": strconv.FormatFloat(result.Confidence, 'f', 3, 64),
			"provider":   result.Provider,
		},
	}); err != nil {
		logger.Error("Failed to audit re-verification", zap.String("sessionID", sessionID), zap.Error(err))
	}
	if success {
		s.eventBus.Publish(ctx, util.EventSessionVerified, SessionChange{SessionID: sessionID, ActorID: actor.ID, Reason: result.Method})
	}

	logger.Info("Session re-verification",
		zap.String("sessionID", sessionID),
		zap.String("method", result.Method),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("success", success))
	return success, nil
}

// Verify asks the verification provider to challenge the session's actor.
func (s *SessionService) Verify(ctx context.Context, sessionID, method string) (bool, error) {
	if s.verifier == nil {
		return false, fmt.Errorf("no verification provider configured: %w", echo_errors.ErrInvalidVerification)
	}
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	result, err := s.verifier.Verify(ctx, session.ActorID, method)
	if err != nil {
		logger.Warn("Verification provider failed", zap.String("sessionID", sessionID), zap.Error(err))
		result = model.VerificationResult{Method: method, Success: false}
	}
	if result.Method == "" {
		result.Method = method
	}
	return s.ReVerify(ctx, sessionID, result)
}

func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		if s.tombstones.contains(sessionID) {
			return nil, echo_errors.ErrSessionExpired
		}
		return nil, echo_errors.ErrSessionNotFound
	}
	session := cloneSession(st.session)
	return &session, nil
}

func (s *SessionService) ListSessions(ctx context.Context) []model.Session {
	s.mu.Lock()
	out := make([]model.Session, 0, len(s.sessions))
	for _, st := range s.sessions {
		out = append(out, cloneSession(st.session))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Close stops every timer and ends all sessions with reason shutdown.
func (s *SessionService) Close(ctx context.Context) {
	s.mu.Lock()
	s.closed = true
	ended := make([]model.Session, 0, len(s.sessions))
	for id, st := range s.sessions {
		s.removeLocked(id, st)
		ended = append(ended, st.session)
	}
	s.mu.Unlock()

	for _, session := range ended {
		s.finish(ctx, session, model.EndReasonShutdown)
	}
}

// scheduleLocked replaces the session's expiry timer.
func (s *SessionService) scheduleLocked(sessionID string, st *sessionState) {
	if st.timer != nil {
		st.timer.Stop()
	}
	st.generation++
	gen := st.generation
	st.timer = time.AfterFunc(s.cfg.Timeout, func() {
		s.expire(sessionID, gen)
	})
}

func (s *SessionService) expire(sessionID string, gen uint64) {
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok || st.generation != gen {
		s.mu.Unlock()
		return
	}
	s.removeLocked(sessionID, st)
	s.tombstones.add(sessionID)
	ended := st.session
	s.mu.Unlock()

	s.finish(context.Background(), ended, model.EndReasonTimeout)
}

func (s *SessionService) removeLocked(sessionID string, st *sessionState) {
	if st.timer != nil {
		st.timer.Stop()
	}
	// invalidates any callback already in flight
	st.generation++
	delete(s.sessions, sessionID)
}

func cloneSession(in model.Session) model.Session {
	out := in
	out.GrantedPermissions = append([]string(nil), in.GrantedPermissions...)
	out.VerifiedFactors = append([]string(nil), in.VerifiedFactors...)
	if in.Trust.Location != nil {
		loc := *in.Trust.Location
		out.Trust.Location = &loc
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

// tombstones remembers the ids of timed out sessions, oldest evicted first.
type tombstones struct {
	ids   map[string]struct{}
	order []string
	limit int
}

func newTombstones(limit int) *tombstones {
	if limit <= 0 {
		limit = 4096
	}
	return &tombstones{ids: make(map[string]struct{}), limit: limit}
}

func (t *tombstones) add(id string) {
	if _, ok := t.ids[id]; ok {
		return
	}
	if len(t.order) >= t.limit {
		delete(t.ids, t.order[0])
		t.order = t.order[1:]
	}
	t.ids[id] = struct{}{}
	t.order = append(t.order, id)
}

func (t *tombstones) contains(id string) bool {
	_, ok := t.ids[id]
	return ok
}
