package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/condition"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/risk"
)

// RiskAssessor computes the composite risk of one request.
type RiskAssessor interface {
	Assess(ctx context.Context, in risk.Input) (pdp_model.RiskScore, error)
}

// DecisionRecorder appends decisions to the audit trail.
type DecisionRecorder interface {
	Record(ctx context.Context, actor *model.Actor, action model.Action, decision *pdp_model.PermissionDecision, opts audit.RecordOptions) (audit.AuditEntry, error)
}

// Labels recorded in PermissionsChecked for each stage that ran.
const (
	CheckDenyList      = "deny_list"
	CheckAllowList     = "allow_list"
	CheckRateLimit     = "rate_limit"
	CheckRiskScore     = "risk_score"
	CheckConditions    = "conditions"
	CheckRiskThreshold = "risk_threshold"
)

// DefaultRiskThreshold applies when neither the action, the actor nor the
// role sets a threshold.
const DefaultRiskThreshold = 0.7

// Config tunes the decision cache and the risk thresholds.
type Config struct {
	CacheTTL             time.Duration
	CacheMaxEntries      int
	DefaultRiskThreshold float64
	RoleRiskThresholds   map[string]float64
	Location             *time.Location
}

// Result is a decision plus how it was produced.
type Result struct {
	Decision      *pdp_model.PermissionDecision
	CacheHit      bool
	Elapsed       time.Duration
	CorrelationID string
}

// Engine evaluates access requests against the active permission matrix.
// It is safe for concurrent use.
type Engine struct {
	matrix     *matrix.Manager
	assessor   RiskAssessor
	conditions *condition.Evaluator
	cache      *DecisionCache
	limiter    *ActionLimiter
	recorder   DecisionRecorder
	cfg        Config
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecorder audits every decision through r.
func WithRecorder(r DecisionRecorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine builds an engine over the matrix held by m.
func NewEngine(m *matrix.Manager, assessor RiskAssessor, cfg Config, opts ...Option) *Engine {
	if cfg.DefaultRiskThreshold <= 0 {
		cfg.DefaultRiskThreshold = DefaultRiskThreshold
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	e := &Engine{
		matrix:     m,
		assessor:   assessor,
		conditions: condition.NewEvaluator(cfg.Location),
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = NewDecisionCache(cfg.CacheTTL, cfg.CacheMaxEntries, e.now)
	e.limiter = NewActionLimiter(e.now)
	return e
}

// Evaluate decides whether actor may perform action on resourceID. Denials
// are returned as decisions; an error is only returned for faults, and is
// always accompanied by a deny decision.
func (e *Engine) Evaluate(ctx context.Context, actor *model.Actor, action model.Action, resourceID string) (*pdp_model.PermissionDecision, error) {
	res, err := e.EvaluateTraced(ctx, actor, action, resourceID)
	return res.Decision, err
}

// EvaluateTraced is Evaluate plus cache and latency details. A decision
// that could not be audited is never allowed and never cached.
func (e *Engine) EvaluateTraced(ctx context.Context, actor *model.Actor, action model.Action, resourceID string) (Result, error) {
	start := time.Now()
	if action.ResourceID == "" {
		action.ResourceID = resourceID
	}

	out, err := e.decide(ctx, actor, action, resourceID)
	decision := out.decision
	res := Result{Decision: decision, CacheHit: out.cacheHit}

	audited := true
	if e.recorder != nil {
		entry, recErr := e.recorder.Record(ctx, actor, action, decision, audit.RecordOptions{CacheHit: out.cacheHit})
		res.CorrelationID = entry.CorrelationID
		if recErr != nil {
			audited = false
			logger.Error("Failed to audit decision, denying",
				zap.String("actor", actorID(actor)),
				zap.String("resource", resourceID),
				zap.Bool("allowed", decision.Allowed),
				zap.Error(recErr))
			if decision.Allowed {
				deny(decision, pdp_model.KindAuditUnavailable, "audit trail unavailable")
				decision.FieldMask = nil
			}
			if err == nil {
				err = fmt.Errorf("audit decision: %w: %w", echo_errors.ErrAuditSinkUnavailable, recErr)
			}
		}
	}

	if audited && out.cacheable && !out.cacheHit {
		if !e.cache.SetIfCurrent(out.key, decision, out.generation) {
			logger.Debug("Decision not cached, actor was invalidated during evaluation",
				zap.String("actor", actorID(actor)),
				zap.String("resource", resourceID))
		}
	}

	res.Elapsed = time.Since(start)
	logger.Debug("Access decision",
		zap.String("actor", actorID(actor)),
		zap.String("resource", resourceID),
		zap.String("action", string(action.Type)),
		zap.Bool("allowed", decision.Allowed),
		zap.Bool("cacheHit", out.cacheHit),
		zap.String("correlationID", res.CorrelationID),
		zap.Duration("elapsed", res.Elapsed))
	return res, err
}

// outcome is a decision plus what EvaluateTraced needs to cache it.
type outcome struct {
	decision   *pdp_model.PermissionDecision
	cacheHit   bool
	cacheable  bool
	key        pdp_model.CacheKey
	generation uint64
}

func (e *Engine) decide(ctx context.Context, actor *model.Actor, action model.Action, resourceID string) (outcome, error) {
	now := e.now()
	reg := e.matrix.Current()

	d := &pdp_model.PermissionDecision{
		PermissionsChecked:  []string{},
		ConditionsEvaluated: []model.ConditionType{},
		MatrixVersion:       reg.Version(),
		EvaluatedAt:         now,
	}
	out := outcome{decision: d}

	if err := validateRequest(actor, action, resourceID); err != nil {
		deny(d, pdp_model.KindMalformedRequest, err.Error())
		return out, err
	}

	// 1. registry lookup
	permission := fmt.Sprintf("%s.%s", resourceID, action.Type)
	d.PermissionsChecked = append(d.PermissionsChecked, permission)
	cfg, err := reg.GetActionConfig(resourceID, action.Type)
	if err != nil {
		kind := pdp_model.KindResourceNotRecognized
		if _, known := reg.Panel(resourceID); known {
			kind = pdp_model.KindActionNotSupported
		}
		deny(d, kind, "resource/action not recognized: "+permission)
		return out, nil
	}
	panel, _ := reg.Panel(resourceID)

	// 2. deny list always wins
	d.PermissionsChecked = append(d.PermissionsChecked, CheckDenyList)
	if roleDenied(cfg, actor.Role) {
		deny(d, pdp_model.KindRoleDenied, fmt.Sprintf("role explicitly denied: %s", actor.Role))
		return out, nil
	}

	// 3. allow list
	d.PermissionsChecked = append(d.PermissionsChecked, CheckAllowList)
	if !contains(cfg.AllowedRoles, actor.Role) {
		deny(d, pdp_model.KindRoleNotAuthorized, fmt.Sprintf("role not authorized: %s", actor.Role))
		return out, nil
	}

	// rate limits count every authorized request, cached or not
	if rl := cfg.RateLimit; rl != nil {
		d.PermissionsChecked = append(d.PermissionsChecked, CheckRateLimit)
		key := actor.ID + ":" + resourceID + ":" + string(action.Type)
		if !e.limiter.Allow(key, *rl) {
			deny(d, pdp_model.KindRateLimited, fmt.Sprintf("rate limit of %d per %s exceeded", rl.MaxRequests, rl.Window))
			return out, nil
		}
	}

	out.key = pdp_model.CacheKey{
		ActorID:    actor.ID,
		ActionType: action.Type,
		ResourceID: resourceID,
		SessionID:  actor.SessionID,
		Context:    fingerprint(actor),
	}
	cacheable := isCacheable(cfg, action)
	if cacheable {
		out.generation = e.cache.Generation(actor.ID)
		if cached, ok := e.cache.Get(out.key); ok {
			out.decision, out.cacheHit = cached, true
			return out, nil
		}
	}

	// 4. risk
	d.PermissionsChecked = append(d.PermissionsChecked, CheckRiskScore)
	score, err := e.assess(ctx, risk.Input{Actor: actor, Action: action, Panel: panel, Now: now})
	if err != nil {
		logger.Error("Risk computation failed, denying",
			zap.String("actor", actor.ID),
			zap.String("permission", permission),
			zap.Error(err))
		deny(d, pdp_model.KindRiskComputationFailed, "risk computation failed")
		return out, fmt.Errorf("%s: %w", permission, err)
	}
	d.RiskScore = &score
	d.RiskFactors = score.Factors
	out.cacheable = cacheable

	// 5. conditions
	d.PermissionsChecked = append(d.PermissionsChecked, CheckConditions)
	results := e.conditions.EvaluateAll(cfg.Conditions, condition.Context{
		Actor:   actor,
		Action:  action,
		Risk:    &score,
		Now:     now,
		Windows: reg.TimeWindows(),
		Rules:   reg.LocationRules(),
	})
	d.ConditionResults = results
	for _, r := range results {
		d.ConditionsEvaluated = append(d.ConditionsEvaluated, r.Type)
		if !r.Passed {
			d.ConditionsViolated = append(d.ConditionsViolated, r.Type)
		}
	}

	// 6. violations
	if len(d.ConditionsViolated) > 0 {
		names := make([]string, 0, len(d.ConditionsViolated))
		for _, t := range d.ConditionsViolated {
			names = append(names, string(t))
		}
		deny(d, pdp_model.KindConditionViolation, "conditions violated: "+strings.Join(names, ", "))
		return out, nil
	}

	// 7. risk threshold
	d.PermissionsChecked = append(d.PermissionsChecked, CheckRiskThreshold)
	d.RiskThreshold = e.threshold(cfg, actor)
	if score.TotalScore > d.RiskThreshold {
		deny(d, pdp_model.KindRiskTooHigh, fmt.Sprintf("risk too high: %.3f > %.3f", score.TotalScore, d.RiskThreshold))
		return out, nil
	}

	// 8. allow
	d.Allowed = true
	d.Reason = "access granted"
	d.FieldMask = cfg.Fields
	return out, nil
}

// assess converts a panicking assessor into an error.
func (e *Engine) assess(ctx context.Context, in risk.Input) (score pdp_model.RiskScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("risk assessor panicked: %v: %w", r, echo_errors.ErrRiskComputation)
		}
	}()
	if e.assessor == nil {
		return pdp_model.RiskScore{}, fmt.Errorf("no risk assessor: %w", echo_errors.ErrRiskComputation)
	}
	score, err = e.assessor.Assess(ctx, in)
	if err != nil {
		return pdp_model.RiskScore{}, fmt.Errorf("%w: %v", echo_errors.ErrRiskComputation, err)
	}
	if score.TotalScore < 0 || score.TotalScore > 1 || score.TotalScore != score.TotalScore {
		return pdp_model.RiskScore{}, fmt.Errorf("score %v out of range: %w", score.TotalScore, echo_errors.ErrRiskComputation)
	}
	return score, nil
}

// threshold picks the first configured value of action, actor, role and
// global default.
func (e *Engine) threshold(cfg model.PermissionActionConfig, actor *model.Actor) float64 {
	if cfg.RiskThreshold != nil {
		return *cfg.RiskThreshold
	}
	if actor.RiskThreshold > 0 {
		return actor.RiskThreshold
	}
	if t, ok := e.cfg.RoleRiskThresholds[actor.Role]; ok {
		return t
	}
	return e.cfg.DefaultRiskThreshold
}

// InvalidateActor drops every cached decision of actorID.
func (e *Engine) InvalidateActor(actorID string) int {
	n := e.cache.InvalidateActor(actorID)
	logger.Debug("Invalidated cached decisions", zap.String("actor", actorID), zap.Int("entries", n))
	return n
}

// ReloadMatrix installs reg and purges the decision cache.
func (e *Engine) ReloadMatrix(reg *matrix.Registry) *matrix.Registry {
	old := e.matrix.Swap(reg)
	e.cache.Purge()
	e.limiter.Reset()
	return old
}

// Reload re-reads the matrix source. The cache is only purged when the
// new matrix was installed.
func (e *Engine) Reload() (old, current *matrix.Registry, err error) {
	old = e.matrix.Current()
	current, err = e.matrix.Reload()
	if err != nil {
		return old, old, err
	}
	e.cache.Purge()
	e.limiter.Reset()
	return old, current, nil
}

// Registry returns the active permission matrix.
func (e *Engine) Registry() *matrix.Registry {
	return e.matrix.Current()
}

func (e *Engine) CacheStats() pdp_model.CacheStats {
	return e.cache.Stats()
}

func validateRequest(actor *model.Actor, action model.Action, resourceID string) error {
	switch {
	case actor == nil:
		return fmt.Errorf("missing actor: %w", echo_errors.ErrMalformedRequest)
	case strings.TrimSpace(actor.ID) == "":
		return fmt.Errorf("missing actor id: %w", echo_errors.ErrMalformedRequest)
	case strings.TrimSpace(actor.Role) == "":
		return fmt.Errorf("missing actor role: %w", echo_errors.ErrMalformedRequest)
	case !matrix.ValidResourceID(resourceID):
		return fmt.Errorf("malformed resource id %q: %w", resourceID, echo_errors.ErrMalformedRequest)
	case action.Type == "":
		return fmt.Errorf("missing action type: %w", echo_errors.ErrMalformedRequest)
	case action.ResourceID != resourceID:
		return fmt.Errorf("action targets %q but resource is %q: %w", action.ResourceID, resourceID, echo_errors.ErrMalformedRequest)
	}
	return nil
}

// isCacheable reports whether the decision depends only on the cache key.
// Approvals and metadata are per request, so such requests are evaluated
// every time.
func isCacheable(cfg model.PermissionActionConfig, action model.Action) bool {
	if len(action.ApprovedBy) > 0 || len(action.Metadata) > 0 {
		return false
	}
	for _, c := range cfg.Conditions {
		if c.Type == model.ConditionApproval {
			return false
		}
	}
	return true
}

// fingerprint covers every actor attribute a decision depends on besides
// the actor id.
func fingerprint(a *model.Actor) string {
	t := a.Trust
	loc := "-"
	if t.Location != nil {
		loc = fmt.Sprintf("%+v", *t.Location)
	}
	return fmt.Sprintf("%s|%t|%t|%t|%s|%s|%s|%g",
		a.Role, t.MFAVerified, t.BiometricVerified, t.DeviceTrusted,
		t.Device.ID, t.NetworkOrigin, loc, a.RiskThreshold)
}

func roleDenied(cfg model.PermissionActionConfig, role string) bool {
	if contains(cfg.DeniedRoles, role) {
		return true
	}
	return contains(cfg.DeniedRoles, matrix.Wildcard) && !contains(cfg.AllowedRoles, role)
}

func deny(d *pdp_model.PermissionDecision, kind pdp_model.DenialKind, reason string) {
	d.Allowed = false
	d.Kinds = append(d.Kinds, kind)
	d.Reason = reason
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func actorID(a *model.Actor) string {
	if a == nil {
		return ""
	}
	return a.ID
}
