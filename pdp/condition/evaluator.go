package condition

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

// Context is the request state a condition is checked against.
type Context struct {
	Actor  *model.Actor
	Action model.Action
	Risk   *pdp_model.RiskScore
	Now    time.Time

	Windows map[string]model.TimeWindow
	Rules   map[string]model.LocationRule
}

type Evaluator struct {
	location *time.Location
}

// NewEvaluator evaluates time windows in loc (UTC when nil).
func NewEvaluator(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{location: loc}
}

// EvaluateAll checks every condition and returns one result per condition,
// in order. A condition stops at its first failing check.
func (e *Evaluator) EvaluateAll(conds []model.Condition, c Context) []pdp_model.ConditionResult {
	results := make([]pdp_model.ConditionResult, 0, len(conds))
	for _, cond := range conds {
		results = append(results, e.Evaluate(cond, c))
	}
	return results
}

func (e *Evaluator) Evaluate(cond model.Condition, c Context) pdp_model.ConditionResult {
	result := pdp_model.ConditionResult{
		Type:       cond.Type,
		Expression: cond.String(),
	}

	var reason string
	switch cond.Type {
	case model.ConditionTime:
		reason = e.checkTime(cond, c)
	case model.ConditionLocation:
		reason = checkLocation(cond, c)
	case model.ConditionDevice:
		reason = checkDevice(cond, c)
	case model.ConditionRisk:
		reason = checkRisk(cond, c)
	case model.ConditionMFA:
		reason = checkMFA(cond, c)
	case model.ConditionApproval:
		reason = checkApproval(cond, c)
	default:
		logger.Warn("Unknown condition type", zap.String("type", string(cond.Type)))
		reason = fmt.Sprintf("unknown condition type %q", cond.Type)
	}

	result.Passed = reason == ""
	result.Reason = reason
	return result
}

func (e *Evaluator) checkTime(cond model.Condition, c Context) string {
	window, ok := c.Windows[cond.Window]
	if !ok {
		return fmt.Sprintf("time window %q is not defined", cond.Window)
	}
	if c.Now.IsZero() {
		return "request time unknown"
	}
	in, err := InWindow(window, c.Now.In(e.location))
	if err != nil {
		return err.Error()
	}
	if !in {
		return fmt.Sprintf("outside time window %q", cond.Window)
	}
	return ""
}

func checkLocation(cond model.Condition, c Context) string {
	rule, ok := c.Rules[cond.Rule]
	if !ok {
		return fmt.Sprintf("location rule %q is not defined", cond.Rule)
	}
	if c.Actor == nil || c.Actor.Trust.Location == nil {
		return "location unavailable"
	}
	loc := c.Actor.Trust.Location
	if len(rule.Networks) > 0 && !containsFold(rule.Networks, loc.Network) {
		return fmt.Sprintf("network %q not permitted", loc.Network)
	}
	if rule.RequireSecure && !loc.Secure {
		return "insecure location"
	}
	if containsFold(rule.DeniedCountries, loc.Country) {
		return fmt.Sprintf("country %q denied", loc.Country)
	}
	if len(rule.AllowedCountries) > 0 && !containsFold(rule.AllowedCountries, loc.Country) {
		return fmt.Sprintf("country %q not permitted", loc.Country)
	}
	return ""
}

func checkDevice(cond model.Condition, c Context) string {
	if c.Actor == nil {
		return "device trust unknown"
	}
	want := cond.RequiredDeviceTrust()
	if c.Actor.Trust.DeviceTrusted != want {
		return fmt.Sprintf("device trusted is %t, want %t", c.Actor.Trust.DeviceTrusted, want)
	}
	return ""
}

func checkRisk(cond model.Condition, c Context) string {
	if c.Risk == nil {
		return "risk score unavailable"
	}
	if c.Risk.TotalScore > cond.Threshold {
		return fmt.Sprintf("risk %.2f exceeds %.2f", c.Risk.TotalScore, cond.Threshold)
	}
	return ""
}

func checkMFA(cond model.Condition, c Context) string {
	if c.Actor == nil {
		return "verification state unknown"
	}
	trust := c.Actor.Trust
	switch cond.Level {
	case model.MFALevelBiometric:
		if !trust.BiometricVerified {
			return "biometric verification required"
		}
	case model.MFALevelBasic, "":
		if !trust.MFAVerified && !trust.BiometricVerified {
			return "mfa verification required"
		}
	default:
		return fmt.Sprintf("unknown mfa level %q", cond.Level)
	}
	return ""
}

func checkApproval(cond model.Condition, c Context) string {
	need := cond.RequiredApprovals()
	seen := make(map[string]struct{}, len(c.Action.ApprovedBy))
	for _, id := range c.Action.ApprovedBy {
		id = strings.TrimSpace(id)
		if id == "" || (c.Actor != nil && id == c.Actor.ID) {
			continue
		}
		seen[id] = struct{}{}
	}
	if len(seen) < need {
		return fmt.Sprintf("%d of %d required approvals", len(seen), need)
	}
	return ""
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
