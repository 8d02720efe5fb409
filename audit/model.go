// audit/model.go
package audit

import (
	"time"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

type EntryType string

const (
	EntryDecision       EntryType = "decision"
	EntrySessionStart   EntryType = "session_start"
	EntrySessionEnd     EntryType = "session_end"
	EntryReverification EntryType = "reverification"
)

// AuditEntry is an immutable record of one decision or session event.
type AuditEntry struct {
	CorrelationID string    `json:"correlation_id"`
	Type          EntryType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`

	ActorID    string           `json:"actor_id"`
	Role       string           `json:"role,omitempty"`
	SessionID  string           `json:"session_id,omitempty"`
	Action     model.ActionType `json:"action,omitempty"`
	ResourceID string           `json:"resource_id,omitempty"`

	Allowed bool                   `json:"allowed"`
	Reason  string                 `json:"reason,omitempty"`
	Kinds   []pdp_model.DenialKind `json:"kinds,omitempty"`

	RiskScore           float64                     `json:"risk_score"`
	RiskLevel           model.RiskLevel             `json:"risk_level,omitempty"`
	RiskFactors         []pdp_model.RiskFactor      `json:"risk_factors,omitempty"`
	PermissionsChecked  []string                    `json:"permissions_checked,omitempty"`
	ConditionsEvaluated []model.ConditionType       `json:"conditions_evaluated,omitempty"`
	ConditionsViolated  []model.ConditionType       `json:"conditions_violated,omitempty"`
	ConditionResults    []pdp_model.ConditionResult `json:"condition_results,omitempty"`
	CacheHit            bool                        `json:"cache_hit"`

	NetworkOrigin string                 `json:"network_origin,omitempty"`
	Device        model.DeviceDescriptor `json:"device"`
	Location      *model.Location        `json:"location,omitempty"`

	WeightsVersion string            `json:"weights_version,omitempty"`
	MatrixVersion  string            `json:"matrix_version,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// RecordOptions carries the call context that is not part of the decision.
type RecordOptions struct {
	SessionID string
	CacheHit  bool
}

// SessionEvent describes a session lifecycle change to be audited.
type SessionEvent struct {
	Type      EntryType
	SessionID string
	Actor     *model.Actor
	RiskScore float64
	Allowed   bool
	Reason    string
	Metadata  map[string]string
}

// Filter selects entries from the in-memory trail. Zero fields match all.
type Filter struct {
	ActorID    string
	SessionID  string
	ResourceID string
	Type       EntryType
	From       time.Time
	To         time.Time
	DeniedOnly bool
	MinRisk    float64
}

func (f Filter) Match(e AuditEntry) bool {
	switch {
	case f.ActorID != "" && e.ActorID != f.ActorID:
		return false
	case f.SessionID != "" && e.SessionID != f.SessionID:
		return false
	case f.ResourceID != "" && e.ResourceID != f.ResourceID:
		return false
	case f.Type != "" && e.Type != f.Type:
		return false
	case !f.From.IsZero() && e.Timestamp.Before(f.From):
		return false
	case !f.To.IsZero() && e.Timestamp.After(f.To):
		return false
	case f.DeniedOnly && e.Allowed:
		return false
	case e.RiskScore < f.MinRisk:
		return false
	}
	return true
}

func cloneEntry(e AuditEntry) AuditEntry {
	out := e
	out.Kinds = append([]pdp_model.DenialKind(nil), e.Kinds...)
	out.RiskFactors = append([]pdp_model.RiskFactor(nil), e.RiskFactors...)
	out.PermissionsChecked = append([]string(nil), e.PermissionsChecked...)
	out.ConditionsEvaluated = append([]model.ConditionType(nil), e.ConditionsEvaluated...)
	out.ConditionsViolated = append([]model.ConditionType(nil), e.ConditionsViolated...)
	out.ConditionResults = append([]pdp_model.ConditionResult(nil), e.ConditionResults...)
	if e.Location != nil {
		loc := *e.Location
		out.Location = &loc
	}
	if e.Metadata != nil {
		out.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func correlationIDs(entries []AuditEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.CorrelationID)
	}
	return ids
}
