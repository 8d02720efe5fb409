package model

import (
	"fmt"
	"time"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
)

// DenialKind is the machine readable reason of a denied decision.
type DenialKind string

const (
	KindResourceNotRecognized DenialKind = "resource_not_recognized"
	KindActionNotSupported    DenialKind = "action_not_supported"
	KindRoleDenied            DenialKind = "role_denied"
	KindRoleNotAuthorized     DenialKind = "role_not_authorized"
	KindConditionViolation    DenialKind = "condition_violation"
	KindRiskTooHigh           DenialKind = "risk_too_high"
	KindRateLimited           DenialKind = "rate_limited"
	KindSessionNotFound       DenialKind = "session_not_found"
	KindSessionExpired        DenialKind = "session_expired"
	KindMalformedRequest      DenialKind = "malformed_request"
	KindRiskComputationFailed DenialKind = "risk_computation_failed"
	KindAuditUnavailable      DenialKind = "audit_unavailable"
)

var kindErrors = map[DenialKind]error{
	KindResourceNotRecognized: echo_errors.ErrResourceNotRecognized,
	KindActionNotSupported:    echo_errors.ErrActionNotSupported,
	KindRoleDenied:            echo_errors.ErrRoleDenied,
	KindRoleNotAuthorized:     echo_errors.ErrRoleNotAuthorized,
	KindConditionViolation:    echo_errors.ErrConditionViolation,
	KindRiskTooHigh:           echo_errors.ErrRiskTooHigh,
	KindRateLimited:           echo_errors.ErrRateLimited,
	KindSessionNotFound:       echo_errors.ErrSessionNotFound,
	KindSessionExpired:        echo_errors.ErrSessionExpired,
	KindMalformedRequest:      echo_errors.ErrMalformedRequest,
	KindRiskComputationFailed: echo_errors.ErrRiskComputation,
	KindAuditUnavailable:      echo_errors.ErrAuditSinkUnavailable,
}

// PermissionDecision is the engine's only output. It is never modified
// after it has been produced.
type PermissionDecision struct {
	Allowed       bool         `json:"allowed"`
	Reason        string       `json:"reason"`
	Kinds         []DenialKind `json:"kinds,omitempty"`
	RiskScore     *RiskScore   `json:"risk_score,omitempty"`
	RiskThreshold float64      `json:"risk_threshold,omitempty"`

	// PermissionsChecked lists every config and check that was consulted.
	PermissionsChecked []string `json:"permissions_checked"`

	// ConditionsEvaluated lists every condition type examined, pass or fail.
	ConditionsEvaluated []model.ConditionType `json:"conditions_evaluated"`
	ConditionsViolated  []model.ConditionType `json:"conditions_violated,omitempty"`
	ConditionResults    []ConditionResult     `json:"condition_results,omitempty"`

	RiskFactors   []RiskFactor           `json:"risk_factors,omitempty"`
	FieldMask     *model.FieldVisibility `json:"field_mask,omitempty"`
	MatrixVersion string                 `json:"matrix_version,omitempty"`
	EvaluatedAt   time.Time              `json:"evaluated_at"`
}

// TotalRisk returns the aggregated risk score, or zero when none was computed.
func (d *PermissionDecision) TotalRisk() float64 {
	if d == nil || d.RiskScore == nil {
		return 0
	}
	return d.RiskScore.TotalScore
}

// HasKind reports whether the decision carries the given denial kind.
func (d *PermissionDecision) HasKind(kind DenialKind) bool {
	for _, k := range d.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Err returns nil for an allowed decision and otherwise an error wrapping
// the sentinel of the first denial kind.
func (d *PermissionDecision) Err() error {
	if d == nil {
		return echo_errors.ErrMalformedRequest
	}
	if d.Allowed {
		return nil
	}
	if len(d.Kinds) == 0 {
		return fmt.Errorf("access denied: %s", d.Reason)
	}
	if sentinel, ok := kindErrors[d.Kinds[0]]; ok {
		return fmt.Errorf("%s: %w", d.Reason, sentinel)
	}
	return fmt.Errorf("access denied (%s): %s", d.Kinds[0], d.Reason)
}

// Clone returns a deep copy so callers can never alias cached state.
func (d *PermissionDecision) Clone() *PermissionDecision {
	if d == nil {
		return nil
	}
	out := *d
	out.Kinds = append([]DenialKind(nil), d.Kinds...)
	out.RiskScore = d.RiskScore.clone()
	if d.PermissionsChecked != nil {
		out.PermissionsChecked = append(make([]string, 0, len(d.PermissionsChecked)), d.PermissionsChecked...)
	}
	if d.ConditionsEvaluated != nil {
		out.ConditionsEvaluated = append(make([]model.ConditionType, 0, len(d.ConditionsEvaluated)), d.ConditionsEvaluated...)
	}
	out.ConditionsViolated = append([]model.ConditionType(nil), d.ConditionsViolated...)
	out.ConditionResults = append([]ConditionResult(nil), d.ConditionResults...)
	out.RiskFactors = append([]RiskFactor(nil), d.RiskFactors...)
	if d.FieldMask != nil {
		mask := model.FieldVisibility{
			Allowed: append([]string(nil), d.FieldMask.Allowed...),
			Denied:  append([]string(nil), d.FieldMask.Denied...),
			Masked:  append([]string(nil), d.FieldMask.Masked...),
		}
		out.FieldMask = &mask
	}
	return &out
}
