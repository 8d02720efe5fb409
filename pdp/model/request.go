package model

import (
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
)

// AccessRequest is the inbound payload of a decision request.
type AccessRequest struct {
	Action     model.ActionType `json:"action" binding:"required"`
	ResourceID string           `json:"resource_id" binding:"required"`
	ApprovedBy []string         `json:"approved_by,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty"`

	// Record is an optional payload returned filtered by the field mask.
	Record map[string]any `json:"record,omitempty"`
}

// ToAction converts the payload into the engine's action type.
func (r AccessRequest) ToAction() model.Action {
	return model.Action{
		Type:       r.Action,
		ResourceID: r.ResourceID,
		ApprovedBy: r.ApprovedBy,
		Metadata:   r.Metadata,
	}
}

// SessionRequest is the inbound payload to open a session.
type SessionRequest struct {
	ActorID       string             `json:"actor_id" binding:"required"`
	Role          string             `json:"role" binding:"required"`
	Trust         model.TrustSignals `json:"trust"`
	RiskThreshold float64            `json:"risk_threshold,omitempty"`
}

// VerifyRequest is the inbound payload of a re-verification.
type VerifyRequest struct {
	Method     string  `json:"method" binding:"required"`
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider,omitempty"`
}

func (r VerifyRequest) ToResult() model.VerificationResult {
	return model.VerificationResult{
		Method:     r.Method,
		Success:    r.Success,
		Confidence: r.Confidence,
		Provider:   r.Provider,
	}
}
