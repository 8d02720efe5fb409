// util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateSessionRequest(req pdp_model.SessionRequest) error {
	if strings.TrimSpace(req.ActorID) == "" {
		return fmt.Errorf("actor ID cannot be empty")
	}
	if strings.TrimSpace(req.Role) == "" {
		return fmt.Errorf("role cannot be empty")
	}
	if req.RiskThreshold < 0 || req.RiskThreshold > 1 {
		return fmt.Errorf("risk threshold must be within [0,1]")
	}
	if loc := req.Trust.Location; loc != nil && loc.AccuracyMeters < 0 {
		return fmt.Errorf("location accuracy cannot be negative")
	}
	return nil
}

func (v *ValidationUtil) ValidateAccessRequest(req pdp_model.AccessRequest) error {
	if req.ResourceID == "" {
		return fmt.Errorf("resource ID cannot be empty")
	}
	if req.Action == "" {
		return fmt.Errorf("action cannot be empty")
	}
	for _, approver := range req.ApprovedBy {
		if strings.TrimSpace(approver) == "" {
			return fmt.Errorf("approver ID cannot be empty")
		}
	}
	return nil
}

func (v *ValidationUtil) ValidateVerifyRequest(req pdp_model.VerifyRequest) error {
	if req.Method != model.VerificationMFA && req.Method != model.VerificationBiometric {
		return fmt.Errorf("verification method must be either '%s' or '%s'", model.VerificationMFA, model.VerificationBiometric)
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1]")
	}
	return nil
}
