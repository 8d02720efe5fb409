// model/access.go
package model

import "time"

// Roles referenced by the default permission matrix.
const (
	RoleCEO               = "ceo"
	RoleAdmin             = "admin"
	RoleBankProfitManager = "bank_profit_manager"
	RoleFinanceManager    = "finance_manager"
	RoleAnalyst           = "analyst"
	RoleOperator          = "operator"
	RoleAuditor           = "auditor"
	RoleGuest             = "guest"
)

// RiskLevel classifies a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type SessionState string

const (
	SessionActive     SessionState = "active"
	SessionTerminated SessionState = "terminated"
)

// Reasons a session can end.
const (
	EndReasonLogout         = "logout"
	EndReasonTimeout        = "timeout"
	EndReasonRiskEscalation = "risk_escalation"
	EndReasonShutdown       = "shutdown"
)

// Session is a point-in-time view of an actor session.
type Session struct {
	ID                 string       `json:"id"`
	ActorID            string       `json:"actor_id"`
	Role               string       `json:"role"`
	GrantedPermissions []string     `json:"granted_permissions,omitempty"`
	VerifiedFactors    []string     `json:"verified_factors,omitempty"`
	Trust              TrustSignals `json:"trust"`
	RiskScore          float64      `json:"risk_score"`
	RiskLevel          RiskLevel    `json:"risk_level,omitempty"`
	RiskThreshold      float64      `json:"risk_threshold,omitempty"`
	State              SessionState `json:"state"`
	StartedAt          time.Time    `json:"started_at"`
	LastActivityAt     time.Time    `json:"last_activity_at"`
	ExpiresAt          time.Time    `json:"expires_at"`
	EndReason          string       `json:"end_reason,omitempty"`
}

// Actor builds the actor descriptor the decision engine evaluates.
func (s Session) Actor() *Actor {
	return &Actor{
		ID:            s.ActorID,
		Role:          s.Role,
		SessionID:     s.ID,
		Trust:         s.Trust,
		RiskThreshold: s.RiskThreshold,
	}
}

// Verification methods accepted for re-verification.
const (
	VerificationMFA       = "mfa"
	VerificationBiometric = "biometric"
)

// VerificationResult is what a biometric/MFA provider reports.
type VerificationResult struct {
	Method     string  `json:"method"`
	Success    bool    `json:"success"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider,omitempty"`
}
