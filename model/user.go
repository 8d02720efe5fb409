// model/user.go
package model

// Actor is the requesting identity. ID and Role never change for the
// lifetime of a session; Trust can be upgraded by re-verification.
type Actor struct {
	ID        string       `json:"id"`
	Role      string       `json:"role"`
	SessionID string       `json:"session_id,omitempty"`
	Trust     TrustSignals `json:"trust"`

	// RiskThreshold is a session level override. Zero means unset.
	RiskThreshold float64 `json:"risk_threshold,omitempty"`
}

// TrustSignals are the verification and environment facts known about an actor.
type TrustSignals struct {
	MFAVerified       bool             `json:"mfa_verified"`
	BiometricVerified bool             `json:"biometric_verified"`
	DeviceTrusted     bool             `json:"device_trusted"`
	Device            DeviceDescriptor `json:"device"`
	NetworkOrigin     string           `json:"network_origin,omitempty"`
	Location          *Location        `json:"location,omitempty"`
}

// Network kinds reported by the geolocation/network-trust provider.
const (
	NetworkOffice = "office"
	NetworkVPN    = "vpn"
	NetworkHome   = "home"
	NetworkPublic = "public"
)

// Location describes where a request originates. A nil *Location means the
// provider returned nothing, which every consumer treats as risk-positive.
type Location struct {
	Network        string  `json:"network,omitempty"`
	Country        string  `json:"country,omitempty"`
	Latitude       float64 `json:"latitude,omitempty"`
	Longitude      float64 `json:"longitude,omitempty"`
	AccuracyMeters float64 `json:"accuracy_meters,omitempty"`
	Secure         bool    `json:"secure"`
}

type DeviceDescriptor struct {
	ID        string `json:"id,omitempty"`
	Platform  string `json:"platform,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Action is a requested operation on a panel.
type Action struct {
	Type       ActionType `json:"type"`
	ResourceID string     `json:"resource_id"`

	// ApprovedBy lists the ids of actors that approved this action.
	ApprovedBy []string `json:"approved_by,omitempty"`

	// Metadata carries free-form signals for the risk model.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MetaRecentIdenticalActions is the metadata key holding the number of
// identical actions the caller observed in its rolling window.
const MetaRecentIdenticalActions = "recent_identical_actions"

// RecentIdenticalActions reads MetaRecentIdenticalActions from the metadata.
// Missing or non-numeric values count as zero.
func (a Action) RecentIdenticalActions() int {
	v, ok := a.Metadata[MetaRecentIdenticalActions]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}
