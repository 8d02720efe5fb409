// model/policy.go
package model

import "fmt"

// ConditionType names the kind of policy predicate.
type ConditionType string

const (
	ConditionTime     ConditionType = "time"
	ConditionLocation ConditionType = "location"
	ConditionDevice   ConditionType = "device"
	ConditionRisk     ConditionType = "risk"
	ConditionMFA      ConditionType = "mfa"
	ConditionApproval ConditionType = "approval"
)

func (c ConditionType) IsValid() bool {
	switch c {
	case ConditionTime, ConditionLocation, ConditionDevice, ConditionRisk, ConditionMFA, ConditionApproval:
		return true
	default:
		return false
	}
}

const (
	MFALevelBasic     = "basic"
	MFALevelBiometric = "biometric"
)

// Condition is a single typed predicate attached to an action config.
// Which fields are read depends on Type.
type Condition struct {
	Type ConditionType `yaml:"type" json:"type"`

	// Window names a time window (type time).
	Window string `yaml:"window,omitempty" json:"window,omitempty"`

	// Rule names a location rule (type location).
	Rule string `yaml:"rule,omitempty" json:"rule,omitempty"`

	// Level is the required verification level (type mfa).
	Level string `yaml:"level,omitempty" json:"level,omitempty"`

	// Required is the expected device trust flag (type device, default true).
	Required *bool `yaml:"required,omitempty" json:"required,omitempty"`

	// Threshold is the maximum aggregated risk score (type risk).
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// MinApprovals is the number of distinct approvers (type approval, default 1).
	MinApprovals int `yaml:"minApprovals,omitempty" json:"min_approvals,omitempty"`
}

func (c Condition) String() string {
	switch c.Type {
	case ConditionTime:
		return fmt.Sprintf("time within %q", c.Window)
	case ConditionLocation:
		return fmt.Sprintf("location satisfies %q", c.Rule)
	case ConditionDevice:
		return fmt.Sprintf("device trusted == %t", c.RequiredDeviceTrust())
	case ConditionRisk:
		return fmt.Sprintf("risk <= %.2f", c.Threshold)
	case ConditionMFA:
		return fmt.Sprintf("mfa level %q", c.Level)
	case ConditionApproval:
		return fmt.Sprintf("approvals >= %d", c.RequiredApprovals())
	default:
		return string(c.Type)
	}
}

// RequiredDeviceTrust returns the expected device trust flag.
func (c Condition) RequiredDeviceTrust() bool {
	if c.Required == nil {
		return true
	}
	return *c.Required
}

// RequiredApprovals returns the minimum number of approvers.
func (c Condition) RequiredApprovals() int {
	if c.MinApprovals <= 0 {
		return 1
	}
	return c.MinApprovals
}

// TimeWindow is a named recurring access window, e.g. business hours.
// Start and End are "HH:MM" in the configured time zone; End is exclusive.
type TimeWindow struct {
	Days  []string `yaml:"days,omitempty" json:"days,omitempty"` // mon..sun, empty means every day
	Start string   `yaml:"start,omitempty" json:"start,omitempty"`
	End   string   `yaml:"end,omitempty" json:"end,omitempty"`
}

// LocationRule is a named allow/deny rule over the actor's location.
type LocationRule struct {
	Networks         []string `yaml:"networks,omitempty" json:"networks,omitempty"`
	RequireSecure    bool     `yaml:"requireSecure,omitempty" json:"require_secure,omitempty"`
	AllowedCountries []string `yaml:"allowedCountries,omitempty" json:"allowed_countries,omitempty"`
	DeniedCountries  []string `yaml:"deniedCountries,omitempty" json:"denied_countries,omitempty"`
}
