// model/resource.go
package model

import "time"

// Sensitivity is the declared tier of a protected panel.
type Sensitivity string

const (
	SensitivityLow      Sensitivity = "low"
	SensitivityMedium   Sensitivity = "medium"
	SensitivityHigh     Sensitivity = "high"
	SensitivityCritical Sensitivity = "critical"
)

func (s Sensitivity) IsValid() bool {
	switch s {
	case SensitivityLow, SensitivityMedium, SensitivityHigh, SensitivityCritical:
		return true
	default:
		return false
	}
}

// Category groups panels by the kind of data they expose.
type Category string

const (
	CategoryFinancial  Category = "financial"
	CategorySecurity   Category = "security"
	CategoryUserData   Category = "user_data"
	CategoryOperations Category = "operations"
	CategoryAnalytics  Category = "analytics"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryFinancial, CategorySecurity, CategoryUserData, CategoryOperations, CategoryAnalytics:
		return true
	default:
		return false
	}
}

// ActionType is the kind of operation requested on a panel.
type ActionType string

const (
	ActionView   ActionType = "view"
	ActionManage ActionType = "manage"
	ActionAdmin  ActionType = "admin"
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
	ActionExport ActionType = "export"
)

func (a ActionType) IsValid() bool {
	switch a {
	case ActionView, ActionManage, ActionAdmin, ActionCreate, ActionUpdate, ActionDelete, ActionExport:
		return true
	default:
		return false
	}
}

// Panel is a named protected surface. Panels are loaded once from the
// permission matrix and never mutated afterwards.
type Panel struct {
	ID          string                                `yaml:"-" json:"id"`
	Name        string                                `yaml:"name" json:"name"`
	Description string                                `yaml:"description,omitempty" json:"description,omitempty"`
	Sensitivity Sensitivity                           `yaml:"sensitivity" json:"sensitivity"`
	Category    Category                              `yaml:"category" json:"category"`
	Actions     map[ActionType]PermissionActionConfig `yaml:"actions" json:"actions"`
}

// PermissionActionConfig holds the access rules for one (panel, action) pair.
type PermissionActionConfig struct {
	// AllowedRoles lists every role that may perform the action.
	AllowedRoles []string `yaml:"allowedRoles" json:"allowed_roles"`

	// DeniedRoles always wins over AllowedRoles. The wildcard "*" denies
	// every role that is not listed in AllowedRoles.
	DeniedRoles []string `yaml:"deniedRoles,omitempty" json:"denied_roles,omitempty"`

	// Conditions must all hold for the action to be allowed.
	Conditions []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`

	Fields    *FieldVisibility `yaml:"fields,omitempty" json:"fields,omitempty"`
	RateLimit *RateLimit       `yaml:"rateLimit,omitempty" json:"rate_limit,omitempty"`

	// RiskThreshold overrides the session and role level thresholds when set.
	RiskThreshold *float64 `yaml:"riskThreshold,omitempty" json:"risk_threshold,omitempty"`
}

// FieldVisibility describes which record fields a caller may see.
type FieldVisibility struct {
	Allowed []string `yaml:"allowed,omitempty" json:"allowed,omitempty"`
	Denied  []string `yaml:"denied,omitempty" json:"denied,omitempty"`
	Masked  []string `yaml:"masked,omitempty" json:"masked,omitempty"`
}

// RateLimit restricts how often one actor may repeat an action on a panel.
type RateLimit struct {
	MaxRequests int           `yaml:"maxRequests" json:"max_requests"`
	Window      time.Duration `yaml:"window" json:"window"`
}
