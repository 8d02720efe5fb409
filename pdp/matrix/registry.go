package matrix

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/condition"
)

//go:embed default_matrix.yaml
var defaultMatrix []byte

// Wildcard in DeniedRoles denies every role missing from AllowedRoles.
const Wildcard = "*"

var resourceIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,63}$`)

// ValidResourceID reports whether id is a well-formed panel id.
func ValidResourceID(id string) bool {
	return resourceIDPattern.MatchString(id)
}

// Document is the on-disk form of a permission matrix.
type Document struct {
	Version       string                        `yaml:"version"`
	TimeWindows   map[string]model.TimeWindow   `yaml:"timeWindows"`
	LocationRules map[string]model.LocationRule `yaml:"locationRules"`
	Panels        map[string]model.Panel        `yaml:"panels"`
}

// Registry is an immutable, validated permission matrix. Replace it as a
// whole through a Manager, never edit it in place.
type Registry struct {
	version string
	panels  map[string]model.Panel
	ids     []string
	windows map[string]model.TimeWindow
	rules   map[string]model.LocationRule
}

// Load parses and validates a matrix document. Unknown keys are rejected
// and nothing is returned unless the whole document is valid.
func Load(data []byte) (*Registry, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", echo_errors.ErrInvalidMatrix, err)
	}
	return New(doc)
}

func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read matrix %s: %w", path, err)
	}
	return Load(data)
}

// LoadDefault loads the built-in matrix.
func LoadDefault() (*Registry, error) {
	return Load(defaultMatrix)
}

// DefaultDocument returns the raw built-in matrix.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultMatrix...)
}

// New validates doc and builds a registry from a private copy of it.
func New(doc Document) (*Registry, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	reg := &Registry{
		version: doc.Version,
		panels:  make(map[string]model.Panel, len(doc.Panels)),
		windows: make(map[string]model.TimeWindow, len(doc.TimeWindows)),
		rules:   make(map[string]model.LocationRule, len(doc.LocationRules)),
	}
	for id, p := range doc.Panels {
		p.ID = id
		reg.panels[id] = clonePanel(p)
		reg.ids = append(reg.ids, id)
	}
	sort.Strings(reg.ids)
	for name, w := range doc.TimeWindows {
		w.Days = append([]string(nil), w.Days...)
		reg.windows[name] = w
	}
	for name, r := range doc.LocationRules {
		reg.rules[name] = model.LocationRule{
			Networks:         append([]string(nil), r.Networks...),
			RequireSecure:    r.RequireSecure,
			AllowedCountries: append([]string(nil), r.AllowedCountries...),
			DeniedCountries:  append([]string(nil), r.DeniedCountries...),
		}
	}
	return reg, nil
}

// Validate reports every problem in doc at once.
func Validate(doc Document) error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if doc.Version == "" {
		add("version is required")
	}
	if len(doc.Panels) == 0 {
		add("at least one panel is required")
	}
	for name, w := range doc.TimeWindows {
		if err := condition.ValidateWindow(w); err != nil {
			add("time window %q: %v", name, err)
		}
	}

	for id, p := range doc.Panels {
		if !ValidResourceID(id) {
			add("panel %q: invalid id", id)
		}
		if !p.Sensitivity.IsValid() {
			add("panel %q: invalid sensitivity %q", id, p.Sensitivity)
		}
		if !p.Category.IsValid() {
			add("panel %q: invalid category %q", id, p.Category)
		}
		if len(p.Actions) == 0 {
			add("panel %q: no actions", id)
		}
		for action, cfg := range p.Actions {
			where := fmt.Sprintf("panel %q action %q", id, action)
			if !action.IsValid() {
				add("%s: unknown action type", where)
			}
			for _, role := range append(append([]string(nil), cfg.AllowedRoles...), cfg.DeniedRoles...) {
				if role == "" {
					add("%s: empty role", where)
				}
			}
			if cfg.RiskThreshold != nil && !inUnitRange(*cfg.RiskThreshold) {
				add("%s: risk threshold %v outside [0,1]", where, *cfg.RiskThreshold)
			}
			if rl := cfg.RateLimit; rl != nil && (rl.MaxRequests <= 0 || rl.Window <= 0) {
				add("%s: rate limit must be positive", where)
			}
			for i, c := range cfg.Conditions {
				if err := validateCondition(doc, c); err != nil {
					add("%s condition %d: %v", where, i, err)
				}
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", echo_errors.ErrInvalidMatrix, errors.Join(problems...))
}

func validateCondition(doc Document, c model.Condition) error {
	switch c.Type {
	case model.ConditionTime:
		if _, ok := doc.TimeWindows[c.Window]; !ok {
			return fmt.Errorf("undefined time window %q", c.Window)
		}
	case model.ConditionLocation:
		if _, ok := doc.LocationRules[c.Rule]; !ok {
			return fmt.Errorf("undefined location rule %q", c.Rule)
		}
	case model.ConditionRisk:
		if !inUnitRange(c.Threshold) {
			return fmt.Errorf("threshold %v outside [0,1]", c.Threshold)
		}
	case model.ConditionMFA:
		if c.Level != model.MFALevelBasic && c.Level != model.MFALevelBiometric {
			return fmt.Errorf("unknown mfa level %q", c.Level)
		}
	case model.ConditionApproval:
		if c.MinApprovals < 0 {
			return fmt.Errorf("negative minApprovals")
		}
	case model.ConditionDevice:
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func (r *Registry) Version() string {
	return r.version
}

// GetActionConfig resolves the config for one panel action. It never
// falls back to a permissive default.
func (r *Registry) GetActionConfig(resourceID string, action model.ActionType) (model.PermissionActionConfig, error) {
	p, ok := r.panels[resourceID]
	if !ok {
		return model.PermissionActionConfig{}, fmt.Errorf("panel %q: %w", resourceID, echo_errors.ErrResourceNotRecognized)
	}
	cfg, ok := p.Actions[action]
	if !ok {
		return model.PermissionActionConfig{}, fmt.Errorf("panel %q action %q: %w", resourceID, action, echo_errors.ErrActionNotSupported)
	}
	return cloneActionConfig(cfg), nil
}

func (r *Registry) Panel(id string) (model.Panel, bool) {
	p, ok := r.panels[id]
	if !ok {
		return model.Panel{}, false
	}
	return clonePanel(p), true
}

// Panels returns a copy of every panel sorted by id.
func (r *Registry) Panels() []model.Panel {
	out := make([]model.Panel, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, clonePanel(r.panels[id]))
	}
	return out
}

// TimeWindows is shared with callers and must be treated as read-only.
func (r *Registry) TimeWindows() map[string]model.TimeWindow {
	return r.windows
}

// LocationRules is shared with callers and must be treated as read-only.
func (r *Registry) LocationRules() map[string]model.LocationRule {
	return r.rules
}

func clonePanel(p model.Panel) model.Panel {
	out := p
	out.Actions = make(map[model.ActionType]model.PermissionActionConfig, len(p.Actions))
	for a, cfg := range p.Actions {
		out.Actions[a] = cloneActionConfig(cfg)
	}
	return out
}

func cloneActionConfig(cfg model.PermissionActionConfig) model.PermissionActionConfig {
	out := cfg
	out.AllowedRoles = append([]string(nil), cfg.AllowedRoles...)
	out.DeniedRoles = append([]string(nil), cfg.DeniedRoles...)
	out.Conditions = append([]model.Condition(nil), cfg.Conditions...)
	if cfg.Fields != nil {
		f := model.FieldVisibility{
			Allowed: append([]string(nil), cfg.Fields.Allowed...),
			Denied:  append([]string(nil), cfg.Fields.Denied...),
			Masked:  append([]string(nil), cfg.Fields.Masked...),
		}
		out.Fields = &f
	}
	if cfg.RateLimit != nil {
		rl := *cfg.RateLimit
		out.RateLimit = &rl
	}
	if cfg.RiskThreshold != nil {
		t := *cfg.RiskThreshold
		out.RiskThreshold = &t
	}
	return out
}
