package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

// UserSignals are the actor facts consumed by UserRisk.
type UserSignals struct {
	MFAVerified       bool
	BiometricVerified bool
	HasBaseline       bool
	DeviceTrusted     bool
	LocationAnomalous bool
}

// ContextSignals are the request facts consumed by ContextualRisk.
type ContextSignals struct {
	RecentIdenticalActions int
	Anomalies              []string
	LocalTime              time.Time
}

// BusinessHours is the [Start, End) hour range of a regular working day.
type BusinessHours struct {
	Start int
	End   int
}

// DefaultBusinessHours is 09:00 to 18:00.
var DefaultBusinessHours = BusinessHours{Start: 9, End: 18}

func (b BusinessHours) contains(t time.Time) bool {
	h := t.Hour()
	return h >= b.Start && h < b.End
}

// UserRisk penalizes missing verification, missing behavioural baseline,
// untrusted devices and anomalous locations.
func UserRisk(in UserSignals) pdp_model.RiskFactor {
	score := 0.0
	var notes []string

	switch {
	case !in.MFAVerified && !in.BiometricVerified:
		score += 0.35
		notes = append(notes, "no mfa or biometric verification")
	case !in.BiometricVerified:
		score += 0.10
		notes = append(notes, "no biometric verification")
	}
	if !in.HasBaseline {
		score += 0.20
		notes = append(notes, "no behavioural baseline")
	}
	if !in.DeviceTrusted {
		score += 0.25
		notes = append(notes, "untrusted device")
	}
	if in.LocationAnomalous {
		score += 0.20
		notes = append(notes, "anomalous location")
	}

	return newFactor(pdp_model.FactorUser, score, notes, "verified actor on trusted device")
}

var actionBase = map[model.ActionType]float64{
	model.ActionDelete: 0.6,
	model.ActionAdmin:  0.5,
	model.ActionManage: 0.4,
	model.ActionCreate: 0.4,
	model.ActionUpdate: 0.4,
	model.ActionExport: 0.3,
	model.ActionView:   0.1,
}

var actionCategorySurcharge = map[model.Category]float64{
	model.CategoryFinancial: 0.20,
	model.CategorySecurity:  0.25,
	model.CategoryUserData:  0.15,
}

// ActionRisk scores the destructiveness of the action plus a surcharge
// for the category of the target panel.
func ActionRisk(actionType model.ActionType, category model.Category) pdp_model.RiskFactor {
	base, ok := actionBase[actionType]
	if !ok {
		base = 0.7
	}
	surcharge, ok := actionCategorySurcharge[category]
	if !ok {
		surcharge = 0.05
	}
	desc := fmt.Sprintf("%s on %s panel", actionType, category)
	return newFactor(pdp_model.FactorAction, base+surcharge, []string{desc}, desc)
}

var sensitivityBase = map[model.Sensitivity]float64{
	model.SensitivityLow:      0.10,
	model.SensitivityMedium:   0.30,
	model.SensitivityHigh:     0.60,
	model.SensitivityCritical: 0.85,
}

var resourceCategorySurcharge = map[model.Category]float64{
	model.CategoryFinancial: 0.10,
	model.CategorySecurity:  0.15,
	model.CategoryUserData:  0.05,
}

// ResourceRisk depends only on the panel's declared tier and category.
func ResourceRisk(sensitivity model.Sensitivity, category model.Category) pdp_model.RiskFactor {
	base, ok := sensitivityBase[sensitivity]
	if !ok {
		base = sensitivityBase[model.SensitivityCritical]
	}
	desc := fmt.Sprintf("%s sensitivity %s panel", sensitivity, category)
	return newFactor(pdp_model.FactorResource, base+resourceCategorySurcharge[category], []string{desc}, desc)
}

// ContextualRisk penalizes bursts of identical actions, known anomalous
// behaviour and off-hours activity.
func ContextualRisk(in ContextSignals) pdp_model.RiskFactor {
	score := 0.0
	var notes []string

	switch {
	case in.RecentIdenticalActions >= 10:
		score += 0.4
		notes = append(notes, fmt.Sprintf("burst of %d identical actions", in.RecentIdenticalActions))
	case in.RecentIdenticalActions >= 5:
		score += 0.2
		notes = append(notes, fmt.Sprintf("%d repeated actions", in.RecentIdenticalActions))
	}
	for _, a := range in.Anomalies {
		score += 0.2
		notes = append(notes, "anomalous pattern "+a)
	}
	if in.LocalTime.IsZero() || in.LocalTime.Hour() < 7 || in.LocalTime.Hour() >= 20 {
		score += 0.15
		notes = append(notes, "off-hours activity")
	}

	return newFactor(pdp_model.FactorContextual, score, notes, "normal request context")
}

// TimeRisk penalizes non-business hours, weekends and holidays.
func TimeRisk(local time.Time, hours BusinessHours, holiday bool) pdp_model.RiskFactor {
	if local.IsZero() {
		return newFactor(pdp_model.FactorTime, 1, []string{"request time unknown"}, "")
	}

	score := 0.0
	var notes []string
	if !hours.contains(local) {
		score += 0.4
		notes = append(notes, "outside business hours")
		if h := local.Hour(); h >= 22 || h < 6 {
			score += 0.1
			notes = append(notes, "night access")
		}
	}
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		score += 0.3
		notes = append(notes, "weekend")
	}
	if holiday {
		score += 0.3
		notes = append(notes, "holiday")
	}

	return newFactor(pdp_model.FactorTime, score, notes, "business hours on a working day")
}

// LocationRisk penalizes missing location data, high-risk locations,
// low positional accuracy and untrusted networks.
func LocationRisk(loc *model.Location, highRisk bool) pdp_model.RiskFactor {
	if loc == nil {
		return newFactor(pdp_model.FactorLocation, 0.7, []string{"location unavailable"}, "")
	}

	score := 0.0
	var notes []string
	if highRisk {
		score += 0.5
		notes = append(notes, "high-risk location")
	}
	switch {
	case loc.AccuracyMeters <= 0:
		score += 0.2
		notes = append(notes, "location accuracy unknown")
	case loc.AccuracyMeters > 1000:
		score += 0.2
		notes = append(notes, "low location accuracy")
	case loc.AccuracyMeters > 100:
		score += 0.1
		notes = append(notes, "reduced location accuracy")
	}
	if loc.Network == "" || loc.Network == model.NetworkPublic {
		score += 0.15
		notes = append(notes, "untrusted network")
	}

	return newFactor(pdp_model.FactorLocation, score, notes, "trusted location")
}

func newFactor(kind pdp_model.RiskFactorType, score float64, notes []string, fallback string) pdp_model.RiskFactor {
	score = Clamp(score)
	desc := fallback
	if len(notes) > 0 {
		desc = strings.Join(notes, "; ")
	}
	return pdp_model.RiskFactor{
		Type:        kind,
		Score:       score,
		Description: desc,
		Severity:    Classify(score),
	}
}

// Clamp bounds a score to [0,1]. NaN is treated as maximum risk.
func Clamp(score float64) float64 {
	switch {
	case score != score:
		return 1
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

// Classify maps a score to its level: low < 0.3 <= medium < 0.6 <= high < 0.8 <= critical.
func Classify(score float64) model.RiskLevel {
	switch {
	case score >= 0.8:
		return model.RiskCritical
	case score >= 0.6:
		return model.RiskHigh
	case score >= 0.3:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
