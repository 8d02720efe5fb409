package risk

import (
	"strings"
	"time"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
)

// LocationRiskProvider reports whether a location is known to be high risk.
type LocationRiskProvider interface {
	IsHighRisk(loc model.Location) (bool, error)
}

// BehaviorAnomalyProvider exposes behavioural telemetry about an actor.
type BehaviorAnomalyProvider interface {
	HasBaseline(actorID string) (bool, error)
	Anomalies(actorID string, action model.Action) ([]string, error)
}

// StaticLocationRisk flags a fixed set of ISO country codes.
type StaticLocationRisk struct {
	Countries map[string]struct{}
}

func NewStaticLocationRisk(countries []string) StaticLocationRisk {
	set := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		set[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return StaticLocationRisk{Countries: set}
}

func (s StaticLocationRisk) IsHighRisk(loc model.Location) (bool, error) {
	_, flagged := s.Countries[strings.ToUpper(loc.Country)]
	return flagged, nil
}

// StaticBehavior serves baselines and anomaly flags from configuration.
type StaticBehavior struct {
	Baselines map[string]struct{}
	Flagged   map[string][]string
}

func NewStaticBehavior(baselineActors []string, flagged map[string][]string) StaticBehavior {
	set := make(map[string]struct{}, len(baselineActors))
	for _, id := range baselineActors {
		set[id] = struct{}{}
	}
	return StaticBehavior{Baselines: set, Flagged: flagged}
}

func (s StaticBehavior) HasBaseline(actorID string) (bool, error) {
	_, ok := s.Baselines[actorID]
	return ok, nil
}

func (s StaticBehavior) Anomalies(actorID string, _ model.Action) ([]string, error) {
	return append([]string(nil), s.Flagged[actorID]...), nil
}

// HolidayCalendar is a set of YYYY-MM-DD dates.
type HolidayCalendar map[string]struct{}

const dateLayout = "2006-01-02"

// NewHolidayCalendar ignores entries that are not valid dates.
func NewHolidayCalendar(dates []string) HolidayCalendar {
	cal := make(HolidayCalendar, len(dates))
	for _, d := range dates {
		if t, err := time.Parse(dateLayout, strings.TrimSpace(d)); err == nil {
			cal[t.Format(dateLayout)] = struct{}{}
		}
	}
	return cal
}

func (h HolidayCalendar) Contains(t time.Time) bool {
	if len(h) == 0 || t.IsZero() {
		return false
	}
	_, ok := h[t.Format(dateLayout)]
	return ok
}
