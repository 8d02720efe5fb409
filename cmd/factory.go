package cmd

import (
	"fmt"
	"time"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/config"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/engine"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/risk"
)

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("engine timezone %q: %w", name, err)
	}
	return loc, nil
}

// newAggregator builds the risk model from the risk section of the config.
func newAggregator(cfg config.RiskConfiguration, loc *time.Location) (*risk.Aggregator, error) {
	weights := risk.Weights{
		Version:    cfg.Weights.Version,
		User:       cfg.Weights.User,
		Action:     cfg.Weights.Action,
		Resource:   cfg.Weights.Resource,
		Contextual: cfg.Weights.Contextual,
		Time:       cfg.Weights.Time,
		Location:   cfg.Weights.Location,
	}
	return risk.NewAggregator(weights,
		risk.WithBusinessHours(risk.BusinessHours{Start: cfg.BusinessHoursStart, End: cfg.BusinessHoursEnd}),
		risk.WithTimezone(loc),
		risk.WithHolidays(risk.NewHolidayCalendar(cfg.Holidays)),
		risk.WithLocationProvider(risk.NewStaticLocationRisk(cfg.HighRiskCountries)),
		risk.WithBehaviorProvider(risk.NewStaticBehavior(cfg.BaselineActors, cfg.FlaggedActors)),
	)
}

func engineConfig(cfg config.EngineConfiguration, loc *time.Location) engine.Config {
	return engine.Config{
		CacheTTL:             cfg.CacheTTL,
		CacheMaxEntries:      cfg.CacheMaxEntries,
		DefaultRiskThreshold: cfg.DefaultRiskThreshold,
		RoleRiskThresholds:   cfg.RoleRiskThresholds,
		Location:             loc,
	}
}
