package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	echo_errors "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/errors"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"
	pdp_model "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/model"
)

// Weights is a versioned weight table for the six factors.
type Weights struct {
	Version    string
	User       float64
	Action     float64
	Resource   float64
	Contextual float64
	Time       float64
	Location   float64
}

// DefaultWeights is the v1 weight table.
var DefaultWeights = Weights{
	Version:    "v1",
	User:       0.25,
	Action:     0.20,
	Resource:   0.20,
	Contextual: 0.15,
	Time:       0.10,
	Location:   0.10,
}

const weightTolerance = 1e-6

func (w Weights) Validate() error {
	if w.Version == "" {
		return fmt.Errorf("weights version is empty: %w", echo_errors.ErrInvalidWeights)
	}
	all := []float64{w.User, w.Action, w.Resource, w.Contextual, w.Time, w.Location}
	sum := 0.0
	for _, v := range all {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("negative weight in %s: %w", w.Version, echo_errors.ErrInvalidWeights)
		}
		sum += v
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("weights %s sum to %.6f: %w", w.Version, sum, echo_errors.ErrInvalidWeights)
	}
	return nil
}

func (w Weights) of(kind pdp_model.RiskFactorType) float64 {
	switch kind {
	case pdp_model.FactorUser:
		return w.User
	case pdp_model.FactorAction:
		return w.Action
	case pdp_model.FactorResource:
		return w.Resource
	case pdp_model.FactorContextual:
		return w.Contextual
	case pdp_model.FactorTime:
		return w.Time
	case pdp_model.FactorLocation:
		return w.Location
	default:
		return 0
	}
}

// Combine folds the factors into a composite score using w.
func (w Weights) Combine(factors []pdp_model.RiskFactor) pdp_model.RiskScore {
	total := 0.0
	for _, f := range factors {
		total += f.Score * w.of(f.Type)
	}
	total = Clamp(total)
	return pdp_model.RiskScore{
		TotalScore:     total,
		Factors:        append([]pdp_model.RiskFactor(nil), factors...),
		Level:          Classify(total),
		WeightsVersion: w.Version,
	}
}

// Input is everything needed to score one request.
type Input struct {
	Actor  *model.Actor
	Action model.Action
	Panel  model.Panel
	Now    time.Time
}

// Aggregator computes the composite risk score from the six calculators.
// It reads signals only through its providers.
type Aggregator struct {
	weights  Weights
	hours    BusinessHours
	location *time.Location
	holidays HolidayCalendar
	geo      LocationRiskProvider
	behavior BehaviorAnomalyProvider
}

type Option func(*Aggregator)

func WithBusinessHours(h BusinessHours) Option {
	return func(a *Aggregator) { a.hours = h }
}

func WithTimezone(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

func WithHolidays(h HolidayCalendar) Option {
	return func(a *Aggregator) { a.holidays = h }
}

func WithLocationProvider(p LocationRiskProvider) Option {
	return func(a *Aggregator) { a.geo = p }
}

func WithBehaviorProvider(p BehaviorAnomalyProvider) Option {
	return func(a *Aggregator) { a.behavior = p }
}

// NewAggregator validates the weights before accepting them.
func NewAggregator(w Weights, opts ...Option) (*Aggregator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	a := &Aggregator{
		weights:  w,
		hours:    DefaultBusinessHours,
		location: time.UTC,
		geo:      StaticLocationRisk{},
		behavior: StaticBehavior{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Aggregator) Weights() Weights {
	return a.weights
}

// Assess scores one request. Provider errors are folded into the score as
// risk-positive signals, so an error is only returned for unusable input.
func (a *Aggregator) Assess(ctx context.Context, in Input) (pdp_model.RiskScore, error) {
	if in.Actor == nil {
		return pdp_model.RiskScore{}, fmt.Errorf("risk input has no actor: %w", echo_errors.ErrRiskComputation)
	}
	if err := ctx.Err(); err != nil {
		return pdp_model.RiskScore{}, fmt.Errorf("risk assessment cancelled: %w", err)
	}

	local := in.Now.In(a.location)
	trust := in.Actor.Trust

	hasBaseline, err := a.behavior.HasBaseline(in.Actor.ID)
	if err != nil {
		logger.Warn("Behaviour baseline lookup failed", zap.String("actor", in.Actor.ID), zap.Error(err))
		hasBaseline = false
	}

	anomalies, err := a.behavior.Anomalies(in.Actor.ID, in.Action)
	if err != nil {
		logger.Warn("Anomaly lookup failed", zap.String("actor", in.Actor.ID), zap.Error(err))
		anomalies = append(anomalies, "anomaly provider unavailable")
	}

	highRisk := false
	if trust.Location != nil {
		highRisk, err = a.geo.IsHighRisk(*trust.Location)
		if err != nil {
			logger.Warn("Location risk lookup failed", zap.String("actor", in.Actor.ID), zap.Error(err))
			highRisk = true
		}
	}

	factors := []pdp_model.RiskFactor{
		UserRisk(UserSignals{
			MFAVerified:       trust.MFAVerified,
			BiometricVerified: trust.BiometricVerified,
			HasBaseline:       hasBaseline,
			DeviceTrusted:     trust.DeviceTrusted,
			LocationAnomalous: trust.Location == nil || highRisk,
		}),
		ActionRisk(in.Action.Type, in.Panel.Category),
		ResourceRisk(in.Panel.Sensitivity, in.Panel.Category),
		ContextualRisk(ContextSignals{
			RecentIdenticalActions: in.Action.RecentIdenticalActions(),
			Anomalies:              anomalies,
			LocalTime:              local,
		}),
		TimeRisk(local, a.hours, a.holidays.Contains(local)),
		LocationRisk(trust.Location, highRisk),
	}

	return a.weights.Combine(factors), nil
}
