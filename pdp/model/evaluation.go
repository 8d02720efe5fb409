package model

import "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/model"

// RiskFactorType names one of the six risk calculators.
type RiskFactorType string

const (
	FactorUser       RiskFactorType = "user"
	FactorAction     RiskFactorType = "action"
	FactorResource   RiskFactorType = "resource"
	FactorContextual RiskFactorType = "contextual"
	FactorTime       RiskFactorType = "time"
	FactorLocation   RiskFactorType = "location"
)

// RiskFactor is the bounded contribution of one calculator.
type RiskFactor struct {
	Type        RiskFactorType  `json:"type"`
	Score       float64         `json:"score"`
	Description string          `json:"description"`
	Severity    model.RiskLevel `json:"severity"`
}

// RiskScore is the weighted composite of all six factors.
type RiskScore struct {
	TotalScore     float64         `json:"total_score"`
	Factors        []RiskFactor    `json:"factors"`
	Level          model.RiskLevel `json:"level"`
	WeightsVersion string          `json:"weights_version"`
}

func (r *RiskScore) clone() *RiskScore {
	if r == nil {
		return nil
	}
	out := *r
	out.Factors = append([]RiskFactor(nil), r.Factors...)
	return &out
}

// ConditionResult is the outcome of one policy condition.
type ConditionResult struct {
	Type       model.ConditionType `json:"type"`
	Expression string              `json:"expression"`
	Passed     bool                `json:"passed"`
	Reason     string              `json:"reason,omitempty"`
}
