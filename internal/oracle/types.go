// Package oracle scores catalog vendors against a procurement brief. The
// primary path asks a remote generative model; a deterministic local scorer
// covers the case where the model is unreachable or returns garbage. The
// model's opinion about constraint satisfaction is never trusted: the
// meetsConstraints flag is always recomputed from catalog data.
package oracle

import (
	"fmt"
	"time"
)

// Criteria are the hard numeric constraints disclosed to the oracle.
type Criteria struct {
	MaxBudget       float64 `json:"maxBudget"`
	MinQualityScore float64 `json:"minQualityScore"`
	PreferredSLA    float64 `json:"preferredSLA"`
	DurationDays    int     `json:"durationDays"`
}

// VendorScore is one vendor's normalized evaluation. All scores are 0-10.
type VendorScore struct {
	VendorID         string  `json:"vendorId"`
	VendorName       string  `json:"vendorName"`
	CostScore        float64 `json:"costScore"`
	QualityScore     float64 `json:"qualityScore"`
	SLAScore         float64 `json:"slaScore"`
	TotalScore       float64 `json:"totalScore"`
	Reasoning        string  `json:"reasoning"`
	MeetsConstraints bool    `json:"meetsConstraints"`
}

// EvaluationResult ranks vendors non-increasing by TotalScore. The order is
// a contract: downstream selection takes the first qualifying entry.
type EvaluationResult struct {
	RankedVendors  []VendorScore `json:"rankedVendors"`
	Recommendation string        `json:"recommendation"`
	Timestamp      time.Time     `json:"timestamp"`
}

// Scoring weights disclosed to the oracle and used by the local scorer.
const (
	WeightCost    = 0.40
	WeightQuality = 0.35
	WeightSLA     = 0.25
)

// ProratedCost is the single duration-cost formula used everywhere an
// on-ledger amount is derived: pricePerMonth * durationDays / 30.
func ProratedCost(pricePerMonth float64, durationDays int) float64 {
	return pricePerMonth * float64(durationDays) / 30
}

const noVendorRecommendation = "No vendors meet the specified constraints. Consider adjusting budget or quality requirements."

// recommendation summarizes the first ranked vendor that satisfies the
// constraints. Absence of any qualifying vendor is a message, not an error.
func recommendation(scores []VendorScore) string {
	for _, s := range scores {
		if s.MeetsConstraints {
			return fmt.Sprintf("Recommended: %s (Score: %.1f/10). %s", s.VendorName, s.TotalScore, s.Reasoning)
		}
	}
	return noVendorRecommendation
}

// Error marks a failure of the remote scoring oracle (transport, timeout,
// or malformed output) when the evaluator runs in hard-fail mode.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "oracle: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
