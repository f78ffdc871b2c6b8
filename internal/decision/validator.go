// Package decision re-checks oracle output against hard constraints and
// commits to the result. The oracle is untrusted input; nothing it says may
// move funds until the numbers are re-derived here.
package decision

import (
	"fmt"
	"time"

	"github.com/gethsun1/autonomous-procurement-agent/internal/oracle"
	"github.com/gethsun1/autonomous-procurement-agent/pkg/canonhash"
)

// Constraints are the hard limits captured at request time.
type Constraints struct {
	MaxBudget       float64 `json:"maxBudget"`
	MinQualityScore float64 `json:"minQualityScore"`
	PreferredSLA    float64 `json:"preferredSLA"`
}

// ValidationResult carries the selection and its commitment hash.
type ValidationResult struct {
	IsValid        bool                `json:"isValid"`
	SelectedVendor *oracle.VendorScore `json:"selectedVendor"`
	Violations     []string            `json:"violations"`
	DecisionHash   string              `json:"decisionHash"`
}

// Validator selects the best constraint-satisfying vendor from a ranked
// score list and produces a tamper-evident commitment over the decision.
type Validator struct {
	Now func() time.Time // test override; defaults to time.Now
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now().UTC()
}

// Validate filters scores on the already-authoritative meetsConstraints
// flag plus an intentional re-check of the quality floor, then selects the
// first survivor of the ranked input order. No survivor means isValid=false
// with one violation per excluded vendor; there is nothing to retry.
func (v *Validator) Validate(scores []oracle.VendorScore, constraints Constraints) ValidationResult {
	var violations []string
	var selected *oracle.VendorScore

	for i := range scores {
		s := scores[i]
		if !s.MeetsConstraints {
			violations = append(violations, fmt.Sprintf("%s does not meet basic constraints", s.VendorName))
			continue
		}
		if s.QualityScore < constraints.MinQualityScore {
			violations = append(violations, fmt.Sprintf("%s quality score %g < required %g", s.VendorName, s.QualityScore, constraints.MinQualityScore))
			continue
		}
		if selected == nil {
			chosen := s
			selected = &chosen
		}
	}

	return ValidationResult{
		IsValid:        selected != nil,
		SelectedVendor: selected,
		Violations:     violations,
		DecisionHash:   v.decisionHash(selected, scores, constraints),
	}
}

type scoreDigest struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type decisionPayload struct {
	SelectedVendorID string        `json:"selectedVendorId"`
	Timestamp        string        `json:"timestamp"`
	Constraints      Constraints   `json:"constraints"`
	TopThreeScores   []scoreDigest `json:"topThreeScores"`
}

// decisionHash binds the selection to the constraints and the top of the
// ranked score list at decision time. Same inputs at the same instant,
// same hash: it is a commitment, not a secret.
func (v *Validator) decisionHash(selected *oracle.VendorScore, scores []oracle.VendorScore, constraints Constraints) string {
	payload := decisionPayload{
		SelectedVendorID: "none",
		Timestamp:        v.now().Format(time.RFC3339Nano),
		Constraints:      constraints,
	}
	if selected != nil {
		payload.SelectedVendorID = selected.VendorID
	}
	for i := 0; i < len(scores) && i < 3; i++ {
		payload.TopThreeScores = append(payload.TopThreeScores, scoreDigest{
			ID:    scores[i].VendorID,
			Score: scores[i].TotalScore,
		})
	}

	hash, err := canonhash.Hex("0x", payload)
	if err != nil {
		// The payload is plain structs; Marshal cannot fail on it.
		panic(err)
	}
	return hash
}

// VerifyDecision is the last-mile guard before funds move: a proposed
// payment amount may never exceed the committed budget.
func VerifyDecision(vendorID string, amount float64, constraints Constraints) bool {
	return amount <= constraints.MaxBudget
}
