package oracle

import (
	"fmt"
	"math"
	"sort"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
)

// localScores is the deterministic fallback scorer. It applies the same
// weighting the oracle is instructed to use, computed directly from catalog
// attributes: reputation stands in for quality, cheaper within budget
// scores higher, SLA maps linearly onto 0-10.
func localScores(vendors []catalog.Vendor, criteria Criteria) []VendorScore {
	scores := make([]VendorScore, 0, len(vendors))
	for _, v := range vendors {
		cost := ProratedCost(v.PricePerMonth, criteria.DurationDays)

		costScore := 0.0
		if cost <= criteria.MaxBudget && criteria.MaxBudget > 0 {
			costScore = 10 - (cost/criteria.MaxBudget)*5
		}
		qualityScore := v.ReputationScore
		slaScore := v.SLA / 100 * 10
		totalScore := costScore*WeightCost + qualityScore*WeightQuality + slaScore*WeightSLA

		meets := cost <= criteria.MaxBudget && qualityScore >= criteria.MinQualityScore

		var reasoning string
		switch {
		case meets:
			reasoning = fmt.Sprintf("Strong performer with %g%% uptime and %d enterprise features. Fits within budget at $%g/month.",
				v.SLA, len(v.Features), v.PricePerMonth)
		case cost > criteria.MaxBudget:
			reasoning = fmt.Sprintf("Exceeds budget constraint ($%g > $%g)", cost, criteria.MaxBudget)
		default:
			reasoning = fmt.Sprintf("Quality score %g below minimum threshold %g", qualityScore, criteria.MinQualityScore)
		}

		scores = append(scores, VendorScore{
			VendorID:         v.ID,
			VendorName:       v.Name,
			CostScore:        round2(costScore),
			QualityScore:     round2(qualityScore),
			SLAScore:         round2(slaScore),
			TotalScore:       round2(totalScore),
			Reasoning:        reasoning,
			MeetsConstraints: meets,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})
	return scores
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
