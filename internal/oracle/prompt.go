package oracle

import (
	"fmt"
	"strings"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
)

// buildPrompt renders the structured evaluation request. The weighting and
// the JSON schema are disclosed so the response can be parsed mechanically.
func buildPrompt(brief string, vendors []catalog.Vendor, criteria Criteria) string {
	b := strings.Builder{}
	b.WriteString("You are an enterprise procurement analyst AI evaluating vendor proposals.\n\n")
	b.WriteString("PROCUREMENT REQUEST:\n")
	b.WriteString(fmt.Sprintf("%q\n\n", brief))
	b.WriteString("EVALUATION CRITERIA:\n")
	b.WriteString(fmt.Sprintf("- Maximum Budget: $%g (for %d days)\n", criteria.MaxBudget, criteria.DurationDays))
	b.WriteString(fmt.Sprintf("- Minimum Quality Score Required: %g/10\n", criteria.MinQualityScore))
	b.WriteString(fmt.Sprintf("- Preferred SLA: %g%% uptime\n\n", criteria.PreferredSLA))
	b.WriteString("AVAILABLE VENDORS:\n")
	for i, v := range vendors {
		b.WriteString(fmt.Sprintf("%d. %s (id: %s)\n", i+1, v.Name, v.ID))
		b.WriteString(fmt.Sprintf("   - Price: $%g/month\n", v.PricePerMonth))
		b.WriteString(fmt.Sprintf("   - SLA: %g%% uptime\n", v.SLA))
		b.WriteString(fmt.Sprintf("   - Reputation Score: %g/10\n", v.ReputationScore))
		b.WriteString(fmt.Sprintf("   - Features: %s\n", strings.Join(v.Features, ", ")))
		b.WriteString(fmt.Sprintf("   - Description: %s\n", v.Description))
	}
	b.WriteString(`
TASK:
Evaluate each vendor and provide a structured JSON response with the following format:

{
  "vendors": [
    {
      "vendorId": "vendor_1",
      "vendorName": "Vendor Name",
      "costScore": 0-10,
      "qualityScore": 0-10,
      "slaScore": 0-10,
      "totalScore": 0-10,
      "reasoning": "Brief explanation of scores",
      "meetsConstraints": true/false
    }
  ]
}

SCORING GUIDELINES:
1. Cost Score: Higher score for lower price within budget (0 if over budget)
2. Quality Score: Based on reputation, features, and service quality
3. SLA Score: Based on uptime guarantee relative to requirement
4. Total Score: Weighted average (40% cost, 35% quality, 25% SLA)
5. Meets Constraints: true only if under budget and meets minimum quality

IMPORTANT:
- A vendor that exceeds the maximum budget MUST have meetsConstraints = false
- Rank vendors by totalScore (highest first)
- Be objective and data-driven
- Provide concise reasoning for each vendor

Return ONLY the JSON object, no additional text.`)
	return b.String()
}
