package oracle

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
)

// ParseError tags an oracle response as malformed and preserves the raw
// text for diagnostics. It is a distinct outcome, not a transport failure.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("malformed oracle response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// extractJSON pulls the outermost {...} block out of the response text.
// Models routinely wrap JSON in markdown fences or prose.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseScores validates the oracle output against the catalog and criteria.
// A score referencing an unknown vendor fails the whole response. Numeric
// fields coerce leniently (unparseable becomes 0), but meetsConstraints is
// recomputed from catalog price and the quality threshold regardless of
// what the oracle claimed.
func parseScores(text string, vendors []catalog.Vendor, criteria Criteria) ([]VendorScore, *ParseError) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, &ParseError{Raw: text, Err: fmt.Errorf("no JSON object found")}
	}

	var payload struct {
		Vendors []map[string]any `json:"vendors"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if len(payload.Vendors) == 0 {
		return nil, &ParseError{Raw: text, Err: fmt.Errorf("vendors array missing or empty")}
	}

	byID := make(map[string]catalog.Vendor, len(vendors))
	for _, v := range vendors {
		byID[v.ID] = v
	}

	scores := make([]VendorScore, 0, len(payload.Vendors))
	for _, entry := range payload.Vendors {
		id := asString(entry["vendorId"])
		vendor, ok := byID[id]
		if !ok {
			return nil, &ParseError{Raw: text, Err: fmt.Errorf("vendor %q not in catalog", id)}
		}

		s := VendorScore{
			VendorID:     id,
			VendorName:   asString(entry["vendorName"]),
			CostScore:    asFloat(entry["costScore"]),
			QualityScore: asFloat(entry["qualityScore"]),
			SLAScore:     asFloat(entry["slaScore"]),
			TotalScore:   asFloat(entry["totalScore"]),
			Reasoning:    asString(entry["reasoning"]),
		}
		if s.VendorName == "" {
			s.VendorName = vendor.Name
		}
		if s.Reasoning == "" {
			s.Reasoning = "No reasoning provided"
		}

		cost := ProratedCost(vendor.PricePerMonth, criteria.DurationDays)
		s.MeetsConstraints = cost <= criteria.MaxBudget && s.QualityScore >= criteria.MinQualityScore

		scores = append(scores, s)
	}

	// Ranking contract: non-increasing by total score, catalog-order ties.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})
	return scores, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
