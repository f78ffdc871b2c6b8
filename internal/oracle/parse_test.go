package oracle

import (
	"errors"
	"strings"
	"testing"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
)

var testCriteria = Criteria{
	MaxBudget:       500,
	MinQualityScore: 7,
	PreferredSLA:    99,
	DurationDays:    30,
}

func TestParseScores_MarkdownWrappedJSON(t *testing.T) {
	text := "Here is my evaluation:\n```json\n" + `{
  "vendors": [
    {"vendorId": "vendor_1", "vendorName": "ChainMetrics Pro", "costScore": 6, "qualityScore": 9, "slaScore": 9.9, "totalScore": 8.2, "reasoning": "solid", "meetsConstraints": true},
    {"vendorId": "vendor_4", "vendorName": "OmniChain Analytics", "costScore": 2, "qualityScore": 9.8, "slaScore": 10, "totalScore": 6.7, "reasoning": "premium", "meetsConstraints": true}
  ]
}` + "\n```\nLet me know if you need more."

	scores, perr := parseScores(text, catalog.All(), testCriteria)
	if perr != nil {
		t.Fatalf("parseScores: %v", perr)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].VendorID != "vendor_1" {
		t.Fatalf("expected vendor_1 ranked first, got %s", scores[0].VendorID)
	}
}

func TestParseScores_OverridesMeetsConstraints(t *testing.T) {
	// The oracle lies in both directions: vendor_4 is over budget but
	// claimed eligible; vendor_2 is eligible but claimed not.
	text := `{"vendors": [
		{"vendorId": "vendor_4", "qualityScore": 9.8, "totalScore": 9, "meetsConstraints": true},
		{"vendorId": "vendor_2", "qualityScore": 8.8, "totalScore": 8, "meetsConstraints": false}
	]}`

	scores, perr := parseScores(text, catalog.All(), testCriteria)
	if perr != nil {
		t.Fatalf("parseScores: %v", perr)
	}
	for _, s := range scores {
		switch s.VendorID {
		case "vendor_4":
			if s.MeetsConstraints {
				t.Error("vendor_4 exceeds budget, must not meet constraints")
			}
		case "vendor_2":
			if !s.MeetsConstraints {
				t.Error("vendor_2 is within budget and quality, must meet constraints")
			}
		}
	}
}

func TestParseScores_CoercesNumericFields(t *testing.T) {
	text := `{"vendors": [
		{"vendorId": "vendor_1", "costScore": "6.5", "qualityScore": "not-a-number", "slaScore": null, "totalScore": 7}
	]}`

	scores, perr := parseScores(text, catalog.All(), testCriteria)
	if perr != nil {
		t.Fatalf("parseScores: %v", perr)
	}
	s := scores[0]
	if s.CostScore != 6.5 {
		t.Errorf("costScore string should coerce to 6.5, got %v", s.CostScore)
	}
	if s.QualityScore != 0 || s.SLAScore != 0 {
		t.Errorf("unparseable fields should default to 0, got q=%v sla=%v", s.QualityScore, s.SLAScore)
	}
	if s.VendorName != "ChainMetrics Pro" {
		t.Errorf("missing vendorName should fall back to catalog name, got %q", s.VendorName)
	}
	if s.Reasoning != "No reasoning provided" {
		t.Errorf("missing reasoning should get default, got %q", s.Reasoning)
	}
	if s.MeetsConstraints {
		t.Error("quality 0 is below threshold, must not meet constraints")
	}
}

func TestParseScores_UnknownVendorFails(t *testing.T) {
	text := `{"vendors": [{"vendorId": "vendor_99", "totalScore": 9}]}`
	_, perr := parseScores(text, catalog.All(), testCriteria)
	if perr == nil {
		t.Fatal("expected ParseError for unknown vendor")
	}
	if !strings.Contains(perr.Error(), "vendor_99") {
		t.Errorf("error should name the vendor: %v", perr)
	}
	if perr.Raw != text {
		t.Error("ParseError should preserve the raw response")
	}
}

func TestParseScores_NoJSON(t *testing.T) {
	_, perr := parseScores("I cannot evaluate these vendors.", catalog.All(), testCriteria)
	if perr == nil {
		t.Fatal("expected ParseError when no JSON present")
	}
	var asErr *ParseError
	if !errors.As(error(perr), &asErr) {
		t.Fatal("ParseError should satisfy errors.As")
	}
}

func TestParseScores_SortsDescending(t *testing.T) {
	text := `{"vendors": [
		{"vendorId": "vendor_5", "totalScore": 4},
		{"vendorId": "vendor_1", "totalScore": 9},
		{"vendorId": "vendor_3", "totalScore": 7}
	]}`
	scores, perr := parseScores(text, catalog.All(), testCriteria)
	if perr != nil {
		t.Fatalf("parseScores: %v", perr)
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].TotalScore > scores[i-1].TotalScore {
			t.Fatalf("ranking not non-increasing at %d: %v > %v", i, scores[i].TotalScore, scores[i-1].TotalScore)
		}
	}
	if scores[0].VendorID != "vendor_1" {
		t.Errorf("vendor_1 should rank first, got %s", scores[0].VendorID)
	}
}
