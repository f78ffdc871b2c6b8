package oracle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
)

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) {
	return s.text, s.err
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluate_RemoteSuccess(t *testing.T) {
	e := &Evaluator{
		Client: stubGenerator{text: `{"vendors": [
			{"vendorId": "vendor_2", "qualityScore": 8.8, "totalScore": 8.5, "reasoning": "good value"},
			{"vendorId": "vendor_1", "qualityScore": 9.2, "totalScore": 8.1}
		]}`},
		OnFailure: FailHard,
		Now:       func() time.Time { return fixedTime },
	}

	res, err := e.Evaluate(context.Background(), "analytics API", catalog.All(), testCriteria)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.RankedVendors) != 2 {
		t.Fatalf("expected 2 ranked vendors, got %d", len(res.RankedVendors))
	}
	if res.RankedVendors[0].VendorID != "vendor_2" {
		t.Errorf("vendor_2 should rank first")
	}
	if !res.Timestamp.Equal(fixedTime) {
		t.Errorf("timestamp should come from clock override")
	}
	want := "Recommended: BlockInsight API (Score: 8.5/10). good value"
	if res.Recommendation != want {
		t.Errorf("recommendation = %q, want %q", res.Recommendation, want)
	}
}

func TestEvaluate_TransportFailureHard(t *testing.T) {
	e := &Evaluator{
		Client:    stubGenerator{err: fmt.Errorf("connection refused")},
		OnFailure: FailHard,
	}

	_, err := e.Evaluate(context.Background(), "analytics API", catalog.All(), testCriteria)
	var oerr *Error
	if !errors.As(err, &oerr) {
		t.Fatalf("expected *oracle.Error, got %v", err)
	}
}

func TestEvaluate_TransportFailureFallback(t *testing.T) {
	e := &Evaluator{
		Client:    stubGenerator{err: fmt.Errorf("connection refused")},
		OnFailure: FallBack,
	}

	res, err := e.Evaluate(context.Background(), "analytics API", catalog.All(), testCriteria)
	if err != nil {
		t.Fatalf("fallback mode should absorb transport failures: %v", err)
	}
	if len(res.RankedVendors) != 5 {
		t.Fatalf("local scorer should rank all 5 vendors, got %d", len(res.RankedVendors))
	}
	if res.RankedVendors[0].VendorID != "vendor_2" {
		t.Errorf("deterministic local ranking should lead with vendor_2")
	}
}

func TestEvaluate_MalformedResponseHard(t *testing.T) {
	e := &Evaluator{
		Client:    stubGenerator{text: "sorry, I can't do that"},
		OnFailure: FailHard,
	}

	_, err := e.Evaluate(context.Background(), "analytics API", catalog.All(), testCriteria)
	var oerr *Error
	if !errors.As(err, &oerr) {
		t.Fatalf("expected *oracle.Error, got %v", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatal("oracle.Error should wrap the ParseError")
	}
}

func TestEvaluate_MalformedResponseFallback(t *testing.T) {
	e := &Evaluator{
		Client:    stubGenerator{text: "not json at all"},
		OnFailure: FallBack,
	}

	res, err := e.Evaluate(context.Background(), "analytics API", catalog.All(), testCriteria)
	if err != nil {
		t.Fatalf("fallback mode should absorb parse failures: %v", err)
	}
	if len(res.RankedVendors) != 5 {
		t.Fatalf("expected local scores for all vendors, got %d", len(res.RankedVendors))
	}
}

func TestEvaluate_NoClientUsesLocalScorer(t *testing.T) {
	e := &Evaluator{Now: func() time.Time { return fixedTime }}

	res, err := e.Evaluate(context.Background(), "analytics API", catalog.All(), testCriteria)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.RankedVendors) != 5 {
		t.Fatalf("expected 5 vendors, got %d", len(res.RankedVendors))
	}
	again, _ := e.Evaluate(context.Background(), "analytics API", catalog.All(), testCriteria)
	for i := range res.RankedVendors {
		if res.RankedVendors[i] != again.RankedVendors[i] {
			t.Fatal("local scorer must be deterministic")
		}
	}
}
