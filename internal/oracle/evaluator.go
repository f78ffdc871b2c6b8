package oracle

import (
	"context"
	"log/slog"
	"time"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
)

// FailureMode picks what happens when the remote oracle is unusable.
type FailureMode string

const (
	// FailHard propagates an *Error and terminates the workflow.
	FailHard FailureMode = "fail"
	// FallBack silently substitutes the deterministic local scorer.
	FallBack FailureMode = "fallback"
)

// Generator is the remote model surface the evaluator depends on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Evaluator produces a ranked vendor evaluation for one brief.
type Evaluator struct {
	Client    Generator // nil disables the remote path entirely
	OnFailure FailureMode
	Logger    *slog.Logger
	Now       func() time.Time // test override; defaults to time.Now
}

func (e *Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

func (e *Evaluator) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Evaluate scores vendors for the brief under criteria. With no client
// configured it runs the local scorer directly. Remote failures follow
// OnFailure: FallBack substitutes local scores, FailHard returns *Error.
func (e *Evaluator) Evaluate(ctx context.Context, brief string, vendors []catalog.Vendor, criteria Criteria) (EvaluationResult, error) {
	if e.Client == nil {
		return e.result(localScores(vendors, criteria)), nil
	}

	text, err := e.Client.Generate(ctx, buildPrompt(brief, vendors, criteria))
	if err != nil {
		return e.failed(vendors, criteria, err)
	}

	scores, perr := parseScores(text, vendors, criteria)
	if perr != nil {
		return e.failed(vendors, criteria, perr)
	}
	return e.result(scores), nil
}

func (e *Evaluator) failed(vendors []catalog.Vendor, criteria Criteria, err error) (EvaluationResult, error) {
	if e.OnFailure == FallBack {
		e.logger().Warn("oracle unavailable, using local scorer", "error", err)
		return e.result(localScores(vendors, criteria)), nil
	}
	return EvaluationResult{}, &Error{Err: err}
}

func (e *Evaluator) result(scores []VendorScore) EvaluationResult {
	return EvaluationResult{
		RankedVendors:  scores,
		Recommendation: recommendation(scores),
		Timestamp:      e.now(),
	}
}
