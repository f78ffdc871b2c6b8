package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
	"github.com/gethsun1/autonomous-procurement-agent/internal/decision"
	"github.com/gethsun1/autonomous-procurement-agent/internal/ledger"
	"github.com/gethsun1/autonomous-procurement-agent/internal/oracle"
	"github.com/gethsun1/autonomous-procurement-agent/internal/seal"
)

// payeeAddress stands in for per-vendor wallet addresses until the catalog
// carries real payment endpoints.
const payeeAddress = "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0"

// ErrExecuteInFlight means an execution for the workflow is already
// running in this process.
var ErrExecuteInFlight = errors.New("workflow execution already in progress")

// ErrAlreadyExecuted means the workflow left Initialized; re-running it
// would duplicate ledger submissions.
var ErrAlreadyExecuted = errors.New("workflow already executed")

// Orchestrator coordinates the autonomous procurement flow.
type Orchestrator struct {
	Store     Store
	Ledger    ledger.Ledger
	Evaluator *oracle.Evaluator
	Validator *decision.Validator
	Sealer    *seal.Sealer
	Logger    *slog.Logger

	mu      sync.Mutex
	running map[int64]struct{}
}

func New(store Store, led ledger.Ledger, eval *oracle.Evaluator, val *decision.Validator, sealer *seal.Sealer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Store:     store,
		Ledger:    led,
		Evaluator: eval,
		Validator: val,
		Sealer:    sealer,
		Logger:    logger,
		running:   make(map[int64]struct{}),
	}
}

func (o *Orchestrator) constraints(req ProcurementRequest) decision.Constraints {
	return decision.Constraints{
		MaxBudget:       req.MaxBudget,
		MinQualityScore: req.MinQualityScore,
		PreferredSLA:    req.PreferredSLA,
	}
}

// InitializeWorkflow seals the numeric constraints, anchors a new workflow
// on the ledger, and stores its record in Initialized. Nothing is stored
// when sealing or the ledger call fails.
func (o *Orchestrator) InitializeWorkflow(ctx context.Context, req ProcurementRequest) (int64, error) {
	sealed, err := o.Sealer.Seal(o.constraints(req))
	if err != nil {
		return 0, fmt.Errorf("seal constraints: %w", err)
	}

	workflowID, err := o.Ledger.CreateWorkflow(ctx, req.Brief, sealed)
	if err != nil {
		return 0, err
	}

	rec := Record{WorkflowID: workflowID, State: StateInitialized, Request: req}
	if err := o.Store.Put(ctx, rec); err != nil {
		return 0, err
	}

	o.Logger.Info("workflow initialized", "workflowId", workflowID, "brief", req.Brief)
	return workflowID, nil
}

// ExecuteFlow runs all six phases in strict sequence, awaiting each ledger
// confirmation before starting the next. Any phase failure moves the
// workflow to Error with the message recorded, and is returned to the
// caller. There is no retry and no rollback of completed phases.
func (o *Orchestrator) ExecuteFlow(ctx context.Context, workflowID int64) error {
	if err := o.acquire(ctx, workflowID); err != nil {
		return err
	}
	defer o.release(workflowID)

	phases := []func(context.Context, int64) error{
		o.discoveryPhase,
		o.evaluationPhase,
		o.selectionPhase,
		o.paymentPhase,
		o.settlementPhase,
		o.completionPhase,
	}
	for _, phase := range phases {
		if err := phase(ctx, workflowID); err != nil {
			o.fail(ctx, workflowID, err)
			return err
		}
	}

	o.Logger.Info("workflow completed", "workflowId", workflowID)
	return nil
}

// Status is a pure read of the workflow store.
func (o *Orchestrator) Status(ctx context.Context, workflowID int64) (Record, error) {
	return o.Store.Get(ctx, workflowID)
}

// acquire takes the per-workflow execution slot. A second execute on an
// in-flight or already-run workflow is an explicit error, never a
// duplicate ledger submission.
func (o *Orchestrator) acquire(ctx context.Context, workflowID int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.running[workflowID]; busy {
		return ErrExecuteInFlight
	}

	rec, err := o.Store.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if rec.State != StateInitialized {
		return fmt.Errorf("%w: workflow %d is %s", ErrAlreadyExecuted, workflowID, rec.State)
	}

	o.running[workflowID] = struct{}{}
	return nil
}

func (o *Orchestrator) release(workflowID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.running, workflowID)
}

// advance moves the record to next and applies the phase's field updates
// in one atomic store operation. Regressions are refused.
func (o *Orchestrator) advance(ctx context.Context, workflowID int64, next State, mutate func(*Record)) error {
	return o.Store.Update(ctx, workflowID, func(rec *Record) error {
		if !rec.State.CanAdvance(next) {
			return fmt.Errorf("illegal transition %s -> %s", rec.State, next)
		}
		if mutate != nil {
			mutate(rec)
		}
		rec.State = next
		return nil
	})
}

// fail records the terminal Error state. A store failure here cannot undo
// the phase failure, so it is logged and swallowed.
func (o *Orchestrator) fail(ctx context.Context, workflowID int64, cause error) {
	o.Logger.Error("workflow failed", "workflowId", workflowID, "error", cause)
	err := o.Store.Update(ctx, workflowID, func(rec *Record) error {
		if rec.State.Terminal() {
			return nil
		}
		rec.State = StateError
		rec.Error = cause.Error()
		return nil
	})
	if err != nil {
		o.Logger.Error("recording workflow failure", "workflowId", workflowID, "error", err)
	}
}

func (o *Orchestrator) discoveryPhase(ctx context.Context, workflowID int64) error {
	if err := o.Ledger.StartDiscovery(ctx, workflowID); err != nil {
		return err
	}
	if err := o.advance(ctx, workflowID, StateDiscovery, nil); err != nil {
		return err
	}
	o.Logger.Info("discovery phase", "workflowId", workflowID, "vendors", len(catalog.All()))
	return nil
}

func (o *Orchestrator) evaluationPhase(ctx context.Context, workflowID int64) error {
	rec, err := o.Store.Get(ctx, workflowID)
	if err != nil {
		return err
	}

	criteria := oracle.Criteria{
		MaxBudget:       rec.Request.MaxBudget,
		MinQualityScore: rec.Request.MinQualityScore,
		PreferredSLA:    rec.Request.PreferredSLA,
		DurationDays:    rec.Request.DurationDays,
	}
	evaluation, err := o.Evaluator.Evaluate(ctx, rec.Request.Brief, catalog.All(), criteria)
	if err != nil {
		return err
	}

	validation := o.Validator.Validate(evaluation.RankedVendors, o.constraints(rec.Request))
	if !validation.IsValid {
		return &ConstraintViolationError{Violations: validation.Violations}
	}

	if err := o.Ledger.RecordEvaluation(ctx, workflowID, validation.DecisionHash); err != nil {
		return err
	}

	err = o.advance(ctx, workflowID, StateEvaluation, func(rec *Record) {
		rec.Evaluation = &evaluation
		rec.SelectedVendorID = validation.SelectedVendor.VendorID
	})
	if err != nil {
		return err
	}
	o.Logger.Info("evaluation phase", "workflowId", workflowID,
		"selectedVendor", validation.SelectedVendor.VendorName,
		"decisionHash", validation.DecisionHash)
	return nil
}

func (o *Orchestrator) selectionPhase(ctx context.Context, workflowID int64) error {
	rec, err := o.Store.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	vendor, ok := catalog.ByID(rec.SelectedVendorID)
	if !ok {
		return fmt.Errorf("selected vendor %s not in catalog", rec.SelectedVendorID)
	}

	// The single computation of the payment amount. Payment and settlement
	// reuse the carried value instead of re-deriving it.
	amount := oracle.ProratedCost(vendor.PricePerMonth, rec.Request.DurationDays)

	if err := o.Ledger.RecordSelection(ctx, workflowID, vendor.ID, amount); err != nil {
		return err
	}
	return o.advance(ctx, workflowID, StateSelection, func(rec *Record) {
		rec.PaymentAmount = amount
	})
}

func (o *Orchestrator) paymentPhase(ctx context.Context, workflowID int64) error {
	rec, err := o.Store.Get(ctx, workflowID)
	if err != nil {
		return err
	}

	if !decision.VerifyDecision(rec.SelectedVendorID, rec.PaymentAmount, o.constraints(rec.Request)) {
		return fmt.Errorf("payment %g exceeds committed budget %g", rec.PaymentAmount, rec.Request.MaxBudget)
	}

	txHash, err := o.Ledger.ExecutePayment(ctx, workflowID, payeeAddress, rec.PaymentAmount)
	if err != nil {
		return err
	}

	err = o.advance(ctx, workflowID, StatePaymentPending, func(rec *Record) {
		rec.PaymentTxHash = txHash
	})
	if err != nil {
		return err
	}
	o.Logger.Info("payment executed", "workflowId", workflowID, "txHash", txHash, "amount", rec.PaymentAmount)
	return nil
}

func (o *Orchestrator) settlementPhase(ctx context.Context, workflowID int64) error {
	rec, err := o.Store.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if err := o.Ledger.FinalizeSettlement(ctx, workflowID, rec.PaymentTxHash, rec.PaymentAmount); err != nil {
		return err
	}
	return o.advance(ctx, workflowID, StateSettled, nil)
}

func (o *Orchestrator) completionPhase(ctx context.Context, workflowID int64) error {
	if err := o.Ledger.Complete(ctx, workflowID); err != nil {
		return err
	}
	return o.advance(ctx, workflowID, StateCompleted, nil)
}
