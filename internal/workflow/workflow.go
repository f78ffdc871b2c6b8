// Package workflow runs the six-phase autonomous procurement flow. One
// orchestrator drives many concurrent workflows; each workflow advances
// through a fixed forward-only state machine, anchoring every transition on
// the ledger before the local record moves.
package workflow

import (
	"fmt"
	"strings"

	"github.com/gethsun1/autonomous-procurement-agent/internal/oracle"
)

// State is the workflow lifecycle position.
type State string

const (
	StateIdle           State = "Idle"
	StateInitialized    State = "Initialized"
	StateDiscovery      State = "Discovery"
	StateEvaluation     State = "Evaluation"
	StateSelection      State = "Selection"
	StatePaymentPending State = "PaymentPending"
	StateSettled        State = "Settled"
	StateCompleted      State = "Completed"
	StateError          State = "Error"
)

// stateRank orders the forward progression. Error sits outside the order;
// it is reachable from anywhere non-terminal and terminal once reached.
var stateRank = map[State]int{
	StateIdle:           0,
	StateInitialized:    1,
	StateDiscovery:      2,
	StateEvaluation:     3,
	StateSelection:      4,
	StatePaymentPending: 5,
	StateSettled:        6,
	StateCompleted:      7,
}

// Terminal reports whether no further transition may leave s.
func (s State) Terminal() bool { return s == StateCompleted || s == StateError }

// CanAdvance reports whether a transition from s to next is legal:
// strictly forward through the phase order, or a jump to Error from any
// non-terminal state. Records never regress.
func (s State) CanAdvance(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateError {
		return true
	}
	from, ok1 := stateRank[s]
	to, ok2 := stateRank[next]
	return ok1 && ok2 && to > from
}

// ProcurementRequest is the caller's order, immutable once a workflow is
// created from it.
type ProcurementRequest struct {
	Brief           string  `json:"brief"`
	MaxBudget       float64 `json:"maxBudget"`
	MinQualityScore float64 `json:"minQualityScore"`
	PreferredSLA    float64 `json:"preferredSLA"`
	DurationDays    int     `json:"durationDays"`
}

// Record is the in-process view of one workflow. The ledger holds only a
// partial mirror (no budget, quality floor or SLA), so this record is the
// sole complete source during the process lifetime.
type Record struct {
	WorkflowID       int64                    `json:"workflowId"`
	State            State                    `json:"state"`
	Request          ProcurementRequest       `json:"request"`
	Evaluation       *oracle.EvaluationResult `json:"evaluation,omitempty"`
	SelectedVendorID string                   `json:"selectedVendorId,omitempty"`
	// PaymentAmount is computed exactly once, at selection, and carried so
	// payment and settlement always submit the identical figure.
	PaymentAmount float64 `json:"paymentAmount,omitempty"`
	PaymentTxHash string  `json:"paymentTxHash,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// ConstraintViolationError means no vendor survived hard-constraint
// filtering. It is a normal validation outcome that terminates the
// workflow; there is nothing to retry without a new request.
type ConstraintViolationError struct {
	Violations []string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("no valid vendors found: %s", strings.Join(e.Violations, ", "))
}
