// Package ledger wraps the external append-only transactional ledger. Every
// operation submits a state change, waits for finality, and extracts an
// event-derived value; a missing event is a failure, never a silent skip.
// The orchestrator treats any error here as fatal to the current phase.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// Ledger is one awaited operation per phase transition.
type Ledger interface {
	// CreateWorkflow anchors a new workflow and returns its ledger-assigned id.
	CreateWorkflow(ctx context.Context, brief string, sealedConstraints []byte) (int64, error)
	StartDiscovery(ctx context.Context, workflowID int64) error
	RecordEvaluation(ctx context.Context, workflowID int64, decisionHash string) error
	RecordSelection(ctx context.Context, workflowID int64, vendorID string, amount float64) error
	// ExecutePayment moves funds to payee and returns the payment tx reference.
	ExecutePayment(ctx context.Context, workflowID int64, payee string, amount float64) (string, error)
	FinalizeSettlement(ctx context.Context, workflowID int64, txRef string, amount float64) error
	Complete(ctx context.Context, workflowID int64) error
}

// ErrMissingEvent means the call finalized but the expected completion
// event was absent from the result.
var ErrMissingEvent = errors.New("expected completion event absent")

// ErrUnknownWorkflow means the ledger has no record for the id.
var ErrUnknownWorkflow = errors.New("unknown workflow")

// Error wraps any ledger failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("ledger %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// DefaultScaleDivisor converts nominal dollar amounts into the small native
// units used on the demo chain ($380 becomes 0.038).
const DefaultScaleDivisor = 10000

// Scaler converts nominal currency amounts into ledger native units. The
// same scaler must serve payment and settlement so the two amounts match.
type Scaler struct {
	Divisor float64
}

func (s Scaler) ToNative(amount float64) float64 {
	if s.Divisor <= 0 {
		return amount
	}
	return amount / s.Divisor
}

// On-ledger state codes, as read back from the workflow record.
const (
	StateCreated = iota
	StateDiscovery
	StateEvaluation
	StateSelection
	StatePaymentPending
	StateSettled
	StateCompleted
)

// OnChainWorkflow is the partial record the ledger stores. Budget, quality
// and SLA never appear here; they stay sealed off-chain, so a record
// reconstructed from the ledger alone is necessarily incomplete.
type OnChainWorkflow struct {
	WorkflowID       int64   `json:"workflowId"`
	State            int     `json:"state"`
	ProcurementBrief string  `json:"procurementBrief"`
	SelectedVendorID string  `json:"selectedVendorId"`
	PaymentTxHash    string  `json:"paymentTxHash"`
	PaymentAmount    float64 `json:"paymentAmount"`    // native units
	SettlementAmount float64 `json:"settlementAmount"` // native units
}
