package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process ledger for development and tests. It assigns
// sequential workflow ids, records the same partial state a chain would,
// and supports per-operation fault injection.
type Memory struct {
	Scale Scaler

	mu      sync.Mutex
	nextID  int64
	records map[int64]*OnChainWorkflow
	faults  map[string]error
}

var _ Ledger = (*Memory)(nil)

func NewMemory(scale Scaler) *Memory {
	return &Memory{
		Scale:   scale,
		nextID:  1,
		records: make(map[int64]*OnChainWorkflow),
		faults:  make(map[string]error),
	}
}

// FailOn makes every subsequent call of op fail with err until cleared
// with a nil err.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, op)
		return
	}
	m.faults[op] = err
}

func (m *Memory) fault(op string) error {
	if err := m.faults[op]; err != nil {
		return &Error{Op: op, Err: err}
	}
	return nil
}

func (m *Memory) get(op string, id int64) (*OnChainWorkflow, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, &Error{Op: op, Err: ErrUnknownWorkflow}
	}
	return rec, nil
}

func (m *Memory) CreateWorkflow(_ context.Context, brief string, sealedConstraints []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("create"); err != nil {
		return 0, err
	}
	if len(sealedConstraints) == 0 {
		return 0, &Error{Op: "create", Err: fmt.Errorf("sealed constraints required")}
	}

	id := m.nextID
	m.nextID++
	m.records[id] = &OnChainWorkflow{
		WorkflowID:       id,
		State:            StateCreated,
		ProcurementBrief: brief,
	}
	return id, nil
}

func (m *Memory) StartDiscovery(_ context.Context, workflowID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("startDiscovery"); err != nil {
		return err
	}
	rec, err := m.get("startDiscovery", workflowID)
	if err != nil {
		return err
	}
	rec.State = StateDiscovery
	return nil
}

func (m *Memory) RecordEvaluation(_ context.Context, workflowID int64, decisionHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("recordEvaluation"); err != nil {
		return err
	}
	rec, err := m.get("recordEvaluation", workflowID)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(decisionHash, "0x") {
		return &Error{Op: "recordEvaluation", Err: fmt.Errorf("decision hash must be 0x-prefixed")}
	}
	rec.State = StateEvaluation
	return nil
}

func (m *Memory) RecordSelection(_ context.Context, workflowID int64, vendorID string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("recordSelection"); err != nil {
		return err
	}
	rec, err := m.get("recordSelection", workflowID)
	if err != nil {
		return err
	}
	rec.State = StateSelection
	rec.SelectedVendorID = vendorID
	return nil
}

func (m *Memory) ExecutePayment(_ context.Context, workflowID int64, payee string, amount float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("executePayment"); err != nil {
		return "", err
	}
	rec, err := m.get("executePayment", workflowID)
	if err != nil {
		return "", err
	}
	if payee == "" {
		return "", &Error{Op: "executePayment", Err: fmt.Errorf("payee address required")}
	}

	txRef := "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
	rec.State = StatePaymentPending
	rec.PaymentTxHash = txRef
	rec.PaymentAmount = m.Scale.ToNative(amount)
	return txRef, nil
}

func (m *Memory) FinalizeSettlement(_ context.Context, workflowID int64, txRef string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("finalizeSettlement"); err != nil {
		return err
	}
	rec, err := m.get("finalizeSettlement", workflowID)
	if err != nil {
		return err
	}
	if txRef == "" || txRef != rec.PaymentTxHash {
		return &Error{Op: "finalizeSettlement", Err: fmt.Errorf("settlement tx ref does not match payment")}
	}
	native := m.Scale.ToNative(amount)
	if native != rec.PaymentAmount {
		return &Error{Op: "finalizeSettlement", Err: fmt.Errorf("settlement amount %v does not match payment %v", native, rec.PaymentAmount)}
	}
	rec.State = StateSettled
	rec.SettlementAmount = native
	return nil
}

func (m *Memory) Complete(_ context.Context, workflowID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("complete"); err != nil {
		return err
	}
	rec, err := m.get("complete", workflowID)
	if err != nil {
		return err
	}
	rec.State = StateCompleted
	return nil
}

// GetWorkflow reads back the partial on-ledger record.
func (m *Memory) GetWorkflow(_ context.Context, workflowID int64) (OnChainWorkflow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[workflowID]
	if !ok {
		return OnChainWorkflow{}, false
	}
	return *rec, true
}
