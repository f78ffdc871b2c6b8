package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RPCClient drives a ledger gateway over JSON-RPC 2.0. The gateway submits
// the underlying chain transaction and responds only after finality, so
// every call here is fully awaited by construction.
type RPCClient struct {
	URL   string
	Scale Scaler
	HTTP  *http.Client
}

var _ Ledger = (*RPCClient)(nil)

func NewRPCClient(url string, scale Scaler) *RPCClient {
	return &RPCClient{
		URL:   url,
		Scale: scale,
		HTTP:  &http.Client{Timeout: 90 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, op, method string, params, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: time.Now().UnixNano(), Method: method, Params: params})
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &Error{Op: op, Err: fmt.Errorf("gateway returned %d", resp.StatusCode)}
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return &Error{Op: op, Err: err}
	}
	if out.Error != nil {
		return &Error{Op: op, Err: fmt.Errorf("call reverted: %s (code %d)", out.Error.Message, out.Error.Code)}
	}
	if result != nil {
		if len(out.Result) == 0 {
			return &Error{Op: op, Err: ErrMissingEvent}
		}
		if err := json.Unmarshal(out.Result, result); err != nil {
			return &Error{Op: op, Err: err}
		}
	}
	return nil
}

// receipt is the confirmation every mutating call must carry.
type receipt struct {
	TxHash *string `json:"txHash"`
}

func (c *RPCClient) confirmed(ctx context.Context, op, method string, params any) error {
	var rec receipt
	if err := c.call(ctx, op, method, params, &rec); err != nil {
		return err
	}
	if rec.TxHash == nil || *rec.TxHash == "" {
		return &Error{Op: op, Err: ErrMissingEvent}
	}
	return nil
}

func (c *RPCClient) CreateWorkflow(ctx context.Context, brief string, sealedConstraints []byte) (int64, error) {
	var result struct {
		WorkflowID *int64 `json:"workflowId"`
	}
	params := map[string]any{"brief": brief, "sealedConstraints": sealedConstraints}
	if err := c.call(ctx, "create", "workflow_create", params, &result); err != nil {
		return 0, err
	}
	if result.WorkflowID == nil {
		return 0, &Error{Op: "create", Err: ErrMissingEvent}
	}
	return *result.WorkflowID, nil
}

func (c *RPCClient) StartDiscovery(ctx context.Context, workflowID int64) error {
	return c.confirmed(ctx, "startDiscovery", "workflow_startDiscovery", map[string]any{"workflowId": workflowID})
}

func (c *RPCClient) RecordEvaluation(ctx context.Context, workflowID int64, decisionHash string) error {
	return c.confirmed(ctx, "recordEvaluation", "workflow_recordEvaluation", map[string]any{
		"workflowId":   workflowID,
		"decisionHash": decisionHash,
	})
}

func (c *RPCClient) RecordSelection(ctx context.Context, workflowID int64, vendorID string, amount float64) error {
	return c.confirmed(ctx, "recordSelection", "workflow_recordSelection", map[string]any{
		"workflowId": workflowID,
		"vendorId":   vendorID,
		"amount":     c.Scale.ToNative(amount),
	})
}

func (c *RPCClient) ExecutePayment(ctx context.Context, workflowID int64, payee string, amount float64) (string, error) {
	var rec receipt
	err := c.call(ctx, "executePayment", "payment_execute", map[string]any{
		"workflowId": workflowID,
		"payee":      payee,
		"amount":     c.Scale.ToNative(amount),
	}, &rec)
	if err != nil {
		return "", err
	}
	if rec.TxHash == nil || *rec.TxHash == "" {
		return "", &Error{Op: "executePayment", Err: ErrMissingEvent}
	}
	return *rec.TxHash, nil
}

func (c *RPCClient) FinalizeSettlement(ctx context.Context, workflowID int64, txRef string, amount float64) error {
	return c.confirmed(ctx, "finalizeSettlement", "settlement_finalize", map[string]any{
		"workflowId": workflowID,
		"txRef":      txRef,
		"amount":     c.Scale.ToNative(amount),
	})
}

func (c *RPCClient) Complete(ctx context.Context, workflowID int64) error {
	return c.confirmed(ctx, "complete", "workflow_complete", map[string]any{"workflowId": workflowID})
}
