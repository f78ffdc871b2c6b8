package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gethsun1/autonomous-procurement-agent/internal/decision"
	"github.com/gethsun1/autonomous-procurement-agent/internal/ledger"
	"github.com/gethsun1/autonomous-procurement-agent/internal/oracle"
	"github.com/gethsun1/autonomous-procurement-agent/internal/seal"
	"github.com/gethsun1/autonomous-procurement-agent/internal/workflow"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := workflow.New(
		workflow.NewMemoryStore(),
		ledger.NewMemory(ledger.Scaler{Divisor: ledger.DefaultScaleDivisor}),
		&oracle.Evaluator{},
		&decision.Validator{},
		seal.New("router-test-key"),
		logger,
	)
	srv := httptest.NewServer(newRouter(orch, logger))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return out
}

func postJSON(t *testing.T, url, body string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	out := getJSON(t, srv.URL+"/health", 200)
	if out["success"] != true || out["status"] != "healthy" {
		t.Errorf("unexpected health payload: %v", out)
	}
}

func TestListVendors(t *testing.T) {
	srv := testServer(t)

	out := getJSON(t, srv.URL+"/vendors", 200)
	if n := len(out["vendors"].([]any)); n != 5 {
		t.Errorf("vendors = %d, want 5", n)
	}

	out = getJSON(t, srv.URL+"/vendors?max_price=300", 200)
	if n := len(out["vendors"].([]any)); n != 2 {
		t.Errorf("vendors under 300 = %d, want 2", n)
	}

	out = getJSON(t, srv.URL+"/vendors?min_sla=99.5", 200)
	if n := len(out["vendors"].([]any)); n != 3 {
		t.Errorf("vendors at 99.5 SLA = %d, want 3", n)
	}

	out = getJSON(t, srv.URL+"/vendors?max_price=500&min_sla=99.9", 200)
	vendors := out["vendors"].([]any)
	if len(vendors) != 1 {
		t.Fatalf("combined filter = %d vendors, want 1", len(vendors))
	}
	if id := vendors[0].(map[string]any)["id"]; id != "vendor_1" {
		t.Errorf("combined filter selected %v, want vendor_1", id)
	}
}

func TestGetVendor(t *testing.T) {
	srv := testServer(t)

	out := getJSON(t, srv.URL+"/vendors/vendor_3", 200)
	vendor := out["vendor"].(map[string]any)
	if vendor["name"] != "CryptoData Hub" {
		t.Errorf("vendor name = %v", vendor["name"])
	}

	out = getJSON(t, srv.URL+"/vendors/vendor_99", 404)
	if out["success"] != false || out["error"] != "Vendor not found" {
		t.Errorf("unexpected 404 payload: %v", out)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	srv := testServer(t)

	out := postJSON(t, srv.URL+"/procurement/request", `{"maxBudget":500}`, 400)
	if out["error"] != "Missing required fields: brief, maxBudget" {
		t.Errorf("unexpected error: %v", out["error"])
	}
	postJSON(t, srv.URL+"/procurement/request", `{"brief":"analytics API"}`, 400)
	postJSON(t, srv.URL+"/procurement/request", `{not json`, 400)
}

func TestCreateRequestDefaults(t *testing.T) {
	srv := testServer(t)

	out := postJSON(t, srv.URL+"/procurement/request", `{"brief":"analytics API","maxBudget":500}`, 200)
	if out["workflowId"] != 1.0 {
		t.Errorf("workflowId = %v, want 1", out["workflowId"])
	}

	out = getJSON(t, srv.URL+"/procurement/1/status", 200)
	req := out["workflow"].(map[string]any)["request"].(map[string]any)
	if req["minQualityScore"] != 7.0 || req["preferredSLA"] != 99.0 || req["durationDays"] != 30.0 {
		t.Errorf("defaults not applied: %v", req)
	}
}

func TestStatusUnknownWorkflow(t *testing.T) {
	srv := testServer(t)
	out := getJSON(t, srv.URL+"/procurement/42/status", 404)
	if out["error"] != "Workflow not found" {
		t.Errorf("unexpected payload: %v", out)
	}
	getJSON(t, srv.URL+"/procurement/notanumber/status", 400)
}

func awaitState(t *testing.T, srv *httptest.Server, id string, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		out := getJSON(t, srv.URL+"/procurement/"+id+"/status", 200)
		wf := out["workflow"].(map[string]any)
		state := wf["state"].(string)
		if state == want || state == "Error" {
			return wf
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("workflow %s never reached %s", id, want)
	return nil
}

func TestExecuteFlowEndToEnd(t *testing.T) {
	srv := testServer(t)

	postJSON(t, srv.URL+"/procurement/request", `{"brief":"analytics API","maxBudget":500}`, 200)

	out := getJSON(t, srv.URL+"/procurement/1/evaluation", 404)
	if out["error"] != "Evaluation not yet complete" {
		t.Errorf("unexpected payload: %v", out)
	}

	out = postJSON(t, srv.URL+"/procurement/1/execute", "", 200)
	if out["message"] != "Autonomous execution started" {
		t.Errorf("unexpected payload: %v", out)
	}

	wf := awaitState(t, srv, "1", "Completed")
	if wf["state"] != "Completed" {
		t.Fatalf("state = %v (error: %v)", wf["state"], wf["error"])
	}
	if wf["selectedVendorId"] != "vendor_2" {
		t.Errorf("selected vendor = %v, want vendor_2", wf["selectedVendorId"])
	}
	if wf["paymentAmount"] != 380.0 {
		t.Errorf("payment amount = %v, want 380", wf["paymentAmount"])
	}

	out = getJSON(t, srv.URL+"/procurement/1/evaluation", 200)
	eval := out["evaluation"].(map[string]any)
	ranked := eval["rankedVendors"].([]any)
	if len(ranked) != 5 {
		t.Fatalf("ranked vendors = %d, want 5", len(ranked))
	}
	first := ranked[0].(map[string]any)
	if first["vendor"] == nil {
		t.Error("ranked vendors must carry full catalog details")
	}
	if eval["recommendation"] == "" {
		t.Error("recommendation missing")
	}
}

func TestExecuteFlowConstraintFailure(t *testing.T) {
	srv := testServer(t)

	postJSON(t, srv.URL+"/procurement/request", `{"brief":"analytics API","maxBudget":100}`, 200)
	postJSON(t, srv.URL+"/procurement/1/execute", "", 200)

	wf := awaitState(t, srv, "1", "Error")
	if wf["state"] != "Error" {
		t.Fatalf("state = %v, want Error", wf["state"])
	}
	if !strings.Contains(wf["error"].(string), "no valid vendors found") {
		t.Errorf("error = %v", wf["error"])
	}
}
