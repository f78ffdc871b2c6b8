package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gethsun1/autonomous-procurement-agent/internal/catalog"
	"github.com/gethsun1/autonomous-procurement-agent/internal/oracle"
	"github.com/gethsun1/autonomous-procurement-agent/internal/workflow"
	"github.com/gethsun1/autonomous-procurement-agent/pkg/httpx"
)

// scoredVendor is a ranked score enriched with the full catalog entry for
// the evaluation endpoint.
type scoredVendor struct {
	oracle.VendorScore
	Vendor *catalog.Vendor `json:"vendor,omitempty"`
}

func workflowID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "workflowId"), 10, 64)
	return id, err == nil
}

func newRouter(orch *workflow.Orchestrator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, 200, map[string]any{
			"success":   true,
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/vendors", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		vendors := catalog.All()
		if q.Has("min_price") || q.Has("max_price") {
			minPrice, _ := strconv.ParseFloat(q.Get("min_price"), 64)
			maxPrice := 1e12
			if q.Has("max_price") {
				if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
					maxPrice = v
				}
			}
			vendors = catalog.ByPriceRange(minPrice, maxPrice)
		}
		if q.Has("min_sla") {
			minSLA, _ := strconv.ParseFloat(q.Get("min_sla"), 64)
			filtered := vendors[:0:0]
			for _, v := range vendors {
				if v.SLA >= minSLA {
					filtered = append(filtered, v)
				}
			}
			vendors = filtered
		}
		if vendors == nil {
			vendors = []catalog.Vendor{}
		}
		httpx.WriteJSON(w, 200, map[string]any{"success": true, "vendors": vendors})
	})

	r.Get("/vendors/{id}", func(w http.ResponseWriter, r *http.Request) {
		vendor, ok := catalog.ByID(chi.URLParam(r, "id"))
		if !ok {
			httpx.WriteError(w, 404, "Vendor not found")
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"success": true, "vendor": vendor})
	})

	r.Post("/procurement/request", func(w http.ResponseWriter, r *http.Request) {
		var req workflow.ProcurementRequest
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.WriteError(w, 400, "invalid JSON body")
			return
		}
		if req.Brief == "" || req.MaxBudget <= 0 {
			httpx.WriteError(w, 400, "Missing required fields: brief, maxBudget")
			return
		}
		if req.MinQualityScore == 0 {
			req.MinQualityScore = 7.0
		}
		if req.PreferredSLA == 0 {
			req.PreferredSLA = 99.0
		}
		if req.DurationDays == 0 {
			req.DurationDays = 30
		}

		id, err := orch.InitializeWorkflow(r.Context(), req)
		if err != nil {
			logger.Error("initializing workflow", "error", err)
			httpx.WriteError(w, 500, err.Error())
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{
			"success":    true,
			"workflowId": id,
			"message":    "Procurement workflow initialized",
		})
	})

	r.Post("/procurement/{workflowId}/execute", func(w http.ResponseWriter, r *http.Request) {
		id, ok := workflowID(r)
		if !ok {
			httpx.WriteError(w, 400, "invalid workflow id")
			return
		}

		// Fire and forget: failures land in the workflow record and are
		// observable only by polling the status endpoint.
		go func() {
			if err := orch.ExecuteFlow(context.Background(), id); err != nil {
				logger.Error("workflow execution failed", "workflowId", id, "error", err)
			}
		}()

		httpx.WriteJSON(w, 200, map[string]any{
			"success":    true,
			"message":    "Autonomous execution started",
			"workflowId": id,
		})
	})

	r.Get("/procurement/{workflowId}/status", func(w http.ResponseWriter, r *http.Request) {
		id, ok := workflowID(r)
		if !ok {
			httpx.WriteError(w, 400, "invalid workflow id")
			return
		}
		rec, err := orch.Status(r.Context(), id)
		if errors.Is(err, workflow.ErrNotFound) {
			httpx.WriteError(w, 404, "Workflow not found")
			return
		}
		if err != nil {
			httpx.WriteError(w, 500, err.Error())
			return
		}
		httpx.WriteJSON(w, 200, map[string]any{"success": true, "workflow": rec})
	})

	r.Get("/procurement/{workflowId}/evaluation", func(w http.ResponseWriter, r *http.Request) {
		id, ok := workflowID(r)
		if !ok {
			httpx.WriteError(w, 400, "invalid workflow id")
			return
		}
		rec, err := orch.Status(r.Context(), id)
		if errors.Is(err, workflow.ErrNotFound) {
			httpx.WriteError(w, 404, "Workflow not found")
			return
		}
		if err != nil {
			httpx.WriteError(w, 500, err.Error())
			return
		}
		if rec.Evaluation == nil {
			httpx.WriteError(w, 404, "Evaluation not yet complete")
			return
		}

		ranked := make([]scoredVendor, 0, len(rec.Evaluation.RankedVendors))
		for _, score := range rec.Evaluation.RankedVendors {
			sv := scoredVendor{VendorScore: score}
			if vendor, ok := catalog.ByID(score.VendorID); ok {
				sv.Vendor = &vendor
			}
			ranked = append(ranked, sv)
		}
		httpx.WriteJSON(w, 200, map[string]any{
			"success": true,
			"evaluation": map[string]any{
				"rankedVendors":  ranked,
				"recommendation": rec.Evaluation.Recommendation,
				"timestamp":      rec.Evaluation.Timestamp,
			},
		})
	})

	return r
}
