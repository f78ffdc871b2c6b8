package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const usage = `usage: apactl vendors [--min-sla <pct>] [--max-price <amount>]
       apactl request --brief <text> --max-budget <amount> [--min-quality <score>] [--preferred-sla <pct>] [--duration-days <n>]
       apactl execute --id <workflowId> [--watch]
       apactl status --id <workflowId>`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	switch os.Args[1] {
	case "vendors":
		runVendors(os.Args[2:])
	case "request":
		runRequest(os.Args[2:])
	case "execute":
		runExecute(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func baseURL() string {
	if v := os.Getenv("AGENT_BASE_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:3000"
}

func get(path string) map[string]any {
	resp, err := http.Get(baseURL() + path)
	if err != nil {
		fail("request failed: " + err.Error())
	}
	return decode(resp)
}

func post(path string, body any) map[string]any {
	raw, err := json.Marshal(body)
	if err != nil {
		fail(err.Error())
	}
	resp, err := http.Post(baseURL()+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		fail("request failed: " + err.Error())
	}
	return decode(resp)
}

func decode(resp *http.Response) map[string]any {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		fail("read response failed: " + err.Error())
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		fail("bad response: " + string(raw))
	}
	if out["success"] != true {
		fail(fmt.Sprintf("%v", out["error"]))
	}
	return out
}

func print(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "apactl: "+msg)
	os.Exit(1)
}

func runVendors(args []string) {
	fs := flag.NewFlagSet("vendors", flag.ExitOnError)
	fs.SetOutput(os.Stderr)
	minSLA := fs.String("min-sla", "", "minimum SLA percentage")
	maxPrice := fs.String("max-price", "", "maximum monthly price")
	_ = fs.Parse(args)

	path := "/vendors"
	var params []string
	if *minSLA != "" {
		params = append(params, "min_sla="+*minSLA)
	}
	if *maxPrice != "" {
		params = append(params, "max_price="+*maxPrice)
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}
	print(get(path)["vendors"])
}

func runRequest(args []string) {
	fs := flag.NewFlagSet("request", flag.ExitOnError)
	fs.SetOutput(os.Stderr)
	brief := fs.String("brief", "", "what to procure")
	maxBudget := fs.Float64("max-budget", 0, "maximum budget")
	minQuality := fs.Float64("min-quality", 0, "minimum quality score (default 7.0)")
	preferredSLA := fs.Float64("preferred-sla", 0, "preferred SLA percentage (default 99.0)")
	durationDays := fs.Int("duration-days", 0, "contract duration in days (default 30)")
	_ = fs.Parse(args)
	if *brief == "" || *maxBudget <= 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	out := post("/procurement/request", map[string]any{
		"brief":           *brief,
		"maxBudget":       *maxBudget,
		"minQualityScore": *minQuality,
		"preferredSLA":    *preferredSLA,
		"durationDays":    *durationDays,
	})
	print(map[string]any{"workflowId": out["workflowId"]})
}

func runExecute(args []string) {
	fs := flag.NewFlagSet("execute", flag.ExitOnError)
	fs.SetOutput(os.Stderr)
	id := fs.Int64("id", 0, "workflow id")
	watch := fs.Bool("watch", false, "poll status until the workflow settles")
	_ = fs.Parse(args)
	if *id <= 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	post(fmt.Sprintf("/procurement/%d/execute", *id), nil)
	if !*watch {
		fmt.Println("execution started")
		return
	}

	for {
		out := get(fmt.Sprintf("/procurement/%d/status", *id))
		wf := out["workflow"].(map[string]any)
		state, _ := wf["state"].(string)
		fmt.Fprintln(os.Stderr, "state: "+state)
		if state == "Completed" || state == "Error" {
			print(wf)
			if state == "Error" {
				os.Exit(1)
			}
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.SetOutput(os.Stderr)
	id := fs.Int64("id", 0, "workflow id")
	_ = fs.Parse(args)
	if *id <= 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	print(get(fmt.Sprintf("/procurement/%d/status", *id))["workflow"])
}
