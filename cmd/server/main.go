package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gethsun1/autonomous-procurement-agent/internal/decision"
	"github.com/gethsun1/autonomous-procurement-agent/internal/ledger"
	"github.com/gethsun1/autonomous-procurement-agent/internal/oracle"
	"github.com/gethsun1/autonomous-procurement-agent/internal/seal"
	"github.com/gethsun1/autonomous-procurement-agent/internal/workflow"
	"github.com/gethsun1/autonomous-procurement-agent/pkg/db"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	ctx := context.Background()

	var store workflow.Store = workflow.NewMemoryStore()
	if os.Getenv("DATABASE_URL") != "" {
		pg := workflow.NewPGStore(db.MustConnect())
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("ensuring schema", "error", err)
			os.Exit(1)
		}
		store = pg
		logger.Info("using postgres workflow store")
	}

	divisor := float64(ledger.DefaultScaleDivisor)
	if v := os.Getenv("LEDGER_SCALE_DIVISOR"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil || d <= 0 {
			logger.Error("invalid LEDGER_SCALE_DIVISOR", "value", v)
			os.Exit(1)
		}
		divisor = d
	}
	scale := ledger.Scaler{Divisor: divisor}

	var led ledger.Ledger = ledger.NewMemory(scale)
	if url := os.Getenv("LEDGER_RPC_URL"); url != "" {
		led = ledger.NewRPCClient(url, scale)
		logger.Info("using ledger gateway", "url", url)
	} else {
		logger.Warn("LEDGER_RPC_URL unset, using in-process ledger")
	}

	evaluator := &oracle.Evaluator{
		OnFailure: oracle.FailureMode(envOr("ORACLE_ON_FAILURE", string(oracle.FallBack))),
		Logger:    logger,
	}
	if key := os.Getenv("ORACLE_API_KEY"); key != "" {
		base := envOr("ORACLE_BASE_URL", "https://generativelanguage.googleapis.com")
		evaluator.Client = oracle.NewClient(base, key)
		logger.Info("using remote scoring oracle", "baseUrl", base)
	} else {
		logger.Warn("ORACLE_API_KEY unset, using local scorer")
	}

	orch := workflow.New(
		store,
		led,
		evaluator,
		&decision.Validator{},
		seal.New(envOr("SEAL_KEY", "default-encryption-key-change-in-production")),
		logger,
	)

	port := envOr("SERVICE_PORT", "3000")
	logger.Info("procurement agent listening", "port", port)
	if err := http.ListenAndServe(":"+port, newRouter(orch, logger)); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
