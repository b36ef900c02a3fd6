// Command recallctl is the operator console for a swap-executing trading
// agent. It renders the agent's balances and weighted-average-cost
// unrealized PNL, and submits single or amortized batch orders to the
// execution API.
//
// Usage:
//
//	recallctl --config config.yaml
//	recallctl --watch   (non-interactive auto-refreshing dashboard)
//
// Required environment variables:
//
//	AGENT1_KEY  bearer key for the execution API
//
// Optional: RECALL_API_URL, AGENT1_NAME, REFRESH_INTERVAL, SLIPPAGE.
// A ~/.env or ./.env file is loaded when present.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"recallctl/config"
	"recallctl/internal/clients"
	"recallctl/internal/console"
	"recallctl/internal/metrics"
	"recallctl/internal/storage/orderlog"
)

func main() {
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".env"))
	}
	_ = godotenv.Load()

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	mode := clients.ParseLenient
	if cfg.StrictNumbers {
		mode = clients.ParseStrict
	}

	registry := cfg.Registry()
	client := clients.NewRecallClient(cfg.BaseURL, cfg.AgentKey, registry, mode, logger)

	journal, err := orderlog.NewStore(cfg.OrderLogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer journal.Close()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		m.Serve(cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui := console.New(cfg, client, registry, journal, m, logger)

	if cfg.Watch {
		err = ui.Watch(ctx)
	} else {
		err = ui.Run(ctx)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}
