package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mt5-bands-bot/internal/engine"
	"mt5-bands-bot/internal/engine/engineobs"
	"mt5-bands-bot/internal/gateway/bridge"
	"mt5-bands-bot/internal/gateway/gatewayobs"
	"mt5-bands-bot/internal/gateway/sim"
	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/store"
	"mt5-bands-bot/internal/trace"
	"mt5-bands-bot/internal/tradelog"
)

// initializeSystem loads the environment and brings up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// compressOldLogs gzips trade journal files past the configured retention.
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeGateway builds the venue gateway for the configured mode and
// wraps it with observability middleware.
func initializeGateway(ctx context.Context, cfg *store.Config) interfaces.Gateway {
	var gw interfaces.Gateway
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - venue is simulated in memory")
		gw = sim.New()
	} else {
		gw = bridge.New(bridge.Params{
			BaseURL: cfg.Gateway.BaseURL,
			WSURL:   cfg.Gateway.WSURL,
			Token:   os.Getenv("BRIDGE_TOKEN"),
			Timeout: time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
		})
	}
	return gatewayobs.Wrap(gw)
}

// initializeEngine builds the strategy engine and wraps it with observability
// middleware.
func initializeEngine(cfg *store.Config, gw interfaces.Gateway, tracker interfaces.Tracker, rtr interfaces.Router) interfaces.Engine {
	eng, err := engine.New(cfg, gw, tracker, rtr)
	if err != nil {
		// Config is validated before we get here; a bad timeframe cannot
		// survive store.LoadConfig.
		panic(err)
	}
	return engineobs.Wrap(eng)
}
