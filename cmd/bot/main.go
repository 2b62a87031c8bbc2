package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mt5-bands-bot/internal/account"
	"mt5-bands-bot/internal/engine"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/router"
	"mt5-bands-bot/internal/store"
	"mt5-bands-bot/internal/trace"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "mt5-bands-bot",
		Short:         "Bollinger-band trading bot against an MT5-style venue",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := initializeSystem(); err != nil {
		return err
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		return err
	}
	compressOldLogs(ctx)

	gw := initializeGateway(ctx, cfg)
	if err := gw.Initialize(ctx); err != nil {
		gw.Shutdown(ctx)
		return fmt.Errorf("gateway initialization: %w", err)
	}
	defer gw.Shutdown(context.WithoutCancel(ctx))

	tracker := account.New(gw)
	tracker.Prime(ctx)

	rtr := router.New(gw, cfg.Strategy.Magic)
	eng := initializeEngine(cfg, gw, tracker, rtr)
	sup := engine.NewSupervisor(eng, time.Duration(cfg.Strategy.PollSeconds)*time.Second)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"symbol", cfg.Strategy.Symbol,
		"timeframe", cfg.Strategy.Timeframe,
		"window", cfg.Strategy.Window,
		"band_k", cfg.Strategy.BandK,
		"volume", cfg.Strategy.Volume,
	)

	return menuLoop(ctx, sup, sigc)
}
