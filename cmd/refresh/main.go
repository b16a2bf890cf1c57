// Command refresh runs one ingest-and-recompute cycle and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cycle-radar/internal/app"
	"cycle-radar/internal/config"
	"cycle-radar/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("wire application", zap.Error(err))
	}
	defer a.Close()

	if err := a.RunCycle(ctx); err != nil {
		log.Error("refresh finished with failures", zap.Error(err))
		os.Exit(1)
	}
	log.Info("refresh finished")
}
