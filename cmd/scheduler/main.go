// Command scheduler runs the ingest-and-recompute cycle on a cron schedule,
// daily at 01:00 UTC by default.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
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

	cycle := func() {
		if err := a.RunCycle(ctx); err != nil {
			log.Error("scheduled cycle finished with failures", zap.Error(err))
		}
	}

	if cfg.Scheduler.RunOnStart {
		cycle()
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(cfg.Scheduler.CronSpec, cycle); err != nil {
		log.Fatal("parse cron spec",
			zap.String("spec", cfg.Scheduler.CronSpec),
			zap.Error(err))
	}

	log.Info("scheduler started", zap.String("spec", cfg.Scheduler.CronSpec))
	c.Start()

	<-ctx.Done()
	log.Info("shutting down")
	<-c.Stop().Done()
}
