package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/dev-tams/bucketsweep/internal/config"
	"github.com/dev-tams/bucketsweep/internal/metrics"
	"github.com/dev-tams/bucketsweep/internal/notify"
	"github.com/dev-tams/bucketsweep/internal/storage"
	"github.com/dev-tams/bucketsweep/internal/sweep"
)

func main() {
	app := &cli.App{
		Name:  "bucketsweep",
		Usage: "delete stale objects from a cloud bucket on a schedule",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "monitor the bucket forever, sweeping every INTERVAL seconds",
				Action: runMonitor,
			},
			{
				Name:   "sweep",
				Usage:  "run a single scan-and-delete cycle and exit",
				Action: runOnce,
			},
			{
				Name:   "check",
				Usage:  "validate configuration and bucket access, then exit",
				Action: runCheck,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadValidatedConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func setupLogging(levelName string) {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func runMonitor(c *cli.Context) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bucket, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	runner := sweep.New(cfg, bucket)

	if cfg.RedisURL != "" {
		announcer, err := notify.New(cfg.RedisURL, bucket, cfg.Prefixes[0], cfg.Hostname, cfg.Retry)
		if err != nil {
			return err
		}
		defer announcer.Close()
		runner.SetAfterCycle(func(ctx context.Context) {
			if err := announcer.Announce(ctx); err != nil {
				log.Error().Err(err).Msg("upload announce failed")
			}
		})
	}

	return runner.Run(ctx)
}

func runOnce(c *cli.Context) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bucket, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	rep := sweep.New(cfg, bucket).RunCycle(ctx)
	log.Info().
		Int("scanned", rep.Scanned).
		Int("deleted", rep.Deleted).
		Int("failed", rep.Failed).
		Strs("failed_prefixes", rep.FailedPrefixes).
		Msg("cycle finished")

	if rep.Failures() {
		return fmt.Errorf("cycle finished with %d failed keys and %d failed prefixes",
			rep.Failed, len(rep.FailedPrefixes))
	}
	return nil
}

func runCheck(c *cli.Context) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	bucket, err := storage.FromConfig(c.Context, cfg)
	if err != nil {
		return err
	}

	objects, err := bucket.List(c.Context, cfg.Prefixes[0])
	if err != nil {
		return fmt.Errorf("bucket access check: %w", err)
	}

	fmt.Printf("ok: bucket %s reachable, %d object(s) under %s\n",
		bucket.Name(), len(objects), cfg.Prefixes[0])
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
	}
}
