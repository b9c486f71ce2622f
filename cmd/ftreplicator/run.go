// cmd/ftreplicator/run.go
package main

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/tamzrod/netft-replicator/internal/config"
	"github.com/tamzrod/netft-replicator/internal/logging"
	"github.com/tamzrod/netft-replicator/internal/monitor"
	"github.com/tamzrod/netft-replicator/internal/poller"
	"github.com/tamzrod/netft-replicator/internal/writer"
)

func runCommand(st *appState) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "replicate sensor samples into the configured targets",
		ArgsUsage: "<config.yaml>",
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit("usage: ftreplicator run <config.yaml>", 2)
			}
			return runReplicator(c.Context, st, c.Args().First())
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	config.Normalize(cfg)
	return cfg, nil
}

func runReplicator(ctx context.Context, st *appState, path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	logger := st.logger
	if !st.logOverride {
		logger, err = logging.New("ftreplicator", logging.Config{
			Enabled: cfg.Replicator.Log.Enabled,
			Level:   cfg.Replicator.Log.Level,
		})
		if err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var closers []func() error
	defer func() {
		cancel()
		wg.Wait()
		var cerr error
		for i := len(closers) - 1; i >= 0; i-- {
			cerr = multierr.Append(cerr, closers[i]())
		}
		if cerr != nil {
			logger.Warnw("shutdown", "error", cerr)
		}
	}()

	// --------------------
	// Metrics (optional)
	// --------------------

	var metrics *monitor.Metrics
	if cfg.Replicator.Metrics.Enabled {
		metrics = monitor.New()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.Serve(ctx, cfg.Replicator.Metrics.Listen, logger); err != nil {
				logger.Errorw("metrics server stopped", "error", err)
			}
		}()
	}

	// --------------------
	// Build per-sensor pipelines
	// --------------------

	for _, s := range cfg.Replicator.Sensors {
		sensorLog := logger.With("sensor", s.ID)

		p, closePoller, err := poller.Build(ctx, s, logger)
		if err != nil {
			return errors.Wrapf(err, "poller build failed (sensor=%s)", s.ID)
		}
		closers = append(closers, closePoller)

		dataWriter, statusWriter, closeWriters, err := writer.Build(s)
		if err != nil {
			return errors.Wrapf(err, "writer build failed (sensor=%s)", s.ID)
		}
		closers = append(closers, closeWriters)

		pl := &pipeline{
			sensorID: s.ID,
			data:     dataWriter,
			status:   statusWriter,
			metrics:  metrics,
			clock:    clock.New(),
			logger:   sensorLog,
		}

		// ---- channel between poller and orchestrator ----
		out := make(chan poller.PollResult)

		wg.Add(2)
		go func() {
			defer wg.Done()
			pl.run(ctx, out)
		}()
		go func() {
			defer wg.Done()
			p.Run(ctx, out)
		}()

		sensorLog.Infow("sensor pipeline started",
			"host", s.Source.Host,
			"port", s.Source.Port,
			"interval_ms", s.Poll.IntervalMs,
			"targets", len(s.Targets),
			"status", statusWriter != nil,
		)
	}

	<-ctx.Done()
	logger.Infow("shutting down", "reason", ctx.Err())
	return nil
}
