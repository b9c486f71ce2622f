// cmd/ftreplicator/main.go

// Package main is the ftreplicator command.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tamzrod/netft-replicator/internal/logging"
)

const (
	flagDebug    = "debug"
	flagLogLevel = "log-level"
	flagQuiet    = "quiet"
)

// appState carries what the global flags decide.
type appState struct {
	logger *zap.SugaredLogger

	// logOverride is set when a global flag picked the logger, so the
	// config file's log block is ignored.
	logOverride bool
}

func newApp() *cli.App {
	st := &appState{logger: zap.NewNop().Sugar()}

	return &cli.App{
		Name:  "ftreplicator",
		Usage: "read ATI NetFT force/torque sensors and replicate samples",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:    flagQuiet,
				Aliases: []string{"q"},
				Usage:   "disable logging",
			},
		},
		Before: func(c *cli.Context) error {
			return st.configureLogger(c)
		},
		Commands: []*cli.Command{
			runCommand(st),
			readCommand(st),
			simulateCommand(st),
		},
	}
}

func (st *appState) configureLogger(c *cli.Context) error {
	switch {
	case c.Bool(flagQuiet):
		st.logger = zap.NewNop().Sugar()
		st.logOverride = true
		return nil
	case c.Bool(flagDebug):
		st.logger = mustLogger(logging.NewLoggerConfig(zapcore.DebugLevel))
		st.logOverride = true
		return nil
	case c.IsSet(flagLogLevel):
		l, err := logging.New("ftreplicator", logging.Config{Enabled: true, Level: c.String(flagLogLevel)})
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		st.logger = l
		st.logOverride = true
		return nil
	}

	// commands without a config file log at info
	l, err := logging.New("ftreplicator", logging.Config{Enabled: true})
	if err != nil {
		return err
	}
	st.logger = l
	return nil
}

func mustLogger(cfg zap.Config) *zap.SugaredLogger {
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l.Sugar().Named("ftreplicator")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ftreplicator:", err)
		stop()
		os.Exit(1)
	}
}
