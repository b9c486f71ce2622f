// internal/poller/builder.go
package poller

import (
	"context"
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/netft-replicator/internal/config"
	"github.com/tamzrod/netft-replicator/internal/netft"
)

// Build constructs a Poller and wires the sensor lifecycle.
// The connection is reused while healthy.
// On transport death, Poller discards the sensor and uses factory on a future tick.
func Build(ctx context.Context, s cfg.SensorConfig, logger *zap.SugaredLogger) (*Poller, func() error, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	nc := netft.Config{
		Host:    s.Source.Host,
		Port:    s.Source.Port,
		Timeout: time.Duration(s.Source.TimeoutMs) * time.Millisecond,
	}
	log := logger.With("sensor", s.ID)

	// sensor factory: ONE attempt per call
	factory := func(ctx context.Context) (Client, error) {
		sensor, err := netft.Dial(ctx, nc, log)
		if err != nil {
			return nil, err
		}
		if s.Source.ZeroOnStart {
			zeroOnStart(sensor, log)
		}
		return sensor, nil
	}

	// initial client (fail fast at startup)
	client, err := factory(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := New(
		Config{
			SensorID: s.ID,
			Interval: time.Duration(s.Poll.IntervalMs) * time.Millisecond,
			Raw:      s.Poll.Raw,
		},
		client,
		factory,
		logger,
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return p, p.Close, nil
}

// zeroOnStart biases the sensor against its current reading.
// A timeout leaves the sensor unbiased; a fatal error surfaces on the first poll.
func zeroOnStart(s *netft.Sensor, logger *zap.SugaredLogger) {
	ok, err := s.Zero()
	switch {
	case err != nil:
		logger.Warnw("zero on start failed", "error", err)
	case !ok:
		logger.Warnw("zero on start timed out, sensor left unbiased")
	}
}
