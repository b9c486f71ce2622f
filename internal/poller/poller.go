// internal/poller/poller.go
package poller

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/tamzrod/netft-replicator/internal/netft"
)

// Client abstracts the sensor operations needed by the poller.
type Client interface {
	ReadSample(raw bool) (*netft.Sample, error)
	Close() error
}

// Factory builds a connected client. ONE attempt per call.
type Factory func(ctx context.Context) (Client, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	SensorID string
	Interval time.Duration
	Raw      bool

	// Clock defaults to the wall clock.
	Clock clock.Clock
}

// Poller is a dumb, clock-driven reader.
// On a fatal read error it drops the client; the factory is used on a
// later tick. No retries within a tick.
type Poller struct {
	cfg     Config
	client  Client
	factory Factory
	logger  *zap.SugaredLogger
}

// New creates a poller with immutable config.
// client may be nil if factory is set.
func New(cfg Config, client Client, factory Factory, logger *zap.SugaredLogger) (*Poller, error) {
	if cfg.SensorID == "" {
		return nil, errors.New("poller: sensor id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if client == nil && factory == nil {
		return nil, errors.New("poller: client or factory required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		factory: factory,
		logger:  logger.With("sensor", cfg.SensorID),
	}, nil
}

// PollOnce performs exactly one poll cycle.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{
		SensorID: p.cfg.SensorID,
		At:       p.cfg.Clock.Now(),
	}

	if p.client == nil {
		if p.factory == nil {
			res.Err = errors.New("poller: no client")
			return res
		}
		c, err := p.factory(ctx)
		if err != nil {
			res.Err = errors.Wrap(err, "poller: reconnect")
			return res
		}
		p.client = c
		res.Reconnected = true
		p.logger.Infow("sensor reconnected")
	}

	start := p.cfg.Clock.Now()
	smp, err := p.client.ReadSample(p.cfg.Raw)
	res.Latency = p.cfg.Clock.Since(start)

	if err != nil {
		// transport death: discard, rebuild on a future tick
		p.logger.Warnw("sample read failed, dropping connection", "error", err)
		_ = p.client.Close()
		p.client = nil
		res.Err = err
		return res
	}

	res.Sample = smp
	return res
}

// Close releases the current client, if any.
func (p *Poller) Close() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}
