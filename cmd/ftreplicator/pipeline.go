// cmd/ftreplicator/pipeline.go
package main

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/tamzrod/netft-replicator/internal/monitor"
	"github.com/tamzrod/netft-replicator/internal/poller"
	"github.com/tamzrod/netft-replicator/internal/status"
	"github.com/tamzrod/netft-replicator/internal/writer"
)

// pipeline is the orchestrator for one sensor: it delivers poll results,
// owns the status tracker and drives the 1Hz seconds ticker.
type pipeline struct {
	sensorID string
	data     writer.Writer
	status   writer.StatusWriter // nil => status disabled
	metrics  *monitor.Metrics    // nil => metrics disabled
	clock    clock.Clock
	logger   *zap.SugaredLogger
}

func (p *pipeline) run(ctx context.Context, in <-chan poller.PollResult) {
	tracker := status.NewTracker()

	secTicker := p.clock.Ticker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert) if enabled.
	p.writeStatus(tracker.Snapshot(), "start")

	for {
		select {
		case <-ctx.Done():
			return

		case res := <-in:
			if p.metrics != nil {
				p.metrics.ObservePoll(res)
			}

			// --- data delivery ---
			err := p.data.Write(ctx, res)
			if err != nil {
				p.logger.Warnw("writer error", "error", err)
			}
			if p.metrics != nil {
				p.metrics.ObserveWrite(p.sensorID, err)
			}

			if res.Err != nil {
				p.logger.Warnw("poll failed", "error", res.Err, "code", status.CodeFor(res.Err))
			}

			// --- status update (device-level truth) ---
			if tracker.Observe(res.Err, res.Stale()) {
				snap := tracker.Snapshot()
				p.logger.Infow("health changed", "health", status.HealthName(snap.Health), "code", snap.LastErrorCode)
				p.writeStatus(snap, "update")
			}

		case <-secTicker.C:
			// seconds_in_error increments on the 1Hz ticker only.
			if tracker.Tick() {
				p.writeStatus(tracker.Snapshot(), "seconds tick")
			}
		}
	}
}

func (p *pipeline) writeStatus(s status.Snapshot, phase string) {
	if p.status == nil {
		return
	}
	if err := p.status.WriteStatus(s); err != nil {
		p.logger.Warnw("status write failed", "phase", phase, "error", err)
	}
}
