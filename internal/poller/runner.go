// internal/poller/runner.go
package poller

import "context"

// Run starts the ticker loop and emits PollResult on the provided channel.
// One goroutine per sensor. No overlap. No retries.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) {
	ticker := p.cfg.Clock.Ticker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := p.PollOnce(ctx)
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}
