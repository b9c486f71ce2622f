// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/netft-replicator/internal/netft"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	SensorID string
	At       time.Time

	// Sample is nil when the device did not answer within the timeout
	// or the cycle failed.
	Sample *netft.Sample

	// Latency is the request/response time of the sample read.
	Latency time.Duration

	// Reconnected is set when this cycle had to build a new client.
	Reconnected bool

	Err error // non-nil means the poll cycle failed
}

// Stale reports a cycle that completed without error but produced no sample.
func (r PollResult) Stale() bool {
	return r.Err == nil && r.Sample == nil
}
