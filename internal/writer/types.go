// internal/writer/types.go
package writer

import (
	"context"

	"github.com/tamzrod/netft-replicator/internal/poller"
)

// TargetEndpoint is one target endpoint receiving the sample block.
type TargetEndpoint struct {
	TargetID uint32
	Endpoint string
	Protocol string
	UnitID   uint8  // data memory
	Address  uint16 // first register of the sample block

	StatusUnitID *uint8 // nil => no status block on this target
}

// StatusPlan describes the device status block, if enabled.
type StatusPlan struct {
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one sensor.
type Plan struct {
	SensorID string
	Raw      bool
	Targets  []TargetEndpoint

	Status *StatusPlan
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(ctx context.Context, res poller.PollResult) error
}
