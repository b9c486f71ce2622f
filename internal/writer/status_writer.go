// internal/writer/status_writer.go
package writer

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/tamzrod/netft-replicator/internal/status"
)

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and writes it verbatim.
// No logic, no state, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter delivers the status block to one target.
type deviceStatusWriter struct {
	endpoint string
	unitID   uint8
	baseSlot uint16
	cli      endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// statusFanout writes the same snapshot to every target carrying status memory.
type statusFanout []*deviceStatusWriter

// NewDeviceStatusWriter builds a status writer if status is enabled for the sensor.
// If plan.Status is nil, or no target has a status unit id, status is disabled.
func NewDeviceStatusWriter(plan Plan, clients map[string]endpointClient) (StatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}

	sp := plan.Status
	nameRegs := status.EncodeDeviceName(sp.DeviceName)

	var out statusFanout
	for _, tgt := range plan.Targets {
		if tgt.StatusUnitID == nil {
			continue
		}
		out = append(out, &deviceStatusWriter{
			endpoint: tgt.Endpoint,
			unitID:   *tgt.StatusUnitID,
			baseSlot: sp.BaseSlot,
			cli:      clients[clientKey(tgt.Protocol, tgt.Endpoint)],
			needFull: true, // full re-assert on first successful write
			last: status.Snapshot{
				Health: status.HealthUnknown,
			},
			nameRegs: nameRegs,
		})
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// WriteStatus writes to every target; one failing target does not block the others.
func (f statusFanout) WriteStatus(s status.Snapshot) error {
	var err error
	for _, sw := range f {
		err = multierr.Append(err, sw.WriteStatus(s))
	}
	return err
}

// WriteStatus delivers a device status snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw.cli == nil {
		return errors.Errorf("status writer: missing client for endpoint %s", sw.endpoint)
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.Encode(s, sw.nameRegs)

		if err := sw.cli.WriteRegisters(sw.unitID, baseAddr, regs); err != nil {
			sw.needFull = true
			return errors.Wrapf(err, "status writer: full block write failed ep=%s unit=%d", sw.endpoint, sw.unitID)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	var err error

	// Slot 0 - health_code
	if sw.last.Health != s.Health {
		if werr := sw.writeSlot(baseAddr, status.SlotHealthCode, s.Health); werr != nil {
			err = multierr.Append(err, errors.Wrap(werr, "slot0 health write failed"))
		} else {
			sw.last.Health = s.Health
		}
	}

	// Slot 1 - last_error_code
	if sw.last.LastErrorCode != s.LastErrorCode {
		if werr := sw.writeSlot(baseAddr, status.SlotLastErrorCode, s.LastErrorCode); werr != nil {
			err = multierr.Append(err, errors.Wrap(werr, "slot1 last_error write failed"))
		} else {
			sw.last.LastErrorCode = s.LastErrorCode
		}
	}

	// Slot 2 - seconds_in_error
	if sw.last.SecondsInError != s.SecondsInError {
		if werr := sw.writeSlot(baseAddr, status.SlotSecondsInError, s.SecondsInError); werr != nil {
			err = multierr.Append(err, errors.Wrap(werr, "slot2 seconds write failed"))
		} else {
			sw.last.SecondsInError = s.SecondsInError
		}
	}

	if err != nil {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.Wrap(err, fmt.Sprintf("status writer ep=%s unit=%d", sw.endpoint, sw.unitID))
	}

	return nil
}

func (sw *deviceStatusWriter) writeSlot(base uint16, slot int, v uint16) error {
	return sw.cli.WriteRegisters(sw.unitID, base+uint16(slot), []uint16{v})
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.baseSlot * status.SlotsPerDevice
}
