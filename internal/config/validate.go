// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	type span struct {
		start  uint32
		end    uint32
		sensor string
		what   string
	}

	if len(cfg.Replicator.Sensors) == 0 {
		return errors.New("config: at least one sensor required")
	}

	// ------------------------------------------------------------
	// SENSOR IDENTITY + SOURCE
	// ------------------------------------------------------------

	ids := make(map[string]struct{})

	for _, s := range cfg.Replicator.Sensors {
		if s.ID == "" {
			return errors.New("sensor: id required")
		}
		if _, dup := ids[s.ID]; dup {
			return errors.Errorf("sensor %q: duplicate id", s.ID)
		}
		ids[s.ID] = struct{}{}

		if s.Source.Host == "" {
			return errors.Errorf("sensor %q: source.host required", s.ID)
		}
		if s.Source.Port < 0 || s.Source.Port > 65535 {
			return errors.Errorf("sensor %q: source.port %d out of range", s.ID, s.Source.Port)
		}
		if s.Source.TimeoutMs < 0 {
			return errors.Errorf("sensor %q: source.timeout_ms must be >= 0", s.ID)
		}
		if s.Poll.IntervalMs < 0 {
			return errors.Errorf("sensor %q: poll.interval_ms must be >= 0", s.ID)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(s.Source.DeviceName); i++ {
			if s.Source.DeviceName[i] > 0x7F {
				return errors.Errorf("sensor %q: device_name must contain ASCII characters only", s.ID)
			}
		}

		for _, t := range s.Targets {
			if t.Endpoint == "" {
				return errors.Errorf("sensor %q: target %d endpoint required", s.ID, t.ID)
			}
			switch t.Protocol {
			case "", ProtocolModbus, ProtocolIngest:
			default:
				return errors.Errorf("sensor %q: target %q: unknown protocol %q", s.ID, t.Endpoint, t.Protocol)
			}
		}

		if r := s.Redis; r != nil {
			if r.Addr == "" {
				return errors.Errorf("sensor %q: redis.addr required", s.ID)
			}
			if r.Channel == "" {
				return errors.Errorf("sensor %q: redis.channel required", s.ID)
			}
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (PER-TARGET, OPT-IN)
	// ------------------------------------------------------------

	// key = protocol | endpoint | status_unit_id | status_slot
	statusOwner := make(map[string]string)

	for _, s := range cfg.Replicator.Sensors {
		// status is opt-in
		if s.Source.StatusSlot == nil {
			continue
		}

		// status requires at least one target
		if len(s.Targets) == 0 {
			return errors.Errorf("sensor %q: status_slot is set but no targets are defined", s.ID)
		}

		slot := *s.Source.StatusSlot
		if (uint32(slot)+1)*statusSlots > 0x10000 {
			return errors.Errorf("sensor %q: status_slot %d out of range", s.ID, slot)
		}

		for _, t := range s.Targets {
			// each target must declare status_unit_id
			if t.StatusUnitID == nil {
				return errors.Errorf(
					"sensor %q: status_slot is set but target %q has no status_unit_id",
					s.ID,
					t.Endpoint,
				)
			}

			key := fmt.Sprintf("%s|%d", memoryKey(t.Protocol, t.Endpoint, *t.StatusUnitID), slot)

			if prev, exists := statusOwner[key]; exists {
				return errors.Errorf(
					"status_slot collision: endpoint=%s status_unit_id=%d slot=%d used by sensors %q and %q",
					t.Endpoint,
					*t.StatusUnitID,
					slot,
					prev,
					s.ID,
				)
			}

			statusOwner[key] = s.ID
		}
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = protocol | endpoint | unit_id, shared by sample and status blocks
	// of every sensor
	spans := make(map[string][]span)

	claim := func(key string, sp span) error {
		for _, other := range spans[key] {
			// overlap check (inclusive)
			if !(sp.end < other.start || sp.start > other.end) {
				return errors.Errorf(
					"memory overlap: %s range=%d-%d (%s, sensor %q) overlaps %d-%d (%s, sensor %q)",
					key,
					sp.start, sp.end, sp.what, sp.sensor,
					other.start, other.end, other.what, other.sensor,
				)
			}
		}
		spans[key] = append(spans[key], sp)
		return nil
	}

	for _, s := range cfg.Replicator.Sensors {
		for _, t := range s.Targets {
			start := uint32(t.Address)
			end := start + SampleBlockRegisters - 1
			if end > 0xFFFF {
				return errors.Errorf(
					"sensor %q: target %q address %d leaves no room for %d registers",
					s.ID, t.Endpoint, t.Address, SampleBlockRegisters,
				)
			}

			key := memoryKey(t.Protocol, t.Endpoint, t.UnitID)
			if err := claim(key, span{start: start, end: end, sensor: s.ID, what: "sample"}); err != nil {
				return err
			}

			if s.Source.StatusSlot == nil || t.StatusUnitID == nil {
				continue
			}

			sKey := memoryKey(t.Protocol, t.Endpoint, *t.StatusUnitID)
			sStart := uint32(*s.Source.StatusSlot) * statusSlots
			if err := claim(sKey, span{start: sStart, end: sStart + statusSlots - 1, sensor: s.ID, what: "status"}); err != nil {
				return err
			}
		}
	}

	return nil
}

// memoryKey names one register memory. An empty protocol is modbus, as
// Normalize will make it.
func memoryKey(protocol, endpoint string, unitID uint8) string {
	if protocol == "" {
		protocol = ProtocolModbus
	}
	return fmt.Sprintf("protocol=%s endpoint=%s unit_id=%d", protocol, endpoint, unitID)
}

// statusSlots mirrors status.SlotsPerDevice; config must not import runtime packages.
const statusSlots = 20
