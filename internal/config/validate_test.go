// internal/config/validate_test.go
package config

import (
	"testing"

	"go.viam.com/test"
)

// helper to build a sensor quickly
func sensor(id, endpoint string, unitID uint8, addr uint16) SensorConfig {
	return SensorConfig{
		ID:     id,
		Source: SourceConfig{Host: "192.168.1.1"},
		Targets: []TargetConfig{
			{
				ID:       1,
				Endpoint: endpoint,
				UnitID:   unitID,
				Address:  addr,
			},
		},
	}
}

func withSensors(s ...SensorConfig) *Config {
	return &Config{Replicator: ReplicatorConfig{Sensors: s}}
}

func u8(v uint8) *uint8    { return &v }
func u16(v uint16) *uint16 { return &v }

// ---- tests ----

func TestValidate_RequiresSensor(t *testing.T) {
	test.That(t, Validate(&Config{}), test.ShouldNotBeNil)
	test.That(t, Validate(nil), test.ShouldNotBeNil)
}

func TestValidate_SourceFields(t *testing.T) {
	s := sensor("ft1", "ep1", 1, 0)
	s.Source.Host = ""
	test.That(t, Validate(withSensors(s)).Error(), test.ShouldContainSubstring, "source.host")

	s = sensor("ft1", "ep1", 1, 0)
	s.Source.Port = 70000
	test.That(t, Validate(withSensors(s)).Error(), test.ShouldContainSubstring, "port")

	s = sensor("ft1", "ep1", 1, 0)
	s.Source.TimeoutMs = -1
	test.That(t, Validate(withSensors(s)), test.ShouldNotBeNil)

	s = sensor("", "ep1", 1, 0)
	test.That(t, Validate(withSensors(s)).Error(), test.ShouldContainSubstring, "id required")
}

func TestValidate_DuplicateID(t *testing.T) {
	err := Validate(withSensors(sensor("ft1", "ep1", 1, 0), sensor("ft1", "ep2", 1, 0)))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate")
}

func TestValidate_UnknownProtocol(t *testing.T) {
	s := sensor("ft1", "ep1", 1, 0)
	s.Targets[0].Protocol = "mqtt"
	test.That(t, Validate(withSensors(s)), test.ShouldNotBeNil)

	s.Targets[0].Protocol = ProtocolIngest
	test.That(t, Validate(withSensors(s)), test.ShouldBeNil)
}

func TestValidate_DeviceNameASCII(t *testing.T) {
	s := sensor("ft1", "ep1", 1, 0)
	s.Source.DeviceName = "capteur-é"
	test.That(t, Validate(withSensors(s)), test.ShouldNotBeNil)
}

func TestValidate_Redis(t *testing.T) {
	s := sensor("ft1", "ep1", 1, 0)
	s.Redis = &RedisConfig{Addr: "localhost:6379"}
	test.That(t, Validate(withSensors(s)).Error(), test.ShouldContainSubstring, "redis.channel")

	s.Redis.Channel = "ft"
	test.That(t, Validate(withSensors(s)), test.ShouldBeNil)
}

func TestValidate_NoOverlapDifferentEndpoints(t *testing.T) {
	cfg := withSensors(sensor("ft1", "ep1", 1, 0), sensor("ft2", "ep2", 1, 0))
	test.That(t, Validate(cfg), test.ShouldBeNil)
}

func TestValidate_NoOverlapDifferentUnit(t *testing.T) {
	cfg := withSensors(sensor("ft1", "ep1", 1, 0), sensor("ft2", "ep1", 2, 0))
	test.That(t, Validate(cfg), test.ShouldBeNil)
}

func TestValidate_TouchingRangesAllowed(t *testing.T) {
	cfg := withSensors(
		sensor("ft1", "ep1", 1, 0),  // 0-11
		sensor("ft2", "ep1", 1, 12), // 12-23
	)
	test.That(t, Validate(cfg), test.ShouldBeNil)
}

func TestValidate_OverlapDetected(t *testing.T) {
	cfg := withSensors(
		sensor("ft1", "ep1", 1, 0),  // 0-11
		sensor("ft2", "ep1", 1, 11), // 11-22 -> overlap
	)
	err := Validate(cfg)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "memory overlap")
}

func TestValidate_AddressOverflow(t *testing.T) {
	test.That(t, Validate(withSensors(sensor("ft1", "ep1", 1, 65524))), test.ShouldBeNil)
	test.That(t, Validate(withSensors(sensor("ft1", "ep1", 1, 65525))), test.ShouldNotBeNil)
}

func TestValidate_StatusSlot(t *testing.T) {
	s := sensor("ft1", "ep1", 1, 100)
	s.Source.StatusSlot = u16(0)
	err := Validate(withSensors(s))
	test.That(t, err.Error(), test.ShouldContainSubstring, "status_unit_id")

	s.Targets[0].StatusUnitID = u8(9)
	test.That(t, Validate(withSensors(s)), test.ShouldBeNil)

	noTargets := SensorConfig{ID: "ft2", Source: SourceConfig{Host: "h", StatusSlot: u16(1)}}
	test.That(t, Validate(withSensors(noTargets)), test.ShouldNotBeNil)
}

func TestValidate_StatusSlotCollision(t *testing.T) {
	a := sensor("ft1", "ep1", 1, 0)
	a.Source.StatusSlot = u16(2)
	a.Targets[0].StatusUnitID = u8(9)

	b := sensor("ft2", "ep1", 2, 0)
	b.Source.StatusSlot = u16(2)
	b.Targets[0].StatusUnitID = u8(9)

	err := Validate(withSensors(a, b))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "collision")

	b.Source.StatusSlot = u16(3)
	test.That(t, Validate(withSensors(a, b)), test.ShouldBeNil)
}

func TestValidate_StatusOverlapsData(t *testing.T) {
	// status slot 0 occupies 0-19 on the same unit as the sample block
	s := sensor("ft1", "ep1", 1, 10)
	s.Source.StatusSlot = u16(0)
	s.Targets[0].StatusUnitID = u8(1)
	test.That(t, Validate(withSensors(s)), test.ShouldNotBeNil)

	s.Targets[0].Address = 20
	test.That(t, Validate(withSensors(s)), test.ShouldBeNil)
}

func TestValidate_StatusOverlapsOtherSensorData(t *testing.T) {
	// a writes its sample block to unit 1 and its status block (0-19) to unit 2
	a := sensor("a", "ep1", 1, 100)
	a.Source.StatusSlot = u16(0)
	a.Targets[0].StatusUnitID = u8(2)

	// b writes its sample block to unit 2 at 0-11
	b := sensor("b", "ep1", 2, 0)

	err := Validate(withSensors(a, b))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "memory overlap")
	test.That(t, err.Error(), test.ShouldContainSubstring, "unit_id=2")

	// order of sensors does not matter
	test.That(t, Validate(withSensors(b, a)), test.ShouldNotBeNil)

	b.Targets[0].Address = 20
	test.That(t, Validate(withSensors(a, b)), test.ShouldBeNil)
}

func TestValidate_ProtocolSeparatesMemories(t *testing.T) {
	a := sensor("a", "10.0.0.9:502", 1, 0)
	a.Targets[0].Protocol = ProtocolModbus
	b := sensor("b", "10.0.0.9:502", 1, 0)
	b.Targets[0].Protocol = ProtocolIngest
	test.That(t, Validate(withSensors(a, b)), test.ShouldBeNil)

	// empty protocol defaults to modbus
	b.Targets[0].Protocol = ""
	test.That(t, Validate(withSensors(a, b)), test.ShouldNotBeNil)
}
