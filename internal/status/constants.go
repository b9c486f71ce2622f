// internal/status/constants.go
package status

import "fmt"

// Device status block layout. One block of SlotsPerDevice holding
// registers per sensor, at status_slot * SlotsPerDevice on every target
// that carries status memory. Values are wire-visible: do not make them
// configurable.
const (
	SlotsPerDevice = 20

	SlotHealthCode     = 0
	SlotLastErrorCode  = 1
	SlotSecondsInError = 2

	// 3..10 reserved, written as zero on full assert.
	SlotReservedStart = 3
	SlotReservedEnd   = 10

	// The device name always sits at the end of the block.
	SlotDeviceNameStart = 11
	SlotDeviceNameSlots = 8
	SlotDeviceNameEnd   = SlotDeviceNameStart + SlotDeviceNameSlots - 1

	DeviceNameMaxChars = 2 * SlotDeviceNameSlots

	// seconds_in_error saturates instead of wrapping.
	SecondsInErrorMax = 65535
)

// Health codes written to SlotHealthCode.
const (
	HealthUnknown  uint16 = 0 // boot, nothing polled yet
	HealthOK       uint16 = 1
	HealthError    uint16 = 2 // last cycle failed
	HealthStale    uint16 = 3 // sensor connected but sample reads time out
	HealthDisabled uint16 = 4
)

var healthNames = map[uint16]string{
	HealthUnknown:  "unknown",
	HealthOK:       "ok",
	HealthError:    "error",
	HealthStale:    "stale",
	HealthDisabled: "disabled",
}

// HealthName returns a log-friendly name for a health code.
func HealthName(h uint16) string {
	if n, ok := healthNames[h]; ok {
		return n
	}
	return fmt.Sprintf("health(%d)", h)
}
