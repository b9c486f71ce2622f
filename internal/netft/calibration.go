// internal/netft/calibration.go
package netft

import (
	"fmt"

	"github.com/pkg/errors"
)

// CalibrationInfo is the per-device conversion state returned by the
// calibration handshake. It is never modified after negotiation.
type CalibrationInfo struct {
	ForceUnit  uint8
	TorqueUnit uint8

	CountsPerForce  int32
	CountsPerTorque int32

	// X, Y, Z
	ForceScale  [3]int16
	TorqueScale [3]int16
}

// ParseCalibration decodes a calibration response frame.
// Short frames and zero divisors are rejected. A negative divisor is kept
// and flips the sign of the decoded axis.
func ParseCalibration(frame []byte) (CalibrationInfo, error) {
	r := frameReader{b: frame}
	if err := r.need(CalibrationFrameLength, ErrCalibrationMalformed); err != nil {
		return CalibrationInfo{}, err
	}

	c := CalibrationInfo{
		ForceUnit:       r.u8(offForceUnit),
		TorqueUnit:      r.u8(offTorqueUnit),
		CountsPerForce:  r.i32(offCountsPerForce),
		CountsPerTorque: r.i32(offCountsPerTorque),
		ForceScale:      r.axes(offScaleForce),
		TorqueScale:     r.axes(offScaleTorque),
	}

	if c.CountsPerForce == 0 {
		return CalibrationInfo{}, errors.Wrapf(ErrCalibrationMalformed, "counts_per_force=%d", c.CountsPerForce)
	}
	if c.CountsPerTorque == 0 {
		return CalibrationInfo{}, errors.Wrapf(ErrCalibrationMalformed, "counts_per_torque=%d", c.CountsPerTorque)
	}
	return c, nil
}

// Encode returns the calibration response layout for c.
// Header bytes are left zero.
func (c CalibrationInfo) Encode() []byte {
	b := make([]byte, CalibrationFrameLength)
	b[offForceUnit] = c.ForceUnit
	b[offTorqueUnit] = c.TorqueUnit
	putI32(b[offCountsPerForce:], c.CountsPerForce)
	putI32(b[offCountsPerTorque:], c.CountsPerTorque)
	putAxes(b[offScaleForce:], c.ForceScale)
	putAxes(b[offScaleTorque:], c.TorqueScale)
	return b
}

var forceUnits = map[uint8]string{
	1: "lbf",
	2: "N",
	3: "klbf",
	4: "kN",
	5: "kgf",
	6: "gf",
}

var torqueUnits = map[uint8]string{
	1: "lbf-in",
	2: "lbf-ft",
	3: "N-m",
	4: "N-mm",
	5: "kgf-cm",
	6: "kN-m",
}

// ForceUnitName returns the display unit for the device force unit code.
func (c CalibrationInfo) ForceUnitName() string {
	return unitName(forceUnits, c.ForceUnit)
}

// TorqueUnitName returns the display unit for the device torque unit code.
func (c CalibrationInfo) TorqueUnitName() string {
	return unitName(torqueUnits, c.TorqueUnit)
}

func unitName(table map[uint8]string, code uint8) string {
	if name, ok := table[code]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", code)
}
