// internal/netft/sample.go
package netft

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// RawSample holds the signed counts of one sample response, X, Y, Z.
type RawSample struct {
	Force  [3]int16
	Torque [3]int16
}

// Sample is a force/torque reading in the units reported by calibration.
type Sample struct {
	Force  r3.Vector
	Torque r3.Vector
}

// Bias is the zero reference subtracted from corrected samples.
type Bias struct {
	Force  r3.Vector
	Torque r3.Vector
}

// ParseSample decodes the raw counts of a sample response frame.
func ParseSample(frame []byte) (RawSample, error) {
	r := frameReader{b: frame}
	if err := r.need(SampleFrameLength, ErrFrameTooShort); err != nil {
		return RawSample{}, err
	}
	return RawSample{
		Force:  r.axes(offRawForce),
		Torque: r.axes(offRawTorque),
	}, nil
}

// Encode returns a sample response frame carrying s.
func (s RawSample) Encode() []byte {
	b := make([]byte, SampleFrameLength)
	putAxes(b[offRawForce:], s.Force)
	putAxes(b[offRawTorque:], s.Torque)
	return b
}

// Decode converts raw counts into a physical value.
// Both operands are promoted to float64 before the multiply so results
// are identical on every platform.
func Decode(raw, scale int16, counts int32) float64 {
	return float64(raw) * float64(scale) / float64(counts)
}

// Convert applies c to raw. It fails if either divisor is zero.
func (c CalibrationInfo) Convert(raw RawSample) (Sample, error) {
	if c.CountsPerForce == 0 || c.CountsPerTorque == 0 {
		return Sample{}, errors.Wrapf(ErrInvalidCalibration,
			"counts_per_force=%d counts_per_torque=%d", c.CountsPerForce, c.CountsPerTorque)
	}
	return Sample{
		Force:  convertAxes(raw.Force, c.ForceScale, c.CountsPerForce),
		Torque: convertAxes(raw.Torque, c.TorqueScale, c.CountsPerTorque),
	}, nil
}

func convertAxes(raw, scale [3]int16, counts int32) r3.Vector {
	return r3.Vector{
		X: Decode(raw[0], scale[0], counts),
		Y: Decode(raw[1], scale[1], counts),
		Z: Decode(raw[2], scale[2], counts),
	}
}

// Corrected returns s with b subtracted from both vectors.
func (s Sample) Corrected(b Bias) Sample {
	return Sample{
		Force:  s.Force.Sub(b.Force),
		Torque: s.Torque.Sub(b.Torque),
	}
}
