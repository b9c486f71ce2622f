// internal/writer/encode.go
package writer

import (
	"math"

	"github.com/tamzrod/netft-replicator/internal/netft"
)

// EncodeSample packs Fx Fy Fz Tx Ty Tz as IEEE-754 float32, two registers
// per axis, high word first.
func EncodeSample(s netft.Sample) []uint16 {
	axes := [6]float64{
		s.Force.X, s.Force.Y, s.Force.Z,
		s.Torque.X, s.Torque.Y, s.Torque.Z,
	}
	regs := make([]uint16, 0, 2*len(axes))
	for _, v := range axes {
		bits := math.Float32bits(float32(v))
		regs = append(regs, uint16(bits>>16), uint16(bits))
	}
	return regs
}
