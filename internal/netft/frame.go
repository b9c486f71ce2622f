// internal/netft/frame.go
package netft

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Wire constants. These are fixed by the device and MUST NOT be configurable.
const (
	// MessageLength is the size of every outbound command frame.
	MessageLength = 20

	// BufferSize is the maximum number of bytes read per response.
	BufferSize = 1024

	// HeaderLength is the opaque header at the start of a calibration response.
	HeaderLength = 2

	// CalibrationFrameLength is the minimum calibration response length.
	CalibrationFrameLength = 24

	// SampleFrameLength is the minimum sample response length.
	SampleFrameLength = 16
)

// Opcodes.
const (
	OpReadSample      byte = 0x00
	OpReadCalibration byte = 0x01
)

// Byte offsets inside response frames.
const (
	offForceUnit       = HeaderLength
	offTorqueUnit      = HeaderLength + 1
	offCountsPerForce  = 4
	offCountsPerTorque = 8
	offScaleForce      = 12
	offScaleTorque     = 18

	offRawForce  = 4
	offRawTorque = 10
)

// Command builds a command frame: opcode followed by zero padding.
func Command(op byte) []byte {
	cmd := make([]byte, MessageLength)
	cmd[0] = op
	return cmd
}

// frameReader reads fixed-offset big-endian fields from a frame whose
// minimum length has already been checked by need.
type frameReader struct {
	b []byte
}

// need fails with kind if the frame is shorter than n bytes.
func (r frameReader) need(n int, kind error) error {
	if len(r.b) < n {
		return errors.Wrapf(kind, "got %d bytes, need %d", len(r.b), n)
	}
	return nil
}

func (r frameReader) u8(off int) uint8 {
	return r.b[off]
}

func (r frameReader) i16(off int) int16 {
	return int16(binary.BigEndian.Uint16(r.b[off : off+2]))
}

func (r frameReader) i32(off int) int32 {
	return int32(binary.BigEndian.Uint32(r.b[off : off+4]))
}

func (r frameReader) axes(off int) [3]int16 {
	return [3]int16{r.i16(off), r.i16(off + 2), r.i16(off + 4)}
}

func putAxes(dst []byte, v [3]int16) {
	for i, x := range v {
		binary.BigEndian.PutUint16(dst[i*2:i*2+2], uint16(x))
	}
}

func putI32(dst []byte, v int32) {
	binary.BigEndian.PutUint32(dst[:4], uint32(v))
}
