// internal/status/codes.go
package status

import (
	"github.com/pkg/errors"

	"github.com/tamzrod/netft-replicator/internal/netft"
)

// Error codes written to SlotLastErrorCode.
const (
	CodeNone                 uint16 = 0
	CodeGeneric              uint16 = 1
	CodeNotConnected         uint16 = 2
	CodeCalibrationTimeout   uint16 = 3
	CodeCalibrationMalformed uint16 = 4
	CodeFrameTooShort        uint16 = 5
	CodeInvalidCalibration   uint16 = 6
	CodeTransport            uint16 = 7
)

// CodeFor extracts a stable uint16 code from an error.
// Errors that do not match a protocol kind but expose a Code() are passed
// through; anything else is a transport failure.
func CodeFor(err error) uint16 {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, netft.ErrNotConnected):
		return CodeNotConnected
	case errors.Is(err, netft.ErrCalibrationTimeout):
		return CodeCalibrationTimeout
	case errors.Is(err, netft.ErrCalibrationMalformed):
		return CodeCalibrationMalformed
	case errors.Is(err, netft.ErrFrameTooShort):
		return CodeFrameTooShort
	case errors.Is(err, netft.ErrInvalidCalibration):
		return CodeInvalidCalibration
	}

	type coder interface{ Code() uint16 }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	var pe *netft.ProtocolError
	if errors.As(err, &pe) {
		return CodeGeneric
	}
	return CodeTransport
}
