// internal/netft/errors.go
package netft

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Error kinds surfaced by the protocol layer.
// Match with errors.Is; they are usually wrapped in a *ProtocolError.
var (
	ErrNotConnected         = errors.New("netft: not connected")
	ErrCalibrationTimeout   = errors.New("netft: calibration timeout")
	ErrCalibrationMalformed = errors.New("netft: calibration malformed")
	ErrFrameTooShort        = errors.New("netft: frame too short")
	ErrInvalidCalibration   = errors.New("netft: invalid calibration")

	// ErrReceiveTimeout is returned by a Transport when a receive
	// exceeds the configured timeout.
	ErrReceiveTimeout = errors.New("netft: receive timeout")
)

// ProtocolError carries the failed operation and the timeout in effect.
type ProtocolError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("netft %s (timeout=%s): %v", e.Op, e.Timeout, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a transport receive timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrReceiveTimeout) {
		return true
	}
	type timeout interface{ Timeout() bool }
	var te timeout
	return errors.As(err, &te) && te.Timeout()
}
