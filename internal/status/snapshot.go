// internal/status/snapshot.go
package status

// Snapshot is the live part of a device status block (slots 0-2).
// It is exactly what the status writer delivers; the device name is
// static and encoded once.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// InError reports whether seconds_in_error should be counting.
func (s Snapshot) InError() bool {
	return s.Health == HealthError || s.Health == HealthStale
}
