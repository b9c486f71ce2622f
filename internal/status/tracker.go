// internal/status/tracker.go
package status

// Tracker owns the device status snapshot for one sensor.
// It is runner-owned state: not safe for concurrent use.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current snapshot.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}

// Observe records the outcome of one poll cycle and reports whether the
// snapshot changed. stale means the cycle produced no sample without error.
func (t *Tracker) Observe(err error, stale bool) bool {
	next := t.snap

	switch {
	case err != nil:
		next.Health = HealthError
		next.LastErrorCode = CodeFor(err)
		// seconds_in_error increments on Tick only.
	case stale:
		next.Health = HealthStale
	default:
		// Recovery / OK
		next.Health = HealthOK
		next.LastErrorCode = CodeNone
		next.SecondsInError = 0
	}

	changed := next != t.snap
	t.snap = next
	return changed
}

// Tick advances seconds_in_error while not OK. Call once per second.
// It reports whether the snapshot changed.
func (t *Tracker) Tick() bool {
	if !t.snap.InError() {
		return false
	}
	if t.snap.SecondsInError >= SecondsInErrorMax {
		return false
	}
	t.snap.SecondsInError++
	return true
}
