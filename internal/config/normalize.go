// internal/config/normalize.go
package config

import "github.com/tamzrod/netft-replicator/internal/netft"

// Defaults applied by Normalize.
const (
	DefaultIntervalMs    = 100
	DefaultLogLevel      = "info"
	DefaultMetricsListen = ":9110"
	deviceNameMaxChars   = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	r := &cfg.Replicator

	if r.Log.Level == "" {
		r.Log.Level = DefaultLogLevel
	}
	if r.Metrics.Enabled && r.Metrics.Listen == "" {
		r.Metrics.Listen = DefaultMetricsListen
	}

	for si := range r.Sensors {
		s := &r.Sensors[si]

		if s.Source.Port == 0 {
			s.Source.Port = netft.DefaultPort
		}
		if s.Source.TimeoutMs == 0 {
			s.Source.TimeoutMs = int(netft.DefaultTimeout.Milliseconds())
		}
		if s.Poll.IntervalMs == 0 {
			s.Poll.IntervalMs = DefaultIntervalMs
		}

		for ti := range s.Targets {
			if s.Targets[ti].Protocol == "" {
				s.Targets[ti].Protocol = ProtocolModbus
			}
		}

		// ------------------------------------------------------------
		// DEVICE STATUS BLOCK NORMALIZATION (OPT-IN)
		// ------------------------------------------------------------

		// Skip sensors that did not opt in
		if s.Source.StatusSlot == nil {
			continue
		}

		// device_name: ASCII already validated, truncate to 16 characters
		if len(s.Source.DeviceName) > deviceNameMaxChars {
			s.Source.DeviceName = s.Source.DeviceName[:deviceNameMaxChars]
		}
	}
}
