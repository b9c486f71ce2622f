// internal/writer/builder.go
package writer

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	cfg "github.com/tamzrod/netft-replicator/internal/config"
	wingest "github.com/tamzrod/netft-replicator/internal/writer/ingest"
	wmodbus "github.com/tamzrod/netft-replicator/internal/writer/modbus"
	wredis "github.com/tamzrod/netft-replicator/internal/writer/redis"
)

// BuildPlan converts one sensor config into a Writer Plan.
// Assumes config has already passed validation.
func BuildPlan(s cfg.SensorConfig) (Plan, error) {
	if s.ID == "" {
		return Plan{}, errors.New("writer: sensor.id required")
	}

	plan := Plan{SensorID: s.ID, Raw: s.Poll.Raw}

	for _, t := range s.Targets {
		plan.Targets = append(plan.Targets, TargetEndpoint{
			TargetID:     t.ID,
			Endpoint:     t.Endpoint,
			Protocol:     t.Protocol,
			UnitID:       t.UnitID,
			Address:      t.Address,
			StatusUnitID: t.StatusUnitID,
		})
	}

	if s.Source.StatusSlot != nil {
		plan.Status = &StatusPlan{
			BaseSlot:   *s.Source.StatusSlot,
			DeviceName: s.Source.DeviceName,
		}
	}

	return plan, nil
}

type closer interface {
	endpointClient
	Close() error
}

// BuildEndpointClients creates one client per unique (protocol, endpoint).
func BuildEndpointClients(s cfg.SensorConfig) (map[string]endpointClient, func() error, error) {
	timeout := time.Duration(s.Source.TimeoutMs) * time.Millisecond

	clients := make(map[string]endpointClient)
	var closers []func() error

	closeAll := func() error {
		var err error
		for _, fn := range closers {
			err = multierr.Append(err, fn())
		}
		return err
	}

	for _, t := range s.Targets {
		key := clientKey(t.Protocol, t.Endpoint)
		if _, ok := clients[key]; ok {
			continue
		}

		c, err := newEndpointClient(t.Protocol, t.Endpoint, timeout)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		clients[key] = c
		closers = append(closers, c.Close)
	}

	return clients, closeAll, nil
}

func newEndpointClient(protocol, endpoint string, timeout time.Duration) (closer, error) {
	switch protocol {
	case cfg.ProtocolModbus, "":
		return wmodbus.NewEndpointClient(wmodbus.Config{Endpoint: endpoint, Timeout: timeout})
	case cfg.ProtocolIngest:
		return wingest.NewEndpointClient(wingest.Config{Endpoint: endpoint, Timeout: timeout})
	default:
		return nil, errors.Errorf("writer: unknown protocol %q", protocol)
	}
}

// BuildPublisher returns the Redis publisher for the sensor, or nil if none is configured.
func BuildPublisher(s cfg.SensorConfig) (*wredis.Publisher, error) {
	if s.Redis == nil {
		return nil, nil
	}
	return wredis.NewPublisher(wredis.Config{
		Addr:     s.Redis.Addr,
		Password: s.Redis.Password,
		DB:       s.Redis.DB,
		Channel:  s.Redis.Channel,
	})
}

// Build wires the data writer and the optional status writer for one sensor.
func Build(s cfg.SensorConfig) (Writer, StatusWriter, func() error, error) {
	plan, err := BuildPlan(s)
	if err != nil {
		return nil, nil, nil, err
	}

	clients, closeClients, err := BuildEndpointClients(s)
	if err != nil {
		return nil, nil, nil, err
	}

	pub, err := BuildPublisher(s)
	if err != nil {
		_ = closeClients()
		return nil, nil, nil, err
	}

	closeAll := closeClients
	var w Writer
	if pub != nil {
		w = New(plan, clients, pub)
		closeAll = func() error {
			return multierr.Combine(closeClients(), pub.Close())
		}
	} else {
		w = New(plan, clients, nil)
	}

	sw, _ := NewDeviceStatusWriter(plan, clients)
	return w, sw, closeAll, nil
}
