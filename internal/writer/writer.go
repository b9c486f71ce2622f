// internal/writer/writer.go
package writer

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/tamzrod/netft-replicator/internal/poller"
	wredis "github.com/tamzrod/netft-replicator/internal/writer/redis"
)

// endpointClient is the exact contract the writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// samplePublisher fans samples out to non-register sinks.
type samplePublisher interface {
	PublishSample(ctx context.Context, msg wredis.Message) error
}

type writerImpl struct {
	plan      Plan
	clients   map[string]endpointClient
	publisher samplePublisher
}

// New builds a Writer. publisher may be nil.
func New(plan Plan, clients map[string]endpointClient, publisher samplePublisher) Writer {
	return &writerImpl{
		plan:      plan,
		clients:   clients,
		publisher: publisher,
	}
}

// Write delivers one sample to every target. Stale and failed cycles
// write nothing; status delivery is the StatusWriter's job.
func (w *writerImpl) Write(ctx context.Context, res poller.PollResult) error {
	if res.Err != nil || res.Sample == nil {
		return nil
	}

	regs := EncodeSample(*res.Sample)
	var err error

	for _, tgt := range w.plan.Targets {
		cli := w.clients[clientKey(tgt.Protocol, tgt.Endpoint)]
		if cli == nil {
			err = multierr.Append(err, errors.Errorf(
				"writer: missing client for endpoint %s", tgt.Endpoint,
			))
			continue
		}
		if werr := cli.WriteRegisters(tgt.UnitID, tgt.Address, regs); werr != nil {
			err = multierr.Append(err, errors.Wrapf(werr,
				"writer: ep=%s unit=%d addr=%d", tgt.Endpoint, tgt.UnitID, tgt.Address,
			))
		}
	}

	if w.publisher != nil {
		msg := wredis.NewMessage(w.plan.SensorID, res.At, *res.Sample, w.plan.Raw)
		if perr := w.publisher.PublishSample(ctx, msg); perr != nil {
			err = multierr.Append(err, errors.Wrap(perr, "writer: publish"))
		}
	}

	return err
}

func clientKey(protocol, endpoint string) string {
	return protocol + "://" + endpoint
}
