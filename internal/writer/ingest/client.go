// internal/writer/ingest/client.go
package ingest

import (
	"io"
	"net"
	"time"

	"github.com/pkg/errors"

	wmodbus "github.com/tamzrod/netft-replicator/internal/writer/modbus"
)

const (
	magicHi byte = 0x52 // 'R'
	magicLo byte = 0x49 // 'I'

	versionV1 byte = 0x01

	// AreaHoldingRegisters is the only area the sample and status blocks use.
	AreaHoldingRegisters byte = 0x03

	respOK       byte = 0x00
	respRejected byte = 0x01

	headerLen = 10
)

// ErrRejected is returned when the endpoint answers with the reject status.
var ErrRejected = errors.New("writer ingest: rejected")

// Raw Ingest v1 client (stateless, 1 packet = 1 connection)
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteRegisters sends one holding-register packet.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	return c.send(AreaHoldingRegisters, unitID, addr, uint16(len(regs)), wmodbus.PackRegisters(regs))
}

//
// ---- Raw Ingest v1 sender ----
//

func (c *EndpointClient) send(area byte, unitID uint8, addr, count uint16, payload []byte) error {
	pkt := BuildPacketV1(area, unitID, addr, count, payload)

	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return errors.Wrap(err, "writer ingest: dial")
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))
	if _, err := conn.Write(pkt); err != nil {
		return errors.Wrap(err, "writer ingest: write")
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return errors.Wrap(err, "writer ingest: read status")
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return errors.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}

//
// ---- Raw Ingest v1 packet (LOCKED) ----
//
// Layout (10 bytes header):
// 0-1  Magic "RI"
// 2    Version (0x01)
// 3    Area
// 4-5  UnitID
// 6-7  Address
// 8-9  Count
// 10+  Payload
//

// BuildPacketV1 assembles one raw ingest packet.
func BuildPacketV1(area byte, unitID uint8, addr, count uint16, payload []byte) []byte {
	pkt := make([]byte, headerLen, headerLen+len(payload))

	pkt[0] = magicHi
	pkt[1] = magicLo
	pkt[2] = versionV1
	pkt[3] = area

	putU16(pkt[4:6], uint16(unitID))
	putU16(pkt[6:8], addr)
	putU16(pkt[8:10], count)

	return append(pkt, payload...)
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
