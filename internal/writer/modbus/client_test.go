// internal/writer/modbus/client_test.go
package modbus

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"go.viam.com/test"
)

type fc16 struct {
	unitID uint8
	addr   uint16
	qty    uint16
	data   []byte
}

// fakeServer answers FC16 requests with a normal response.
func fakeServer(t *testing.T) (string, <-chan fc16) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { _ = ln.Close() })

	reqs := make(chan fc16, 8)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mbap := make([]byte, 7)
			if _, err := io.ReadFull(conn, mbap); err != nil {
				return
			}
			pdu := make([]byte, int(binary.BigEndian.Uint16(mbap[4:6]))-1)
			if _, err := io.ReadFull(conn, pdu); err != nil {
				return
			}
			reqs <- fc16{
				unitID: mbap[6],
				addr:   binary.BigEndian.Uint16(pdu[1:3]),
				qty:    binary.BigEndian.Uint16(pdu[3:5]),
				data:   pdu[6:],
			}

			resp := make([]byte, 12)
			copy(resp[0:4], mbap[0:4])
			binary.BigEndian.PutUint16(resp[4:6], 6)
			resp[6] = mbap[6]
			copy(resp[7:12], pdu[0:5])
			if _, err := conn.Write(resp); err != nil {
				return
			}
		}
	}()
	return ln.Addr().String(), reqs
}

func TestPackRegisters(t *testing.T) {
	test.That(t, PackRegisters([]uint16{0x0102, 0xA0B0}), test.ShouldResemble, []byte{0x01, 0x02, 0xA0, 0xB0})
	test.That(t, PackRegisters(nil), test.ShouldBeEmpty)
}

func TestWriteRegisters(t *testing.T) {
	addr, reqs := fakeServer(t)

	c, err := NewEndpointClient(Config{Endpoint: addr, Timeout: time.Second})
	test.That(t, err, test.ShouldBeNil)
	defer c.Close()

	test.That(t, c.WriteRegisters(4, 100, []uint16{0x3F80, 0, 0xC000, 0}), test.ShouldBeNil)
	got := <-reqs
	test.That(t, got.unitID, test.ShouldEqual, uint8(4))
	test.That(t, got.addr, test.ShouldEqual, uint16(100))
	test.That(t, got.qty, test.ShouldEqual, uint16(4))
	test.That(t, got.data, test.ShouldResemble, []byte{0x3F, 0x80, 0, 0, 0xC0, 0, 0, 0})

	// SlaveId follows each call
	test.That(t, c.WriteRegisters(9, 0, []uint16{1}), test.ShouldBeNil)
	test.That(t, (<-reqs).unitID, test.ShouldEqual, uint8(9))

	// empty write is a no-op
	test.That(t, c.WriteRegisters(9, 0, nil), test.ShouldBeNil)
}

func TestNewEndpointClientErrors(t *testing.T) {
	_, err := NewEndpointClient(Config{})
	test.That(t, err, test.ShouldNotBeNil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	test.That(t, err, test.ShouldBeNil)
	addr := ln.Addr().String()
	test.That(t, ln.Close(), test.ShouldBeNil)

	_, err = NewEndpointClient(Config{Endpoint: addr, Timeout: 200 * time.Millisecond})
	test.That(t, err, test.ShouldNotBeNil)
}
