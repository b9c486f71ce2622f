// internal/netft/transport.go
package netft

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Transport is the byte-stream collaborator the sensor talks through.
// Receive must return an error matching ErrReceiveTimeout (or a net.Error
// with Timeout() == true) when the timeout expires.
type Transport interface {
	Connect(ctx context.Context, address string) error
	SetTimeout(d time.Duration) error
	SendAll(p []byte) error
	Receive(size int) ([]byte, error)
	Close() error
}

// TCPTransport is a Transport over a TCP connection.
// Close may be called from another goroutine to abort a blocked Receive.
type TCPTransport struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
}

// NewTCPTransport returns an unconnected TCP transport.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{timeout: DefaultTimeout}
}

// Connect dials address. An existing connection is closed first.
func (t *TCPTransport) Connect(ctx context.Context, address string) error {
	_ = t.Close()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

// SetTimeout sets the bound applied to every send and receive.
func (t *TCPTransport) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return errors.Errorf("netft tcp: timeout must be > 0, got %s", d)
	}
	t.mu.Lock()
	t.timeout = d
	t.mu.Unlock()
	return nil
}

func (t *TCPTransport) current() (net.Conn, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn, t.timeout
}

// SendAll writes all of p.
func (t *TCPTransport) SendAll(p []byte) error {
	conn, timeout := t.current()
	if conn == nil {
		return ErrNotConnected
	}
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	for len(p) > 0 {
		n, err := conn.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Receive performs one read of up to size bytes.
func (t *TCPTransport) Receive(size int) ([]byte, error) {
	conn, timeout := t.current()
	if conn == nil {
		return nil, ErrNotConnected
	}
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, size)
	n, err := conn.Read(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, ErrReceiveTimeout
		}
		return nil, err
	}
	return buf[:n], nil
}

// Close closes the connection. Closing an unconnected transport is a no-op.
func (t *TCPTransport) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
