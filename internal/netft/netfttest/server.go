// internal/netft/netfttest/server.go

// Package netfttest provides a NetFT device simulator listening on TCP.
package netfttest

import (
	"io"
	"net"
	"sync"

	"github.com/tamzrod/netft-replicator/internal/netft"
)

// Server answers calibration and sample commands like a NetFT box.
type Server struct {
	ln net.Listener

	mu       sync.Mutex
	cal      netft.CalibrationInfo
	sample   netft.RawSample
	silent   bool
	closed   bool
	commands []byte
	conns    map[net.Conn]struct{}

	wg sync.WaitGroup
}

// NewServer starts a simulator on addr ("127.0.0.1:0" picks a free port).
func NewServer(addr string, cal netft.CalibrationInfo) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		ln:    ln,
		cal:   cal,
		conns: make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// Addr returns the listening address.
func (s *Server) Addr() *net.TCPAddr {
	return s.ln.Addr().(*net.TCPAddr)
}

// Config returns a sensor config pointing at the simulator.
func (s *Server) Config() netft.Config {
	a := s.Addr()
	return netft.Config{Host: a.IP.String(), Port: a.Port}
}

// SetSample sets the counts returned for subsequent sample commands.
func (s *Server) SetSample(rs netft.RawSample) {
	s.mu.Lock()
	s.sample = rs
	s.mu.Unlock()
}

// SetCalibration sets the calibration returned for subsequent handshakes.
func (s *Server) SetCalibration(cal netft.CalibrationInfo) {
	s.mu.Lock()
	s.cal = cal
	s.mu.Unlock()
}

// Silence makes the server swallow commands without answering.
func (s *Server) Silence(on bool) {
	s.mu.Lock()
	s.silent = on
	s.mu.Unlock()
}

// Commands returns the opcodes received so far.
func (s *Server) Commands() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.commands...)
}

// Close stops the listener and drops every client.
func (s *Server) Close() error {
	err := s.ln.Close()
	s.mu.Lock()
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	cmd := make([]byte, netft.MessageLength)
	for {
		if _, err := io.ReadFull(conn, cmd); err != nil {
			return
		}

		s.mu.Lock()
		s.commands = append(s.commands, cmd[0])
		silent := s.silent
		var resp []byte
		switch cmd[0] {
		case netft.OpReadCalibration:
			resp = s.cal.Encode()
		case netft.OpReadSample:
			resp = s.sample.Encode()
		}
		s.mu.Unlock()

		if silent || resp == nil {
			continue
		}
		if _, err := conn.Write(resp); err != nil {
			return
		}
	}
}
