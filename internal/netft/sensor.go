// internal/netft/sensor.go

// Package netft implements the request/response protocol of an ATI NetFT
// force/torque transducer: calibration handshake, sample decoding and
// bias correction over a byte-stream transport.
package netft

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPort is the device command port.
	DefaultPort = 49151

	// DefaultTimeout bounds every receive unless configured otherwise.
	DefaultTimeout = 100 * time.Millisecond
)

const (
	opCalibration = "calibration"
	opSample      = "sample"
	opZero        = "zero"
)

// ConnectionState is Connected only after the transport is up and
// calibration has been negotiated.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Config is the minimal connection config.
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// Address returns host:port, defaulting the port.
func (c Config) Address() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Sensor owns one transport connection. Requests are serialized: the
// protocol has no request ids, so only one exchange may be in flight.
type Sensor struct {
	cfg    Config
	tr     Transport
	logger *zap.SugaredLogger

	// held for a whole send/receive exchange
	req sync.Mutex

	mu     sync.Mutex
	linked bool // transport connected
	state  ConnectionState
	cal    CalibrationInfo
	bias   Bias
}

// New returns a disconnected sensor over tr.
func New(cfg Config, tr Transport, logger *zap.SugaredLogger) *Sensor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Sensor{
		cfg:    cfg,
		tr:     tr,
		logger: logger.With("address", cfg.Address()),
	}
}

// Dial connects to the device over TCP and negotiates calibration.
func Dial(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (*Sensor, error) {
	s := New(cfg, NewTCPTransport(), logger)
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Open connects the transport and negotiates calibration.
// On any failure the transport is left closed.
func (s *Sensor) Open(ctx context.Context) error {
	s.req.Lock()
	defer s.req.Unlock()

	start := time.Now()
	if err := s.tr.Connect(ctx, s.cfg.Address()); err != nil {
		s.disconnect()
		return err
	}
	if err := s.tr.SetTimeout(s.cfg.timeout()); err != nil {
		s.disconnect()
		return err
	}

	s.mu.Lock()
	s.linked = true
	s.mu.Unlock()
	s.logger.Debugw("transport connected", "duration", time.Since(start))

	_, err := s.negotiate()
	return err
}

// Negotiate runs the calibration handshake on an already connected
// transport and replaces the stored calibration on success.
func (s *Sensor) Negotiate() (CalibrationInfo, error) {
	s.req.Lock()
	defer s.req.Unlock()
	return s.negotiate()
}

func (s *Sensor) negotiate() (CalibrationInfo, error) {
	s.mu.Lock()
	linked := s.linked
	s.mu.Unlock()

	if !linked {
		s.logger.Error("transport not connected, cannot read calibration; unsafe to continue without it")
		s.disconnect()
		return CalibrationInfo{}, s.protocolError(opCalibration, ErrNotConnected)
	}

	start := time.Now()
	if err := s.tr.SendAll(Command(OpReadCalibration)); err != nil {
		s.disconnect()
		return CalibrationInfo{}, err
	}

	resp, err := s.tr.Receive(BufferSize)
	if err != nil {
		s.disconnect()
		if IsTimeout(err) {
			s.logger.Errorw("calibration receive timed out; unsafe to continue without calibration",
				"timeout", s.cfg.timeout())
			return CalibrationInfo{}, s.protocolError(opCalibration, ErrCalibrationTimeout)
		}
		return CalibrationInfo{}, err
	}
	s.logger.Debugw("calibration response", "bytes", len(resp), "duration", time.Since(start))

	cal, err := ParseCalibration(resp)
	if err != nil {
		s.disconnect()
		return CalibrationInfo{}, s.protocolError(opCalibration, err)
	}

	s.mu.Lock()
	s.cal = cal
	s.state = Connected
	s.mu.Unlock()

	s.logger.Infow("calibration negotiated",
		"force_unit", cal.ForceUnitName(),
		"torque_unit", cal.TorqueUnitName(),
		"counts_per_force", cal.CountsPerForce,
		"counts_per_torque", cal.CountsPerTorque,
		"force_scale", cal.ForceScale,
		"torque_scale", cal.TorqueScale,
	)
	return cal, nil
}

// ReadSample requests one sample. With raw set the bias is not applied.
//
// A receive timeout is not an error: it returns (nil, nil), meaning no new
// data this cycle. Any returned error is fatal and leaves the sensor
// disconnected, except ErrNotConnected which performs no I/O.
// A reply that arrives after the timeout stays buffered and is consumed by
// the next read, which therefore returns the older sample.
func (s *Sensor) ReadSample(raw bool) (*Sample, error) {
	s.req.Lock()
	defer s.req.Unlock()
	return s.readSample(opSample, raw)
}

func (s *Sensor) readSample(op string, raw bool) (*Sample, error) {
	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		return nil, s.protocolError(op, ErrNotConnected)
	}
	cal, bias := s.cal, s.bias
	s.mu.Unlock()

	start := time.Now()
	if err := s.tr.SendAll(Command(OpReadSample)); err != nil {
		s.disconnect()
		return nil, err
	}
	sent := time.Now()

	resp, err := s.tr.Receive(BufferSize)
	if err != nil {
		if IsTimeout(err) {
			s.logger.Debugw("sample receive timed out", "op", op, "timeout", s.cfg.timeout())
			return nil, nil
		}
		s.disconnect()
		return nil, err
	}
	received := time.Now()

	rs, err := ParseSample(resp)
	if err != nil {
		s.disconnect()
		return nil, s.protocolError(op, err)
	}
	smp, err := cal.Convert(rs)
	if err != nil {
		s.disconnect()
		return nil, s.protocolError(op, err)
	}
	if !raw {
		smp = smp.Corrected(bias)
	}

	s.logger.Debugw("sample",
		"op", op,
		"raw", raw,
		"force", smp.Force,
		"torque", smp.Torque,
		"send", sent.Sub(start),
		"recv", received.Sub(sent),
		"parse", time.Since(received),
	)
	return &smp, nil
}

// Zero reads an uncorrected sample and installs it as the bias.
// It reports false, leaving the bias untouched, if the read timed out or failed.
func (s *Sensor) Zero() (bool, error) {
	s.req.Lock()
	defer s.req.Unlock()

	smp, err := s.readSample(opZero, true)
	if err != nil || smp == nil {
		return false, err
	}

	s.mu.Lock()
	s.bias = Bias{Force: smp.Force, Torque: smp.Torque}
	s.mu.Unlock()

	s.logger.Infow("sensor zeroed", "force_bias", smp.Force, "torque_bias", smp.Torque)
	return true, nil
}

// Bias returns the current bias.
func (s *Sensor) Bias() Bias {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bias
}

// SetBias replaces the bias. SetBias(Bias{}) clears it.
func (s *Sensor) SetBias(b Bias) {
	s.mu.Lock()
	s.bias = b
	s.mu.Unlock()
}

// Calibration returns the negotiated calibration. ok is false until the
// sensor is connected.
func (s *Sensor) Calibration() (CalibrationInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal, s.state == Connected
}

// State returns the connection state.
func (s *Sensor) State() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close closes the transport. It does not wait for an in-flight request,
// so it can be used to abort a blocked receive.
func (s *Sensor) Close() error {
	return s.disconnect()
}

func (s *Sensor) disconnect() error {
	s.mu.Lock()
	s.linked = false
	s.state = Disconnected
	s.mu.Unlock()
	return s.tr.Close()
}

func (s *Sensor) protocolError(op string, err error) error {
	return &ProtocolError{Op: op, Timeout: s.cfg.timeout(), Err: err}
}
