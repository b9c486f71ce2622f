// cmd/ftreplicator/pipeline_test.go
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"
	"go.viam.com/test"

	"github.com/tamzrod/netft-replicator/internal/monitor"
	"github.com/tamzrod/netft-replicator/internal/netft"
	"github.com/tamzrod/netft-replicator/internal/netft/netfttest"
	"github.com/tamzrod/netft-replicator/internal/poller"
	"github.com/tamzrod/netft-replicator/internal/status"
)

type fakeWriter struct {
	mu     sync.Mutex
	writes []poller.PollResult
}

func (f *fakeWriter) Write(ctx context.Context, res poller.PollResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, res)
	return nil
}

type fakeStatusWriter struct {
	mu    sync.Mutex
	snaps []status.Snapshot
}

func (f *fakeStatusWriter) WriteStatus(s status.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = append(f.snaps, s)
	return nil
}

func (f *fakeStatusWriter) wait(t *testing.T, n int) []status.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.snaps) >= n {
			out := append([]status.Snapshot(nil), f.snaps...)
			f.mu.Unlock()
			return out
		}
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d status writes", n)
	return nil
}

func TestPipelineStatusLifecycle(t *testing.T) {
	clk := clock.NewMock()
	data := &fakeWriter{}
	sw := &fakeStatusWriter{}
	m := monitor.New()

	pl := &pipeline{
		sensorID: "ft0",
		data:     data,
		status:   sw,
		metrics:  m,
		clock:    clk,
		logger:   zaptest.NewLogger(t).Sugar(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := make(chan poller.PollResult)
	done := make(chan struct{})
	go func() {
		pl.run(ctx, in)
		close(done)
	}()

	// start: full assert of the unknown state
	snaps := sw.wait(t, 1)
	test.That(t, snaps[0], test.ShouldResemble, status.Snapshot{Health: status.HealthUnknown})

	in <- poller.PollResult{SensorID: "ft0", Sample: &netft.Sample{}}
	snaps = sw.wait(t, 2)
	test.That(t, snaps[1].Health, test.ShouldEqual, status.HealthOK)

	// same outcome again: no status write
	in <- poller.PollResult{SensorID: "ft0", Sample: &netft.Sample{}}

	in <- poller.PollResult{SensorID: "ft0", Err: netft.ErrNotConnected}
	snaps = sw.wait(t, 3)
	test.That(t, snaps[2], test.ShouldResemble, status.Snapshot{
		Health:        status.HealthError,
		LastErrorCode: status.CodeNotConnected,
	})

	clk.Add(time.Second)
	snaps = sw.wait(t, 4)
	test.That(t, snaps[3].SecondsInError, test.ShouldEqual, uint16(1))

	// stale: no sample, no error
	in <- poller.PollResult{SensorID: "ft0"}
	snaps = sw.wait(t, 5)
	test.That(t, snaps[4].Health, test.ShouldEqual, status.HealthStale)

	cancel()
	<-done

	data.mu.Lock()
	test.That(t, data.writes, test.ShouldHaveLength, 4)
	data.mu.Unlock()
}

func TestPipelineWithoutStatus(t *testing.T) {
	data := &fakeWriter{}
	pl := &pipeline{
		sensorID: "ft0",
		data:     data,
		clock:    clock.NewMock(),
		logger:   zaptest.NewLogger(t).Sugar(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan poller.PollResult)
	done := make(chan struct{})
	go func() {
		pl.run(ctx, in)
		close(done)
	}()

	in <- poller.PollResult{SensorID: "ft0", Err: errors.New("boom")}
	in <- poller.PollResult{SensorID: "ft0", Sample: &netft.Sample{}}
	cancel()
	<-done

	test.That(t, data.writes, test.ShouldHaveLength, 2)
}

func TestReadCommand(t *testing.T) {
	srv, err := netfttest.NewServer("127.0.0.1:0", simCalibration)
	test.That(t, err, test.ShouldBeNil)
	defer srv.Close()
	srv.SetSample(netft.RawSample{Force: [3]int16{1000, 2000, 3000}, Torque: [3]int16{1000, 1000, 1000}})

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	cfg := srv.Config()
	err = app.Run([]string{
		"ftreplicator", "--quiet", "read",
		"--host", cfg.Host,
		"--port", strconv.Itoa(cfg.Port),
		"--timeout", "1s",
		"--raw",
		"--count", "2",
		"--interval", "1ms",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "calibration: force=N torque=N-m")
	test.That(t, bytes.Count(out.Bytes(), []byte("force[N]=1 2 3 torque[N-m]=0.1 0.1 0.1")), test.ShouldEqual, 2)
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	test.That(t, os.WriteFile(path, []byte("replicator:\n  sensors: []\n"), 0o600), test.ShouldBeNil)

	err := newApp().Run([]string{"ftreplicator", "--quiet", "run", path})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "config validation failed")
}
