// internal/monitor/metrics.go

// Package monitor exposes per-sensor replication metrics over Prometheus.
package monitor

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tamzrod/netft-replicator/internal/poller"
	"github.com/tamzrod/netft-replicator/internal/status"
)

const namespace = "netft"

// Metrics holds the collectors for every sensor. It owns its registry so
// tests and multiple instances do not collide on the default one.
type Metrics struct {
	reg *prometheus.Registry

	samples     *prometheus.CounterVec
	stale       *prometheus.CounterVec
	errors      *prometheus.CounterVec
	reconnects  *prometheus.CounterVec
	writeErrors *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	connected   *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples read from the sensor.",
		}, []string{"sensor"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_total",
			Help:      "Poll cycles where the sensor did not answer within the timeout.",
		}, []string{"sensor"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed poll cycles by status error code.",
		}, []string{"sensor", "code"}),
		reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Successful reconnects after a fatal error.",
		}, []string{"sensor"}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_errors_total",
			Help:      "Failed deliveries to targets.",
		}, []string{"sensor"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "read_latency_seconds",
			Help:      "Sample request/response latency.",
			Buckets:   []float64{.0005, .001, .002, .005, .01, .025, .05, .1, .25},
		}, []string{"sensor"}),
		connected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while the sensor connection is up.",
		}, []string{"sensor"}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		m.samples,
		m.stale,
		m.errors,
		m.reconnects,
		m.writeErrors,
		m.latency,
		m.connected,
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObservePoll records one poll cycle.
func (m *Metrics) ObservePoll(res poller.PollResult) {
	id := res.SensorID

	if res.Reconnected {
		m.reconnects.WithLabelValues(id).Inc()
	}

	switch {
	case res.Err != nil:
		code := status.CodeFor(res.Err)
		m.errors.WithLabelValues(id, strconv.Itoa(int(code))).Inc()
		m.connected.WithLabelValues(id).Set(0)
		return
	case res.Sample == nil:
		m.stale.WithLabelValues(id).Inc()
	default:
		m.samples.WithLabelValues(id).Inc()
	}

	m.connected.WithLabelValues(id).Set(1)
	m.latency.WithLabelValues(id).Observe(res.Latency.Seconds())
}

// ObserveWrite records a delivery outcome.
func (m *Metrics) ObserveWrite(sensorID string, err error) {
	if err != nil {
		m.writeErrors.WithLabelValues(sensorID).Inc()
	}
}

// Handler serves /metrics and /health.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Serve blocks serving Handler on listen until ctx is done.
func (m *Metrics) Serve(ctx context.Context, listen string, logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("metrics server listening", "listen", listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "metrics server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "metrics shutdown")
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "metrics server")
		}
		return nil
	}
}
