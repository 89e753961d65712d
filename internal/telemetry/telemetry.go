// Package telemetry exposes the reporter's own counters in Prometheus format.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Cycle results recorded in pi_reporter_cycles_total.
const (
	ResultPublished     = "published"
	ResultNoMetrics     = "no_metrics"
	ResultPublishFailed = "publish_failed"
	ResultPanic         = "panic"
)

// Metrics holds the reporter's self-metrics on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	cycles      *prometheus.CounterVec
	messages    prometheus.Counter
	snapshot    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New creates and registers the self-metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pi_reporter_cycles_total",
			Help: "Scrape and publish cycles by result.",
		}, []string{"result"}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pi_reporter_messages_published_total",
			Help: "MQTT messages published.",
		}),
		snapshot: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pi_reporter_snapshot_metrics",
			Help: "Metrics extracted in the last cycle.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pi_reporter_last_success_timestamp_seconds",
			Help: "Unix time of the last fully published cycle.",
		}),
	}
	m.registry.MustRegister(m.cycles, m.messages, m.snapshot, m.lastSuccess)
	for _, r := range []string{ResultPublished, ResultNoMetrics, ResultPublishFailed, ResultPanic} {
		m.cycles.WithLabelValues(r)
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveCycle counts one finished cycle.
func (m *Metrics) ObserveCycle(result string) {
	m.cycles.WithLabelValues(result).Inc()
	if result == ResultPublished {
		m.lastSuccess.SetToCurrentTime()
	}
}

// AddMessages adds n to the published message counter.
func (m *Metrics) AddMessages(n int) {
	m.messages.Add(float64(n))
}

// SetSnapshotSize records how many metrics the last extraction produced.
func (m *Metrics) SetSnapshotSize(n int) {
	m.snapshot.Set(float64(n))
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.registry,
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Serve exposes the metrics on addr at path until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr, path string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving telemetry", zap.String("addr", addr), zap.String("path", path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
