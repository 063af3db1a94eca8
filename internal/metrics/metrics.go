package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/assay-loader/constants"
)

const namespace = "assay_loader"

const (
	MetricRows        = "rows_total"
	MetricRunFailures = "run_failures_total"
	MetricDuration    = "run_duration_seconds"
	MetricLastSuccess = "last_success_timestamp_seconds"
)

// Metrics holds the counters of one loader run on a private registry, so a
// run can be written out as a node-exporter textfile.
type Metrics struct {
	registry    *prometheus.Registry
	rows        *prometheus.CounterVec
	failures    prometheus.Counter
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New registers the run metrics for loader (e.g. "assaying_details").
func New(loader string) *Metrics {
	labels := prometheus.Labels{"loader": loader}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        MetricRows,
			Help:        "Source rows processed, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        MetricRunFailures,
			Help:        "Runs that aborted and rolled back.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        MetricDuration,
			Help:        "Wall time of the last run.",
			ConstLabels: labels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        MetricLastSuccess,
			Help:        "Unix time of the last committed run.",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.rows, m.failures, m.duration, m.lastSuccess)
	return m
}

// RecordOutcome counts one row.
func (m *Metrics) RecordOutcome(kind constants.OutcomeKind) {
	m.rows.WithLabelValues(string(kind)).Inc()
}

// AddRows counts n rows under a free-form outcome label.
func (m *Metrics) AddRows(outcome string, n int) {
	if n > 0 {
		m.rows.WithLabelValues(outcome).Add(float64(n))
	}
}

// ObserveRun records how the run ended.
func (m *Metrics) ObserveRun(d time.Duration, err error, now time.Time) {
	m.duration.Set(d.Seconds())
	if err != nil {
		m.failures.Inc()
		return
	}
	m.lastSuccess.Set(float64(now.Unix()))
}

// Gatherer exposes the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry atomically in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
