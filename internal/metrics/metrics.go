// Package metrics exports a du.Report as Prometheus metrics, for the
// node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vietdv277/s3du/internal/du"
)

const namespace = "s3du"

// ReportMetrics holds the Prometheus collectors a report is recorded into
type ReportMetrics struct {
	reg        *prometheus.Registry
	bucketSize *prometheus.GaugeVec
	totalSize  *prometheus.GaugeVec
	buckets    *prometheus.GaugeVec
	failures   *prometheus.CounterVec
	duration   *prometheus.GaugeVec
	lastRun    *prometheus.GaugeVec
}

// NewReportMetrics registers the report metrics on a fresh registry
func NewReportMetrics() *ReportMetrics {
	labels := []string{"backend", "region"}

	m := &ReportMetrics{
		reg: prometheus.NewRegistry(),
		bucketSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bucket_size_bytes",
			Help:      "Size of the bucket in bytes.",
		}, []string{"bucket", "backend", "region"}),
		totalSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_size_bytes",
			Help:      "Sum of the sizes of every sized bucket.",
		}, labels),
		buckets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buckets",
			Help:      "Number of buckets by sizing result.",
		}, append([]string{"result"}, labels...)), // result = "ok" | "error"
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bucket_failures_total",
			Help:      "Buckets whose size could not be computed.",
		}, []string{"bucket", "backend", "region"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the sizing run in seconds.",
		}, labels),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the sizing run started.",
		}, labels),
	}

	m.reg.MustRegister(m.bucketSize, m.totalSize, m.buckets, m.failures, m.duration, m.lastRun)

	return m
}

// Registry returns the registry the metrics are registered on
func (m *ReportMetrics) Registry() *prometheus.Registry {
	return m.reg
}

// Observe records a report
func (m *ReportMetrics) Observe(report *du.Report) {
	backend := string(report.Backend)
	region := report.Region

	var ok, failed float64
	for _, res := range report.Results {
		if !res.OK() {
			m.failures.WithLabelValues(res.Bucket.Name, backend, region).Inc()
			failed++
			continue
		}
		m.bucketSize.WithLabelValues(res.Bucket.Name, backend, region).Set(float64(res.Size))
		ok++
	}

	m.buckets.WithLabelValues("ok", backend, region).Set(ok)
	m.buckets.WithLabelValues("error", backend, region).Set(failed)
	m.totalSize.WithLabelValues(backend, region).Set(float64(report.Total))
	m.duration.WithLabelValues(backend, region).Set(report.Duration.Seconds())
	if !report.Started.IsZero() {
		m.lastRun.WithLabelValues(backend, region).Set(float64(report.Started.Unix()))
	}
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically.
func (m *ReportMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
