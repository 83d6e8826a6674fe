package raseed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors of an App on its own registry.
type Metrics struct {
	Registry           *prometheus.Registry
	ReceiptsCreated    prometheus.Counter
	ValidationFailures prometheus.Counter
	Lookups            *prometheus.CounterVec // by result: found, not_found, error
	Exports            *prometheus.CounterVec // by format and result: ok, error
	ExportDuration     *prometheus.HistogramVec
}

// NewMetrics registers a fresh set of collectors, including the Go runtime and process
// collectors, on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ReceiptsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "receipts_created_total",
			Help:      "Receipts created and stored.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "validation_failures_total",
			Help:      "Submissions rejected by validation.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "lookups_total",
			Help:      "Receipt lookups by result.",
		}, []string{"result"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "raseed",
			Name:      "exports_total",
			Help:      "Receipt image exports by format and result.",
		}, []string{"format", "result"}),
		ExportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "raseed",
			Name:      "export_duration_seconds",
			Help:      "Time spent producing receipt images.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ReceiptsCreated,
		m.ValidationFailures,
		m.Lookups,
		m.Exports,
		m.ExportDuration,
	)
	return m
}
