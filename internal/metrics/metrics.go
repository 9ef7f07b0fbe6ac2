// Package metrics exports merge run counters in the Prometheus text format so
// a node_exporter textfile collector can pick them up after each run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/superawat/Gate-QA/internal/merge"
)

const namespace = "gateqa"

// Outcome label values.
const (
	OutcomeKept          = "kept"
	OutcomeForeign       = "removed_for_branch"
	OutcomeInvalidSchema = "invalid_schema"
	OutcomeDuplicate     = "duplicate"
)

// Recorder holds the metrics of one run in a private registry.
type Recorder struct {
	registry    *prometheus.Registry
	records     *prometheus.CounterVec
	datasetSize prometheus.Gauge
	lastRun     prometheus.Gauge
	duration    prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records seen by the last merge run, by outcome.",
		}, []string{"outcome"}),
		datasetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the canonical dataset after the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last merge run finished.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last merge run.",
		}),
	}

	r.registry.MustRegister(r.records, r.datasetSize, r.lastRun, r.duration)
	return r
}

// Observe records the counters of a finished run.
func (r *Recorder) Observe(stats merge.Stats, finished time.Time, took time.Duration) {
	r.records.WithLabelValues(OutcomeKept).Add(float64(stats.Kept))
	r.records.WithLabelValues(OutcomeForeign).Add(float64(stats.RemovedForBranch))
	r.records.WithLabelValues(OutcomeInvalidSchema).Add(float64(stats.InvalidSchema))
	r.records.WithLabelValues(OutcomeDuplicate).Add(float64(stats.Duplicates))
	r.datasetSize.Set(float64(stats.Kept))
	r.lastRun.Set(float64(finished.Unix()))
	r.duration.Set(took.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
