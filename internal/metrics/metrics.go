// Package metrics records per-run pipeline counters on a private registry
// and can dump them as a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scout"

// Recorder holds the metrics of one pipeline run.
type Recorder struct {
	reg *prometheus.Registry

	recordsIngested *prometheus.CounterVec
	issues          *prometheus.CounterVec
	undefined       *prometheus.CounterVec
	cohortSize      *prometheus.GaugeVec
	stageDuration   *prometheus.HistogramVec
}

// NewRecorder returns a Recorder backed by a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		recordsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_ingested_total",
			Help:      "Rows read per input category",
		}, []string{"category"}),
		issues: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Per-record issues raised per stage",
		}, []string{"stage"}),
		undefined: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undefined_values_total",
			Help:      "Undefined values per column kind in the final table",
		}, []string{"kind"}),
		cohortSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cohort_size",
			Help:      "Qualifying players per position group",
		}, []string{"group"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Ingested adds n rows for category.
func (r *Recorder) Ingested(category string, n int) {
	r.recordsIngested.WithLabelValues(category).Add(float64(n))
}

// Issues adds n issues for stage.
func (r *Recorder) Issues(stage string, n int) {
	if n > 0 {
		r.issues.WithLabelValues(stage).Add(float64(n))
	}
}

// Undefined adds n undefined values of kind.
func (r *Recorder) Undefined(kind string, n int) {
	if n > 0 {
		r.undefined.WithLabelValues(kind).Add(float64(n))
	}
}

// CohortSize sets the size of group's cohort.
func (r *Recorder) CohortSize(group string, n int) {
	r.cohortSize.WithLabelValues(group).Set(float64(n))
}

// Stage starts timing stage. Call the returned func when it ends.
func (r *Recorder) Stage(stage string) func() {
	start := time.Now()
	return func() {
		r.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// WriteTextfile writes the registry in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
