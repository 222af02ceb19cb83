// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records deduplication run metrics in a private Prometheus
// registry. The CLI exports them in text format for node_exporter's
// textfile collector. A nil *Recorder ignores every observation.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/paper-dedup/internal/cache"
	"github.com/pdiddy/paper-dedup/pkg/types"
)

const namespace = "paperdedup"

// Recorder holds the run collectors.
type Recorder struct {
	registry *prometheus.Registry

	runs          prometheus.Counter
	records       *prometheus.CounterVec
	duplicates    *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	cacheHitRatio *prometheus.GaugeVec
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Deduplication runs completed.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records seen by deduplication runs, by kind (input or output).",
		}, []string{"kind"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Records removed as duplicates, by pipeline stage.",
		}, []string{"stage"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of a deduplication run.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120, 300},
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock time of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		cacheHitRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_hit_ratio",
			Help:      "Hit ratio of the similarity caches.",
		}, []string{"cache"}),
	}
	r.registry.MustRegister(r.runs, r.records, r.duplicates, r.runDuration, r.stageDuration, r.cacheHitRatio)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveRun records one completed run.
func (r *Recorder) ObserveRun(res types.DeduplicationResult) {
	if r == nil {
		return
	}
	r.runs.Inc()
	r.records.WithLabelValues("input").Add(float64(res.OriginalCount))
	r.records.WithLabelValues("output").Add(float64(res.DeduplicatedCount))
	for stage, n := range res.StageCounts {
		r.duplicates.WithLabelValues(string(stage)).Add(float64(n))
	}
	for stage, d := range res.StageDurations {
		r.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
	}
	r.runDuration.Observe(res.ProcessingTime.Seconds())
}

// ObserveCache records the hit ratio of a named cache.
func (r *Recorder) ObserveCache(name string, s cache.Stats) {
	if r == nil {
		return
	}
	r.cacheHitRatio.WithLabelValues(name).Set(s.HitRatio())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
