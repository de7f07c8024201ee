package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go-scout-export/internal/model"
)

// Metrics contains Prometheus metrics for export runs. A nil *Metrics
// records nothing.
type Metrics struct {
	exports            *prometheus.CounterVec
	exportDuration     *prometheus.HistogramVec
	chunkFetchDuration prometheus.Histogram
	recordsFetched     prometheus.Counter
	artifactsPublished *prometheus.CounterVec
}

// NewMetrics creates the export metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoutexport_exports_total",
				Help: "Total number of export runs by mode and final state",
			},
			[]string{"mode", "outcome"},
		),
		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scoutexport_export_duration_seconds",
				Help:    "Wall time of export runs",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 600},
			},
			[]string{"mode"},
		),
		chunkFetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scoutexport_chunk_fetch_duration_seconds",
				Help:    "Time to fetch one chunk of teams",
				Buckets: prometheus.DefBuckets,
			},
		),
		recordsFetched: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scoutexport_records_fetched_total",
				Help: "Total number of scouts fetched",
			},
		),
		artifactsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoutexport_artifacts_published_total",
				Help: "Total number of artifacts committed to storage",
			},
			[]string{"strategy"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.exports, m.exportDuration, m.chunkFetchDuration, m.recordsFetched, m.artifactsPublished)
	}
	return m
}

func (m *Metrics) observeChunk(d time.Duration, loaded []model.TeamRecords) {
	if m == nil {
		return
	}
	m.chunkFetchDuration.Observe(d.Seconds())
	m.recordsFetched.Add(float64(CountRecords(loaded)))
}

func (m *Metrics) observeRun(mode model.Mode, state model.State, d time.Duration) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(string(mode), string(state)).Inc()
	m.exportDuration.WithLabelValues(string(mode)).Observe(d.Seconds())
}

func (m *Metrics) observePublished(strategy string, n int) {
	if m == nil {
		return
	}
	m.artifactsPublished.WithLabelValues(strategy).Add(float64(n))
}
