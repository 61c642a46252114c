package tasks

import "github.com/prometheus/client_golang/prometheus"

var (
	ingestedTracks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuneup_ingest_tracks_total",
			Help: "Tracks processed by ingestion, by resolution outcome",
		},
		[]string{"outcome"},
	)
	ingestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tuneup_ingest_duration_seconds",
			Help:    "Wall time of ingest operations",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)
)

// RegisterMetrics registers the ingestion collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ingestedTracks, ingestDuration)
}
