package services

import "github.com/prometheus/client_golang/prometheus"

var (
	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tuneup_resolutions_total",
			Help: "Track resolutions by outcome",
		},
		[]string{"status"},
	)
	resolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tuneup_resolution_duration_seconds",
			Help:    "Video search round-trip time",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RegisterMetrics registers the resolver collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(resolutions, resolveDuration)
}
