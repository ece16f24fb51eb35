package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	ImportRows         *prometheus.CounterVec
	ResultsRecorded    prometheus.Counter
	MergesCompleted    prometheus.Counter
	RankingDuration    *prometheus.HistogramVec
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
