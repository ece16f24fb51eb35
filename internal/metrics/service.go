package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ImportRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rankings_import_rows_total",
			Help: "The total number of committed import rows by outcome.",
		}, []string{"outcome"}),
		ResultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_results_recorded_total",
			Help: "The total number of results recorded outside of imports.",
		}),
		MergesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_merges_completed_total",
			Help: "The total number of completed player merges.",
		}),
		RankingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rankings_computation_duration_seconds",
			Help:    "The duration of ranking computations by view.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"view"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankings_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rankings_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ImportRows,
		s.ResultsRecorded,
		s.MergesCompleted,
		s.RankingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncImportRows(outcome string) {
	s.ImportRows.WithLabelValues(outcome).Inc()
}

func (s *Service) IncResultsRecorded() {
	s.ResultsRecorded.Inc()
}

func (s *Service) IncMergesCompleted() {
	s.MergesCompleted.Inc()
}

func (s *Service) ObserveRankingDuration(view string, duration float64) {
	s.RankingDuration.WithLabelValues(view).Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
