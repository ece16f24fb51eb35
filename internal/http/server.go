package http

import (
	"net/http"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/config"
	"github.com/mauv0809/ranking-tribble/internal/importer"
	"github.com/mauv0809/ranking-tribble/internal/leaderboard"
	"github.com/mauv0809/ranking-tribble/internal/merge"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/notifier"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
)

func NewServer(store club.ClubStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, leaderboard *leaderboard.Service, importer *importer.Importer, merger *merge.Resolver, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Leaderboard:    leaderboard,
		Importer:       importer,
		Merger:         merger,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	api := func(h http.Handler) http.Handler {
		return Chain(h, paramsMiddleware, s.tenantMiddleware)
	}
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("POST /clear", api(s.ClearStoreHandler()))

	s.Router.Handle("GET /rankings/{category}/{view}", api(s.RankingsHandler()))
	s.Router.Handle("GET /rankings/combined/{gender}", api(s.CombinedRankingsHandler()))
	s.Router.Handle("GET /players", api(s.ListPlayersHandler()))
	s.Router.Handle("GET /players/{id}", api(s.PlayerProfileHandler()))
	s.Router.Handle("DELETE /players/{id}", api(s.DeletePlayerHandler()))
	s.Router.Handle("POST /results", api(s.RecordResultHandler()))

	s.Router.Handle("GET /events", api(s.ListEventsHandler()))
	s.Router.Handle("GET /events/{id}", api(s.EventHandler()))
	s.Router.Handle("PATCH /events/{id}", api(s.EventVisibilityHandler()))
	s.Router.Handle("DELETE /events/{id}", api(s.DeleteEventHandler()))
	s.Router.Handle("PATCH /events/{id}/results/{result}", api(s.CorrectResultHandler()))

	s.Router.Handle("GET /import/template", api(s.ImportTemplateHandler()))
	s.Router.Handle("POST /import", api(s.StartImportHandler()))
	s.Router.Handle("POST /import/commit", api(s.CommitImportHandler()))
	s.Router.Handle("GET /imports/{id}", api(s.ImportBatchHandler()))
	s.Router.Handle("DELETE /imports/{id}", api(s.DeleteImportBatchHandler()))

	s.Router.Handle("GET /players/merge/preview", api(s.MergePreviewHandler()))
	s.Router.Handle("POST /players/merge", api(s.MergeHandler()))

	s.Router.Handle("POST /pubsub/results-changed", api(s.ResultsChangedHandler()))
	s.Router.Handle("POST /slack/command/rankings", Chain(s.RankingsCommandHandler(), paramsMiddleware, s.tenantMiddleware, s.slackVerifyMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
