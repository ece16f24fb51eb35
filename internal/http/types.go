package http

import (
	"net/http"
	"time"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/config"
	"github.com/mauv0809/ranking-tribble/internal/importer"
	"github.com/mauv0809/ranking-tribble/internal/leaderboard"
	"github.com/mauv0809/ranking-tribble/internal/merge"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/notifier"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

type Server struct {
	Store          club.ClubStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Leaderboard    *leaderboard.Service
	Importer       *importer.Importer
	Merger         *merge.Resolver
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type eventRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Tier     string `json:"tier"`
}

type resultRequest struct {
	Event    eventRequest `json:"event"`
	PlayerID string       `json:"player_id"`
	Position string       `json:"position"`
	Points   *int         `json:"points,omitempty"`
}

type resultResponse struct {
	Points int  `json:"points"`
	DryRun bool `json:"dry_run,omitempty"`
}

type commitRequest struct {
	Filename    string                      `json:"filename"`
	Operator    string                      `json:"operator"`
	CSV         string                      `json:"csv"`
	Resolutions map[int]importer.Resolution `json:"resolutions"`
}

type mergeRequest struct {
	PrimaryID   string `json:"primary_id"`
	DuplicateID string `json:"duplicate_id"`
}

type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

type correctionRequest struct {
	Position string `json:"position"`
	Points   *int   `json:"points,omitempty"`
}

type deleteResponse struct {
	Deleted string `json:"deleted"`
	Results int    `json:"results,omitempty"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type combinedResponse struct {
	Gender ranking.Gender `json:"gender"`
	View   string         `json:"view"`
	AsOf   time.Time      `json:"as_of"`
	Rows   []ranking.Row  `json:"rows"`
}
