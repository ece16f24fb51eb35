package leaderboard

import (
	"errors"
	"time"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// Ranking views, also used as metric labels.
const (
	ViewCurrent  = "current"
	ViewLifetime = "lifetime"
	ViewCombined = "combined"
)

// ErrInvalidEvent is returned when a result names no event or event date.
var ErrInvalidEvent = errors.New("event name and date are required")

// Service answers ranking queries and records single results.
type Service struct {
	store      club.ClubStore
	metrics    metrics.Metrics
	pubsub     pubsub.PubSubClient
	windowDays int
	now        func() time.Time
}

// EventIdentity names the event a result belongs to.
type EventIdentity struct {
	Name     string           `json:"name"`
	Date     time.Time        `json:"date"`
	Category ranking.Category `json:"category"`
	Tier     ranking.Tier     `json:"tier"`
}

// Standing is a player's position in one category. A zero rank means the
// player is unranked in that view.
type Standing struct {
	Category       ranking.Category `json:"category"`
	CurrentPoints  int              `json:"current_points"`
	CurrentRank    int              `json:"current_rank"`
	LifetimePoints int              `json:"lifetime_points"`
	LifetimeRank   int              `json:"lifetime_rank"`
}

// Profile is a player with their results and standings.
type Profile struct {
	Player    club.Player         `json:"player"`
	Results   []club.PlayerResult `json:"results"`
	Standings []Standing          `json:"standings"`
	AsOf      time.Time           `json:"as_of"`
}
