package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// New creates a new Service. A windowDays of zero or less falls back to the
// standard rolling window.
func New(store club.ClubStore, metrics metrics.Metrics, pubsub pubsub.PubSubClient, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = ranking.CurrentWindowDays
	}
	return &Service{
		store:      store,
		metrics:    metrics,
		pubsub:     pubsub,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// WindowDays is the length of the current view.
func (s *Service) WindowDays() int {
	return s.windowDays
}

func (s *Service) asOf(t time.Time) time.Time {
	if t.IsZero() {
		return ranking.Day(s.now())
	}
	return ranking.Day(t)
}

// CurrentRankings ranks a category over the rolling window ending at asOf.
// A zero asOf means today.
func (s *Service) CurrentRankings(ctx context.Context, tenantID string, category ranking.Category, asOf time.Time) (ranking.Ranking, error) {
	return s.rankings(ctx, tenantID, category, s.asOf(asOf), s.windowDays, ViewCurrent)
}

// LifetimeRankings ranks a category over every result.
func (s *Service) LifetimeRankings(ctx context.Context, tenantID string, category ranking.Category) (ranking.Ranking, error) {
	return s.rankings(ctx, tenantID, category, s.asOf(time.Time{}), 0, ViewLifetime)
}

func (s *Service) rankings(ctx context.Context, tenantID string, category ranking.Category, asOf time.Time, windowDays int, view string) (ranking.Ranking, error) {
	if !category.Valid() {
		return ranking.Ranking{}, fmt.Errorf("%w: %q", ranking.ErrUnknownCategory, category)
	}
	start := time.Now()
	defer func() { s.metrics.ObserveRankingDuration(view, time.Since(start).Seconds()) }()

	results, err := s.store.ListScoredResults(ctx, tenantID, category)
	if err != nil {
		return ranking.Ranking{}, fmt.Errorf("list results: %w", err)
	}
	rows, err := ranking.ComputeRankings(results, category, asOf, windowDays)
	if err != nil {
		return ranking.Ranking{}, err
	}
	log.Debug("Computed rankings", "tenant", tenantID, "category", category, "view", view, "rows", len(rows))
	return ranking.Ranking{Category: category, AsOf: asOf, WindowDays: windowDays, Rows: rows}, nil
}

// CombinedDoublesRankings sums a gender's doubles and mixed doubles rankings.
func (s *Service) CombinedDoublesRankings(ctx context.Context, tenantID string, gender ranking.Gender, asOf time.Time, lifetime bool) (ranking.CombinedRanking, error) {
	if !gender.Valid() {
		return ranking.CombinedRanking{}, fmt.Errorf("%w: %q", ranking.ErrInvalidGender, gender)
	}
	start := time.Now()
	defer func() { s.metrics.ObserveRankingDuration(ViewCombined, time.Since(start).Seconds()) }()

	doublesCat, mixedCat := ranking.DoublesFor(gender), ranking.MixedFor(gender)
	results, err := s.store.ListScoredResults(ctx, tenantID, doublesCat, mixedCat)
	if err != nil {
		return ranking.CombinedRanking{}, fmt.Errorf("list results: %w", err)
	}

	day, window := s.asOf(asOf), s.windowDays
	if lifetime {
		window = 0
	}
	doubles, err := ranking.ComputeRankings(results, doublesCat, day, window)
	if err != nil {
		return ranking.CombinedRanking{}, err
	}
	mixed, err := ranking.ComputeRankings(results, mixedCat, day, window)
	if err != nil {
		return ranking.CombinedRanking{}, err
	}
	return ranking.ComputeCombined(gender,
		ranking.Ranking{Category: doublesCat, AsOf: day, WindowDays: window, Rows: doubles},
		ranking.Ranking{Category: mixedCat, AsOf: day, WindowDays: window, Rows: mixed},
	)
}

// RecordResult stores one result with points computed now, creating the
// event when needed. historicPoints is only read for historic events.
func (s *Service) RecordResult(ctx context.Context, tenantID string, event EventIdentity, playerID string, position ranking.Position, historicPoints *int, dryRun bool) (int, error) {
	if !event.Category.Valid() {
		return 0, fmt.Errorf("%w: %q", ranking.ErrUnknownCategory, event.Category)
	}
	if event.Name == "" || event.Date.IsZero() {
		return 0, ErrInvalidEvent
	}
	points, err := ranking.AwardPoints(event.Tier, position, historicPoints)
	if err != nil {
		return 0, err
	}

	var eventID string
	err = s.store.WithTx(ctx, func(tx club.ClubStore) error {
		player, err := tx.GetPlayer(ctx, tenantID, playerID)
		if err != nil {
			return fmt.Errorf("player %s: %w", playerID, err)
		}
		if !event.Category.Allows(player.Gender) {
			return fmt.Errorf("%w: %s is %s, category is %s", ranking.ErrCategoryGender, player.Name, player.Gender, event.Category)
		}
		if dryRun {
			log.Info("[Dry Run] Would record result", "player", playerID, "event", event.Name, "category", event.Category, "points", points)
			return nil
		}
		e, _, err := tx.GetOrCreateEvent(ctx, &club.Event{
			TenantID: tenantID,
			Name:     event.Name,
			Date:     event.Date,
			Tier:     event.Tier,
			Category: event.Category,
		})
		if err != nil {
			return fmt.Errorf("event: %w", err)
		}
		if e.Tier != event.Tier {
			return fmt.Errorf("%w: %s is %s", club.ErrTierMismatch, e.Name, e.Tier)
		}
		eventID = e.ID
		return tx.InsertResult(ctx, &club.Result{EventID: e.ID, PlayerID: playerID, Position: position, PointsAwarded: points})
	})
	if err != nil || dryRun {
		return points, err
	}

	s.metrics.IncResultsRecorded()
	log.Info("Recorded result", "tenant", tenantID, "player", playerID, "event", eventID, "points", points)
	s.publishChange(ctx, pubsub.ChangeNotice{
		TenantID:   tenantID,
		Categories: []string{string(event.Category)},
		Source:     "result",
		Reference:  eventID,
		Succeeded:  1,
	})
	return points, nil
}

// PlayerProfile returns a player's results, hidden events included, and
// their current and lifetime standing in every category they have public
// results in.
func (s *Service) PlayerProfile(ctx context.Context, tenantID, playerID string, asOf time.Time) (Profile, error) {
	player, err := s.store.GetPlayer(ctx, tenantID, playerID)
	if err != nil {
		return Profile{}, err
	}
	history, err := s.store.ListResultsForPlayer(ctx, tenantID, playerID)
	if err != nil {
		return Profile{}, err
	}

	day := s.asOf(asOf)
	played := make(map[ranking.Category]bool)
	for _, r := range history {
		if r.Event.Visibility == club.VisibilityPublic {
			played[r.Event.Category] = true
		}
	}
	cats := make([]ranking.Category, 0, len(played))
	for _, c := range ranking.Categories {
		if played[c] {
			cats = append(cats, c)
		}
	}

	standings := []Standing{}
	if len(cats) > 0 {
		results, err := s.store.ListScoredResults(ctx, tenantID, cats...)
		if err != nil {
			return Profile{}, err
		}
		for _, c := range cats {
			st := Standing{Category: c}
			current, err := ranking.ComputeRankings(results, c, day, s.windowDays)
			if err != nil {
				return Profile{}, err
			}
			st.CurrentPoints, st.CurrentRank = find(current, playerID)
			lifetime, err := ranking.ComputeRankings(results, c, day, 0)
			if err != nil {
				return Profile{}, err
			}
			st.LifetimePoints, st.LifetimeRank = find(lifetime, playerID)
			standings = append(standings, st)
		}
	}

	return Profile{Player: *player, Results: history, Standings: standings, AsOf: day}, nil
}

func find(rows []ranking.Row, playerID string) (int, int) {
	for _, r := range rows {
		if r.PlayerID == playerID {
			return r.TotalPoints, r.Rank
		}
	}
	return 0, 0
}
