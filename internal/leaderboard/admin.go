package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// CorrectResult rewrites the position and points snapshot of one result of
// an event. A nil points recomputes the snapshot from the event tier; a
// supplied value replaces it as is.
func (s *Service) CorrectResult(ctx context.Context, tenantID, eventID, resultID string, position ranking.Position, points *int, dryRun bool) (int, error) {
	if !position.Valid() {
		return 0, fmt.Errorf("%w: position %q", ranking.ErrInvalidTierOrPosition, position)
	}
	if points != nil && *points < 0 {
		return 0, fmt.Errorf("%w: %d", ranking.ErrNegativePoints, *points)
	}

	var awarded int
	var event *club.Event
	err := s.store.WithTx(ctx, func(tx club.ClubStore) error {
		var err error
		event, err = tx.GetEvent(ctx, tenantID, eventID)
		if err != nil {
			return fmt.Errorf("event %s: %w", eventID, err)
		}
		if points != nil {
			awarded = *points
		} else if awarded, err = ranking.AwardPoints(event.Tier, position, nil); err != nil {
			return err
		}
		if dryRun {
			log.Info("[Dry Run] Would correct result", "event", eventID, "result", resultID, "position", position, "points", awarded)
			return nil
		}
		if err := tx.UpdateResult(ctx, tenantID, eventID, resultID, position, awarded); err != nil {
			return fmt.Errorf("result %s: %w", resultID, err)
		}
		return nil
	})
	if err != nil || dryRun {
		return awarded, err
	}

	log.Info("Corrected result", "tenant", tenantID, "event", eventID, "result", resultID, "points", awarded)
	s.publishChange(ctx, pubsub.ChangeNotice{
		TenantID:   tenantID,
		Categories: []string{string(event.Category)},
		Source:     "correction",
		Reference:  resultID,
		Succeeded:  1,
	})
	return awarded, nil
}

// SetEventVisibility hides an event from every ranking or republishes it.
// The event's results are kept either way.
func (s *Service) SetEventVisibility(ctx context.Context, tenantID, eventID string, v club.Visibility, dryRun bool) (*club.Event, error) {
	if _, err := club.ParseVisibility(string(v)); err != nil {
		return nil, err
	}

	var event *club.Event
	err := s.store.WithTx(ctx, func(tx club.ClubStore) error {
		var err error
		event, err = tx.GetEvent(ctx, tenantID, eventID)
		if err != nil {
			return fmt.Errorf("event %s: %w", eventID, err)
		}
		if dryRun {
			log.Info("[Dry Run] Would change event visibility", "event", eventID, "from", event.Visibility, "to", v)
			return nil
		}
		return tx.SetEventVisibility(ctx, tenantID, eventID, v)
	})
	if err != nil {
		return nil, err
	}
	if dryRun || event.Visibility == v {
		return event, nil
	}

	event.Visibility = v
	log.Info("Changed event visibility", "tenant", tenantID, "event", eventID, "visibility", v)
	s.publishChange(ctx, pubsub.ChangeNotice{
		TenantID:   tenantID,
		Categories: []string{string(event.Category)},
		Source:     "event",
		Reference:  eventID,
	})
	return event, nil
}

// DeleteEvent removes an event and its results.
func (s *Service) DeleteEvent(ctx context.Context, tenantID, eventID string, dryRun bool) error {
	var event *club.Event
	err := s.store.WithTx(ctx, func(tx club.ClubStore) error {
		var err error
		event, err = tx.GetEvent(ctx, tenantID, eventID)
		if err != nil {
			return fmt.Errorf("event %s: %w", eventID, err)
		}
		if dryRun {
			log.Info("[Dry Run] Would delete event", "event", eventID, "name", event.Name)
			return nil
		}
		return tx.DeleteEvent(ctx, tenantID, eventID)
	})
	if err != nil || dryRun {
		return err
	}

	log.Info("Deleted event", "tenant", tenantID, "event", eventID, "name", event.Name)
	s.publishChange(ctx, pubsub.ChangeNotice{
		TenantID:   tenantID,
		Categories: []string{string(event.Category)},
		Source:     "event",
		Reference:  eventID,
	})
	return nil
}

// DeletePlayer removes a player together with their results. It returns the
// number of results removed.
func (s *Service) DeletePlayer(ctx context.Context, tenantID, playerID string, dryRun bool) (int, error) {
	var results []club.PlayerResult
	err := s.store.WithTx(ctx, func(tx club.ClubStore) error {
		if _, err := tx.GetPlayer(ctx, tenantID, playerID); err != nil {
			return fmt.Errorf("player %s: %w", playerID, err)
		}
		var err error
		results, err = tx.ListResultsForPlayer(ctx, tenantID, playerID)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		if dryRun {
			log.Info("[Dry Run] Would delete player", "player", playerID, "results", len(results))
			return nil
		}
		return tx.DeletePlayer(ctx, tenantID, playerID)
	})
	if err != nil || dryRun {
		return len(results), err
	}

	log.Info("Deleted player", "tenant", tenantID, "player", playerID, "results", len(results))
	if len(results) == 0 {
		return 0, nil
	}
	seen := make(map[ranking.Category]bool)
	for _, r := range results {
		seen[r.Event.Category] = true
	}
	s.publishChange(ctx, pubsub.ChangeNotice{
		TenantID:   tenantID,
		Categories: categoryNames(seen),
		Source:     "player",
		Reference:  playerID,
	})
	return len(results), nil
}

// publishChange sends a results-changed notice. Failures are logged; the
// change itself has already committed.
func (s *Service) publishChange(ctx context.Context, notice pubsub.ChangeNotice) {
	notice.OccurredAt = time.Now().UTC()
	if err := s.pubsub.SendMessage(ctx, pubsub.EventResultsChanged, notice); err != nil {
		log.Error("Failed to publish results change", "error", err, "source", notice.Source, "reference", notice.Reference)
	}
}

func categoryNames(set map[ranking.Category]bool) []string {
	names := make([]string, 0, len(set))
	for c := range set {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}
