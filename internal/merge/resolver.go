package merge

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/notifier"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
)

// Resolver merges duplicate player records.
type Resolver struct {
	store    club.ClubStore
	notifier notifier.Notifier
	metrics  metrics.Metrics
	pubsub   pubsub.PubSubClient
}

func New(store club.ClubStore, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Resolver {
	return &Resolver{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
	}
}

// Preview loads both players and plans the merge without writing.
func (r *Resolver) Preview(ctx context.Context, tenantID, primaryID, duplicateID string) (Preview, error) {
	plan, _, _, err := load(ctx, r.store, tenantID, primaryID, duplicateID)
	return plan, err
}

// Merge folds duplicate into primary in one transaction: results move,
// empty fields are filled, names are kept as alternates, the linked account
// moves and the duplicate is deleted.
func (r *Resolver) Merge(ctx context.Context, tenantID, primaryID, duplicateID string, dryRun bool) (Outcome, error) {
	var plan Preview
	err := r.store.WithTx(ctx, func(tx club.ClubStore) error {
		var primary, duplicate *club.Player
		var err error
		plan, primary, duplicate, err = load(ctx, tx, tenantID, primaryID, duplicateID)
		if err != nil {
			return err
		}
		if dryRun {
			log.Info("[Dry Run] Would merge players", "primary", primaryID, "duplicate", duplicateID,
				"events", plan.EventsTransferred, "points", plan.PointsTransferred)
			return nil
		}

		moved, err := tx.ReassignResults(ctx, tenantID, duplicateID, primaryID)
		if err != nil {
			return fmt.Errorf("reassign results: %w", err)
		}
		if int(moved) != plan.EventsTransferred {
			return fmt.Errorf("reassigned %d results, planned %d", moved, plan.EventsTransferred)
		}
		// The duplicate goes first so its account link is free for the primary.
		if err := tx.DeletePlayer(ctx, tenantID, duplicateID); err != nil {
			return fmt.Errorf("delete duplicate: %w", err)
		}
		apply(primary, *duplicate, plan)
		if err := tx.UpdatePlayer(ctx, primary); err != nil {
			return fmt.Errorf("update primary: %w", err)
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{EventsTransferred: plan.EventsTransferred, PointsTransferred: plan.PointsTransferred}
	if dryRun {
		return outcome, nil
	}

	r.metrics.IncMergesCompleted()
	log.Info("Merged players", "tenant", tenantID, "primary", primaryID, "duplicate", duplicateID,
		"events", outcome.EventsTransferred, "points", outcome.PointsTransferred)

	notice := pubsub.ChangeNotice{
		TenantID:   tenantID,
		Categories: plan.Categories(),
		Source:     "merge",
		Reference:  primaryID,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.pubsub.SendMessage(ctx, pubsub.EventPlayersMerged, notice); err != nil {
		log.Error("Failed to publish merge notice", "error", err, "primary", primaryID)
	}
	summary := notifier.MergeSummary{
		PrimaryName:       plan.PrimaryName,
		DuplicateName:     plan.DuplicateName,
		EventsTransferred: outcome.EventsTransferred,
		PointsTransferred: outcome.PointsTransferred,
	}
	if err := r.notifier.SendMergeSummary(ctx, summary, false); err != nil {
		log.Error("Failed to send merge summary", "error", err, "primary", primaryID)
	}
	return outcome, nil
}

func load(ctx context.Context, store club.ClubStore, tenantID, primaryID, duplicateID string) (Preview, *club.Player, *club.Player, error) {
	if primaryID == duplicateID {
		return Preview{}, nil, nil, ErrSamePlayer
	}
	primary, err := store.GetPlayer(ctx, tenantID, primaryID)
	if err != nil {
		return Preview{}, nil, nil, fmt.Errorf("primary player %s: %w", primaryID, err)
	}
	duplicate, err := store.GetPlayer(ctx, tenantID, duplicateID)
	if err != nil {
		return Preview{}, nil, nil, fmt.Errorf("duplicate player %s: %w", duplicateID, err)
	}
	primaryResults, err := store.ListResultsForPlayer(ctx, tenantID, primaryID)
	if err != nil {
		return Preview{}, nil, nil, err
	}
	duplicateResults, err := store.ListResultsForPlayer(ctx, tenantID, duplicateID)
	if err != nil {
		return Preview{}, nil, nil, err
	}
	plan, err := Plan(*primary, *duplicate, duplicateResults, primaryResults)
	return plan, primary, duplicate, err
}
