package leaderboard

import (
	"context"
	"testing"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) onlyResult(t *testing.T, playerID string) club.PlayerResult {
	t.Helper()
	history, err := f.store.ListResultsForPlayer(context.Background(), tenant, playerID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	return history[0]
}

func (f *fixture) current(t *testing.T, category ranking.Category) []ranking.Row {
	t.Helper()
	got, err := f.service.CurrentRankings(context.Background(), tenant, category, today)
	require.NoError(t, err)
	return got.Rows
}

func TestCorrectResult(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()
	bob := f.player(t, "Bob", ranking.GenderMale)
	f.record(t, "Open", today.AddDate(0, 0, -10), ranking.MensSingles, ranking.Tier2, bob.ID, ranking.PositionWinner)
	r := f.onlyResult(t, bob.ID)
	f.pubsub.Reset()

	t.Run("recomputes from the tier", func(t *testing.T) {
		want, err := ranking.ComputePoints(ranking.Tier2, ranking.PositionSecond)
		require.NoError(t, err)
		got, err := f.service.CorrectResult(ctx, tenant, r.EventID, r.ID, ranking.PositionSecond, nil, false)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, ranking.PositionSecond, f.onlyResult(t, bob.ID).Position)
		assert.Equal(t, want, f.current(t, ranking.MensSingles)[0].TotalPoints)

		calls := f.pubsub.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, pubsub.EventResultsChanged, calls[0].Topic)
		assert.Equal(t, []string{"mens_singles"}, calls[0].Data.(pubsub.ChangeNotice).Categories)
	})

	t.Run("supplied points replace the snapshot", func(t *testing.T) {
		points := 42
		got, err := f.service.CorrectResult(ctx, tenant, r.EventID, r.ID, ranking.PositionThird, &points, false)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 42, f.onlyResult(t, bob.ID).PointsAwarded)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		f.pubsub.Reset()
		_, err := f.service.CorrectResult(ctx, tenant, r.EventID, r.ID, ranking.PositionWinner, nil, true)
		require.NoError(t, err)
		assert.Equal(t, 42, f.onlyResult(t, bob.ID).PointsAwarded)
		assert.Empty(t, f.pubsub.Calls())
	})

	negative := -1
	tests := []struct {
		name     string
		eventID  string
		resultID string
		position ranking.Position
		points   *int
		want     error
	}{
		{"unknown position", r.EventID, r.ID, "champion", nil, ranking.ErrInvalidTierOrPosition},
		{"negative points", r.EventID, r.ID, ranking.PositionWinner, &negative, ranking.ErrNegativePoints},
		{"unknown event", "nope", r.ID, ranking.PositionWinner, nil, club.ErrNotFound},
		{"unknown result", r.EventID, "nope", ranking.PositionWinner, nil, club.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CorrectResult(ctx, tenant, tt.eventID, tt.resultID, tt.position, tt.points, false)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("result of another event", func(t *testing.T) {
		f.record(t, "Closed", today.AddDate(0, 0, -3), ranking.MensSingles, ranking.Tier3, bob.ID, ranking.PositionWinner)
		history, err := f.store.ListResultsForPlayer(ctx, tenant, bob.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		closed := history[0]
		require.Equal(t, "Closed", closed.Event.Name)

		_, err = f.service.CorrectResult(ctx, tenant, closed.EventID, r.ID, ranking.PositionWinner, nil, false)
		assert.ErrorIs(t, err, club.ErrNotFound)
	})
}

func TestSetEventVisibility(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()
	bob := f.player(t, "Bob", ranking.GenderMale)
	f.record(t, "Open", today.AddDate(0, 0, -10), ranking.MensSingles, ranking.Tier2, bob.ID, ranking.PositionWinner)
	r := f.onlyResult(t, bob.ID)
	f.pubsub.Reset()

	e, err := f.service.SetEventVisibility(ctx, tenant, r.EventID, club.VisibilityHidden, true)
	require.NoError(t, err)
	assert.Equal(t, club.VisibilityPublic, e.Visibility)
	assert.Len(t, f.current(t, ranking.MensSingles), 1)

	e, err = f.service.SetEventVisibility(ctx, tenant, r.EventID, club.VisibilityHidden, false)
	require.NoError(t, err)
	assert.Equal(t, club.VisibilityHidden, e.Visibility)
	assert.Empty(t, f.current(t, ranking.MensSingles))
	assert.Len(t, f.pubsub.Calls(), 1)

	// Setting the same visibility again changes nothing.
	_, err = f.service.SetEventVisibility(ctx, tenant, r.EventID, club.VisibilityHidden, false)
	require.NoError(t, err)
	assert.Len(t, f.pubsub.Calls(), 1)

	_, err = f.service.SetEventVisibility(ctx, tenant, r.EventID, club.VisibilityPublic, false)
	require.NoError(t, err)
	assert.Len(t, f.current(t, ranking.MensSingles), 1)

	_, err = f.service.SetEventVisibility(ctx, tenant, r.EventID, "secret", false)
	assert.ErrorIs(t, err, club.ErrBadVisibility)
	_, err = f.service.SetEventVisibility(ctx, tenant, "nope", club.VisibilityHidden, false)
	assert.ErrorIs(t, err, club.ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()
	bob := f.player(t, "Bob", ranking.GenderMale)
	f.record(t, "Open", today.AddDate(0, 0, -10), ranking.MensSingles, ranking.Tier2, bob.ID, ranking.PositionWinner)
	r := f.onlyResult(t, bob.ID)

	require.NoError(t, f.service.DeleteEvent(ctx, tenant, r.EventID, true))
	_, err := f.store.GetEvent(ctx, tenant, r.EventID)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteEvent(ctx, tenant, r.EventID, false))
	_, err = f.store.GetEvent(ctx, tenant, r.EventID)
	assert.ErrorIs(t, err, club.ErrNotFound)
	history, err := f.store.ListResultsForPlayer(ctx, tenant, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, f.current(t, ranking.MensSingles))

	assert.ErrorIs(t, f.service.DeleteEvent(ctx, tenant, r.EventID, false), club.ErrNotFound)
}

func TestDeletePlayer(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()
	bob := f.player(t, "Bob", ranking.GenderMale)
	carl := f.player(t, "Carl", ranking.GenderMale)
	f.record(t, "Open", today.AddDate(0, 0, -10), ranking.MensSingles, ranking.Tier2, bob.ID, ranking.PositionWinner)
	f.record(t, "Open", today.AddDate(0, 0, -10), ranking.MensSingles, ranking.Tier2, carl.ID, ranking.PositionSecond)
	f.record(t, "Pairs", today.AddDate(0, 0, -8), ranking.MensDoubles, ranking.Tier3, bob.ID, ranking.PositionWinner)
	f.pubsub.Reset()

	removed, err := f.service.DeletePlayer(ctx, tenant, bob.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	_, err = f.store.GetPlayer(ctx, tenant, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, f.pubsub.Calls())

	removed, err = f.service.DeletePlayer(ctx, tenant, bob.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	_, err = f.store.GetPlayer(ctx, tenant, bob.ID)
	assert.ErrorIs(t, err, club.ErrNotFound)

	rows := f.current(t, ranking.MensSingles)
	require.Len(t, rows, 1)
	assert.Equal(t, carl.ID, rows[0].PlayerID)
	assert.Equal(t, 1, rows[0].Rank)

	calls := f.pubsub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"mens_doubles", "mens_singles"}, calls[0].Data.(pubsub.ChangeNotice).Categories)

	_, err = f.service.DeletePlayer(ctx, tenant, bob.ID, false)
	assert.ErrorIs(t, err, club.ErrNotFound)
}
