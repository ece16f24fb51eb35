package club_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/database"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "club-a"

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (club.ClubStore, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	return club.New(db), db, teardown
}

func addPlayer(t *testing.T, store club.ClubStore, name string, gender ranking.Gender) *club.Player {
	t.Helper()
	p := &club.Player{TenantID: tenant, Name: name, Country: "GBR", Gender: gender}
	require.NoError(t, store.CreatePlayer(context.Background(), p))
	return p
}

func addEvent(t *testing.T, store club.ClubStore, name string, date time.Time, category ranking.Category) *club.Event {
	t.Helper()
	e, _, err := store.GetOrCreateEvent(context.Background(), &club.Event{
		TenantID: tenant, Name: name, Date: date, Tier: ranking.Tier1, Category: category,
	})
	require.NoError(t, err)
	return e
}

func TestCreateAndGetPlayer(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := &club.Player{TenantID: tenant, Name: "Ana Lee", Country: "gbr", Gender: ranking.GenderFemale, Email: "ana@example.com"}
	require.NoError(t, store.CreatePlayer(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.Regexp(t, `^GBR-[0-9A-F]{6}$`, p.Code)

	got, err := store.GetPlayer(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lee", got.Name)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Empty(t, got.ExternalRatingID)
	assert.Equal(t, []string{}, got.AlternateNames)

	byCode, err := store.GetPlayerByCode(ctx, tenant, p.Code)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)

	_, err = store.GetPlayer(ctx, "other-club", p.ID)
	assert.ErrorIs(t, err, club.ErrNotFound)
}

func TestCreatePlayerRejectsTakenCode(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, store.CreatePlayer(ctx, &club.Player{TenantID: tenant, Code: "P1", Name: "A", Gender: ranking.GenderMale}))
	err := store.CreatePlayer(ctx, &club.Player{TenantID: tenant, Code: "P1", Name: "B", Gender: ranking.GenderMale})
	assert.ErrorIs(t, err, club.ErrCodeTaken)

	// Codes are unique per tenant only.
	require.NoError(t, store.CreatePlayer(ctx, &club.Player{TenantID: "club-b", Code: "P1", Name: "C", Gender: ranking.GenderMale}))
}

func TestUpdatePlayerKeepsCode(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "Ben Cole", ranking.GenderMale)
	code := p.Code
	p.Code = "CHANGED"
	p.Email = "ben@example.com"
	p.AlternateNames = []string{"Benjamin Cole"}
	require.NoError(t, store.UpdatePlayer(ctx, p))

	got, err := store.GetPlayer(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Equal(t, code, got.Code)
	assert.Equal(t, "ben@example.com", got.Email)
	assert.Equal(t, []string{"Benjamin Cole"}, got.AlternateNames)

	missing := &club.Player{ID: "nope", TenantID: tenant, Name: "x", Gender: ranking.GenderMale}
	assert.ErrorIs(t, store.UpdatePlayer(ctx, missing), club.ErrNotFound)
}

func TestUserAccountLinksOnePlayer(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	a := addPlayer(t, store, "A", ranking.GenderMale)
	b := addPlayer(t, store, "B", ranking.GenderMale)
	a.UserID = "user-1"
	require.NoError(t, store.UpdatePlayer(ctx, a))
	b.UserID = "user-1"
	assert.ErrorIs(t, store.UpdatePlayer(ctx, b), club.ErrAccountLinked)
}

func TestGetOrCreateEventIsIdempotent(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	date := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	in := &club.Event{TenantID: tenant, Name: "Spring Open", Date: date, Tier: ranking.Tier2, Category: ranking.MensSingles}

	first, created, err := store.GetOrCreateEvent(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, club.VisibilityPublic, first.Visibility)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), first.Date)

	second, created, err := store.GetOrCreateEvent(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	in.Category = ranking.WomensSingles
	third, created, err := store.GetOrCreateEvent(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, third.ID)

	events, err := store.ListEvents(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestInsertResultRejectsDuplicate(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "Ana", ranking.GenderFemale)
	e := addEvent(t, store, "Open", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ranking.WomensSingles)

	require.NoError(t, store.InsertResult(ctx, &club.Result{EventID: e.ID, PlayerID: p.ID, Position: ranking.PositionWinner, PointsAwarded: 1000}))
	err := store.InsertResult(ctx, &club.Result{EventID: e.ID, PlayerID: p.ID, Position: ranking.PositionSecond, PointsAwarded: 600})
	assert.ErrorIs(t, err, club.ErrDuplicateResult)
}

func TestListScoredResultsSkipsHiddenEvents(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "Ana", ranking.GenderFemale)
	open := addEvent(t, store, "Open", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ranking.WomensSingles)
	cup := addEvent(t, store, "Cup", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ranking.WomensSingles)
	dbl := addEvent(t, store, "Cup", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ranking.WomensDoubles)
	for _, e := range []*club.Event{open, cup, dbl} {
		require.NoError(t, store.InsertResult(ctx, &club.Result{EventID: e.ID, PlayerID: p.ID, Position: ranking.PositionWinner, PointsAwarded: 100}))
	}
	require.NoError(t, store.SetEventVisibility(ctx, tenant, cup.ID, club.VisibilityHidden))

	singles, err := store.ListScoredResults(ctx, tenant, ranking.WomensSingles)
	require.NoError(t, err)
	require.Len(t, singles, 1)
	assert.Equal(t, p.ID, singles[0].Player.ID)
	assert.Equal(t, 100, singles[0].Points)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), singles[0].EventDate)

	all, err := store.ListScoredResults(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Hidden results stay visible on the player's own history.
	history, err := store.ListResultsForPlayer(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestUpdateResult(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "Ana", ranking.GenderFemale)
	e := addEvent(t, store, "Open", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ranking.WomensSingles)
	r := &club.Result{EventID: e.ID, PlayerID: p.ID, Position: ranking.PositionSecond, PointsAwarded: 600}
	require.NoError(t, store.InsertResult(ctx, r))

	require.NoError(t, store.UpdateResult(ctx, tenant, e.ID, r.ID, ranking.PositionWinner, 1000))
	history, err := store.ListResultsForPlayer(ctx, tenant, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ranking.PositionWinner, history[0].Position)
	assert.Equal(t, 1000, history[0].PointsAwarded)

	assert.ErrorIs(t, store.UpdateResult(ctx, "club-b", e.ID, r.ID, ranking.PositionWinner, 1), club.ErrNotFound)

	other := addEvent(t, store, "Closed", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ranking.WomensSingles)
	assert.ErrorIs(t, store.UpdateResult(ctx, tenant, other.ID, r.ID, ranking.PositionWinner, 1), club.ErrNotFound)
}

func TestReassignResults(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	a := addPlayer(t, store, "A", ranking.GenderMale)
	b := addPlayer(t, store, "B", ranking.GenderMale)
	e1 := addEvent(t, store, "One", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ranking.MensSingles)
	e2 := addEvent(t, store, "Two", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ranking.MensSingles)
	require.NoError(t, store.InsertResult(ctx, &club.Result{EventID: e1.ID, PlayerID: b.ID, Position: ranking.PositionWinner, PointsAwarded: 10}))
	require.NoError(t, store.InsertResult(ctx, &club.Result{EventID: e2.ID, PlayerID: b.ID, Position: ranking.PositionWinner, PointsAwarded: 10}))

	moved, err := store.ReassignResults(ctx, tenant, b.ID, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, moved)

	history, err := store.ListResultsForPlayer(ctx, tenant, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestWithTxRollsBack(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx club.ClubStore) error {
		require.NoError(t, tx.CreatePlayer(ctx, &club.Player{TenantID: tenant, Name: "Ghost", Gender: ranking.GenderMale}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	players, err := store.ListPlayers(ctx, tenant)
	require.NoError(t, err)
	assert.Empty(t, players)

	err = store.WithTx(ctx, func(tx club.ClubStore) error {
		return tx.CreatePlayer(ctx, &club.Player{TenantID: tenant, Name: "Kept", Gender: ranking.GenderMale})
	})
	require.NoError(t, err)
	players, err = store.ListPlayers(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestDeleteImportBatchCascades(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	batch := &club.ImportBatch{TenantID: tenant, Filename: "results.csv", Operator: "ops"}
	require.NoError(t, store.CreateImportBatch(ctx, batch))

	p := addPlayer(t, store, "Ana", ranking.GenderFemale)
	e, _, err := store.GetOrCreateEvent(ctx, &club.Event{
		TenantID: tenant, Name: "Open", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Tier: ranking.Tier1, Category: ranking.WomensSingles, ImportBatchID: batch.ID,
	})
	require.NoError(t, err)
	require.NoError(t, store.InsertResult(ctx, &club.Result{EventID: e.ID, PlayerID: p.ID, Position: ranking.PositionWinner, PointsAwarded: 1000}))

	batch.Total, batch.Succeeded, batch.Failed = 2, 1, 1
	batch.Errors = []club.RowError{{Line: 3, Player: "Bob", Reason: "invalid tier"}}
	require.NoError(t, store.UpdateImportBatch(ctx, batch))

	got, err := store.GetImportBatch(ctx, tenant, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, batch.Errors, got.Errors)

	require.NoError(t, store.DeleteImportBatch(ctx, tenant, batch.ID))
	_, err = store.GetEvent(ctx, tenant, e.ID)
	assert.ErrorIs(t, err, club.ErrNotFound)
	history, err := store.ListResultsForPlayer(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestClear(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "Ana", ranking.GenderFemale)
	e := addEvent(t, store, "Open", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ranking.WomensSingles)
	require.NoError(t, store.InsertResult(ctx, &club.Result{EventID: e.ID, PlayerID: p.ID, Position: ranking.PositionWinner, PointsAwarded: 1}))

	require.NoError(t, store.Clear(ctx, tenant))
	players, err := store.ListPlayers(ctx, tenant)
	require.NoError(t, err)
	assert.Empty(t, players)
	events, err := store.ListEvents(ctx, tenant)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseVisibility(t *testing.T) {
	for in, want := range map[string]club.Visibility{"public": club.VisibilityPublic, " Hidden ": club.VisibilityHidden} {
		got, err := club.ParseVisibility(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := club.ParseVisibility("secret")
	assert.ErrorIs(t, err, club.ErrBadVisibility)
}
