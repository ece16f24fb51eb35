package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/importer"
	"github.com/mauv0809/ranking-tribble/internal/leaderboard"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestEventAdminHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, "")
	defer teardown()
	bob := server.player(t, "Bob", ranking.GenderMale)

	rr := server.do(t, "POST", "/results", resultBody(t, resultRequest{
		Event:    eventRequest{Name: "Open", Date: daysAgo(3), Category: "mens_singles", Tier: "tier2"},
		PlayerID: bob.ID,
		Position: "winner",
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = server.do(t, "GET", "/players/"+bob.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decode[leaderboard.Profile](t, rr)
	require.Len(t, profile.Results, 1)
	eventID, resultID := profile.Results[0].EventID, profile.Results[0].ID

	currentRows := func(t *testing.T) []ranking.Row {
		t.Helper()
		rr := server.do(t, "GET", "/rankings/mens_singles/current", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[ranking.Ranking](t, rr).Rows
	}

	t.Run("list and get", func(t *testing.T) {
		rr := server.do(t, "GET", "/events", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		events := decode[[]club.Event](t, rr)
		require.Len(t, events, 1)
		assert.Equal(t, eventID, events[0].ID)

		rr = server.do(t, "GET", "/events/"+eventID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Open", decode[club.Event](t, rr).Name)

		rr = server.do(t, "GET", "/events/nope", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("correct result", func(t *testing.T) {
		want, err := ranking.ComputePoints(ranking.Tier2, ranking.PositionSecond)
		require.NoError(t, err)

		rr := server.do(t, "PATCH", "/events/"+eventID+"/results/"+resultID, jsonBody(t, correctionRequest{Position: "second"}))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, want, decode[resultResponse](t, rr).Points)
		assert.Equal(t, want, currentRows(t)[0].TotalPoints)

		points := 250
		rr = server.do(t, "PATCH", "/events/"+eventID+"/results/"+resultID+"?dry_run=true", jsonBody(t, correctionRequest{Position: "winner", Points: &points}))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, decode[resultResponse](t, rr).DryRun)
		assert.Equal(t, want, currentRows(t)[0].TotalPoints)
	})

	t.Run("correct result errors", func(t *testing.T) {
		negative := -5
		tests := []struct {
			name   string
			target string
			body   io.Reader
			want   int
		}{
			{"unknown position", "/events/" + eventID + "/results/" + resultID, jsonBody(t, correctionRequest{Position: "champion"}), http.StatusBadRequest},
			{"negative points", "/events/" + eventID + "/results/" + resultID, jsonBody(t, correctionRequest{Position: "winner", Points: &negative}), http.StatusBadRequest},
			{"bad json", "/events/" + eventID + "/results/" + resultID, strings.NewReader("{"), http.StatusBadRequest},
			{"unknown result", "/events/" + eventID + "/results/nope", jsonBody(t, correctionRequest{Position: "winner"}), http.StatusNotFound},
			{"unknown event", "/events/nope/results/" + resultID, jsonBody(t, correctionRequest{Position: "winner"}), http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr := server.do(t, "PATCH", tt.target, tt.body)
				assert.Equal(t, tt.want, rr.Code, rr.Body.String())
			})
		}
	})

	t.Run("visibility", func(t *testing.T) {
		rr := server.do(t, "PATCH", "/events/"+eventID+"?dry_run=true", jsonBody(t, visibilityRequest{Visibility: "hidden"}))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, currentRows(t), 1)

		rr = server.do(t, "PATCH", "/events/"+eventID, jsonBody(t, visibilityRequest{Visibility: "hidden"}))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, club.VisibilityHidden, decode[club.Event](t, rr).Visibility)
		assert.Empty(t, currentRows(t))

		rr = server.do(t, "PATCH", "/events/"+eventID, jsonBody(t, visibilityRequest{Visibility: "public"}))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, currentRows(t), 1)

		rr = server.do(t, "PATCH", "/events/"+eventID, jsonBody(t, visibilityRequest{Visibility: "secret"}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		rr = server.do(t, "PATCH", "/events/nope", jsonBody(t, visibilityRequest{Visibility: "hidden"}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := server.do(t, "DELETE", "/events/"+eventID+"?dry_run=true", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		rr = server.do(t, "GET", "/events/"+eventID, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = server.do(t, "DELETE", "/events/"+eventID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, eventID, decode[deleteResponse](t, rr).Deleted)
		assert.Empty(t, currentRows(t))

		rr = server.do(t, "GET", "/events/"+eventID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = server.do(t, "DELETE", "/events/"+eventID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestPlayerAdminHandlers(t *testing.T) {
	server, teardown := setupTestServer(t, "")
	defer teardown()
	bob := server.player(t, "Bob", ranking.GenderMale)
	server.player(t, "Carl", ranking.GenderMale)

	rr := server.do(t, "POST", "/results", resultBody(t, resultRequest{
		Event:    eventRequest{Name: "Open", Date: daysAgo(3), Category: "mens_singles", Tier: "tier2"},
		PlayerID: bob.ID,
		Position: "winner",
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	t.Run("list", func(t *testing.T) {
		rr := server.do(t, "GET", "/players", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[[]club.Player](t, rr), 2)
	})

	t.Run("by code", func(t *testing.T) {
		rr := server.do(t, "GET", "/players?code="+bob.Code, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		players := decode[[]club.Player](t, rr)
		require.Len(t, players, 1)
		assert.Equal(t, bob.ID, players[0].ID)

		rr = server.do(t, "GET", "/players?code=NOPE", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := server.do(t, "DELETE", "/players/"+bob.ID+"?dry_run=true", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		got := decode[deleteResponse](t, rr)
		assert.True(t, got.DryRun)
		assert.Equal(t, 1, got.Results)

		rr = server.do(t, "DELETE", "/players/"+bob.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = server.do(t, "GET", "/players/"+bob.ID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = server.do(t, "GET", "/rankings/mens_singles/current", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode[ranking.Ranking](t, rr).Rows)

		rr = server.do(t, "DELETE", "/players/"+bob.ID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeleteImportBatchHandler(t *testing.T) {
	server, teardown := setupTestServer(t, "")
	defer teardown()

	csv := importCSV(fmt.Sprintf("Dina Jones,,IRL,female,womens_singles,second,%s,Spring Open,tier2", daysAgo(5)))
	rr := server.do(t, "POST", "/import?filename=spring.csv", strings.NewReader(csv))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	report := decode[importer.Report](t, rr)
	require.True(t, report.Committed)

	rr = server.do(t, "DELETE", "/imports/"+report.BatchID, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, report.BatchID, decode[deleteResponse](t, rr).Deleted)

	rr = server.do(t, "GET", "/imports/"+report.BatchID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = server.do(t, "GET", "/events", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]club.Event](t, rr))

	rr = server.do(t, "DELETE", "/imports/"+report.BatchID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
