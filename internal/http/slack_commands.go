package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/leaderboard"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
	"github.com/slack-go/slack"
)

const rankingsUsage = "Usage: /rankings <category> [lifetime] or /rankings combined <gender> [lifetime]"

// rankingsQuery is a parsed /rankings command.
type rankingsQuery struct {
	category ranking.Category
	gender   ranking.Gender
	combined bool
	lifetime bool
}

// parseRankingsText parses the text field of the /rankings command.
// Expected formats: "mens_singles", "womens doubles lifetime", "combined female".
func parseRankingsText(text string) (rankingsQuery, error) {
	parts := strings.Fields(strings.ToLower(text))
	var q rankingsQuery
	if n := len(parts); n > 1 && parts[n-1] == leaderboard.ViewLifetime {
		q.lifetime = true
		parts = parts[:n-1]
	}
	if len(parts) == 0 {
		return q, fmt.Errorf("%w: category is required", errBadInput)
	}
	if parts[0] == leaderboard.ViewCombined {
		gender, err := ranking.ParseGender(strings.Join(parts[1:], " "))
		if err != nil {
			return q, err
		}
		q.combined, q.gender = true, gender
		return q, nil
	}
	category, err := ranking.ParseCategory(strings.Join(parts, " "))
	if err != nil {
		return q, err
	}
	q.category = category
	return q, nil
}

func (q rankingsQuery) title() string {
	view := "Current"
	if q.lifetime {
		view = "Lifetime"
	}
	if q.combined {
		return fmt.Sprintf("%s combined doubles rankings: %s", view, q.gender)
	}
	return fmt.Sprintf("%s rankings: %s", view, q.category)
}

func (s *Server) RankingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		log.Info("Received rankings command", "user", cmd.UserName, "text", cmd.Text)

		q, err := parseRankingsText(cmd.Text)
		if err != nil {
			s.respondWithError(w, fmt.Sprintf("%s\n%s", err, rankingsUsage))
			return
		}

		tenant := tenantFromContext(r)
		var rows []ranking.Row
		switch {
		case q.combined:
			var combined ranking.CombinedRanking
			combined, err = s.Leaderboard.CombinedDoublesRankings(r.Context(), tenant, q.gender, time.Time{}, q.lifetime)
			rows = combined.Rows
		case q.lifetime:
			var lifetime ranking.Ranking
			lifetime, err = s.Leaderboard.LifetimeRankings(r.Context(), tenant, q.category)
			rows = lifetime.Rows
		default:
			var current ranking.Ranking
			current, err = s.Leaderboard.CurrentRankings(r.Context(), tenant, q.category, time.Time{})
			rows = current.Rows
		}
		if err != nil {
			log.Error("Failed to compute rankings for command", "error", err)
			s.respondWithError(w, "Failed to compute rankings, please try again later.")
			return
		}

		msg, err := s.Notifier.FormatRankingsResponse(q.title(), rows)
		if err != nil {
			http.Error(w, "Failed to format rankings", http.StatusInternalServerError)
			log.Error("Failed to format rankings", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// respondWithError answers with a 200 so Slack shows the text to the user.
func (s *Server) respondWithError(w http.ResponseWriter, text string) {
	msg, err := s.Notifier.FormatErrorResponse(text)
	if err != nil {
		http.Error(w, text, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
