package http

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// ResultsChangedHandler receives pubsub pushes for the results-changed topic,
// recomputes the touched current rankings and posts them to Slack.
func (s *Server) ResultsChangedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, env, err := pubsub.DecodePush(r.Body)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		log.Debug("Received results changed message", "message_id", env.Message.MessageID, "subscription", env.Subscription)

		var notice pubsub.ChangeNotice
		if err := s.pubsub.ProcessMessage(rawData, &notice); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		tenant := notice.TenantID
		if tenant == "" {
			tenant = tenantFromContext(r)
		}

		isDryRun := isDryRunFromContext(r)
		for _, raw := range notice.Categories {
			category, err := ranking.ParseCategory(raw)
			if err != nil {
				log.Warn("Skipping unknown category in change notice", "category", raw)
				continue
			}
			current, err := s.Leaderboard.CurrentRankings(r.Context(), tenant, category, notice.OccurredAt)
			if err != nil {
				// A 500 makes pubsub redeliver.
				log.Error("Failed to recompute rankings", "error", err, "category", category)
				http.Error(w, "Failed to recompute rankings", http.StatusInternalServerError)
				return
			}
			title := fmt.Sprintf("Current rankings: %s", category)
			if err := s.Notifier.SendRankingsUpdate(r.Context(), title, current.Rows, isDryRun); err != nil {
				log.Error("Failed to send rankings update", "error", err, "category", category)
			}
		}
		w.Write([]byte("OK"))
	}
}
