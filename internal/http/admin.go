package http

import (
	"net/http"

	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// ListPlayersHandler lists the tenant's players, or looks one up by its
// player code when ?code= is given.
func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r)
		if code := r.URL.Query().Get("code"); code != "" {
			player, err := s.Store.GetPlayerByCode(r.Context(), tenant, code)
			if err != nil {
				writeError(w, "Failed to find player", err)
				return
			}
			writeJSON(w, http.StatusOK, []club.Player{*player})
			return
		}
		players, err := s.Store.ListPlayers(r.Context(), tenant)
		if err != nil {
			writeError(w, "Failed to list players", err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	}
}

func (s *Server) DeletePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		id := r.PathValue("id")
		removed, err := s.Leaderboard.DeletePlayer(r.Context(), tenantFromContext(r), id, isDryRun)
		if err != nil {
			writeError(w, "Failed to delete player", err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: id, Results: removed, DryRun: isDryRun})
	}
}

func (s *Server) ListEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.Store.ListEvents(r.Context(), tenantFromContext(r))
		if err != nil {
			writeError(w, "Failed to list events", err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *Server) EventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := s.Store.GetEvent(r.Context(), tenantFromContext(r), r.PathValue("id"))
		if err != nil {
			writeError(w, "Failed to load event", err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

// EventVisibilityHandler hides or republishes an event.
func (s *Server) EventVisibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req visibilityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, "Invalid JSON", err)
			return
		}
		v, err := club.ParseVisibility(req.Visibility)
		if err != nil {
			writeError(w, "Invalid visibility", err)
			return
		}
		event, err := s.Leaderboard.SetEventVisibility(r.Context(), tenantFromContext(r), r.PathValue("id"), v, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to update event", err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

func (s *Server) DeleteEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		id := r.PathValue("id")
		if err := s.Leaderboard.DeleteEvent(r.Context(), tenantFromContext(r), id, isDryRun); err != nil {
			writeError(w, "Failed to delete event", err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: id, DryRun: isDryRun})
	}
}

// CorrectResultHandler edits the position and points of one result. Without
// points the snapshot is recomputed from the event tier.
func (s *Server) CorrectResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req correctionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, "Invalid JSON", err)
			return
		}
		position, err := ranking.ParsePosition(req.Position)
		if err != nil {
			writeError(w, "Invalid result", err)
			return
		}
		isDryRun := isDryRunFromContext(r)
		points, err := s.Leaderboard.CorrectResult(r.Context(), tenantFromContext(r), r.PathValue("id"), r.PathValue("result"), position, req.Points, isDryRun)
		if err != nil {
			writeError(w, "Failed to correct result", err)
			return
		}
		writeJSON(w, http.StatusOK, resultResponse{Points: points, DryRun: isDryRun})
	}
}

func (s *Server) DeleteImportBatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		record, err := s.Importer.DeleteBatch(r.Context(), tenantFromContext(r), r.PathValue("id"), isDryRun)
		if err != nil {
			writeError(w, "Failed to delete import batch", err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: record.ID, DryRun: isDryRun})
	}
}
