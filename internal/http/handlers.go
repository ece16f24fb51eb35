package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/leaderboard"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

const dateLayout = "2006-01-02"

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r)
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would clear tenant", "tenant", tenant)
			fmt.Fprintf(w, "Dry run: would clear %s", tenant)
			return
		}
		log.Info("Received request to clear tenant", "tenant", tenant)
		if err := s.Store.Clear(r.Context(), tenant); err != nil {
			writeError(w, "Failed to clear store", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Cleared %s!", tenant)
		log.Info("Tenant cleared successfully", "tenant", tenant)
	}
}

// parseAsOf reads the optional as_of query parameter. Zero means today.
func parseAsOf(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: as_of must be YYYY-MM-DD", errBadInput)
	}
	return t, nil
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func writeRankingsCSV(w http.ResponseWriter, filename string, rows []ranking.Row) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := leaderboard.WriteRankingsCSV(w, rows); err != nil {
		log.Error("Failed to write rankings CSV", "error", err)
	}
}

func (s *Server) RankingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r)
		category, err := ranking.ParseCategory(r.PathValue("category"))
		if err != nil {
			writeError(w, "Invalid category", err)
			return
		}

		var result ranking.Ranking
		switch view := r.PathValue("view"); view {
		case leaderboard.ViewCurrent:
			asOf, err := parseAsOf(r)
			if err != nil {
				writeError(w, "Invalid as_of", err)
				return
			}
			result, err = s.Leaderboard.CurrentRankings(r.Context(), tenant, category, asOf)
			if err != nil {
				writeError(w, "Failed to compute rankings", err)
				return
			}
		case leaderboard.ViewLifetime:
			result, err = s.Leaderboard.LifetimeRankings(r.Context(), tenant, category)
			if err != nil {
				writeError(w, "Failed to compute rankings", err)
				return
			}
		default:
			writeError(w, "Invalid view", fmt.Errorf("%w: view must be current or lifetime, got %q", errBadInput, view))
			return
		}

		if wantsCSV(r) {
			writeRankingsCSV(w, fmt.Sprintf("%s-%s.csv", category, r.PathValue("view")), result.Rows)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) CombinedRankingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r)
		gender, err := ranking.ParseGender(r.PathValue("gender"))
		if err != nil {
			writeError(w, "Invalid gender", err)
			return
		}
		asOf, err := parseAsOf(r)
		if err != nil {
			writeError(w, "Invalid as_of", err)
			return
		}
		view := r.URL.Query().Get("view")
		if view == "" {
			view = leaderboard.ViewCurrent
		}
		if view != leaderboard.ViewCurrent && view != leaderboard.ViewLifetime {
			writeError(w, "Invalid view", fmt.Errorf("%w: view must be current or lifetime, got %q", errBadInput, view))
			return
		}

		combined, err := s.Leaderboard.CombinedDoublesRankings(r.Context(), tenant, gender, asOf, view == leaderboard.ViewLifetime)
		if err != nil {
			writeError(w, "Failed to compute combined rankings", err)
			return
		}
		if wantsCSV(r) {
			writeRankingsCSV(w, fmt.Sprintf("%s-combined-%s.csv", gender, view), combined.Rows)
			return
		}
		writeJSON(w, http.StatusOK, combinedResponse{Gender: gender, View: view, AsOf: combined.AsOf, Rows: combined.Rows})
	}
}

func (s *Server) PlayerProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := parseAsOf(r)
		if err != nil {
			writeError(w, "Invalid as_of", err)
			return
		}
		profile, err := s.Leaderboard.PlayerProfile(r.Context(), tenantFromContext(r), r.PathValue("id"), asOf)
		if err != nil {
			writeError(w, "Failed to load player", err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resultRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, "Invalid JSON", err)
			return
		}
		event, position, err := req.parse()
		if err != nil {
			writeError(w, "Invalid result", err)
			return
		}

		isDryRun := isDryRunFromContext(r)
		points, err := s.Leaderboard.RecordResult(r.Context(), tenantFromContext(r), event, req.PlayerID, position, req.Points, isDryRun)
		if err != nil {
			writeError(w, "Failed to record result", err)
			return
		}
		status := http.StatusCreated
		if isDryRun {
			status = http.StatusOK
		}
		writeJSON(w, status, resultResponse{Points: points, DryRun: isDryRun})
	}
}

func (req resultRequest) parse() (leaderboard.EventIdentity, ranking.Position, error) {
	category, err := ranking.ParseCategory(req.Event.Category)
	if err != nil {
		return leaderboard.EventIdentity{}, "", err
	}
	tier, err := ranking.ParseTier(req.Event.Tier)
	if err != nil {
		return leaderboard.EventIdentity{}, "", err
	}
	position, err := ranking.ParsePosition(req.Position)
	if err != nil {
		return leaderboard.EventIdentity{}, "", err
	}
	date, err := time.Parse(dateLayout, req.Event.Date)
	if err != nil {
		return leaderboard.EventIdentity{}, "", fmt.Errorf("%w: event date must be YYYY-MM-DD", errBadInput)
	}
	if req.PlayerID == "" {
		return leaderboard.EventIdentity{}, "", fmt.Errorf("%w: player_id is required", errBadInput)
	}
	return leaderboard.EventIdentity{Name: req.Event.Name, Date: date, Category: category, Tier: tier}, position, nil
}
