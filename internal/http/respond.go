package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/importer"
	"github.com/mauv0809/ranking-tribble/internal/leaderboard"
	"github.com/mauv0809/ranking-tribble/internal/merge"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

var badRequest = []error{
	ranking.ErrInvalidTierOrPosition,
	ranking.ErrHistoricPointsRequired,
	ranking.ErrNegativePoints,
	ranking.ErrUnknownCategory,
	ranking.ErrInvalidGender,
	ranking.ErrCategoryGender,
	importer.ErrInvalidRow,
	importer.ErrMissingColumns,
	importer.ErrUnresolvedRows,
	importer.ErrInvalidResolution,
	importer.ErrIncompletePlayer,
	leaderboard.ErrInvalidEvent,
	club.ErrBadVisibility,
	errBadInput,
}

var conflict = []error{
	merge.ErrSamePlayer,
	merge.ErrBothLinkedToAccounts,
	merge.ErrGenderMismatch,
	merge.ErrSharedEvents,
	importer.ErrStaleResolution,
	club.ErrDuplicateResult,
	club.ErrCodeTaken,
	club.ErrAccountLinked,
	club.ErrTierMismatch,
}

// errBadInput marks malformed query parameters and bodies.
var errBadInput = errors.New("bad input")

func statusFor(err error) int {
	if errors.Is(err, club.ErrNotFound) {
		return http.StatusNotFound
	}
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	for _, target := range conflict {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError maps err to a status code. Server errors are logged and their
// details withheld.
func writeError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(msg, "error", err)
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	log.Warn(msg, "error", err, "status", status)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadInput, err)
	}
	return nil
}
