package http

import (
	"fmt"
	"net/http"
)

func (s *Server) MergePreviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		primary, duplicate := r.URL.Query().Get("primary"), r.URL.Query().Get("duplicate")
		if primary == "" || duplicate == "" {
			writeError(w, "Invalid merge", fmt.Errorf("%w: primary and duplicate are required", errBadInput))
			return
		}
		preview, err := s.Merger.Preview(r.Context(), tenantFromContext(r), primary, duplicate)
		if err != nil {
			writeError(w, "Failed to preview merge", err)
			return
		}
		writeJSON(w, http.StatusOK, preview)
	}
}

func (s *Server) MergeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mergeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, "Invalid JSON", err)
			return
		}
		if req.PrimaryID == "" || req.DuplicateID == "" {
			writeError(w, "Invalid merge", fmt.Errorf("%w: primary_id and duplicate_id are required", errBadInput))
			return
		}
		outcome, err := s.Merger.Merge(r.Context(), tenantFromContext(r), req.PrimaryID, req.DuplicateID, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to merge players", err)
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}
