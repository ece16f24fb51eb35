package http

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ranking-tribble/internal/importer"
)

// maxUploadBytes caps CSV uploads.
const maxUploadBytes = 10 << 20

func (s *Server) ImportTemplateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="results-template.csv"`)
		if err := importer.WriteTemplate(w); err != nil {
			log.Error("Failed to write import template", "error", err)
		}
	}
}

// StartImportHandler takes a raw CSV body. It either commits straight away
// or returns the rows that need an operator decision.
func (s *Server) StartImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := importer.ParseCSV(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			writeError(w, "Failed to parse CSV", err)
			return
		}
		batch := importer.Batch{
			Filename: r.URL.Query().Get("filename"),
			Operator: r.URL.Query().Get("operator"),
		}
		log.Info("Received import", "tenant", tenantFromContext(r), "file", batch.Filename, "rows", len(rows))

		report, err := s.Importer.Start(r.Context(), tenantFromContext(r), batch, rows, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to import", err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) CommitImportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commitRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, "Invalid JSON", err)
			return
		}
		rows, err := importer.ParseCSV(strings.NewReader(req.CSV))
		if err != nil {
			writeError(w, "Failed to parse CSV", err)
			return
		}
		batch := importer.Batch{Filename: req.Filename, Operator: req.Operator}
		log.Info("Received import commit", "tenant", tenantFromContext(r), "file", batch.Filename,
			"rows", len(rows), "resolutions", len(req.Resolutions))

		report, err := s.Importer.Commit(r.Context(), tenantFromContext(r), batch, rows, req.Resolutions, isDryRunFromContext(r))
		if err != nil {
			writeError(w, "Failed to commit import", err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) ImportBatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, err := s.Store.GetImportBatch(r.Context(), tenantFromContext(r), r.PathValue("id"))
		if err != nil {
			writeError(w, "Failed to load import batch", err)
			return
		}
		writeJSON(w, http.StatusOK, batch)
	}
}
