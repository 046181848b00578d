package http

import (
	"log/slog"
	"net/http"
	"time"

	"aptcost/internal/export"
)

// handleExport streams the full workbook as an xlsx download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.loadRecords(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export load failed", "error", err)
		http.Error(w, "could not load records", http.StatusInternalServerError)
		return
	}

	filename := export.Filename(time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.Write(w, records); err != nil {
		// Headers are already out; all we can do is log.
		slog.ErrorContext(r.Context(), "Workbook write failed", "error", err)
		return
	}

	exportDownloads.Inc()
	slog.InfoContext(r.Context(), "Workbook exported",
		"filename", filename,
		"record_count", len(records))
}
