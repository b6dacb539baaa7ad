package http

import (
	"net/http"
	"time"

	"duit/internal/export"
	applog "duit/internal/log"
)

// handleExportCSV streams the full transaction list as a CSV download.
// Rows keep storage order; the filename carries the current date.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "csv export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err.Error())
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)

	if err := export.WriteCSV(w, txs); err != nil {
		// Headers are sent; all that is left is logging.
		s.reqLogger(r).ErrorContext(r.Context(), "csv write failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err.Error())
	}
}
