package http

import (
	"net/http"

	applog "duit/internal/log"
)

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "metrics partial failed", applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal memuat ringkasan")
		return
	}
	s.render(w, r, "metrics.html", buildMetricsView(txs))
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "charts partial failed", applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal memuat grafik")
		return
	}
	s.render(w, r, "charts.html", buildChartsView(txs))
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "transaction list partial failed", applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal memuat daftar transaksi")
		return
	}
	data := struct {
		Transactions []transactionView
	}{Transactions: buildTransactionViews(txs)}
	s.render(w, r, "transactions.html", data)
}

// handleReport renders the monthly report partial. The filter defaults
// to the most recent month with data; malformed query values fall back
// to the default instead of erroring.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "report partial failed", applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal memuat laporan")
		return
	}

	filter := parseReportFilter(r, txs)
	s.render(w, r, "report.html", buildReportView(txs, filter))
}
