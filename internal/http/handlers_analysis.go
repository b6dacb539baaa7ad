package http

import (
	"errors"
	"net/http"

	"duit/internal/analysis"
	"duit/internal/core"
	applog "duit/internal/log"
)

// handleAnalyze sends the expense breakdown to the generative-text API
// and renders the returned text verbatim. Every failure becomes an
// inline message; this endpoint never propagates an error page.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions(r.Context())
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "analysis failed",
			applog.FieldOperation, applog.OpAnalyze,
			applog.FieldError, err.Error())
		writeInlineError(w, http.StatusInternalServerError, "Gagal memuat data transaksi")
		return
	}

	pairs := core.ExpenseBreakdown(txs)
	if len(pairs) == 0 {
		writeInlineError(w, http.StatusOK, "Belum ada pengeluaran untuk dianalisis")
		return
	}

	if s.analyzer == nil {
		writeInlineError(w, http.StatusOK, "Analisis AI belum dikonfigurasi")
		return
	}

	text, err := s.analyzer.Analyze(r.Context(), pairs)
	if err != nil {
		s.reqLogger(r).ErrorContext(r.Context(), "analysis call failed",
			applog.FieldOperation, applog.OpAnalyze,
			applog.FieldError, err.Error())
		if errors.Is(err, analysis.ErrUnconfigured) {
			writeInlineError(w, http.StatusOK, "Analisis AI belum dikonfigurasi")
			return
		}
		writeInlineError(w, http.StatusOK, "Analisis gagal, coba lagi nanti")
		return
	}

	s.render(w, r, "analysis.html", struct {
		Text string
	}{Text: text})
}
