package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"duit/internal/core"
	"duit/internal/export"
	applog "duit/internal/log"
)

// View models handed to the templates. Everything is preformatted here;
// templates only place strings.

type metricsView struct {
	Income  string
	Expense string
	Balance string
	Deficit bool
}

type breakdownRowView struct {
	Category string
	Amount   string
	Percent  string
	Width    int
}

type monthBarView struct {
	Label        string
	Income       string
	Expense      string
	IncomeWidth  int
	ExpenseWidth int
}

type chartsView struct {
	Rows   []breakdownRowView
	Months []monthBarView
	Empty  bool
}

type transactionView struct {
	ID        string
	Title     string
	Category  string
	Date      string
	Amount    string
	TypeLabel string
	Income    bool
}

type monthOptionView struct {
	Value    string
	Label    string
	Selected bool
}

type reportView struct {
	Months       []monthOptionView
	MonthLabel   string
	Query        string
	Type         string
	Transactions []transactionView
	Totals       metricsView
	HasMonths    bool
}

func buildMetricsView(txs []core.Transaction) metricsView {
	totals := core.ComputeTotals(txs)
	return metricsView{
		Income:  core.FormatRupiah(totals.Income),
		Expense: core.FormatRupiah(totals.Expense),
		Balance: core.FormatRupiah(totals.Balance),
		Deficit: totals.Balance.Rupiah < 0,
	}
}

func buildChartsView(txs []core.Transaction) chartsView {
	view := chartsView{}

	breakdown := core.ExpenseBreakdown(txs).Ranked()
	total := breakdown.Total()
	for _, row := range breakdown {
		percent := core.PercentOfTotal(row.Amount, total)
		view.Rows = append(view.Rows, breakdownRowView{
			Category: row.Category,
			Amount:   core.FormatRupiah(row.Amount),
			Percent:  fmt.Sprintf("%.1f%%", percent),
			Width:    barWidth(row.Amount.Rupiah, maxBreakdownAmount(breakdown)),
		})
	}

	series := core.MonthlySeries(txs)
	maxFlow := maxSeriesAmount(series)
	for _, bucket := range series {
		view.Months = append(view.Months, monthBarView{
			Label:        bucket.Key.Label(),
			Income:       core.FormatRupiah(bucket.Income),
			Expense:      core.FormatRupiah(bucket.Expense),
			IncomeWidth:  barWidth(bucket.Income.Rupiah, maxFlow),
			ExpenseWidth: barWidth(bucket.Expense.Rupiah, maxFlow),
		})
	}

	view.Empty = len(view.Rows) == 0 && len(view.Months) == 0
	return view
}

func maxBreakdownAmount(b core.Breakdown) int64 {
	var max int64
	for _, row := range b {
		if row.Amount.Rupiah > max {
			max = row.Amount.Rupiah
		}
	}
	return max
}

func maxSeriesAmount(series []core.MonthBucket) int64 {
	var max int64
	for _, bucket := range series {
		if bucket.Income.Rupiah > max {
			max = bucket.Income.Rupiah
		}
		if bucket.Expense.Rupiah > max {
			max = bucket.Expense.Rupiah
		}
	}
	return max
}

// barWidth maps an amount to a 0-100 bar width relative to the largest
// value, keeping tiny non-zero values visible.
func barWidth(amount, max int64) int {
	if max <= 0 || amount <= 0 {
		return 0
	}
	width := int((amount*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

func buildTransactionViews(txs []core.Transaction) []transactionView {
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, transactionView{
			ID:        tx.ID,
			Title:     tx.Title,
			Category:  tx.Category,
			Date:      core.FormatDate(tx.Date),
			Amount:    core.FormatRupiah(tx.Amount),
			TypeLabel: export.TypeLabel(tx.Type),
			Income:    tx.Type == core.Income,
		})
	}
	return views
}

func buildReportView(txs []core.Transaction, filter core.ReportFilter) reportView {
	view := reportView{
		Query: filter.Search,
		Type:  string(filter.Type),
	}

	for _, mk := range core.AvailableMonths(txs) {
		view.Months = append(view.Months, monthOptionView{
			Value:    mk.String(),
			Label:    mk.LongLabel(),
			Selected: mk == filter.Month,
		})
	}
	view.HasMonths = len(view.Months) > 0
	if !filter.Month.IsZero() {
		view.MonthLabel = filter.Month.LongLabel()
	}

	matched := filter.Apply(txs)
	view.Transactions = buildTransactionViews(matched)
	view.Totals = buildMetricsView(matched)

	return view
}

// render executes a template into a buffer first, so a failed execution
// can still answer 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template execution failed",
			"template", name, applog.FieldError, err.Error())
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// writeInlineError emits the small error fragment htmx swaps into the
// feedback area.
func writeInlineError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`))
}

func writeInlineSuccess(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`))
}
