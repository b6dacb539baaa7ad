package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"duit/internal/core"
)

// parseTransactionForm builds a transaction draft from the create/edit
// form. ID and CreatedAt are left empty; the store owns both.
func parseTransactionForm(r *http.Request) (core.Transaction, error) {
	if err := r.ParseForm(); err != nil {
		return core.Transaction{}, fmt.Errorf("parse form: %w", err)
	}

	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := parseDate(r.Form.Get("date"))
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}

	tx := core.Transaction{
		Title:    sanitizeInput(r.Form.Get("title")),
		Amount:   amount,
		Category: sanitizeInput(r.Form.Get("category")),
		Type:     core.Type(strings.TrimSpace(r.Form.Get("type"))),
		Date:     date,
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// parseDate accepts the HTML date input format. An empty value defaults
// to today.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", value)
}

// parseReportFilter reads the report controls from query parameters.
// Malformed values fall back to the default filter for the given months.
func parseReportFilter(r *http.Request, txs []core.Transaction) core.ReportFilter {
	filter := core.DefaultFilter(txs)

	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if mk, err := core.ParseMonthKey(v); err == nil {
			filter.Month = mk
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		switch core.TypeFilter(v) {
		case core.FilterAll, core.FilterIncome, core.FilterExpense:
			filter.Type = core.TypeFilter(v)
		}
	}
	filter.Search = sanitizeInput(r.URL.Query().Get("q"))

	return filter
}

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
