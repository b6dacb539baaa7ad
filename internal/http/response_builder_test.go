package http

import (
	"testing"
	"time"

	"duit/internal/core"
)

func TestBarWidth(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		max    int64
		want   int
	}{
		{"zero amount", 0, 100, 0},
		{"zero max", 50, 0, 0},
		{"full width", 100, 100, 100},
		{"half width", 50, 100, 50},
		{"tiny value stays visible", 1, 100000, 2},
		{"rounds to nearest", 333, 1000, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := barWidth(tt.amount, tt.max); got != tt.want {
				t.Errorf("barWidth(%d, %d) = %d, want %d", tt.amount, tt.max, got, tt.want)
			}
		})
	}
}

func TestBuildChartsViewEmpty(t *testing.T) {
	view := buildChartsView(nil)
	if !view.Empty {
		t.Error("expected Empty for no transactions")
	}
}

func TestBuildMetricsViewDeficit(t *testing.T) {
	txs := []core.Transaction{
		{Amount: core.Money{Rupiah: 100000}, Type: core.Expense, Date: time.Now()},
		{Amount: core.Money{Rupiah: 40000}, Type: core.Income, Date: time.Now()},
	}

	view := buildMetricsView(txs)

	if !view.Deficit {
		t.Error("expected a deficit when expenses exceed income")
	}
	if view.Balance != "-Rp60.000" {
		t.Errorf("Balance = %q, want -Rp60.000", view.Balance)
	}
}

func TestBuildReportViewMarksSelectedMonth(t *testing.T) {
	aug := time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{Title: "Kopi", Amount: core.Money{Rupiah: 20000}, Type: core.Expense, Date: aug},
		{Title: "Teh", Amount: core.Money{Rupiah: 10000}, Type: core.Expense, Date: jul},
	}

	filter := core.ReportFilter{Month: core.MonthKeyOf(jul), Type: core.FilterAll}
	view := buildReportView(txs, filter)

	if len(view.Months) != 2 {
		t.Fatalf("len(Months) = %d, want 2", len(view.Months))
	}
	var selected string
	for _, m := range view.Months {
		if m.Selected {
			selected = m.Value
		}
	}
	if selected != "2025-07" {
		t.Errorf("selected month = %q, want 2025-07", selected)
	}
	if len(view.Transactions) != 1 || view.Transactions[0].Title != "Teh" {
		t.Errorf("unexpected filtered rows: %+v", view.Transactions)
	}
}
