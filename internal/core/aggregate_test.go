package core

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func tx(typ Type, category string, amount int64, date time.Time) Transaction {
	return Transaction{
		Title:    "t",
		Amount:   Money{Rupiah: amount},
		Category: category,
		Type:     typ,
		Date:     date,
	}
}

var aug = time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC)

func TestComputeTotalsEmpty(t *testing.T) {
	got := ComputeTotals(nil)
	if got != (Totals{}) {
		t.Fatalf("empty input must yield zeros, got %+v", got)
	}
}

func TestComputeTotalsScenario(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Food & Dining", 50000, aug),
		tx(Expense, "Food & Dining", 25000, aug),
		tx(Income, "Business", 100000, aug),
	}
	got := ComputeTotals(txs)
	if got.Income.Rupiah != 100000 || got.Expense.Rupiah != 75000 || got.Balance.Rupiah != 25000 {
		t.Fatalf("got %+v", got)
	}

	b := ExpenseBreakdown(txs)
	if len(b) != 1 || b[0].Category != "Food & Dining" || b[0].Amount.Rupiah != 75000 {
		t.Fatalf("breakdown = %+v", b)
	}
}

func TestBalanceInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		var txs []Transaction
		for i := 0; i < rng.Intn(40); i++ {
			typ := Income
			if rng.Intn(2) == 0 {
				typ = Expense
			}
			txs = append(txs, tx(typ, "Other", rng.Int63n(1_000_000), aug))
		}
		got := ComputeTotals(txs)
		if got.Balance != got.Income.Sub(got.Expense) {
			t.Fatalf("balance invariant broken: %+v", got)
		}
	}
}

func TestExpenseBreakdownIgnoresIncome(t *testing.T) {
	txs := []Transaction{
		tx(Income, "Business", 900000, aug),
		tx(Expense, "Transportation", 15000, aug),
		tx(Expense, "Shopping", 80000, aug),
		tx(Expense, "Transportation", 5000, aug),
	}
	b := ExpenseBreakdown(txs)
	want := Breakdown{
		{Category: "Transportation", Amount: Money{Rupiah: 20000}},
		{Category: "Shopping", Amount: Money{Rupiah: 80000}},
	}
	if !reflect.DeepEqual(b, want) {
		t.Fatalf("breakdown = %+v, want %+v", b, want)
	}
	if b.Total() != ComputeTotals(txs).Expense {
		t.Fatal("breakdown total must equal expense total")
	}
}

func TestBreakdownRanked(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Shopping", 30000, aug),
		tx(Expense, "Travel", 90000, aug),
		tx(Expense, "Healthcare", 30000, aug),
	}
	ranked := ExpenseBreakdown(txs).Ranked()
	wantOrder := []string{"Travel", "Shopping", "Healthcare"}
	for i, cat := range wantOrder {
		if ranked[i].Category != cat {
			t.Fatalf("ranked[%d] = %q, want %q (full: %+v)", i, ranked[i].Category, cat, ranked)
		}
	}
	// Ranking must not disturb the original breakdown.
	b := ExpenseBreakdown(txs)
	_ = b.Ranked()
	if b[0].Category != "Shopping" {
		t.Fatal("Ranked must work on a copy")
	}
}

func TestMonthlySeriesSortedAndOrderIndependent(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Other", 10, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)),
		tx(Income, "Other", 20, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)),
		tx(Expense, "Other", 30, time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)),
		tx(Income, "Other", 40, time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC)),
	}
	want := []MonthBucket{
		{Key: MonthKey{2024, time.December}, Income: Money{Rupiah: 20}},
		{Key: MonthKey{2025, time.January}, Expense: Money{Rupiah: 30}},
		{Key: MonthKey{2025, time.March}, Income: Money{Rupiah: 40}, Expense: Money{Rupiah: 10}},
	}
	got := MonthlySeries(txs)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("series = %+v, want %+v", got, want)
	}

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]Transaction, len(txs))
		copy(shuffled, txs)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if got := MonthlySeries(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("permuted input changed the series: %+v", got)
		}
	}
}

func TestMonthlySeriesEmpty(t *testing.T) {
	if got := MonthlySeries(nil); len(got) != 0 {
		t.Fatalf("empty input must yield empty series, got %+v", got)
	}
}

func TestPercentOfTotal(t *testing.T) {
	if got := PercentOfTotal(Money{Rupiah: 123}, Money{}); got != 0 {
		t.Fatalf("x/0 must be 0, got %v", got)
	}
	if got := PercentOfTotal(Money{}, Money{Rupiah: 99}); got != 0 {
		t.Fatalf("0/t must be 0, got %v", got)
	}
	if got := PercentOfTotal(Money{Rupiah: 25}, Money{Rupiah: 100}); got != 25 {
		t.Fatalf("got %v, want 25", got)
	}
}

func TestAggregatesDoNotMutateInput(t *testing.T) {
	txs := []Transaction{
		tx(Expense, "Other", 10, aug),
		tx(Income, "Other", 20, aug.AddDate(0, -1, 0)),
	}
	snapshot := make([]Transaction, len(txs))
	copy(snapshot, txs)

	ComputeTotals(txs)
	ExpenseBreakdown(txs)
	MonthlySeries(txs)

	if !reflect.DeepEqual(txs, snapshot) {
		t.Fatal("aggregation mutated its input")
	}
}
