package core

import "sort"

// Derived aggregates are never stored; every function here is a pure
// recomputation over a snapshot of the transaction list and leaves its
// input untouched.

// Totals is the dashboard headline rollup.
type Totals struct {
	Income  Money
	Expense Money
	Balance Money
}

// ComputeTotals sums amounts by type. Balance is always Income - Expense;
// an empty list yields all zeros.
func ComputeTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// CategoryAmount is one slice of the expense breakdown.
type CategoryAmount struct {
	Category string
	Amount   Money
}

// Breakdown preserves first-encountered category order. A category with no
// matching expense is absent, never present with a zero value.
type Breakdown []CategoryAmount

// ExpenseBreakdown sums expense-type transactions by category. Income
// transactions never contribute.
func ExpenseBreakdown(txs []Transaction) Breakdown {
	index := make(map[string]int)
	var b Breakdown
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(b)
			index[tx.Category] = i
			b = append(b, CategoryAmount{Category: tx.Category})
		}
		b[i].Amount = b[i].Amount.Add(tx.Amount)
	}
	return b
}

// Ranked returns a copy sorted by descending amount; ties keep the
// first-encountered category order.
func (b Breakdown) Ranked() Breakdown {
	out := make(Breakdown, len(b))
	copy(out, b)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Rupiah > out[j].Amount.Rupiah
	})
	return out
}

// Total sums the breakdown; equals ComputeTotals(txs).Expense by
// construction.
func (b Breakdown) Total() Money {
	var t Money
	for _, ca := range b {
		t = t.Add(ca.Amount)
	}
	return t
}

// MonthBucket aggregates one calendar month of the income-vs-expense
// series.
type MonthBucket struct {
	Key     MonthKey
	Income  Money
	Expense Money
}

// MonthlySeries buckets transactions by the calendar month of their
// effective date (never CreatedAt) and returns the buckets in ascending
// chronological order regardless of input order.
func MonthlySeries(txs []Transaction) []MonthBucket {
	index := make(map[MonthKey]int)
	var series []MonthBucket
	for _, tx := range txs {
		key := MonthKeyOf(tx.Date)
		i, ok := index[key]
		if !ok {
			i = len(series)
			index[key] = i
			series = append(series, MonthBucket{Key: key})
		}
		switch tx.Type {
		case Income:
			series[i].Income = series[i].Income.Add(tx.Amount)
		case Expense:
			series[i].Expense = series[i].Expense.Add(tx.Amount)
		}
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Key.Before(series[j].Key)
	})
	return series
}

// PercentOfTotal returns amount/total*100, or 0 when total is zero.
func PercentOfTotal(amount, total Money) float64 {
	if total.Rupiah == 0 {
		return 0
	}
	return float64(amount.Rupiah) / float64(total.Rupiah) * 100
}
