package core

import (
	"sort"
	"strings"
)

const (
	FilterAll     TypeFilter = "all"
	FilterIncome  TypeFilter = "income"
	FilterExpense TypeFilter = "expense"
)

// TypeFilter narrows the monthly report to one transaction type.
type TypeFilter string

func (f TypeFilter) Valid() bool {
	switch f {
	case FilterAll, FilterIncome, FilterExpense:
		return true
	}
	return false
}

// ReportFilter is the monthly report's view state. It is derived and
// discardable: rebuilding it from the transaction list at any time yields
// the same report.
type ReportFilter struct {
	Month  MonthKey
	Type   TypeFilter
	Search string
}

// AvailableMonths lists the distinct month buckets present in the data,
// most recent first. Index 0 is the default report selection.
func AvailableMonths(txs []Transaction) []MonthKey {
	seen := make(map[MonthKey]struct{})
	var months []MonthKey
	for _, tx := range txs {
		key := MonthKeyOf(tx.Date)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[j].Before(months[i])
	})
	return months
}

// DefaultFilter selects the most recent available month with no type or
// search restriction. An empty transaction list yields a zero Month.
func DefaultFilter(txs []Transaction) ReportFilter {
	f := ReportFilter{Type: FilterAll}
	if months := AvailableMonths(txs); len(months) > 0 {
		f.Month = months[0]
	}
	return f
}

// Apply runs the filter pipeline: month restrict, then type restrict, then
// case-insensitive substring match on title or category, then sort
// descending by effective date. A zero Month (empty store) yields an empty
// result, not an error.
func (f ReportFilter) Apply(txs []Transaction) []Transaction {
	if f.Month.IsZero() {
		return nil
	}
	var out []Transaction
	term := strings.ToLower(strings.TrimSpace(f.Search))
	for _, tx := range txs {
		if MonthKeyOf(tx.Date) != f.Month {
			continue
		}
		if f.Type == FilterIncome && tx.Type != Income {
			continue
		}
		if f.Type == FilterExpense && tx.Type != Expense {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(tx.Title), term) &&
			!strings.Contains(strings.ToLower(tx.Category), term) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
