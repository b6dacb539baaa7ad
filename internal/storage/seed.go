package storage

import (
	"fmt"
	"time"

	"duit/internal/core"
)

// seedEntry positions a placeholder record relative to the current month so
// a fresh install always has a populated dashboard and report.
type seedEntry struct {
	title     string
	amount    int64
	category  string
	typ       core.Type
	monthsAgo int
	day       int
}

var seedEntries = []seedEntry{
	{"Gaji bulanan", 8500000, "Business", core.Income, 0, 1},
	{"Makan siang kantor", 45000, "Food & Dining", core.Expense, 0, 3},
	{"Bensin motor", 100000, "Transportation", core.Expense, 0, 5},
	{"Belanja bulanan", 750000, "Shopping", core.Expense, 0, 8},
	{"Tagihan listrik", 350000, "Bills & Utilities", core.Expense, 0, 10},
	{"Gaji bulanan", 8500000, "Business", core.Income, 1, 1},
	{"Nonton bioskop", 60000, "Entertainment", core.Expense, 1, 14},
	{"Periksa dokter", 200000, "Healthcare", core.Expense, 1, 18},
	{"Proyek freelance", 1500000, "Business", core.Income, 2, 6},
	{"Tiket kereta", 350000, "Travel", core.Expense, 2, 21},
	{"Kursus online", 299000, "Education", core.Expense, 2, 25},
}

// SeedTransactions builds the fixed placeholder dataset loaded when the
// persistent slot is absent or empty. Records carry "seed-" ids so they are
// distinguishable from user data.
func SeedTransactions(now time.Time) []core.Transaction {
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	txs := make([]core.Transaction, 0, len(seedEntries))
	for i, e := range seedEntries {
		date := base.AddDate(0, -e.monthsAgo, e.day-1)
		txs = append(txs, core.Transaction{
			ID:        fmt.Sprintf("seed-%d", i),
			Title:     e.title,
			Amount:    core.Money{Rupiah: e.amount},
			Category:  e.category,
			Type:      e.typ,
			Date:      date,
			CreatedAt: now,
		})
	}
	return txs
}
