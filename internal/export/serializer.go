// Package export maps transactions to the flat tabular form consumed by
// the spreadsheet sinks (CSV download, Google Sheets append).
package export

import (
	"strconv"
	"time"

	"duit/internal/core"
)

// Header is the fixed, ordered set of column labels. Column order is part
// of the export contract and matches the Row field order.
var Header = []string{"Tanggal", "Judul", "Kategori", "Tipe", "Jumlah", "Dibuat"}

// Row is one serialized transaction. Amount stays a raw number; everything
// else is already display-formatted.
type Row struct {
	Date      string
	Title     string
	Category  string
	TypeLabel string
	Amount    int64
	CreatedAt string
}

// TypeLabel localizes the transaction type for display and export.
func TypeLabel(t core.Type) string {
	if t == core.Income {
		return "Pemasukan"
	}
	return "Pengeluaran"
}

// Rows serializes the full list in stable input order; it never re-sorts.
// Malformed records get no defensive handling — a zero date simply formats
// to its natural zero-value rendering.
func Rows(txs []core.Transaction) []Row {
	rows := make([]Row, len(txs))
	for i, tx := range txs {
		rows[i] = Row{
			Date:      core.FormatDate(tx.Date),
			Title:     tx.Title,
			Category:  tx.Category,
			TypeLabel: TypeLabel(tx.Type),
			Amount:    tx.Amount.Rupiah,
			CreatedAt: core.FormatDate(tx.CreatedAt),
		}
	}
	return rows
}

// Values renders the row as strings in Header order.
func (r Row) Values() []string {
	return []string{
		r.Date,
		r.Title,
		r.Category,
		r.TypeLabel,
		strconv.FormatInt(r.Amount, 10),
		r.CreatedAt,
	}
}

// SheetValues renders the row for a Sheets append call, keeping the amount
// numeric so spreadsheet formulas keep working.
func (r Row) SheetValues() []interface{} {
	return []interface{}{r.Date, r.Title, r.Category, r.TypeLabel, r.Amount, r.CreatedAt}
}

// Filename names the download after the current date.
func Filename(now time.Time) string {
	return "duit-transactions-" + now.Format("2006-01-02") + ".csv"
}
