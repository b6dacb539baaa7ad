package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"duit/internal/core"
)

// WriteCSV streams the header and one row per transaction, in input order.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(txs) {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
