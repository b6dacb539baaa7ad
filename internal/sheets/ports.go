package sheets

import (
	"context"

	"duit/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// TransactionWriter appends one transaction as a spreadsheet row and
	// returns a reference to the written range.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)
