package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

type (
	// Type distinguishes the sign of a transaction's contribution to the
	// balance. The stored amount is always a non-negative magnitude.
	Type string

	// Transaction is the sole persisted entity. Date is the user-supplied
	// effective calendar date; CreatedAt is stamped once by the store and
	// the two are independent.
	Transaction struct {
		ID        string
		Title     string
		Amount    Money
		Category  string
		Type      Type
		Date      time.Time
		CreatedAt time.Time
	}
)

// Categories is the predefined label set offered by the UI. The data model
// does not validate Category against it; any string is structurally legal.
var Categories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Business",
	"Other",
}

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
)

func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// Validate checks the writer-side contract. The store trusts its callers to
// have validated before Add/Update.
func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
