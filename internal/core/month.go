package core

import (
	"fmt"
	"time"
)

// MonthKey identifies a calendar month bucket structurally. Grouping and
// sorting always go through the (year, month) pair; display labels are
// produced only at the presentation boundary, so a locale change can never
// split or reorder buckets.
type MonthKey struct {
	Year  int
	Month time.Month
}

var monthShortID = [...]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

var monthLongID = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthKeyOf buckets a transaction's effective date.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func (k MonthKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// Time returns the first instant of the month, UTC.
func (k MonthKey) Time() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// String is the stable wire form ("2025-08") used in URLs and cache keys.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// ParseMonthKey parses the wire form produced by String.
func ParseMonthKey(s string) (MonthKey, error) {
	var year, month int
	if _, err := fmt.Sscanf(s, "%d-%d", &year, &month); err != nil {
		return MonthKey{}, fmt.Errorf("parse month key %q: %w", s, err)
	}
	if month < 1 || month > 12 || year < 1 {
		return MonthKey{}, fmt.Errorf("parse month key %q: out of range", s)
	}
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

// Label is the short id-ID display form ("Agu 2025"), used on chart axes.
func (k MonthKey) Label() string {
	if k.IsZero() {
		return ""
	}
	return monthShortID[int(k.Month)-1] + " " + fmt.Sprintf("%d", k.Year)
}

// LongLabel is the long id-ID display form ("Agustus 2025"), used in the
// monthly report selector.
func (k MonthKey) LongLabel() string {
	if k.IsZero() {
		return ""
	}
	return monthLongID[int(k.Month)-1] + " " + fmt.Sprintf("%d", k.Year)
}

// FormatDate renders an effective date in the dd/mm/yyyy id-ID convention.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), t.Year())
}
