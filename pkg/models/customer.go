// Package models defines the customer financial profile types shared across
// the store, the trend engine, and the API layer.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProfileType classifies the risk profile a synthetic customer was generated
// from. It is informational only; no engine logic branches on it.
type ProfileType string

const (
	ProfileAverage  ProfileType = "average"
	ProfileHighRisk ProfileType = "high_risk"
	ProfilePremium  ProfileType = "premium"
)

// ErrInvalidMonth indicates a month value that could not be parsed as a
// calendar month. Callers match it with errors.Is.
var ErrInvalidMonth = errors.New("invalid month format")

const (
	monthLayoutFull  = "2006-01-02"
	monthLayoutShort = "2006-01"
)

// Month is the calendar-month key of a MonthlyRecord. Stored data uses the
// YYYY-MM-DD layout while query parameters typically arrive as YYYY-MM, so
// both are accepted on input. JSON output always uses YYYY-MM-DD.
type Month struct {
	time.Time
}

// ParseMonth accepts YYYY-MM-DD or YYYY-MM. A failure wraps ErrInvalidMonth
// so the API layer can report a bad date range instead of a generic error.
func ParseMonth(s string) (Month, error) {
	for _, layout := range []string{monthLayoutFull, monthLayoutShort} {
		if t, err := time.Parse(layout, s); err == nil {
			return Month{t}, nil
		}
	}
	return Month{}, fmt.Errorf("%w: %q (want YYYY-MM or YYYY-MM-DD)", ErrInvalidMonth, s)
}

// MonthOf truncates a time to the first day of its month.
func MonthOf(t time.Time) Month {
	return Month{time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)}
}

func (m Month) String() string {
	return m.Format(monthLayoutFull)
}

// Korean returns the display form used in prompts and reports, e.g. "2024년 03월".
func (m Month) Korean() string {
	return m.Format("2006년 01월")
}

func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.Format(monthLayoutFull) + `"`), nil
}

func (m *Month) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidMonth, s)
	}
	parsed, err := ParseMonth(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MonthlyRecord is one calendar month's financial snapshot for a customer.
// Monetary amounts are decimals (the source data mixes integers and floats;
// decimal keeps the arithmetic exact). CreditScore stays within [300, 850]
// by construction in the generator; the engine does not re-clamp.
type MonthlyRecord struct {
	Month           Month           `json:"month"`
	CreditScore     int             `json:"credit_score"`
	Income          decimal.Decimal `json:"income"`
	Expenses        decimal.Decimal `json:"expenses"`
	Savings         decimal.Decimal `json:"savings"`
	Debt            decimal.Decimal `json:"debt"`
	LoanPayments    decimal.Decimal `json:"loan_payments"`
	OverduePayments int             `json:"overdue_payments"`
}

// CustomerTimeSeries is a customer's full monthly history. Records are not
// guaranteed to be ordered in storage; anything sequential must sort by
// month first (the trend engine owns that).
type CustomerTimeSeries struct {
	CustomerID  string          `json:"customer_id"`
	Name        string          `json:"name"`
	ProfileType ProfileType     `json:"profile_type"`
	MonthlyData []MonthlyRecord `json:"monthly_data"`
}
