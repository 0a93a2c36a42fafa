// Package trend is the time-series metrics engine. Every operation is a pure
// function over an in-memory CustomerTimeSeries: records are sorted and
// filtered here, once, and the higher-level digests (trend summary, forecast
// inputs, recommendation inputs) are composed from the same two primitives,
// FilterPeriod and Latest.
package trend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"creditagent/pkg/models"
)

var (
	// ErrEmptyHistory means the customer has no monthly records at all.
	ErrEmptyHistory = errors.New("customer has no monthly records")
	// ErrNoDataInPeriod means records exist but none fall in the requested window.
	ErrNoDataInPeriod = errors.New("no records in the requested period")
	// ErrInsufficientHistory means fewer records than the minimum trend length.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// forecastMinRecords is the minimum history length needed to characterize a
// trend before handing it to the analysis model.
const forecastMinRecords = 3

// recommendationWindow is how many recent months the product
// recommendation digest carries as context.
const recommendationWindow = 6

// PeriodWindow is an inclusive calendar-month range. A nil bound is
// unbounded on that side.
type PeriodWindow struct {
	Start *models.Month
	End   *models.Month
}

// ParseWindow builds a PeriodWindow from raw query strings. Empty strings
// leave the corresponding bound open. Unparsable values surface
// models.ErrInvalidMonth.
func ParseWindow(start, end string) (PeriodWindow, error) {
	var w PeriodWindow
	if start != "" {
		m, err := models.ParseMonth(start)
		if err != nil {
			return PeriodWindow{}, err
		}
		w.Start = &m
	}
	if end != "" {
		m, err := models.ParseMonth(end)
		if err != nil {
			return PeriodWindow{}, err
		}
		w.End = &m
	}
	return w, nil
}

func (w PeriodWindow) contains(m models.Month) bool {
	if w.Start != nil && m.Before(w.Start.Time) {
		return false
	}
	if w.End != nil && m.After(w.End.Time) {
		return false
	}
	return true
}

// TrendSummary is the first-vs-last comparison over a period window.
type TrendSummary struct {
	CustomerID       string
	Name             string
	Months           int
	First            models.MonthlyRecord
	Last             models.MonthlyRecord
	CreditScoreDelta int
	IncomeChangePct  float64
	DebtChangePct    float64
	Records          []models.MonthlyRecord
}

// ForecastDigest is the statistical input handed to the analysis model for
// credit forecasting. The engine only aggregates; prediction is delegated.
type ForecastDigest struct {
	CustomerID     string
	Name           string
	MonthsAhead    int
	AvgCreditScore float64
	AvgIncome      decimal.Decimal
	AvgExpenses    decimal.Decimal
	AvgSavings     decimal.Decimal
	AvgDebt        decimal.Decimal
	History        []models.MonthlyRecord
	RecentWindow   int
}

// RecommendationDigest is the ratio snapshot used for product recommendation.
type RecommendationDigest struct {
	CustomerID       string
	Name             string
	Latest           models.MonthlyRecord
	Recent           []models.MonthlyRecord
	DebtToIncome     float64
	SavingsToIncome  float64
	DisposableIncome decimal.Decimal
}

// sortedCopy returns the records ordered ascending by month without touching
// the input slice.
func sortedCopy(records []models.MonthlyRecord) []models.MonthlyRecord {
	out := make([]models.MonthlyRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month.Time)
	})
	return out
}

// Latest returns the chronologically last record of the series.
func Latest(series *models.CustomerTimeSeries) (models.MonthlyRecord, error) {
	if len(series.MonthlyData) == 0 {
		return models.MonthlyRecord{}, fmt.Errorf("customer %s: %w", series.CustomerID, ErrEmptyHistory)
	}
	sorted := sortedCopy(series.MonthlyData)
	return sorted[len(sorted)-1], nil
}

// FilterPeriod returns the records whose month falls inside the window,
// sorted ascending. The input series is never mutated. An empty result is a
// valid outcome; callers decide whether that is an error.
func FilterPeriod(series *models.CustomerTimeSeries, window PeriodWindow) []models.MonthlyRecord {
	filtered := make([]models.MonthlyRecord, 0, len(series.MonthlyData))
	for _, rec := range series.MonthlyData {
		if window.contains(rec.Month) {
			filtered = append(filtered, rec)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Month.Before(filtered[j].Month.Time)
	})
	return filtered
}

// pctChange is the percentage change from first to last, defined as 0 when
// the baseline is zero or negative so a fresh customer never divides by zero.
func pctChange(first, last decimal.Decimal) float64 {
	if first.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	pct, _ := last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// SummarizeTrend filters the series to the window and derives the
// first-vs-last metrics.
func SummarizeTrend(series *models.CustomerTimeSeries, window PeriodWindow) (*TrendSummary, error) {
	period := FilterPeriod(series, window)
	if len(period) == 0 {
		return nil, fmt.Errorf("customer %s: %w", series.CustomerID, ErrNoDataInPeriod)
	}

	first := period[0]
	last := period[len(period)-1]

	return &TrendSummary{
		CustomerID:       series.CustomerID,
		Name:             series.Name,
		Months:           len(period),
		First:            first,
		Last:             last,
		CreditScoreDelta: last.CreditScore - first.CreditScore,
		IncomeChangePct:  pctChange(first.Income, last.Income),
		DebtChangePct:    pctChange(first.Debt, last.Debt),
		Records:          period,
	}, nil
}

// ForecastInputs averages the most recent three months into the digest the
// analysis model needs for a monthsAhead prediction. Fails when fewer than
// three records exist.
func ForecastInputs(series *models.CustomerTimeSeries, monthsAhead int) (*ForecastDigest, error) {
	if monthsAhead <= 0 {
		return nil, fmt.Errorf("months ahead must be positive, got %d", monthsAhead)
	}
	history := FilterPeriod(series, PeriodWindow{})
	if len(history) < forecastMinRecords {
		return nil, fmt.Errorf("customer %s has %d records, need %d: %w",
			series.CustomerID, len(history), forecastMinRecords, ErrInsufficientHistory)
	}

	recent := history[len(history)-forecastMinRecords:]
	n := decimal.NewFromInt(forecastMinRecords)

	var scoreSum int
	var income, expenses, savings, debt decimal.Decimal
	for _, rec := range recent {
		scoreSum += rec.CreditScore
		income = income.Add(rec.Income)
		expenses = expenses.Add(rec.Expenses)
		savings = savings.Add(rec.Savings)
		debt = debt.Add(rec.Debt)
	}

	return &ForecastDigest{
		CustomerID:     series.CustomerID,
		Name:           series.Name,
		MonthsAhead:    monthsAhead,
		AvgCreditScore: float64(scoreSum) / forecastMinRecords,
		AvgIncome:      income.Div(n),
		AvgExpenses:    expenses.Div(n),
		AvgSavings:     savings.Div(n),
		AvgDebt:        debt.Div(n),
		History:        history,
		RecentWindow:   forecastMinRecords,
	}, nil
}

// ratio is numerator/denominator, 0 when denominator is zero or negative.
func ratio(num, den decimal.Decimal) float64 {
	if den.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	r, _ := num.Div(den).Float64()
	return r
}

// RecommendationInputs derives the latest-record ratios plus the last six
// months (or fewer) of context for product recommendation.
func RecommendationInputs(series *models.CustomerTimeSeries) (*RecommendationDigest, error) {
	latest, err := Latest(series)
	if err != nil {
		return nil, err
	}

	recent := FilterPeriod(series, PeriodWindow{})
	if len(recent) > recommendationWindow {
		recent = recent[len(recent)-recommendationWindow:]
	}

	return &RecommendationDigest{
		CustomerID:       series.CustomerID,
		Name:             series.Name,
		Latest:           latest,
		Recent:           recent,
		DebtToIncome:     ratio(latest.Debt, latest.Income),
		SavingsToIncome:  ratio(latest.Savings, latest.Income),
		DisposableIncome: latest.Income.Sub(latest.Expenses),
	}, nil
}
