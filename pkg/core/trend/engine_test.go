package trend

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditagent/pkg/models"
)

func month(t *testing.T, s string) models.Month {
	t.Helper()
	m, err := models.ParseMonth(s)
	require.NoError(t, err)
	return m
}

func record(t *testing.T, m string, score int, income int64) models.MonthlyRecord {
	t.Helper()
	return models.MonthlyRecord{
		Month:       month(t, m),
		CreditScore: score,
		Income:      decimal.NewFromInt(income),
	}
}

// threeMonthSeries is the canonical scenario: Jan..Mar 2024 with scores
// 600/610/625 and incomes 3.0M/3.1M/3.05M, deliberately stored out of order.
func threeMonthSeries(t *testing.T) *models.CustomerTimeSeries {
	t.Helper()
	return &models.CustomerTimeSeries{
		CustomerID:  "CUST100",
		Name:        "김민준",
		ProfileType: models.ProfileAverage,
		MonthlyData: []models.MonthlyRecord{
			record(t, "2024-03-01", 625, 3050000),
			record(t, "2024-01-01", 600, 3000000),
			record(t, "2024-02-01", 610, 3100000),
		},
	}
}

func TestLatestPicksMaxMonthRegardlessOfOrder(t *testing.T) {
	series := threeMonthSeries(t)

	latest, err := Latest(series)
	require.NoError(t, err)
	assert.Equal(t, 625, latest.CreditScore)
	assert.Equal(t, "2024-03-01", latest.Month.String())

	// Input ordering must be preserved.
	assert.Equal(t, "2024-03-01", series.MonthlyData[0].Month.String())
}

func TestLatestEmptyHistory(t *testing.T) {
	_, err := Latest(&models.CustomerTimeSeries{CustomerID: "CUST100"})
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestFilterPeriod(t *testing.T) {
	series := threeMonthSeries(t)

	feb := month(t, "2024-02")
	tests := []struct {
		name   string
		window PeriodWindow
		months []string
	}{
		{"unbounded", PeriodWindow{}, []string{"2024-01-01", "2024-02-01", "2024-03-01"}},
		{"single month", PeriodWindow{Start: &feb, End: &feb}, []string{"2024-02-01"}},
		{"open start", PeriodWindow{End: &feb}, []string{"2024-01-01", "2024-02-01"}},
		{"open end", PeriodWindow{Start: &feb}, []string{"2024-02-01", "2024-03-01"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterPeriod(series, tc.window)
			require.Len(t, got, len(tc.months))
			for i, m := range tc.months {
				assert.Equal(t, m, got[i].Month.String())
			}
		})
	}
}

func TestFilterPeriodIsIdempotent(t *testing.T) {
	series := threeMonthSeries(t)
	feb := month(t, "2024-02")
	window := PeriodWindow{Start: &feb}

	once := FilterPeriod(series, window)
	again := FilterPeriod(&models.CustomerTimeSeries{
		CustomerID:  series.CustomerID,
		MonthlyData: once,
	}, window)

	assert.Equal(t, once, again)
}

func TestFilterPeriodOutsideRangeIsEmptyNotError(t *testing.T) {
	series := threeMonthSeries(t)
	start := month(t, "2030-01")
	got := FilterPeriod(series, PeriodWindow{Start: &start})
	assert.Empty(t, got)
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("2024-01", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", w.Start.String())
	assert.Equal(t, "2024-03-01", w.End.String())

	w, err = ParseWindow("", "")
	require.NoError(t, err)
	assert.Nil(t, w.Start)
	assert.Nil(t, w.End)

	_, err = ParseWindow("not-a-month", "")
	assert.ErrorIs(t, err, models.ErrInvalidMonth)
}

func TestSummarizeTrendScenario(t *testing.T) {
	series := threeMonthSeries(t)

	summary, err := SummarizeTrend(series, PeriodWindow{})
	require.NoError(t, err)

	assert.Equal(t, 25, summary.CreditScoreDelta)
	assert.InDelta(t, 1.67, summary.IncomeChangePct, 0.01)
	assert.Equal(t, 3, summary.Months)
	assert.Equal(t, "2024-01-01", summary.First.Month.String())
	assert.Equal(t, "2024-03-01", summary.Last.Month.String())
	assert.Equal(t, "김민준", summary.Name)
}

func TestSummarizeTrendSingleRecordWindow(t *testing.T) {
	series := threeMonthSeries(t)
	feb := month(t, "2024-02")

	summary, err := SummarizeTrend(series, PeriodWindow{Start: &feb, End: &feb})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CreditScoreDelta)
	assert.Zero(t, summary.IncomeChangePct)
	assert.Zero(t, summary.DebtChangePct)
}

func TestSummarizeTrendZeroBaselineIncome(t *testing.T) {
	series := &models.CustomerTimeSeries{
		CustomerID: "CUST101",
		MonthlyData: []models.MonthlyRecord{
			record(t, "2024-01-01", 600, 0),
			record(t, "2024-02-01", 610, 3000000),
		},
	}

	summary, err := SummarizeTrend(series, PeriodWindow{})
	require.NoError(t, err)
	assert.Zero(t, summary.IncomeChangePct)
	assert.Zero(t, summary.DebtChangePct)
}

func TestSummarizeTrendNoDataInPeriod(t *testing.T) {
	series := threeMonthSeries(t)
	start := month(t, "2030-01")

	_, err := SummarizeTrend(series, PeriodWindow{Start: &start})
	assert.ErrorIs(t, err, ErrNoDataInPeriod)
	assert.False(t, errors.Is(err, ErrEmptyHistory))
}

func TestForecastInputsRequiresThreeRecords(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		series := threeMonthSeries(t)
		series.MonthlyData = series.MonthlyData[:n]
		_, err := ForecastInputs(series, 6)
		assert.ErrorIs(t, err, ErrInsufficientHistory, "history length %d", n)
	}
}

func TestForecastInputsAverages(t *testing.T) {
	series := threeMonthSeries(t)

	digest, err := ForecastInputs(series, 6)
	require.NoError(t, err)

	assert.Equal(t, 6, digest.MonthsAhead)
	assert.InDelta(t, (600+610+625)/3.0, digest.AvgCreditScore, 1e-9)

	wantIncome := decimal.NewFromInt(3000000 + 3100000 + 3050000).Div(decimal.NewFromInt(3))
	assert.True(t, digest.AvgIncome.Equal(wantIncome),
		"avg income: got %s want %s", digest.AvgIncome, wantIncome)
	assert.Len(t, digest.History, 3)
}

func TestForecastInputsRejectsNonPositiveHorizon(t *testing.T) {
	_, err := ForecastInputs(threeMonthSeries(t), 0)
	assert.Error(t, err)
}

func TestRecommendationInputs(t *testing.T) {
	series := threeMonthSeries(t)
	last := &series.MonthlyData[0] // 2024-03
	last.Debt = decimal.NewFromInt(6100000)
	last.Savings = decimal.NewFromInt(1525000)
	last.Expenses = decimal.NewFromInt(2000000)

	digest, err := RecommendationInputs(series)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, digest.DebtToIncome, 1e-9)
	assert.InDelta(t, 0.5, digest.SavingsToIncome, 1e-9)
	assert.True(t, digest.DisposableIncome.Equal(decimal.NewFromInt(1050000)))
	assert.Len(t, digest.Recent, 3)
}

func TestRecommendationInputsZeroIncome(t *testing.T) {
	series := &models.CustomerTimeSeries{
		CustomerID: "CUST102",
		MonthlyData: []models.MonthlyRecord{
			{
				Month: month(t, "2024-01-01"),
				Debt:  decimal.NewFromInt(500000),
			},
		},
	}

	digest, err := RecommendationInputs(series)
	require.NoError(t, err)
	assert.Zero(t, digest.DebtToIncome)
	assert.Zero(t, digest.SavingsToIncome)
}

func TestRecommendationInputsTruncatesToSixMonths(t *testing.T) {
	series := &models.CustomerTimeSeries{CustomerID: "CUST103", Name: "이서연"}
	for _, m := range []string{
		"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01",
		"2024-05-01", "2024-06-01", "2024-07-01", "2024-08-01",
	} {
		series.MonthlyData = append(series.MonthlyData, record(t, m, 700, 4000000))
	}

	digest, err := RecommendationInputs(series)
	require.NoError(t, err)
	require.Len(t, digest.Recent, 6)
	assert.Equal(t, "2024-03-01", digest.Recent[0].Month.String())
	assert.Equal(t, "2024-08-01", digest.Recent[5].Month.String())
}

func TestPctChangeIsFiniteForLargeSwings(t *testing.T) {
	got := pctChange(decimal.NewFromInt(1), decimal.NewFromInt(1000000))
	assert.False(t, math.IsInf(got, 0))
	assert.InDelta(t, 99999900, got, 1)
}
