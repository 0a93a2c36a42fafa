package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditagent/pkg/core/agent"
	"creditagent/pkg/core/store"
	"creditagent/pkg/core/trend"
	"creditagent/pkg/models"
)

// --- Mocks ---

type mockProvider struct {
	GenerateFunc func(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error)

	lastPrompt  string
	lastSystem  string
	lastOptions map[string]interface{}
}

func (m *mockProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	m.lastPrompt = prompt
	m.lastSystem = systemPrompt
	m.lastOptions = options
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, systemPrompt, options)
	}
	return "분석 결과", nil
}

func (m *mockProvider) AdaptInstructions(raw string) string { return raw }

func newTestAnalyzer(t *testing.T, provider *mockProvider) (*Analyzer, store.Store) {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	mgr := agent.NewManager(agent.Config{ActiveProvider: "mock"})
	mgr.RegisterProvider("mock", provider)

	return NewAnalyzer(s, mgr, nil), s
}

func seedCustomer(t *testing.T, s store.Store, months ...string) *models.CustomerTimeSeries {
	t.Helper()
	series := &models.CustomerTimeSeries{
		CustomerID:  "CUST100",
		Name:        "김민준",
		ProfileType: models.ProfileAverage,
	}
	score := 600
	income := int64(3000000)
	for _, ms := range months {
		m, err := models.ParseMonth(ms)
		require.NoError(t, err)
		series.MonthlyData = append(series.MonthlyData, models.MonthlyRecord{
			Month:       m,
			CreditScore: score,
			Income:      decimal.NewFromInt(income),
			Expenses:    decimal.NewFromInt(2000000),
			Savings:     decimal.NewFromInt(500000),
			Debt:        decimal.NewFromInt(4000000),
		})
		score += 10
		income += 50000
	}
	require.NoError(t, s.Save(context.Background(), series))
	return series
}

func TestAnalyzeSnapshotUsesLatestRecord(t *testing.T) {
	provider := &mockProvider{}
	analyzer, s := newTestAnalyzer(t, provider)
	seedCustomer(t, s, "2024-01-01", "2024-02-01", "2024-03-01")

	got, err := analyzer.AnalyzeSnapshot(context.Background(), CustomerRef{ID: "CUST100"}, "")
	require.NoError(t, err)
	assert.Equal(t, "분석 결과", got)

	// Latest month is March: score 620, income 3,100,000.
	assert.Contains(t, provider.lastPrompt, "신용 점수: 620")
	assert.Contains(t, provider.lastPrompt, "3,100,000원")
	assert.Equal(t, 0.5, provider.lastOptions["temperature"])
}

func TestAnalyzeSnapshotByName(t *testing.T) {
	provider := &mockProvider{}
	analyzer, s := newTestAnalyzer(t, provider)
	seedCustomer(t, s, "2024-01-01")

	_, err := analyzer.AnalyzeSnapshot(context.Background(), CustomerRef{Name: "김민준"}, "질문")
	require.NoError(t, err)
	assert.Contains(t, provider.lastPrompt, "질문")
}

func TestAnalyzeSnapshotUnknownCustomer(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, &mockProvider{})

	_, err := analyzer.AnalyzeSnapshot(context.Background(), CustomerRef{ID: "CUST999"}, "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalyzeSnapshotRequiresRef(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, &mockProvider{})

	_, err := analyzer.AnalyzeSnapshot(context.Background(), CustomerRef{}, "")
	assert.ErrorIs(t, err, ErrNoCustomerRef)
}

func TestAnalyzeTrendPropagatesNoData(t *testing.T) {
	analyzer, s := newTestAnalyzer(t, &mockProvider{})
	seedCustomer(t, s, "2024-01-01")

	window, err := trend.ParseWindow("2030-01", "2030-06")
	require.NoError(t, err)

	_, err = analyzer.AnalyzeTrend(context.Background(), CustomerRef{ID: "CUST100"}, window)
	assert.ErrorIs(t, err, trend.ErrNoDataInPeriod)
}

func TestAnalyzeTrendOracleFailure(t *testing.T) {
	provider := &mockProvider{
		GenerateFunc: func(context.Context, string, string, map[string]interface{}) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	analyzer, s := newTestAnalyzer(t, provider)
	seedCustomer(t, s, "2024-01-01", "2024-02-01")

	_, err := analyzer.AnalyzeTrend(context.Background(), CustomerRef{ID: "CUST100"}, trend.PeriodWindow{})
	require.Error(t, err)

	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, TaskTrend, oerr.Task)
	assert.Contains(t, oerr.Error(), "rate limited")
}

func TestPredictCreditDefaultsHorizonAndGuardsHistory(t *testing.T) {
	provider := &mockProvider{}
	analyzer, s := newTestAnalyzer(t, provider)
	seedCustomer(t, s, "2024-01-01", "2024-02-01")

	_, err := analyzer.PredictCredit(context.Background(), CustomerRef{ID: "CUST100"}, 0)
	assert.ErrorIs(t, err, trend.ErrInsufficientHistory)

	seedCustomer(t, s, "2024-01-01", "2024-02-01", "2024-03-01")
	_, err = analyzer.PredictCredit(context.Background(), CustomerRef{ID: "CUST100"}, 0)
	require.NoError(t, err)
	assert.Contains(t, provider.lastPrompt, "향후 6개월")
}

func TestRecommendProducts(t *testing.T) {
	provider := &mockProvider{}
	analyzer, s := newTestAnalyzer(t, provider)
	seedCustomer(t, s, "2024-01-01", "2024-02-01")

	got, err := analyzer.RecommendProducts(context.Background(), CustomerRef{ID: "CUST100"})
	require.NoError(t, err)
	assert.Equal(t, "분석 결과", got)
	assert.Contains(t, provider.lastPrompt, "부채 대 소득 비율")
	assert.Equal(t, 0.4, provider.lastOptions["temperature"])
}

func TestAssessCreditParsesSloppyJSON(t *testing.T) {
	provider := &mockProvider{
		GenerateFunc: func(context.Context, string, string, map[string]interface{}) (string, error) {
			return "```json\n{'approval_likelihood': 0.7, 'risk_level': 'medium', 'recommended_rate_min_pct': 4.5, 'recommended_rate_max_pct': 6.0, 'summary': '안정적인 소득 흐름'}\n```", nil
		},
	}
	analyzer, s := newTestAnalyzer(t, provider)
	seedCustomer(t, s, "2024-01-01")

	got, err := analyzer.AssessCredit(context.Background(), CustomerRef{ID: "CUST100"})
	require.NoError(t, err)
	assert.Equal(t, 0.7, got.ApprovalLikelihood)
	assert.Equal(t, "medium", got.RiskLevel)
	assert.Equal(t, 4.5, got.RecommendedRateMinPct)
	assert.True(t, strings.Contains(got.Summary, "안정"))

	jsonMode, _ := provider.lastOptions["json_mode"].(bool)
	assert.True(t, jsonMode)
}

func TestAssessCreditUnparsableOutputIsOracleError(t *testing.T) {
	provider := &mockProvider{
		GenerateFunc: func(context.Context, string, string, map[string]interface{}) (string, error) {
			return "죄송합니다, 평가를 할 수 없습니다.", nil
		},
	}
	analyzer, s := newTestAnalyzer(t, provider)
	seedCustomer(t, s, "2024-01-01")

	_, err := analyzer.AssessCredit(context.Background(), CustomerRef{ID: "CUST100"})
	var oerr *OracleError
	assert.ErrorAs(t, err, &oerr)
}
