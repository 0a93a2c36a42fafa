// Package prompt assembles the Korean-language analysis prompts from the
// trend engine's digests. Templates live in code; the analyzer fills them
// with formatted figures so the oracle sees the same numbers a reviewer
// would.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"

	"creditagent/pkg/core/trend"
	"creditagent/pkg/models"
)

// System prompts per task type.
const (
	SystemFinancialExpert = "당신은 금융 전문가입니다."
	SystemTrendAnalyst    = "당신은 시계열 금융 데이터 분석 전문가입니다. 고객의 재정 데이터를 분석하여 신용도 추세, 재정 상태 평가, 맞춤형 조언을 제공합니다."
	SystemForecaster      = "당신은 금융 예측 전문가입니다. 고객의 과거 재정 데이터를 분석하여 미래 신용 점수와 재정 상태를 예측합니다."
	SystemProductAdvisor  = "당신은 금융 상품 추천 전문가입니다. 고객의 재정 상황을 분석하여 최적의 대출, 저축, 투자 상품을 추천합니다."
)

// DefaultQuestion is used when a snapshot analysis request carries no
// question text.
const DefaultQuestion = "이 고객의 신용 상태를 평가하고, 대출 승인 가능성과 권장 이자율을 제안해주세요."

// Request pairs the system prompt with the rendered user prompt.
type Request struct {
	System string
	User   string
}

// Won renders a monetary amount as "3,000,000원".
func Won(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + "원"
	}
	return b.String() + "원"
}

// recordLine is one month of the history table embedded in prompts.
func recordLine(rec models.MonthlyRecord) string {
	return fmt.Sprintf("- %s: 신용점수 %d점, 수입 %s, 지출 %s, 저축 %s, 부채 %s, 대출상환액 %s, 연체 %d회",
		rec.Month.Korean(), rec.CreditScore,
		Won(rec.Income), Won(rec.Expenses), Won(rec.Savings), Won(rec.Debt), Won(rec.LoanPayments),
		rec.OverduePayments)
}

func recordTable(records []models.MonthlyRecord) string {
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = recordLine(rec)
	}
	return strings.Join(lines, "\n")
}

var funcs = template.FuncMap{
	"won":    Won,
	"korean": func(m models.Month) string { return m.Korean() },
	"table":  recordTable,
	"pct":    func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"ratio":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"score":  func(v float64) string { return fmt.Sprintf("%.1f점", v) },
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

func render(t *template.Template, data interface{}) string {
	var buf bytes.Buffer
	// Templates only reference fields that exist; a failure here is a
	// programming error, so fall back to the error text rather than panic.
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template %s: %v", t.Name(), err)
	}
	return buf.String()
}

var snapshotTmpl = mustTemplate("snapshot", `고객의 신용 정보를 바탕으로 질문에 답해주세요.
고객 정보:
- 이름: {{.Name}}
- 고객 ID: {{.CustomerID}}
- 신용 점수: {{.Latest.CreditScore}}
- 월 소득: {{won .Latest.Income}}
- 월 지출: {{won .Latest.Expenses}}
- 저축액: {{won .Latest.Savings}}
- 부채 총액: {{won .Latest.Debt}}
- 월 대출상환액: {{won .Latest.LoanPayments}}
- 연체 횟수: {{.Latest.OverduePayments}}

질문:
{{.Question}}
`)

type snapshotData struct {
	Name       string
	CustomerID string
	Latest     models.MonthlyRecord
	Question   string
}

// Snapshot builds the latest-record Q&A prompt.
func Snapshot(name, customerID string, latest models.MonthlyRecord, question string) Request {
	if question == "" {
		question = DefaultQuestion
	}
	return Request{
		System: SystemFinancialExpert,
		User: render(snapshotTmpl, snapshotData{
			Name:       name,
			CustomerID: customerID,
			Latest:     latest,
			Question:   question,
		}),
	}
}

var trendTmpl = mustTemplate("trend", `다음은 {{.Name}} 고객의 {{.StartLabel}}부터 {{.EndLabel}}까지의 재정 데이터입니다.

## 고객 정보
- 이름: {{.Name}}
- 고객 ID: {{.CustomerID}}

## 월별 데이터
{{table .Summary.Records}}

## 주요 변화
- 분석 기간: {{.Summary.Months}}개월
- 신용점수 변화: {{.Summary.CreditScoreDelta}}점 ({{.Summary.First.CreditScore}}점 → {{.Summary.Last.CreditScore}}점)
- 월 수입 변화: {{pct .Summary.IncomeChangePct}} ({{won .Summary.First.Income}} → {{won .Summary.Last.Income}})
- 부채 변화: {{pct .Summary.DebtChangePct}} ({{won .Summary.First.Debt}} → {{won .Summary.Last.Debt}})

## 분석 요청
1. 고객의 신용도 추세를 분석해주세요.
2. 재정 상태의 강점과 약점을 파악해주세요.
3. 신용 점수 개선을 위한 구체적인 조언을 제공해주세요.
4. 현재 재정 상황에 적합한 대출 상품을 추천해주세요.
`)

type trendData struct {
	Name       string
	CustomerID string
	StartLabel string
	EndLabel   string
	Summary    *trend.TrendSummary
}

// Trend builds the period trend-analysis prompt. The window labels fall back
// to "시작"/"현재" when a bound is open.
func Trend(summary *trend.TrendSummary, window trend.PeriodWindow) Request {
	startLabel, endLabel := "시작", "현재"
	if window.Start != nil {
		startLabel = window.Start.Korean()
	}
	if window.End != nil {
		endLabel = window.End.Korean()
	}
	return Request{
		System: SystemTrendAnalyst,
		User: render(trendTmpl, trendData{
			Name:       summary.Name,
			CustomerID: summary.CustomerID,
			StartLabel: startLabel,
			EndLabel:   endLabel,
			Summary:    summary,
		}),
	}
}

var forecastTmpl = mustTemplate("forecast", `다음은 {{.Name}} 고객의 재정 데이터입니다.

## 고객 정보
- 이름: {{.Name}}
- 고객 ID: {{.CustomerID}}

## 전체 월별 데이터
{{table .History}}

## 최근 {{.RecentWindow}}개월 요약
- 최근 {{.RecentWindow}}개월 평균 신용점수: {{score .AvgCreditScore}}
- 최근 {{.RecentWindow}}개월 평균 수입: {{won .AvgIncome}}
- 최근 {{.RecentWindow}}개월 평균 지출: {{won .AvgExpenses}}
- 최근 {{.RecentWindow}}개월 평균 저축: {{won .AvgSavings}}
- 최근 {{.RecentWindow}}개월 평균 부채: {{won .AvgDebt}}

## 분석 요청
1. 향후 {{.MonthsAhead}}개월 동안의 신용 점수 예측을 월별로 제공해주세요.
2. 예측의 근거와 주요 영향 요인을 설명해주세요.
3. 신용 점수 향상을 위한 구체적인 행동 계획을 제안해주세요.
4. 현재 추세가 지속될 경우와 개선 조치를 취할 경우의 시나리오를 비교해주세요.
`)

// Forecast builds the credit-prediction prompt from the 3-month digest.
func Forecast(digest *trend.ForecastDigest) Request {
	return Request{
		System: SystemForecaster,
		User:   render(forecastTmpl, digest),
	}
}

var recommendTmpl = mustTemplate("recommend", `다음은 {{.Name}} 고객의 최근 재정 데이터입니다.

## 고객 정보
- 이름: {{.Name}}
- 고객 ID: {{.CustomerID}}

## 최신 재정 상태 (기준: {{korean .Latest.Month}})
- 신용점수: {{.Latest.CreditScore}}점
- 월 수입: {{won .Latest.Income}}
- 월 지출: {{won .Latest.Expenses}}
- 저축액: {{won .Latest.Savings}}
- 부채 총액: {{won .Latest.Debt}}
- 월 대출상환액: {{won .Latest.LoanPayments}}
- 연체횟수: {{.Latest.OverduePayments}}회

## 주요 재정 지표
- 부채 대 소득 비율: {{ratio .DebtToIncome}}
- 저축 대 소득 비율: {{ratio .SavingsToIncome}}
- 월 가처분 소득: {{won .DisposableIncome}}

## 최근 데이터 추이
{{table .Recent}}

## 분석 요청
1. 이 고객에게 가장 적합한 대출 상품 3가지를 추천하고 이유를 설명해주세요.
2. 각 상품의 예상 이자율과 대출 한도를 제시해주세요.
3. 고객의 재정 상황 개선을 위한 저축 및 투자 상품도 추천해주세요.
4. 현재 재정 상황에서 피해야 할 금융 상품이나 행동을 조언해주세요.
`)

// Recommendation builds the product-recommendation prompt.
func Recommendation(digest *trend.RecommendationDigest) Request {
	return Request{
		System: SystemProductAdvisor,
		User:   render(recommendTmpl, digest),
	}
}

var assessmentTmpl = mustTemplate("assessment", `고객의 신용 정보를 바탕으로 구조화된 신용 평가를 작성해주세요.
고객 정보:
- 이름: {{.Name}}
- 고객 ID: {{.CustomerID}}
- 신용 점수: {{.Latest.CreditScore}}
- 월 소득: {{won .Latest.Income}}
- 월 지출: {{won .Latest.Expenses}}
- 저축액: {{won .Latest.Savings}}
- 부채 총액: {{won .Latest.Debt}}
- 월 대출상환액: {{won .Latest.LoanPayments}}
- 연체 횟수: {{.Latest.OverduePayments}}

다음 JSON 형식으로만 답변해주세요. 다른 텍스트는 포함하지 마세요.
{
  "approval_likelihood": <0과 1 사이의 숫자>,
  "risk_level": "<low|medium|high>",
  "recommended_rate_min_pct": <숫자>,
  "recommended_rate_max_pct": <숫자>,
  "summary": "<한두 문장의 평가 요약>"
}
`)

// Assessment builds the structured JSON credit-assessment prompt.
func Assessment(name, customerID string, latest models.MonthlyRecord) Request {
	return Request{
		System: SystemFinancialExpert,
		User: render(assessmentTmpl, snapshotData{
			Name:       name,
			CustomerID: customerID,
			Latest:     latest,
		}),
	}
}
