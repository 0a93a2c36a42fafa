package report

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"

	"creditagent/pkg/models"
)

// chartWidth/Height are tuned so two charts fit one A4 page with margins.
const (
	chartWidth  = 900
	chartHeight = 420
)

// loadChartFont parses a TTF for chart titles and labels. Korean titles need
// a Korean-capable font; a nil return falls back to the library default,
// which renders Latin text only.
func loadChartFont(path string) (*truetype.Font, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart font %s: %w", path, err)
	}
	font, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse chart font %s: %w", path, err)
	}
	return font, nil
}

func monthAxis(records []models.MonthlyRecord) []time.Time {
	xs := make([]time.Time, len(records))
	for i, rec := range records {
		xs[i] = rec.Month.Time
	}
	return xs
}

func decimalSeries(records []models.MonthlyRecord, pick func(models.MonthlyRecord) float64) []float64 {
	ys := make([]float64, len(records))
	for i, rec := range records {
		ys[i] = pick(rec)
	}
	return ys
}

func renderPNG(graph chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// creditScoreChart draws the score trajectory over the given records, which
// must already be sorted ascending.
func creditScoreChart(records []models.MonthlyRecord, font *truetype.Font) ([]byte, error) {
	graph := chart.Chart{
		Title:  "신용 점수 추이",
		Font:   font,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "신용점수",
				XValues: monthAxis(records),
				YValues: decimalSeries(records, func(r models.MonthlyRecord) float64 {
					return float64(r.CreditScore)
				}),
			},
		},
	}
	return renderPNG(graph)
}

// financialChart draws income, expenses, savings, and debt on one canvas.
func financialChart(records []models.MonthlyRecord, font *truetype.Font) ([]byte, error) {
	xs := monthAxis(records)
	mk := func(name string, pick func(models.MonthlyRecord) float64) chart.Series {
		return chart.TimeSeries{
			Name:    name,
			XValues: xs,
			YValues: decimalSeries(records, pick),
		}
	}

	graph := chart.Chart{
		Title:  "월별 재정 현황",
		Font:   font,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		Series: []chart.Series{
			mk("수입", func(r models.MonthlyRecord) float64 { return r.Income.InexactFloat64() }),
			mk("지출", func(r models.MonthlyRecord) float64 { return r.Expenses.InexactFloat64() }),
			mk("저축", func(r models.MonthlyRecord) float64 { return r.Savings.InexactFloat64() }),
			mk("부채", func(r models.MonthlyRecord) float64 { return r.Debt.InexactFloat64() }),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return renderPNG(graph)
}
