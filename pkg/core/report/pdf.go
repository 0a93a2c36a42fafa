// Package report renders customer analyses into paginated PDF documents
// with embedded time-series charts. The core supplies the data; layout
// decisions live entirely here.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"creditagent/pkg/core/prompt"
	"creditagent/pkg/core/trend"
	"creditagent/pkg/core/utils"
	"creditagent/pkg/models"
)

const koreanFontFamily = "NanumGothic"

// Renderer writes PDF reports into a directory. A Korean-capable TTF is
// required for proper output; without one it falls back to Helvetica and
// Korean text will not render, so the fallback is logged loudly once.
type Renderer struct {
	dir       string
	fontPath  string
	chartFont *truetype.Font
	log       *logrus.Logger
}

// NewRenderer creates the output directory and probes the font.
func NewRenderer(dir, fontPath string, log *logrus.Logger) (*Renderer, error) {
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir %s: %w", dir, err)
	}
	if log == nil {
		log = logrus.New()
	}

	r := &Renderer{dir: dir, fontPath: fontPath, log: log}

	if fontPath != "" {
		if _, err := os.Stat(fontPath); err != nil {
			log.WithField("font", fontPath).Warn("korean font not found, falling back to Helvetica")
			r.fontPath = ""
		} else if font, err := loadChartFont(fontPath); err != nil {
			log.WithError(err).Warn("chart font unusable, charts keep the default font")
		} else {
			r.chartFont = font
		}
	}
	return r, nil
}

// doc bundles one PDF under construction with its resolved font family.
type doc struct {
	pdf  *fpdf.Fpdf
	font string
}

func (r *Renderer) newDoc() *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	font := "Helvetica"
	if r.fontPath != "" {
		pdf.AddUTF8Font(koreanFontFamily, "", r.fontPath)
		font = koreanFontFamily
	}
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	return &doc{pdf: pdf, font: font}
}

func (d *doc) title(text string) {
	d.pdf.SetFont(d.font, "", 18)
	d.pdf.CellFormat(0, 10, text, "", 1, "L", false, 0, "")
	d.pdf.SetFont(d.font, "", 10)
	d.pdf.CellFormat(0, 6, fmt.Sprintf("생성일: %s", time.Now().Format("2006년 01월 02일")), "", 1, "R", false, 0, "")
	d.rule()
}

func (d *doc) rule() {
	x, y := d.pdf.GetXY()
	pageWidth, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	d.pdf.Line(left, y, pageWidth-right, y)
	d.pdf.SetXY(x, y+4)
}

func (d *doc) section(heading string) {
	d.pdf.Ln(4)
	d.pdf.SetFont(d.font, "", 14)
	d.pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	d.rule()
}

func (d *doc) line(text string) {
	d.pdf.SetFont(d.font, "", 11)
	d.pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
}

func (d *doc) paragraph(text string) {
	d.pdf.SetFont(d.font, "", 10)
	d.pdf.MultiCell(0, 5.5, text, "", "L", false)
}

// image embeds a PNG scaled to the content width.
func (d *doc) image(name string, png []byte) {
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pageWidth, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	width := pageWidth - left - right
	d.pdf.ImageOptions(name, left, d.pdf.GetY(), width, 0, true, opts, 0, "")
	d.pdf.Ln(4)
}

func (d *doc) customerInfo(series *models.CustomerTimeSeries) {
	d.section("고객 정보")
	d.line(fmt.Sprintf("이름: %s", series.Name))
	d.line(fmt.Sprintf("고객 ID: %s", series.CustomerID))
	d.line(fmt.Sprintf("프로필 유형: %s", series.ProfileType))
}

func (d *doc) latestFinancials(latest models.MonthlyRecord) {
	d.section(fmt.Sprintf("최신 재정 상태 (%s)", latest.Month.Korean()))
	d.line(fmt.Sprintf("신용점수: %d점", latest.CreditScore))
	d.line(fmt.Sprintf("월 수입: %s", prompt.Won(latest.Income)))
	d.line(fmt.Sprintf("월 지출: %s", prompt.Won(latest.Expenses)))
	d.line(fmt.Sprintf("저축액: %s", prompt.Won(latest.Savings)))
	d.line(fmt.Sprintf("부채 총액: %s", prompt.Won(latest.Debt)))
	d.line(fmt.Sprintf("월 대출상환액: %s", prompt.Won(latest.LoanPayments)))
	d.line(fmt.Sprintf("연체 횟수: %d회", latest.OverduePayments))
}

func (r *Renderer) save(d *doc, prefix, customerID string) (string, error) {
	name := fmt.Sprintf("%s_%s_%s_%s.pdf",
		prefix, customerID, time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(r.dir, name)
	if err := d.pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf %s: %w", path, err)
	}
	r.log.WithFields(logrus.Fields{"customer": customerID, "path": path}).Info("report written")
	return path, nil
}

// CreditReport lays out the latest snapshot, the score chart, and the
// oracle's analysis text.
func (r *Renderer) CreditReport(series *models.CustomerTimeSeries, analysisText string) (string, error) {
	latest, err := trend.Latest(series)
	if err != nil {
		return "", err
	}
	history := trend.FilterPeriod(series, trend.PeriodWindow{})

	d := r.newDoc()
	d.title("신용 분석 보고서")
	d.customerInfo(series)
	d.latestFinancials(latest)

	// go-chart needs at least two points to draw a line.
	if len(history) >= 2 {
		png, err := creditScoreChart(history, r.chartFont)
		if err != nil {
			return "", err
		}
		d.section("신용 점수 추이")
		d.image("credit_score", png)
	}

	d.section("AI 분석 결과")
	d.paragraph(utils.FlattenMarkdown(analysisText))

	return r.save(d, "credit_report", series.CustomerID)
}

// TimeSeriesReport lays out the windowed trend metrics, both charts, and the
// oracle's trend analysis.
func (r *Renderer) TimeSeriesReport(series *models.CustomerTimeSeries, summary *trend.TrendSummary, analysisText string) (string, error) {
	d := r.newDoc()
	d.title("시계열 데이터 분석 보고서")
	d.customerInfo(series)

	d.section("주요 변화")
	d.line(fmt.Sprintf("분석 기간: %d개월 (%s ~ %s)",
		summary.Months, summary.First.Month.Korean(), summary.Last.Month.Korean()))
	d.line(fmt.Sprintf("신용점수 변화: %d점 (%d점 → %d점)",
		summary.CreditScoreDelta, summary.First.CreditScore, summary.Last.CreditScore))
	d.line(fmt.Sprintf("월 수입 변화: %.1f%% (%s → %s)",
		summary.IncomeChangePct, prompt.Won(summary.First.Income), prompt.Won(summary.Last.Income)))
	d.line(fmt.Sprintf("부채 변화: %.1f%% (%s → %s)",
		summary.DebtChangePct, prompt.Won(summary.First.Debt), prompt.Won(summary.Last.Debt)))

	if len(summary.Records) >= 2 {
		scorePNG, err := creditScoreChart(summary.Records, r.chartFont)
		if err != nil {
			return "", err
		}
		d.section("신용 점수 추이")
		d.image("credit_score", scorePNG)

		finPNG, err := financialChart(summary.Records, r.chartFont)
		if err != nil {
			return "", err
		}
		d.pdf.AddPage()
		d.section("월별 재정 현황")
		d.image("financials", finPNG)
	}

	d.section("AI 분석 결과")
	d.paragraph(utils.FlattenMarkdown(analysisText))

	return r.save(d, "timeseries_report", series.CustomerID)
}
