// Package report exposes the PDF report endpoints.
package report

import (
	"net/http"
	"path/filepath"

	"creditagent/pkg/api/httputil"
	coreanalysis "creditagent/pkg/core/analysis"
	corereport "creditagent/pkg/core/report"
	"creditagent/pkg/core/trend"
)

// Handler holds dependencies for report generation.
type Handler struct {
	Analyzer *coreanalysis.Analyzer
	Renderer *corereport.Renderer
}

func NewHandler(analyzer *coreanalysis.Analyzer, renderer *corereport.Renderer) *Handler {
	return &Handler{Analyzer: analyzer, Renderer: renderer}
}

func refFromQuery(r *http.Request) coreanalysis.CustomerRef {
	q := r.URL.Query()
	return coreanalysis.CustomerRef{
		ID:   q.Get("customer_id"),
		Name: q.Get("customer_name"),
	}
}

func servePDF(w http.ResponseWriter, r *http.Request, path string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}

// HandleCreditReport runs the snapshot analysis and lays it out as a PDF.
func (h *Handler) HandleCreditReport(w http.ResponseWriter, r *http.Request) {
	ref := refFromQuery(r)
	question := r.URL.Query().Get("analysis_question")

	series, err := h.Analyzer.Load(r.Context(), ref)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	text, err := h.Analyzer.AnalyzeSnapshot(r.Context(), ref, question)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	path, err := h.Renderer.CreditReport(series, text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	servePDF(w, r, path)
}

// HandleTimeSeriesReport runs the windowed trend analysis and lays it out
// with the score and financial charts.
func (h *Handler) HandleTimeSeriesReport(w http.ResponseWriter, r *http.Request) {
	ref := refFromQuery(r)
	q := r.URL.Query()

	window, err := trend.ParseWindow(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	series, err := h.Analyzer.Load(r.Context(), ref)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	summary, err := trend.SummarizeTrend(series, window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	text, err := h.Analyzer.AnalyzeTrend(r.Context(), ref, window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	path, err := h.Renderer.TimeSeriesReport(series, summary, text)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	servePDF(w, r, path)
}
