// Package analysis exposes the AI analysis endpoints.
package analysis

import (
	"encoding/json"
	"net/http"

	"creditagent/pkg/api/httputil"
	coreanalysis "creditagent/pkg/core/analysis"
	"creditagent/pkg/core/trend"
)

// Handler holds dependencies for the analysis endpoints.
type Handler struct {
	Analyzer *coreanalysis.Analyzer
}

func NewHandler(analyzer *coreanalysis.Analyzer) *Handler {
	return &Handler{Analyzer: analyzer}
}

type analyzeRequest struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	RequestText  string `json:"request_text"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	MonthsAhead  int    `json:"months_ahead"`
}

func (req analyzeRequest) ref() coreanalysis.CustomerRef {
	return coreanalysis.CustomerRef{ID: req.CustomerID, Name: req.CustomerName}
}

func decode(w http.ResponseWriter, r *http.Request, req *analyzeRequest) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

type textResponse struct {
	Response string `json:"response"`
}

// HandleAnalyze answers a free-text question about the customer's latest
// snapshot.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	text, err := h.Analyzer.AnalyzeSnapshot(r.Context(), req.ref(), req.RequestText)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, textResponse{Response: text})
}

// HandleAnalyzeTrend runs the windowed trend analysis.
func (h *Handler) HandleAnalyzeTrend(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	window, err := trend.ParseWindow(req.StartDate, req.EndDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	text, err := h.Analyzer.AnalyzeTrend(r.Context(), req.ref(), window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, textResponse{Response: text})
}

// HandlePredict asks for a months-ahead credit forecast.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	text, err := h.Analyzer.PredictCredit(r.Context(), req.ref(), req.MonthsAhead)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, textResponse{Response: text})
}

// HandleRecommend asks for product recommendations.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	text, err := h.Analyzer.RecommendProducts(r.Context(), req.ref())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, textResponse{Response: text})
}

// HandleAssess returns the structured credit assessment.
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	assessment, err := h.Analyzer.AssessCredit(r.Context(), req.ref())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assessment)
}
