// Package analysis orchestrates one customer analysis end to end: load the
// series from the store, derive the digest with the trend engine, assemble
// the prompt, and call the configured oracle. Failures keep their kind all
// the way up; an oracle error is never turned into a fabricated answer.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"creditagent/pkg/core/agent"
	"creditagent/pkg/core/prompt"
	"creditagent/pkg/core/store"
	"creditagent/pkg/core/trend"
	"creditagent/pkg/core/utils"
	"creditagent/pkg/models"
)

// Task types routed through the agent manager.
const (
	TaskSnapshot       = "snapshot"
	TaskTrend          = "trend"
	TaskForecast       = "forecast"
	TaskRecommendation = "recommendation"
	TaskAssessment     = "assessment"
)

// DefaultForecastMonths is the horizon used when a prediction request does
// not specify one.
const DefaultForecastMonths = 6

// ErrNoCustomerRef means neither an identifier nor a name was supplied.
var ErrNoCustomerRef = errors.New("customer id or name is required")

// OracleError wraps a failed external analysis call so callers can map it to
// a distinct response instead of a generic 500.
type OracleError struct {
	Task string
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("analysis oracle failed for task %s: %v", e.Task, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// CustomerRef addresses a customer by id or display name; id wins when both
// are set.
type CustomerRef struct {
	ID   string
	Name string
}

// Assessment is the structured credit evaluation parsed from the oracle's
// JSON answer.
type Assessment struct {
	ApprovalLikelihood    float64 `json:"approval_likelihood"`
	RiskLevel             string  `json:"risk_level"`
	RecommendedRateMinPct float64 `json:"recommended_rate_min_pct"`
	RecommendedRateMaxPct float64 `json:"recommended_rate_max_pct"`
	Summary               string  `json:"summary"`
}

// Analyzer wires the store, the trend engine, and the agent manager.
type Analyzer struct {
	store  store.Store
	agents *agent.Manager
	log    *logrus.Logger
}

func NewAnalyzer(s store.Store, agents *agent.Manager, log *logrus.Logger) *Analyzer {
	if log == nil {
		log = logrus.New()
	}
	return &Analyzer{store: s, agents: agents, log: log}
}

// Load resolves a customer reference against the store.
func (a *Analyzer) Load(ctx context.Context, ref CustomerRef) (*models.CustomerTimeSeries, error) {
	switch {
	case ref.ID != "":
		return a.store.Get(ctx, ref.ID)
	case ref.Name != "":
		return a.store.GetByName(ctx, ref.Name)
	default:
		return nil, ErrNoCustomerRef
	}
}

func (a *Analyzer) execute(ctx context.Context, task string, req prompt.Request, options map[string]interface{}) (string, error) {
	text, err := a.agents.ExecutePrompt(ctx, task, req.User, req.System, options)
	if err != nil {
		a.log.WithFields(logrus.Fields{"task": task}).WithError(err).Warn("oracle call failed")
		return "", &OracleError{Task: task, Err: err}
	}
	return text, nil
}

// AnalyzeSnapshot answers a free-text question against the customer's latest
// record. An empty question falls back to the default credit evaluation ask.
func (a *Analyzer) AnalyzeSnapshot(ctx context.Context, ref CustomerRef, question string) (string, error) {
	series, err := a.Load(ctx, ref)
	if err != nil {
		return "", err
	}
	latest, err := trend.Latest(series)
	if err != nil {
		return "", err
	}
	req := prompt.Snapshot(series.Name, series.CustomerID, latest, question)
	return a.execute(ctx, TaskSnapshot, req, map[string]interface{}{"temperature": 0.5})
}

// AnalyzeTrend summarizes the window and asks the oracle for a trend
// reading.
func (a *Analyzer) AnalyzeTrend(ctx context.Context, ref CustomerRef, window trend.PeriodWindow) (string, error) {
	series, err := a.Load(ctx, ref)
	if err != nil {
		return "", err
	}
	summary, err := trend.SummarizeTrend(series, window)
	if err != nil {
		return "", err
	}
	req := prompt.Trend(summary, window)
	return a.execute(ctx, TaskTrend, req, map[string]interface{}{"temperature": 0.3})
}

// PredictCredit hands the 3-month digest to the oracle for a monthsAhead
// forecast. monthsAhead <= 0 selects the default horizon.
func (a *Analyzer) PredictCredit(ctx context.Context, ref CustomerRef, monthsAhead int) (string, error) {
	if monthsAhead <= 0 {
		monthsAhead = DefaultForecastMonths
	}
	series, err := a.Load(ctx, ref)
	if err != nil {
		return "", err
	}
	digest, err := trend.ForecastInputs(series, monthsAhead)
	if err != nil {
		return "", err
	}
	req := prompt.Forecast(digest)
	return a.execute(ctx, TaskForecast, req, map[string]interface{}{"temperature": 0.3})
}

// RecommendProducts asks the oracle for product recommendations based on the
// latest ratios and recent history.
func (a *Analyzer) RecommendProducts(ctx context.Context, ref CustomerRef) (string, error) {
	series, err := a.Load(ctx, ref)
	if err != nil {
		return "", err
	}
	digest, err := trend.RecommendationInputs(series)
	if err != nil {
		return "", err
	}
	req := prompt.Recommendation(digest)
	return a.execute(ctx, TaskRecommendation, req, map[string]interface{}{"temperature": 0.4})
}

// AssessCredit requests a structured JSON evaluation and parses it
// leniently; models rarely emit perfectly valid JSON.
func (a *Analyzer) AssessCredit(ctx context.Context, ref CustomerRef) (*Assessment, error) {
	series, err := a.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	latest, err := trend.Latest(series)
	if err != nil {
		return nil, err
	}

	req := prompt.Assessment(series.Name, series.CustomerID, latest)
	raw, err := a.execute(ctx, TaskAssessment, req, map[string]interface{}{
		"temperature": 0.2,
		"json_mode":   true,
	})
	if err != nil {
		return nil, err
	}

	var out Assessment
	if err := utils.ParseLenientJSON(raw, &out); err != nil {
		return nil, &OracleError{Task: TaskAssessment, Err: err}
	}
	return &out, nil
}
