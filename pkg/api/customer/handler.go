// Package customer exposes the customer CRUD and seeding endpoints.
package customer

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"creditagent/pkg/api/httputil"
	"creditagent/pkg/core/datagen"
	"creditagent/pkg/core/store"
	"creditagent/pkg/models"
)

// Handler holds dependencies for the customer endpoints.
type Handler struct {
	Store store.Store
	Log   *logrus.Logger

	// NewRand is swapped by tests for deterministic generation.
	NewRand func() *rand.Rand
}

func NewHandler(s store.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Store: s,
		Log:   log,
		NewRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

type generateRequest struct {
	Count               int                `json:"count"`
	ProfileDistribution map[string]float64 `json:"profile_distribution"`
}

type customerSummary struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	ProfileType models.ProfileType `json:"profile_type"`
}

func summarize(series *models.CustomerTimeSeries) customerSummary {
	return customerSummary{ID: series.CustomerID, Name: series.Name, ProfileType: series.ProfileType}
}

// HandleGenerate seeds count synthetic customers into the store.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Count <= 0 {
		req.Count = 5
	}

	var distribution map[models.ProfileType]float64
	if len(req.ProfileDistribution) > 0 {
		distribution = make(map[models.ProfileType]float64, len(req.ProfileDistribution))
		for k, v := range req.ProfileDistribution {
			distribution[models.ProfileType(k)] = v
		}
	}

	customers := datagen.GenerateCustomers(h.NewRand(), req.Count, distribution)
	summaries := make([]customerSummary, 0, len(customers))
	for _, c := range customers {
		if err := h.Store.Save(r.Context(), c); err != nil {
			httputil.WriteError(w, err)
			return
		}
		summaries = append(summaries, summarize(c))
	}

	h.Log.WithField("count", len(customers)).Info("generated customers")
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   fmt.Sprintf("%d명의 고객 데이터가 생성되었습니다.", len(customers)),
		"customers": summaries,
	})
}

// HandleList returns every stored customer's id and name.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	summaries := make([]customerSummary, 0, len(customers))
	for _, c := range customers {
		summaries = append(summaries, summarize(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(summaries),
		"customers": summaries,
	})
}

// HandleGet returns one customer's full series by identifier.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	series, err := h.Store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, series)
}

// HandleGetByName returns one customer's full series by display name.
func (h *Handler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	series, err := h.Store.GetByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, series)
}
