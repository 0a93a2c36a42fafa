package customer

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditagent/pkg/core/store"
	"creditagent/pkg/models"
)

func newTestRouter(t *testing.T) (*mux.Router, store.Store) {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(s, nil)
	h.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(42)) }

	r := mux.NewRouter()
	r.HandleFunc("/generate_customers", h.HandleGenerate).Methods("POST")
	r.HandleFunc("/customers", h.HandleList).Methods("GET")
	r.HandleFunc("/customer/{id}", h.HandleGet).Methods("GET")
	r.HandleFunc("/customer/name/{name}", h.HandleGetByName).Methods("GET")
	return r, s
}

func seedOne(t *testing.T, s store.Store) *models.CustomerTimeSeries {
	t.Helper()
	m, err := models.ParseMonth("2024-01-01")
	require.NoError(t, err)
	series := &models.CustomerTimeSeries{
		CustomerID:  "CUST100",
		Name:        "이서연",
		ProfileType: models.ProfilePremium,
		MonthlyData: []models.MonthlyRecord{{
			Month:       m,
			CreditScore: 780,
			Income:      decimal.NewFromInt(6000000),
			Expenses:    decimal.NewFromInt(2500000),
			Savings:     decimal.NewFromInt(2000000),
			Debt:        decimal.NewFromInt(1000000),
		}},
	}
	require.NoError(t, s.Save(context.Background(), series))
	return series
}

func TestHandleGenerate(t *testing.T) {
	r, s := newTestRouter(t)

	body := strings.NewReader(`{"count": 4}`)
	req := httptest.NewRequest(http.MethodPost, "/generate_customers", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message   string `json:"message"`
		Customers []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"customers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "4명의 고객 데이터가 생성되었습니다.", resp.Message)
	require.Len(t, resp.Customers, 4)

	// Every generated customer is persisted and retrievable.
	for _, c := range resp.Customers {
		got, err := s.Get(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Name, got.Name)
		assert.NotEmpty(t, got.MonthlyData)
	}
}

func TestHandleGenerateDefaultsCount(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/generate_customers", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Customers []json.RawMessage `json:"customers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Customers, 5)
}

func TestHandleGenerateRejectsBadBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/generate_customers", strings.NewReader(`{count:`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleList(t *testing.T) {
	r, s := newTestRouter(t)
	seedOne(t, s)

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count     int `json:"count"`
		Customers []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			ProfileType string `json:"profile_type"`
		} `json:"customers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "CUST100", resp.Customers[0].ID)
	assert.Equal(t, "이서연", resp.Customers[0].Name)
	assert.Equal(t, "premium", resp.Customers[0].ProfileType)
}

func TestHandleGet(t *testing.T) {
	r, s := newTestRouter(t)
	seedOne(t, s)

	req := httptest.NewRequest(http.MethodGet, "/customer/CUST100", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var series models.CustomerTimeSeries
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&series))
	assert.Equal(t, "이서연", series.Name)
	assert.Len(t, series.MonthlyData, 1)
}

func TestHandleGetUnknownCustomer(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/customer/CUST999", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_found", resp.Kind)
}

func TestHandleGetByName(t *testing.T) {
	r, s := newTestRouter(t)
	seedOne(t, s)

	req := httptest.NewRequest(http.MethodGet, "/customer/name/이서연", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var series models.CustomerTimeSeries
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&series))
	assert.Equal(t, "CUST100", series.CustomerID)
}
