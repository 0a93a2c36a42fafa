// Package httputil maps the core error taxonomy onto HTTP responses so
// every handler reports failures the same way.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"creditagent/pkg/core/analysis"
	"creditagent/pkg/core/store"
	"creditagent/pkg/core/trend"
	"creditagent/pkg/models"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteJSON encodes v with the right content type.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError classifies err into the taxonomy: not-found and empty-data
// conditions are 404, bad input is 400, short history is 422, a failed
// oracle call is 502, anything else 500.
func WriteError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"

	var oracleErr *analysis.OracleError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, trend.ErrEmptyHistory):
		status, kind = http.StatusNotFound, "empty_history"
	case errors.Is(err, trend.ErrNoDataInPeriod):
		status, kind = http.StatusNotFound, "no_data_in_period"
	case errors.Is(err, trend.ErrInsufficientHistory):
		status, kind = http.StatusUnprocessableEntity, "insufficient_history"
	case errors.Is(err, models.ErrInvalidMonth):
		status, kind = http.StatusBadRequest, "invalid_date_range"
	case errors.Is(err, analysis.ErrNoCustomerRef):
		status, kind = http.StatusBadRequest, "missing_customer_ref"
	case errors.As(err, &oracleErr):
		status, kind = http.StatusBadGateway, "oracle_failure"
	}

	WriteJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}
