package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/notiva/notiva/internal/core"
	apperrors "github.com/notiva/notiva/internal/errors"
	"github.com/notiva/notiva/internal/metrics"
)

const minQueryRunes = 2

// searchRequest is the POST body variant of the search endpoint.
type searchRequest struct {
	Query   string             `json:"query"`
	Filters core.SearchFilters `json:"filters"`
}

// SearchHandler serves GET and POST /api/search.
func (a *API) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.gateCheck(w, r, "search"); !ok {
		return
	}

	query, filters, err := parseSearchRequest(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if utf8.RuneCountInString(strings.TrimSpace(query)) < minQueryRunes {
		respondWithError(w, r, apperrors.NewInvalidInputError("la consulta debe tener al menos 2 caracteres"))
		return
	}

	metrics.SearchQueriesTotal.Inc()
	response := a.Search.Search(r.Context(), query, filters)
	respondJSON(w, http.StatusOK, response)
}

func parseSearchRequest(r *http.Request) (string, core.SearchFilters, error) {
	if r.Method == http.MethodPost {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", core.SearchFilters{}, apperrors.WrapInvalidInput(err, "cuerpo de búsqueda inválido")
		}
		return req.Query, req.Filters, nil
	}

	params := r.URL.Query()
	filters := core.SearchFilters{
		Category: params.Get("category"),
		DateFrom: params.Get("date_from"),
		DateTo:   params.Get("date_to"),
		Sort:     params.Get("sort"),
	}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return "", core.SearchFilters{}, apperrors.NewInvalidInputError("limit debe ser un entero positivo")
		}
		filters.Limit = limit
	}

	return params.Get("q"), filters, nil
}
