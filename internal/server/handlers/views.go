package handlers

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core/engine"
	apperrors "github.com/notiva/notiva/internal/errors"
	"github.com/notiva/notiva/internal/metrics"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// viewsResponse is the counter payload.
type viewsResponse struct {
	Success bool   `json:"success"`
	Slug    string `json:"slug"`
	Views   int64  `json:"views"`
}

// IncrementViewsHandler serves POST /api/views/{slug}. Crawler and
// suspicious traffic receives a success response without touching the
// counter, so bots can't inflate popularity.
func (a *API) IncrementViewsHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !slugPattern.MatchString(slug) {
		respondWithError(w, r, apperrors.NewInvalidInputError("slug inválido"))
		return
	}

	result, ok := a.gateCheck(w, r, "views")
	if !ok {
		return
	}

	if result.Bot != engine.BotNone {
		respondJSON(w, http.StatusOK, viewsResponse{Success: true, Slug: slug, Views: 0})
		return
	}

	count, err := a.Views.IncrementViews(r.Context(), slug)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Error("view increment failed", zap.String("slug", slug), zap.Error(err))
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(err, "no se pudo registrar la vista"))
		return
	}

	metrics.ViewIncrements.Inc()
	respondJSON(w, http.StatusOK, viewsResponse{Success: true, Slug: slug, Views: count})
}

const (
	defaultTopViews = 10
	maxTopViews     = 50
)

// topViewsResponse lists the most viewed slugs with their counters.
type topViewsResponse struct {
	Success bool             `json:"success"`
	Views   map[string]int64 `json:"views"`
}

// TopViewsHandler serves GET /api/views, the most viewed articles.
func (a *API) TopViewsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.gateCheck(w, r, "content"); !ok {
		return
	}

	limit := defaultTopViews
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, r, apperrors.NewInvalidInputError("límite inválido"))
			return
		}
		limit = parsed
	}
	if limit > maxTopViews {
		limit = maxTopViews
	}

	counts, err := a.Views.TopViewed(r.Context(), limit)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(err, "no se pudo leer el ranking de vistas"))
		return
	}
	if counts == nil {
		counts = map[string]int64{}
	}

	respondJSON(w, http.StatusOK, topViewsResponse{Success: true, Views: counts})
}

// GetViewsHandler serves GET /api/views/{slug}.
func (a *API) GetViewsHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !slugPattern.MatchString(slug) {
		respondWithError(w, r, apperrors.NewInvalidInputError("slug inválido"))
		return
	}

	if _, ok := a.gateCheck(w, r, "content"); !ok {
		return
	}

	count, err := a.Views.Views(r.Context(), slug)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(err, "no se pudo leer el contador"))
		return
	}

	respondJSON(w, http.StatusOK, viewsResponse{Success: true, Slug: slug, Views: count})
}
