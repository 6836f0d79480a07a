package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core"
	apperrors "github.com/notiva/notiva/internal/errors"
	"github.com/notiva/notiva/internal/metrics"
)

const relatedPoolSize = 30

// relatedResponse is the ranked related-articles payload.
type relatedResponse struct {
	Success bool               `json:"success"`
	Related []core.RelatedPost `json:"related"`
}

// RelatedHandler serves GET /api/related/{id}. Upstream failures
// degrade to an empty list: article pages render without the related
// block instead of erroring.
func (a *API) RelatedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondWithError(w, r, apperrors.NewInvalidInputError("id de artículo inválido"))
		return
	}

	if _, ok := a.gateCheck(w, r, "content"); !ok {
		return
	}

	article, err := a.CMS.PostByID(r.Context(), id)
	if err != nil {
		metrics.CMSErrorsTotal.WithLabelValues("post_by_id").Inc()
		if a.Logger != nil {
			a.Logger.Warn("related: article fetch failed", zap.Int("id", id), zap.Error(err))
		}
		respondJSON(w, http.StatusOK, relatedResponse{Success: true, Related: []core.RelatedPost{}})
		return
	}
	if article == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("artículo no encontrado"))
		return
	}

	pool, err := a.CMS.RecentPosts(r.Context(), relatedPoolSize, id)
	if err != nil {
		metrics.CMSErrorsTotal.WithLabelValues("recent_posts").Inc()
		if a.Logger != nil {
			a.Logger.Warn("related: pool fetch failed", zap.Int("id", id), zap.Error(err))
		}
		respondJSON(w, http.StatusOK, relatedResponse{Success: true, Related: []core.RelatedPost{}})
		return
	}

	related := a.Scorer.Related(*article, pool, 0)
	if related == nil {
		related = []core.RelatedPost{}
	}
	respondJSON(w, http.StatusOK, relatedResponse{Success: true, Related: related})
}
