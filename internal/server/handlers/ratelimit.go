package handlers

import (
	"net/http"
	"time"

	"github.com/notiva/notiva/internal/core/engine"
	apperrors "github.com/notiva/notiva/internal/errors"
)

// AdminTokenHeader grants rate-limit stats access in production.
const AdminTokenHeader = "X-Admin-Token"

// rateLimitStatsResponse is the limiter diagnostic payload.
type rateLimitStatsResponse struct {
	Success     bool                    `json:"success"`
	GeneratedAt time.Time               `json:"generated_at"`
	Classes     map[string]classSummary `json:"classes"`
	Entries     []engine.EntrySnapshot  `json:"entries"`
}

type classSummary struct {
	Window      string `json:"window"`
	MaxRequests int    `json:"max_requests"`
	Block       string `json:"block"`
	OnError     string `json:"on_error"`
}

// RateLimitStatsHandler serves GET /api/ratelimit/stats. Access
// requires debug mode or the admin token header; a user-agent marker is
// not an access control.
func (a *API) RateLimitStatsHandler(w http.ResponseWriter, r *http.Request) {
	if !a.statsAccessAllowed(r) {
		respondWithError(w, r, apperrors.NewForbiddenError("acceso restringido"))
		return
	}

	if a.Gate == nil || a.Gate.Limiter == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("limitador no inicializado"))
		return
	}

	classes := make(map[string]classSummary, len(a.Gate.Limiter.Classes))
	for name, cfg := range a.Gate.Limiter.Classes {
		classes[name] = classSummary{
			Window:      cfg.Window.String(),
			MaxRequests: cfg.MaxRequests,
			Block:       cfg.Block.String(),
			OnError:     cfg.OnError.String(),
		}
	}

	respondJSON(w, http.StatusOK, rateLimitStatsResponse{
		Success:     true,
		GeneratedAt: time.Now().UTC(),
		Classes:     classes,
		Entries:     a.Gate.Limiter.Snapshot(),
	})
}

func (a *API) statsAccessAllowed(r *http.Request) bool {
	if a.Debug {
		return true
	}
	return a.AdminToken != "" && r.Header.Get(AdminTokenHeader) == a.AdminToken
}
