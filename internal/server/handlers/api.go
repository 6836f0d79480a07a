package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core"
	"github.com/notiva/notiva/internal/core/engine"
	apperrors "github.com/notiva/notiva/internal/errors"
	"github.com/notiva/notiva/internal/metrics"
)

// Collaborator interfaces. The concrete implementations live in
// engine, wordpress, store, and mailer; handlers only need these
// slices of them.

// SearchService answers search queries.
type SearchService interface {
	Search(ctx context.Context, query string, filters core.SearchFilters) *core.SearchResponse
}

// RelatedService ranks a candidate pool against a source article.
type RelatedService interface {
	Related(article core.Post, pool []core.Post, limit int) []core.RelatedPost
}

// ContentClient fetches articles from the CMS.
type ContentClient interface {
	PostByID(ctx context.Context, id int) (*core.Post, error)
	RecentPosts(ctx context.Context, n, excludeID int) ([]core.Post, error)
}

// ViewStore persists article view counters.
type ViewStore interface {
	IncrementViews(ctx context.Context, slug string) (int64, error)
	Views(ctx context.Context, slug string) (int64, error)
	TopViewed(ctx context.Context, limit int) (map[string]int64, error)
}

// SubscriberStore persists newsletter subscribers.
type SubscriberStore interface {
	AddSubscriber(ctx context.Context, email string, confirmed bool) error
}

// CaptchaVerifier validates subscription captcha tokens.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// WelcomeMailer dispatches the subscription welcome mail.
type WelcomeMailer interface {
	SendWelcomeAsync(email string)
}

// API holds the wired collaborators for every /api handler.
type API struct {
	Search      SearchService
	Scorer      RelatedService
	CMS         ContentClient
	Views       ViewStore
	Subscribers SubscriberStore
	Captcha     CaptchaVerifier
	Mailer      WelcomeMailer
	Gate        *engine.Gate
	Logger      *zap.Logger

	// Debug opens the rate-limit stats endpoint; AdminToken grants the
	// same access in production.
	Debug      bool
	AdminToken string
}

// gateCheck runs the rate-limit gate for a request. When the request is
// denied it writes the 429 response and returns allowed=false.
func (a *API) gateCheck(w http.ResponseWriter, r *http.Request, class string) (engine.GateResult, bool) {
	if a.Gate == nil {
		return engine.GateResult{Decision: core.Decision{Allowed: true}}, true
	}

	result := a.Gate.Check(clientIP(r), class, r.UserAgent())
	metrics.RecordRateLimitDecision(class, result.Allowed)
	metrics.BotClassifications.WithLabelValues(result.Bot.String()).Inc()

	if result.Allowed {
		return result, true
	}

	retryAfter := time.Until(result.ResetTime)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}

	envelope := apperrors.NewRateLimitedError("demasiadas solicitudes, intenta más tarde", retryAfter).
		WithDetail("reset_at", result.ResetTime.UTC().Format(time.RFC3339))
	respondWithError(w, r, envelope)
	return result, false
}

// clientIP is the limiter identity. RealIP middleware has already
// resolved proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
