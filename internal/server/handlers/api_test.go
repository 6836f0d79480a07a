package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notiva/notiva/internal/core"
	"github.com/notiva/notiva/internal/core/engine"
)

// browserUA keeps test requests out of the suspicious classification.
const browserUA = "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"

type stubSearch struct {
	gotQuery   string
	gotFilters core.SearchFilters
	response   *core.SearchResponse
}

func (s *stubSearch) Search(_ context.Context, query string, filters core.SearchFilters) *core.SearchResponse {
	s.gotQuery = query
	s.gotFilters = filters
	if s.response != nil {
		return s.response
	}
	return &core.SearchResponse{Success: true, Results: []core.SearchResult{}, Query: query, Filters: filters}
}

type stubScorer struct {
	gotArticle core.Post
	gotPool    []core.Post
	related    []core.RelatedPost
}

func (s *stubScorer) Related(article core.Post, pool []core.Post, _ int) []core.RelatedPost {
	s.gotArticle = article
	s.gotPool = pool
	return s.related
}

type stubCMS struct {
	post      *core.Post
	postErr   error
	recent    []core.Post
	recentErr error
}

func (s *stubCMS) PostByID(_ context.Context, _ int) (*core.Post, error) {
	return s.post, s.postErr
}

func (s *stubCMS) RecentPosts(_ context.Context, _, _ int) ([]core.Post, error) {
	return s.recent, s.recentErr
}

type stubViews struct {
	count        int64
	err          error
	incremented  []string
	readRequests []string
	top          map[string]int64
	topLimit     int
}

func (s *stubViews) IncrementViews(_ context.Context, slug string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.count++
	s.incremented = append(s.incremented, slug)
	return s.count, nil
}

func (s *stubViews) Views(_ context.Context, slug string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.readRequests = append(s.readRequests, slug)
	return s.count, nil
}

func (s *stubViews) TopViewed(_ context.Context, limit int) (map[string]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.topLimit = limit
	return s.top, nil
}

type stubSubscribers struct {
	err    error
	emails []string
}

func (s *stubSubscribers) AddSubscriber(_ context.Context, email string, _ bool) error {
	if s.err != nil {
		return s.err
	}
	s.emails = append(s.emails, email)
	return nil
}

type stubCaptcha struct {
	valid bool
	err   error
}

func (s *stubCaptcha) Verify(_ context.Context, _, _ string) (bool, error) {
	return s.valid, s.err
}

type stubMailer struct {
	sent []string
}

func (s *stubMailer) SendWelcomeAsync(email string) {
	s.sent = append(s.sent, email)
}

func testRouter(api *API) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/search", api.SearchHandler)
	r.Post("/api/search", api.SearchHandler)
	r.Post("/api/views/{slug}", api.IncrementViewsHandler)
	r.Get("/api/views/{slug}", api.GetViewsHandler)
	r.Get("/api/views", api.TopViewsHandler)
	r.Get("/api/related/{id}", api.RelatedHandler)
	r.Post("/api/subscribe", api.SubscribeHandler)
	r.Get("/api/ratelimit/stats", api.RateLimitStatsHandler)
	return r
}

// strictGate builds a gate whose class allows exactly one request.
func strictGate(class string) *engine.Gate {
	limiter := engine.NewLimiter(map[string]engine.ClassConfig{
		class: {Window: time.Minute, MaxRequests: 1, Block: 2 * time.Minute, OnError: core.FailClosed},
	})
	return engine.NewGate(limiter, nil, nil)
}
