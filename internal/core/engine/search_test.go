package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notiva/notiva/internal/core"
)

type stubCMS struct {
	posts      []core.Post
	categories []core.Category
	postsErr   error
	catsErr    error

	postCalls int
	catCalls  int
}

func (s *stubCMS) SearchPosts(ctx context.Context, query string) ([]core.Post, error) {
	s.postCalls++
	return s.posts, s.postsErr
}

func (s *stubCMS) SearchCategories(ctx context.Context, query string) ([]core.Category, error) {
	s.catCalls++
	return s.categories, s.catsErr
}

func newTestEngine(cms *stubCMS) *SearchEngine {
	return NewSearchEngine(cms, nil, SearchOptions{})
}

func TestSearchScoringIsAdditive(t *testing.T) {
	cms := &stubCMS{
		posts: []core.Post{{
			ID:    1,
			Title: "Gaming",
			Date:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.True(t, resp.Success)
	require.Len(t, resp.Results, 1)

	// Exact match stacks exact + contains + prefix + one word-in-title.
	require.Equal(t, 100+50+30+10, resp.Results[0].Score)
}

func TestSearchEndToEndGamingScenario(t *testing.T) {
	cms := &stubCMS{
		posts: []core.Post{{
			ID:    1,
			Title: "Gaming",
			Slug:  "gaming",
			Date:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		}},
		categories: []core.Category{{
			ID:   7,
			Name: "Gaming News",
			Slug: "gaming-news",
		}},
	}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.Equal(t, 2, resp.Total)
	require.GreaterOrEqual(t, resp.Took, int64(0))

	// The exact-match post outranks the substring-match category.
	require.Equal(t, core.ResultTypePost, resp.Results[0].Type)
	require.Equal(t, core.ResultTypeCategory, resp.Results[1].Type)
	require.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestSearchTieBreakCategoryBeforePost(t *testing.T) {
	results := []core.SearchResult{
		{ID: 1, Type: core.ResultTypePost, Score: 60},
		{ID: 2, Type: core.ResultTypeCategory, Score: 60},
	}
	rankResults(results)
	require.Equal(t, core.ResultTypeCategory, results[0].Type)
	require.Equal(t, core.ResultTypePost, results[1].Type)
}

func TestSearchPostTieBreakByDateDescending(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	results := []core.SearchResult{
		{ID: 1, Type: core.ResultTypePost, Score: 60, Date: older},
		{ID: 2, Type: core.ResultTypePost, Score: 60, Date: newer},
	}
	rankResults(results)
	require.Equal(t, 2, results[0].ID)
}

func TestSearchCacheRoundTrip(t *testing.T) {
	cms := &stubCMS{
		posts: []core.Post{{ID: 1, Title: "Gaming"}},
	}
	engine := newTestEngine(cms)

	first := engine.Search(context.Background(), "gaming", core.SearchFilters{})
	second := engine.Search(context.Background(), "gaming", core.SearchFilters{})

	require.Equal(t, first, second)
	require.Equal(t, 1, cms.postCalls, "second search must be served from cache")
	require.Equal(t, 1, cms.catCalls)
}

func TestSearchDifferentFiltersMissCache(t *testing.T) {
	cms := &stubCMS{posts: []core.Post{{ID: 1, Title: "Gaming"}}}
	engine := newTestEngine(cms)

	engine.Search(context.Background(), "gaming", core.SearchFilters{})
	engine.Search(context.Background(), "gaming", core.SearchFilters{Sort: "date"})
	require.Equal(t, 2, cms.postCalls)
}

func TestSearchShortQueryReturnsEmpty(t *testing.T) {
	cms := &stubCMS{}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "g", core.SearchFilters{})
	require.True(t, resp.Success)
	require.Empty(t, resp.Results)
	require.Zero(t, resp.Total)
	require.Zero(t, cms.postCalls, "no upstream call for a rejected query")
}

func TestSearchPartialFailureDegrades(t *testing.T) {
	cms := &stubCMS{
		postsErr:   errors.New("cms timeout"),
		categories: []core.Category{{ID: 7, Name: "Gaming News"}},
	}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	require.Equal(t, core.ResultTypeCategory, resp.Results[0].Type)
}

func TestSearchBothCollectionsFailReturnsEmpty(t *testing.T) {
	cms := &stubCMS{
		postsErr: errors.New("down"),
		catsErr:  errors.New("down"),
	}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.True(t, resp.Success)
	require.Empty(t, resp.Results)
}

func TestSearchOutageResponseIsNotCached(t *testing.T) {
	cms := &stubCMS{
		postsErr: errors.New("down"),
		catsErr:  errors.New("down"),
	}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.Empty(t, resp.Results)

	// Upstream recovers; the next identical query must reach it again
	// instead of replaying the empty response.
	cms.postsErr = nil
	cms.catsErr = nil
	cms.posts = []core.Post{{ID: 1, Title: "Gaming"}}

	resp = engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.Len(t, resp.Results, 1)
	require.Equal(t, 2, cms.postCalls)
}

func TestSearchPopularityCountsCachedRepeats(t *testing.T) {
	cms := &stubCMS{posts: []core.Post{{ID: 1, Title: "Gaming"}}}
	engine := newTestEngine(cms)

	engine.Search(context.Background(), "gaming", core.SearchFilters{})
	engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.Equal(t, 1, cms.postCalls, "second search is served from cache")

	engine.popular.mu.Lock()
	count := engine.popular.counts["gaming"]
	engine.popular.mu.Unlock()
	require.Equal(t, 2, count)
}

func TestSearchSortOverrideSupersedesRelevance(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	cms := &stubCMS{
		posts: []core.Post{
			{ID: 1, Title: "Gaming", Date: older},
			{ID: 2, Title: "Noticias de gaming retro", Date: newer},
		},
	}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{Sort: "date"})
	require.Equal(t, 2, resp.Results[0].ID, "date sort supersedes the higher relevance of the exact match")
}

func TestSearchLimitTruncatesButTotalCounts(t *testing.T) {
	posts := make([]core.Post, 6)
	for i := range posts {
		posts[i] = core.Post{ID: i + 1, Title: "gaming noticia", Date: time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC)}
	}
	cms := &stubCMS{posts: posts}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{Limit: 3})
	require.Len(t, resp.Results, 3)
	require.Equal(t, 6, resp.Total)
}

func TestSearchCategoryFilter(t *testing.T) {
	cms := &stubCMS{
		posts: []core.Post{
			{ID: 1, Title: "Gaming hoy", CategoryNames: []string{"Deportes"}},
			{ID: 2, Title: "Gaming retro", CategoryNames: []string{"Tecnología"}},
		},
	}
	engine := newTestEngine(cms)

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{Category: "tecnología"})
	require.Len(t, resp.Results, 1)
	require.Equal(t, 2, resp.Results[0].ID)
}

func TestSearchSuggestionsFromTitlesAndPopularQueries(t *testing.T) {
	cms := &stubCMS{
		posts: []core.Post{{ID: 1, Title: "Gaming retro consolas"}},
	}
	engine := newTestEngine(cms)

	// Seed popularity with a longer query containing "gaming".
	engine.Search(context.Background(), "gaming portátil", core.SearchFilters{})

	resp := engine.Search(context.Background(), "gaming", core.SearchFilters{})
	require.Contains(t, resp.Suggestions, "retro")
	require.Contains(t, resp.Suggestions, "consolas")
	require.Contains(t, resp.Suggestions, "gaming portátil")
	require.LessOrEqual(t, len(resp.Suggestions), 5)
}

func TestSanitizeQuery(t *testing.T) {
	require.Equal(t, "scriptalert1script", SanitizeQuery("<script>alert(1)</script>"))
	require.Equal(t, "economía españa", SanitizeQuery("  economía   españa!  "))
	require.Equal(t, "foo-bar", SanitizeQuery("foo-bar"))

	long := make([]rune, 0, 150)
	for i := 0; i < 150; i++ {
		long = append(long, 'a')
	}
	require.Len(t, []rune(SanitizeQuery(string(long))), 100)
}
