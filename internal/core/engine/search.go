package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core"
)

// CMSSearcher is the slice of the CMS client the search engine needs.
type CMSSearcher interface {
	SearchPosts(ctx context.Context, query string) ([]core.Post, error)
	SearchCategories(ctx context.Context, query string) ([]core.Category, error)
}

// Relevance score weights. Additive: a candidate accumulates every bonus
// it qualifies for, so an exact title match also earns the contains and
// prefix bonuses.
const (
	scoreTitleExact    = 100
	scoreTitleContains = 50
	scoreTitlePrefix   = 30
	scoreBodyContains  = 20
	scoreWordInTitle   = 10
	scoreWordInBody    = 5
)

const (
	defaultSearchLimit    = 20
	defaultSearchTimeout  = 4 * time.Second
	maxQueryLength        = 100
	maxSuggestions        = 5
	suggestionTitleDepth  = 5
	suggestionMinWordSize = 4
)

var queryCharPattern = regexp.MustCompile(`[^\p{L}\p{N}\s-]+`)

// SearchEngine queries both CMS collections in parallel, scores the
// candidates against the query and serves ranked, paginated responses
// from a bounded FIFO cache.
type SearchEngine struct {
	CMS     CMSSearcher
	Logger  *zap.Logger
	Timeout time.Duration

	cache   *responseCache
	popular *popularityTracker
	clock   func() time.Time
}

// SearchOptions tunes cache and timeout behavior.
type SearchOptions struct {
	CacheTTL      time.Duration
	CacheSize     int
	PopularitySize int
	Timeout       time.Duration
}

// NewSearchEngine builds an engine with its own cache and popularity
// tracker; state is owned here, not in package globals, so tests get
// clean instances.
func NewSearchEngine(cms CMSSearcher, logger *zap.Logger, opts SearchOptions) *SearchEngine {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &SearchEngine{
		CMS:     cms,
		Logger:  logger,
		Timeout: timeout,
		cache:   newResponseCache(opts.CacheTTL, opts.CacheSize),
		popular: newPopularityTracker(opts.PopularitySize),
	}
}

// Search runs the full pipeline. Failures never escape: a broken query,
// upstream outage or panic all produce an empty response so search can
// never 500 the site.
func (e *SearchEngine) Search(ctx context.Context, query string, filters core.SearchFilters) (response *core.SearchResponse) {
	start := e.now()

	defer func() {
		if r := recover(); r != nil {
			if e.Logger != nil {
				e.Logger.Error("search pipeline panic", zap.Any("panic", r), zap.String("query", query))
			}
			response = emptyResponse(query, filters)
		}
	}()

	sanitized := SanitizeQuery(query)
	if len([]rune(sanitized)) < 2 {
		return emptyResponse(sanitized, filters)
	}

	// Track before the cache check so repeats inside the TTL still
	// count toward popularity.
	e.popular.Track(sanitized)

	key := cacheKey(sanitized, filters)
	if cached, ok := e.cache.Get(key); ok {
		return cached
	}

	posts, categories, degraded := e.fetchBoth(ctx, sanitized)

	results := make([]core.SearchResult, 0, len(posts)+len(categories))
	words := strings.Fields(strings.ToLower(sanitized))
	for _, cat := range categories {
		if score := relevanceScore(sanitized, words, cat.Name, cat.Description); score > 0 {
			results = append(results, core.SearchResult{
				ID:      cat.ID,
				Title:   cat.Name,
				Excerpt: cat.Description,
				Slug:    cat.Slug,
				Type:    core.ResultTypeCategory,
				URL:     cat.URL,
				Score:   score,
			})
		}
	}
	for _, post := range posts {
		if score := relevanceScore(sanitized, words, post.Title, post.Content+" "+post.Excerpt); score > 0 {
			results = append(results, core.SearchResult{
				ID:         post.ID,
				Title:      post.Title,
				Excerpt:    post.Excerpt,
				Slug:       post.Slug,
				Type:       core.ResultTypePost,
				URL:        post.URL,
				Date:       post.Date,
				Score:      score,
				Categories: post.CategoryNames,
			})
		}
	}

	results = applyFilters(results, filters)
	rankResults(results)
	applySortOverride(results, filters.Sort)

	total := len(results)
	limit := filters.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	response = &core.SearchResponse{
		Success:     true,
		Results:     results,
		Total:       total,
		Query:       sanitized,
		Filters:     filters,
		Suggestions: e.suggestions(sanitized, results),
		Took:        e.now().Sub(start).Milliseconds(),
	}

	// A response built while both collections were down is not cached,
	// so a transient outage cannot pin an empty result for the TTL.
	if !degraded {
		e.cache.Put(key, response)
	}
	return response
}

// SanitizeQuery trims, drops markup characters, keeps word characters
// (diacritics included), spaces and hyphens, and caps the length.
func SanitizeQuery(query string) string {
	query = strings.TrimSpace(query)
	query = strings.ReplaceAll(query, "<", "")
	query = strings.ReplaceAll(query, ">", "")
	query = queryCharPattern.ReplaceAllString(query, "")
	query = spacePattern.ReplaceAllString(query, " ")
	query = strings.TrimSpace(query)

	runes := []rune(query)
	if len(runes) > maxQueryLength {
		query = string(runes[:maxQueryLength])
	}
	return query
}

// fetchBoth issues the posts and categories queries concurrently, each
// under its own timeout. A failed side degrades to nil rather than
// failing the search; degraded reports whether both sides failed.
func (e *SearchEngine) fetchBoth(ctx context.Context, query string) (posts []core.Post, categories []core.Category, degraded bool) {
	var (
		wg                sync.WaitGroup
		postsErr, catsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		queryCtx, cancel := context.WithTimeout(ctx, e.Timeout)
		defer cancel()

		found, err := e.CMS.SearchPosts(queryCtx, query)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("posts search degraded to empty", zap.String("query", query), zap.Error(err))
			}
			postsErr = err
			return
		}
		posts = found
	}()
	go func() {
		defer wg.Done()
		queryCtx, cancel := context.WithTimeout(ctx, e.Timeout)
		defer cancel()

		found, err := e.CMS.SearchCategories(queryCtx, query)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("categories search degraded to empty", zap.String("query", query), zap.Error(err))
			}
			catsErr = err
			return
		}
		categories = found
	}()
	wg.Wait()

	return posts, categories, postsErr != nil && catsErr != nil
}

// relevanceScore combines the weighted signals. Bonuses stack.
func relevanceScore(query string, queryWords []string, title, body string) int {
	q := strings.ToLower(query)
	t := strings.ToLower(title)
	b := strings.ToLower(body)

	score := 0
	if t == q {
		score += scoreTitleExact
	}
	if strings.Contains(t, q) {
		score += scoreTitleContains
	}
	if strings.HasPrefix(t, q) {
		score += scoreTitlePrefix
	}
	if b != "" && strings.Contains(b, q) {
		score += scoreBodyContains
	}
	for _, word := range queryWords {
		if strings.Contains(t, word) {
			score += scoreWordInTitle
		}
		if b != "" && strings.Contains(b, word) {
			score += scoreWordInBody
		}
	}
	return score
}

// rankResults orders by score descending, then categories before posts,
// then newest post first.
func rankResults(results []core.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Type != results[j].Type {
			return results[i].Type == core.ResultTypeCategory
		}
		return results[i].Date.After(results[j].Date)
	})
}

// applySortOverride re-sorts after relevance ranking when a filter asks
// for it, superseding relevance order.
func applySortOverride(results []core.SearchResult, sortBy string) {
	switch sortBy {
	case "date":
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Date.After(results[j].Date)
		})
	case "title":
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Title) < strings.ToLower(results[j].Title)
		})
	}
}

func applyFilters(results []core.SearchResult, filters core.SearchFilters) []core.SearchResult {
	category := strings.ToLower(strings.TrimSpace(filters.Category))
	from, hasFrom := parseFilterDate(filters.DateFrom)
	to, hasTo := parseFilterDate(filters.DateTo)
	if category == "" && !hasFrom && !hasTo {
		return results
	}

	filtered := results[:0]
	for _, result := range results {
		if category != "" && result.Type == core.ResultTypePost && !hasCategory(result.Categories, category) {
			continue
		}
		if result.Type == core.ResultTypePost {
			if hasFrom && result.Date.Before(from) {
				continue
			}
			if hasTo && result.Date.After(to.Add(24*time.Hour)) {
				continue
			}
		}
		filtered = append(filtered, result)
	}
	return filtered
}

func hasCategory(categories []string, wanted string) bool {
	for _, c := range categories {
		if strings.ToLower(c) == wanted {
			return true
		}
	}
	return false
}

func parseFilterDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// suggestions derives follow-up queries from distinctive words in the
// top result titles plus popular queries containing the current one.
func (e *SearchEngine) suggestions(query string, results []core.SearchResult) []string {
	lowered := strings.ToLower(query)
	seen := make(map[string]struct{})
	out := make([]string, 0, maxSuggestions)

	depth := suggestionTitleDepth
	if len(results) < depth {
		depth = len(results)
	}
	for _, result := range results[:depth] {
		for _, word := range strings.Fields(strings.ToLower(result.Title)) {
			word = strings.Trim(word, ".,;:¡!¿?\"'()")
			if len([]rune(word)) < suggestionMinWordSize {
				continue
			}
			if strings.Contains(lowered, word) {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			out = append(out, word)
			if len(out) == maxSuggestions {
				return out
			}
		}
	}

	for _, popular := range e.popular.Matching(lowered, maxSuggestions-len(out)) {
		if _, dup := seen[popular]; dup {
			continue
		}
		seen[popular] = struct{}{}
		out = append(out, popular)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func cacheKey(query string, filters core.SearchFilters) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		strings.ToLower(query), filters.Category, filters.DateFrom, filters.DateTo, filters.Sort, filters.Limit)
}

func emptyResponse(query string, filters core.SearchFilters) *core.SearchResponse {
	return &core.SearchResponse{
		Success: true,
		Results: []core.SearchResult{},
		Query:   query,
		Filters: filters,
	}
}

func (e *SearchEngine) now() time.Time {
	if e != nil && e.clock != nil {
		return e.clock()
	}
	return time.Now().UTC()
}
