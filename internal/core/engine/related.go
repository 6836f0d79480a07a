package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core"
)

// Related-post score weights. Additive per signal.
const (
	scoreSharedCategory  = 40
	scoreSharedTag       = 20
	scoreTitleOverlapMax = 25
	scoreKeywordMax      = 15
	scoreKeywordStep     = 3
	scoreRecencyMax      = 10
	scoreSameAuthor      = 8

	relatedMinScore     = 10
	defaultRelatedLimit = 4
	recencyWindowDays   = 30
	titleOverlapFloor   = 0.3
)

// placeholderAuthors are generic bylines that never count as "same author".
var placeholderAuthors = map[string]struct{}{
	"redacción": {},
	"redaccion": {},
	"editorial": {},
	"admin":     {},
	"":          {},
}

// RelatedScorer ranks a candidate pool of recent articles against a
// source article. Scoring is synchronous and CPU-only; the caller owns
// the pool fetch.
type RelatedScorer struct {
	Logger *zap.Logger
	Clock  func() time.Time
}

// Related scores every candidate, keeps those at or above the minimum
// score, and returns the top results with display reasons.
func (s *RelatedScorer) Related(article core.Post, pool []core.Post, limit int) []core.RelatedPost {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}

	now := s.now()
	articleKeywords := ExtractKeywords(article.Title + " " + article.Content)

	ranked := make([]core.RelatedPost, 0, len(pool))
	for _, candidate := range pool {
		if candidate.ID == article.ID {
			continue
		}

		score, reasons := s.scoreCandidate(article, articleKeywords, candidate, now)
		if score < relatedMinScore {
			continue
		}

		ranked = append(ranked, core.RelatedPost{
			ID:         candidate.ID,
			Title:      candidate.Title,
			Excerpt:    candidate.Excerpt,
			Slug:       candidate.Slug,
			Date:       candidate.Date,
			Image:      candidate.FeaturedImage,
			Categories: candidate.CategoryNames,
			Score:      score,
			Reason:     strings.Join(reasons, ", "),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Date.After(ranked[j].Date)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if s.Logger != nil {
		s.Logger.Debug("related posts scored",
			zap.Int("article_id", article.ID),
			zap.Int("pool", len(pool)),
			zap.Int("kept", len(ranked)))
	}
	return ranked
}

func (s *RelatedScorer) scoreCandidate(article core.Post, articleKeywords []string, candidate core.Post, now time.Time) (int, []string) {
	score := 0
	reasons := make([]string, 0, 4)

	if shared := sharedInts(article.CategoryIDs, candidate.CategoryIDs); shared > 0 {
		score += shared * scoreSharedCategory
		reasons = append(reasons, pluralize(shared, "categoría compartida", "categorías compartidas"))
	}

	if shared := sharedInts(article.TagIDs, candidate.TagIDs); shared > 0 {
		score += shared * scoreSharedTag
		reasons = append(reasons, pluralize(shared, "etiqueta compartida", "etiquetas compartidas"))
	}

	if ratio := titleOverlap(article.Title, candidate.Title); ratio > titleOverlapFloor {
		score += int(ratio * scoreTitleOverlapMax)
		reasons = append(reasons, "títulos similares")
	}

	candidateKeywords := ExtractKeywords(candidate.Title + " " + candidate.Content)
	if shared := sharedStrings(articleKeywords, candidateKeywords); shared > 0 {
		contribution := shared * scoreKeywordStep
		if contribution > scoreKeywordMax {
			contribution = scoreKeywordMax
		}
		score += contribution
		reasons = append(reasons, "temas relacionados")
	}

	if bonus := recencyBonus(candidate.Date, now); bonus > 0 {
		score += bonus
		reasons = append(reasons, "publicado recientemente")
	}

	if sameAuthor(article.AuthorName, candidate.AuthorName) {
		score += scoreSameAuthor
		reasons = append(reasons, "mismo autor")
	}

	return score, reasons
}

// titleOverlap is the shared-word ratio over the longer title's word
// count, computed on extracted keywords so stop words don't inflate it.
func titleOverlap(a, b string) float64 {
	wordsA := ExtractKeywords(a)
	wordsB := ExtractKeywords(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	shared := sharedStrings(wordsA, wordsB)
	max := len(wordsA)
	if len(wordsB) > max {
		max = len(wordsB)
	}
	return float64(shared) / float64(max)
}

// recencyBonus decays linearly over the 30 days after publication.
func recencyBonus(published, now time.Time) int {
	if published.IsZero() {
		return 0
	}
	age := now.Sub(published)
	if age < 0 {
		age = 0
	}
	days := age.Hours() / 24
	if days >= recencyWindowDays {
		return 0
	}
	return int((1 - days/recencyWindowDays) * scoreRecencyMax)
}

func sameAuthor(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if _, generic := placeholderAuthors[a]; generic {
		return false
	}
	if _, generic := placeholderAuthors[b]; generic {
		return false
	}
	return a == b
}

func sharedInts(a, b []int) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[int]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	shared := 0
	for _, v := range b {
		if _, ok := set[v]; ok {
			shared++
			delete(set, v)
		}
	}
	return shared
}

func sharedStrings(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	shared := 0
	for _, v := range b {
		if _, ok := set[v]; ok {
			shared++
			delete(set, v)
		}
	}
	return shared
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func (s *RelatedScorer) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
