package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notiva/notiva/internal/core"
)

func newTestScorer(now time.Time) *RelatedScorer {
	return &RelatedScorer{Clock: fixedClock(now)}
}

func TestRelatedSharedCategoriesScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer := newTestScorer(now)

	article := core.Post{ID: 1, Title: "Resultados liga", CategoryIDs: []int{3, 5}}
	pool := []core.Post{{
		ID:          2,
		Title:       "Crónica del partido",
		CategoryIDs: []int{3, 5},
		Date:        now.AddDate(0, -2, 0), // outside recency window
	}}

	related := scorer.Related(article, pool, 4)
	require.Len(t, related, 1)
	require.Equal(t, 80, related[0].Score)
	require.Equal(t, "2 categorías compartidas", related[0].Reason)
}

func TestRelatedZeroSignalCandidateExcluded(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer := newTestScorer(now)

	article := core.Post{
		ID:          1,
		Title:       "Presupuesto municipal aprobado",
		CategoryIDs: []int{1},
		TagIDs:      []int{10},
		AuthorName:  "Ana García",
	}
	pool := []core.Post{{
		ID:          2,
		Title:       "Festival gastronómico regional",
		CategoryIDs: []int{9},
		TagIDs:      []int{99},
		AuthorName:  "Luis Pérez",
		Date:        now.AddDate(0, -2, 0),
	}}

	require.Empty(t, scorer.Related(article, pool, 4))
}

func TestRelatedExcludesSourceArticle(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer := newTestScorer(now)

	article := core.Post{ID: 1, CategoryIDs: []int{3}}
	pool := []core.Post{{ID: 1, CategoryIDs: []int{3}}}

	require.Empty(t, scorer.Related(article, pool, 4))
}

func TestRelatedSameAuthorBonus(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer := newTestScorer(now)

	article := core.Post{ID: 1, CategoryIDs: []int{3}, AuthorName: "Ana García"}
	pool := []core.Post{{
		ID:          2,
		CategoryIDs: []int{3},
		AuthorName:  "Ana García",
		Date:        now.AddDate(0, -2, 0),
	}}

	related := scorer.Related(article, pool, 4)
	require.Len(t, related, 1)
	require.Equal(t, 48, related[0].Score)
	require.Contains(t, related[0].Reason, "mismo autor")
}

func TestRelatedPlaceholderAuthorNeverCounts(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer := newTestScorer(now)

	article := core.Post{ID: 1, CategoryIDs: []int{3}, AuthorName: "Redacción"}
	pool := []core.Post{{
		ID:          2,
		CategoryIDs: []int{3},
		AuthorName:  "Redacción",
		Date:        now.AddDate(0, -2, 0),
	}}

	related := scorer.Related(article, pool, 4)
	require.Len(t, related, 1)
	require.Equal(t, 40, related[0].Score)
	require.NotContains(t, related[0].Reason, "mismo autor")
}

func TestRelatedRecencyBonusDecaysLinearly(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, 10, recencyBonus(now, now))
	require.Equal(t, 5, recencyBonus(now.AddDate(0, 0, -15), now))
	require.Equal(t, 0, recencyBonus(now.AddDate(0, 0, -30), now))
	require.Equal(t, 0, recencyBonus(now.AddDate(0, 0, -120), now))
}

func TestRelatedTitleOverlapNeedsThreshold(t *testing.T) {
	// Identical keyword sets: full overlap.
	require.InDelta(t, 1.0, titleOverlap("crisis económica europea", "crisis económica europea"), 0.001)
	// Disjoint titles: zero.
	require.Zero(t, titleOverlap("fútbol nacional", "gastronomía vasca"))
}

func TestRelatedSortsByScoreAndTruncates(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer := newTestScorer(now)

	article := core.Post{ID: 1, CategoryIDs: []int{3}, TagIDs: []int{7}}
	old := now.AddDate(0, -2, 0)
	pool := []core.Post{
		{ID: 2, CategoryIDs: []int{3}, Date: old},                  // 40
		{ID: 3, CategoryIDs: []int{3}, TagIDs: []int{7}, Date: old}, // 60
		{ID: 4, TagIDs: []int{7}, Date: old},                       // 20
		{ID: 5, CategoryIDs: []int{3}, Date: old},                  // 40
		{ID: 6, TagIDs: []int{7}, Date: old},                       // 20
	}

	related := scorer.Related(article, pool, 3)
	require.Len(t, related, 3)
	require.Equal(t, 3, related[0].ID)
	require.Equal(t, 60, related[0].Score)
	require.GreaterOrEqual(t, related[1].Score, related[2].Score)
}

func TestRelatedReasonUsesSingular(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	scorer := newTestScorer(now)

	article := core.Post{ID: 1, CategoryIDs: []int{3}}
	pool := []core.Post{{ID: 2, CategoryIDs: []int{3}, Date: now.AddDate(0, -2, 0)}}

	related := scorer.Related(article, pool, 4)
	require.Len(t, related, 1)
	require.Equal(t, "1 categoría compartida", related[0].Reason)
}
