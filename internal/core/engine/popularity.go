package engine

import (
	"sort"
	"strings"
	"sync"
)

// popularityTracker counts distinct sanitized queries. Size is capped:
// once full, admitting a new query evicts the current least-frequent one
// so a scanner cannot grow the map without bound.
type popularityTracker struct {
	cap int

	mu     sync.Mutex
	counts map[string]int
}

func newPopularityTracker(capacity int) *popularityTracker {
	if capacity <= 0 {
		capacity = 1000
	}
	return &popularityTracker{cap: capacity, counts: make(map[string]int)}
}

func (t *popularityTracker) Track(query string) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, known := t.counts[query]; !known && len(t.counts) >= t.cap {
		t.evictColdestLocked()
	}
	t.counts[query]++
}

// Matching returns up to limit tracked queries containing substr, most
// frequent first.
func (t *popularityTracker) Matching(substr string, limit int) []string {
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" || limit <= 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	type entry struct {
		query string
		count int
	}
	matched := make([]entry, 0)
	for query, count := range t.counts {
		if query != substr && strings.Contains(query, substr) {
			matched = append(matched, entry{query, count})
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].count != matched[j].count {
			return matched[i].count > matched[j].count
		}
		return matched[i].query < matched[j].query
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]string, len(matched))
	for i, e := range matched {
		out[i] = e.query
	}
	return out
}

func (t *popularityTracker) evictColdestLocked() {
	coldest := ""
	min := -1
	for query, count := range t.counts {
		if min == -1 || count < min {
			coldest = query
			min = count
		}
	}
	if coldest != "" {
		delete(t.counts, coldest)
	}
}
