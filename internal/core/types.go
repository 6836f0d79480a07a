package core

import "time"

// ResultType identifies which CMS collection a search result came from.
type ResultType string

const (
	ResultTypePost     ResultType = "post"
	ResultTypeCategory ResultType = "category"
)

// Post is the normalized view of a CMS post after URL rewriting and
// HTML sanitization.
type Post struct {
	ID            int       `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	Excerpt       string    `json:"excerpt"`
	URL           string    `json:"url"`
	Date          time.Time `json:"date"`
	AuthorName    string    `json:"author,omitempty"`
	CategoryIDs   []int     `json:"category_ids,omitempty"`
	TagIDs        []int     `json:"tag_ids,omitempty"`
	CategoryNames []string  `json:"categories,omitempty"`
	FeaturedImage string    `json:"image,omitempty"`
}

// Category is the normalized view of a CMS category.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Count       int    `json:"count,omitempty"`
}

// SearchResult is a scored candidate from either collection. Constructed
// per query, never stored.
type SearchResult struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt"`
	Slug       string     `json:"slug"`
	Type       ResultType `json:"type"`
	URL        string     `json:"url"`
	Date       time.Time  `json:"date,omitempty"`
	Score      int        `json:"relevance_score"`
	Categories []string   `json:"categories,omitempty"`
}

// SearchFilters narrows and re-orders a search.
type SearchFilters struct {
	Category string `json:"category,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// SearchResponse is the full payload returned to the search endpoint.
type SearchResponse struct {
	Success     bool           `json:"success"`
	Results     []SearchResult `json:"results"`
	Total       int            `json:"total"`
	Query       string         `json:"query"`
	Filters     SearchFilters  `json:"filters"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Took        int64          `json:"took"`
}

// RelatedPost is a scored related-article candidate. Reason is descriptive
// metadata for display, not used in ranking.
type RelatedPost struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Slug       string    `json:"slug"`
	Date       time.Time `json:"date"`
	Image      string    `json:"image,omitempty"`
	Categories []string  `json:"categories,omitempty"`
	Score      int       `json:"score"`
	Reason     string    `json:"reason"`
}
