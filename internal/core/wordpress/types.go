package wordpress

// Wire types for the WordPress REST v2 API. Only the fields the
// normalizers read are declared.

type rendered struct {
	Rendered string `json:"rendered"`
}

type wpPost struct {
	ID         int         `json:"id"`
	Slug       string      `json:"slug"`
	Link       string      `json:"link"`
	Date       string      `json:"date"`
	Title      rendered    `json:"title"`
	Content    rendered    `json:"content"`
	Excerpt    rendered    `json:"excerpt"`
	Categories []int       `json:"categories"`
	Tags       []int       `json:"tags"`
	Embedded   *wpEmbedded `json:"_embedded,omitempty"`
}

// wpEmbedded carries the expansions requested with ?_embed=1. wp:term
// is a list per taxonomy; the category taxonomy is filtered out by name.
type wpEmbedded struct {
	Author        []wpAuthor `json:"author"`
	FeaturedMedia []wpMedia  `json:"wp:featuredmedia"`
	Terms         [][]wpTerm `json:"wp:term"`
}

type wpAuthor struct {
	Name string `json:"name"`
}

type wpMedia struct {
	SourceURL string `json:"source_url"`
}

type wpTerm struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

type wpCategory struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Count       int    `json:"count"`
}
