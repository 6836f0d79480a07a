package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core"
)

const (
	// wpDateLayout is the timezone-less local time WordPress returns in
	// the "date" field.
	wpDateLayout = "2006-01-02T15:04:05"

	searchPerPage  = 20
	maxRecentPosts = 50

	defaultClientTimeout = 8 * time.Second
)

// errNotFound marks a 404 from the CMS so callers can treat missing
// entities as nil rather than failures.
var errNotFound = errors.New("not found")

// Client talks to a WordPress REST v2 API. BaseURL points at the
// wp-json/wp/v2 root. Responses are normalized: entities get rewritten
// URLs, sanitized content, and decoded titles.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Rewriter *URLRewriter
	Logger   *zap.Logger
}

// NewClient builds a client with the default HTTP timeout.
func NewClient(baseURL string, rewriter *URLRewriter, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: defaultClientTimeout},
		Rewriter: rewriter,
		Logger:   logger,
	}
}

// SearchPosts queries the posts collection. Full content is included so
// callers can score against the body.
func (c *Client) SearchPosts(ctx context.Context, query string) ([]core.Post, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", strconv.Itoa(searchPerPage))
	params.Set("_embed", "1")

	var raw []wpPost
	if err := c.getJSON(ctx, "/posts", params, &raw); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	posts := make([]core.Post, 0, len(raw))
	for _, p := range raw {
		posts = append(posts, c.normalizePost(p, false))
	}
	return posts, nil
}

// SearchCategories queries the categories collection.
func (c *Client) SearchCategories(ctx context.Context, query string) ([]core.Category, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("per_page", strconv.Itoa(searchPerPage))

	var raw []wpCategory
	if err := c.getJSON(ctx, "/categories", params, &raw); err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}

	categories := make([]core.Category, 0, len(raw))
	for _, cat := range raw {
		categories = append(categories, core.Category{
			ID:          cat.ID,
			Name:        html.UnescapeString(cat.Name),
			Slug:        cat.Slug,
			Description: ExcerptText(cat.Description, 0),
			URL:         c.rewrite(cat.Link),
			Count:       cat.Count,
		})
	}
	return categories, nil
}

// RecentPosts returns the n most recent posts with full content,
// skipping excludeID. Used as the candidate pool for related-post
// scoring.
func (c *Client) RecentPosts(ctx context.Context, n, excludeID int) ([]core.Post, error) {
	if n <= 0 || n > maxRecentPosts {
		n = maxRecentPosts
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(n))
	params.Set("orderby", "date")
	params.Set("order", "desc")
	params.Set("_embed", "1")
	if excludeID > 0 {
		params.Set("exclude", strconv.Itoa(excludeID))
	}

	var raw []wpPost
	if err := c.getJSON(ctx, "/posts", params, &raw); err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}

	posts := make([]core.Post, 0, len(raw))
	for _, p := range raw {
		if p.ID == excludeID {
			continue
		}
		posts = append(posts, c.normalizePost(p, true))
	}
	return posts, nil
}

// PostByID fetches a single post by its CMS ID. Returns nil without
// error on 404.
func (c *Client) PostByID(ctx context.Context, id int) (*core.Post, error) {
	if id <= 0 {
		return nil, errors.New("post id is required")
	}

	params := url.Values{}
	params.Set("_embed", "1")

	var raw wpPost
	err := c.getJSON(ctx, "/posts/"+strconv.Itoa(id), params, &raw)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("post by id: %w", err)
	}

	post := c.normalizePost(raw, true)
	return &post, nil
}

// PostBySlug fetches a single post. Returns nil without error when the
// slug does not exist.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*core.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New("slug is required")
	}

	params := url.Values{}
	params.Set("slug", slug)
	params.Set("_embed", "1")

	var raw []wpPost
	if err := c.getJSON(ctx, "/posts", params, &raw); err != nil {
		return nil, fmt.Errorf("post by slug: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	post := c.normalizePost(raw[0], true)
	return &post, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c == nil || c.BaseURL == "" {
		return errors.New("wordpress client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reqURL := c.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) // nolint:errcheck
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) // nolint:errcheck
		if c.Logger != nil {
			c.Logger.Warn("cms request failed",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode))
		}
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// normalizePost converts a wire post to the internal shape. Content is
// only carried when withContent is set; search scoring needs it, list
// payloads do not benefit from holding full article bodies twice.
func (c *Client) normalizePost(p wpPost, withContent bool) core.Post {
	post := core.Post{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       html.UnescapeString(strings.TrimSpace(p.Title.Rendered)),
		URL:         c.rewrite(p.Link),
		Date:        parseWPDate(p.Date),
		CategoryIDs: p.Categories,
		TagIDs:      p.Tags,
	}

	content := SanitizeHTML(p.Content.Rendered)
	if c.Rewriter != nil {
		content = c.Rewriter.RewriteHTML(content)
	}
	if withContent {
		post.Content = content
	} else {
		// Search still scores against the body text.
		post.Content = ExcerptText(content, 2000)
	}

	post.Excerpt = ExcerptText(p.Excerpt.Rendered, 0)
	if post.Excerpt == "" {
		post.Excerpt = ExcerptText(content, 0)
	}

	if p.Embedded != nil {
		if len(p.Embedded.Author) > 0 {
			post.AuthorName = strings.TrimSpace(p.Embedded.Author[0].Name)
		}
		if len(p.Embedded.FeaturedMedia) > 0 {
			post.FeaturedImage = c.rewrite(p.Embedded.FeaturedMedia[0].SourceURL)
		}
		for _, taxonomy := range p.Embedded.Terms {
			for _, term := range taxonomy {
				if term.Taxonomy == "category" {
					post.CategoryNames = append(post.CategoryNames, html.UnescapeString(term.Name))
				}
			}
		}
	}

	return post
}

func (c *Client) rewrite(raw string) string {
	if c == nil || c.Rewriter == nil {
		return raw
	}
	return c.Rewriter.Rewrite(raw)
}

// parseWPDate handles both the timezone-less core format and RFC3339
// (some installs emit the latter). Zero time on failure.
func parseWPDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if parsed, err := time.Parse(wpDateLayout, value); err == nil {
		return parsed
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed
	}
	return time.Time{}
}
