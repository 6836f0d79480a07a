package wordpress

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// URLRewriter maps CMS-origin URLs to their public equivalents. The CMS
// serves content from its own host; everything shown to readers must
// point at the public site.
type URLRewriter struct {
	CMSHost    string
	PublicHost string
}

// NewURLRewriter builds a rewriter from the two base URLs. Scheme and
// path prefixes are ignored, only hosts are compared.
func NewURLRewriter(cmsURL, publicURL string) *URLRewriter {
	return &URLRewriter{
		CMSHost:    hostOf(cmsURL),
		PublicHost: hostOf(publicURL),
	}
}

// Rewrite returns raw with the CMS host swapped for the public host.
// Relative URLs and URLs on other hosts pass through untouched.
func (r *URLRewriter) Rewrite(raw string) string {
	if r == nil || r.CMSHost == "" || r.PublicHost == "" || raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(parsed.Host, r.CMSHost) {
		return raw
	}
	parsed.Host = r.PublicHost
	parsed.Scheme = "https"
	return parsed.String()
}

// RewriteHTML rewrites every link and image source inside an HTML
// fragment. On parse failure the fragment is returned unchanged.
func (r *URLRewriter) RewriteHTML(fragment string) string {
	if r == nil || r.CMSHost == "" || fragment == "" {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			sel.SetAttr("href", r.Rewrite(href))
		}
	})
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			sel.SetAttr("src", r.Rewrite(src))
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return fragment
	}
	return out
}

func hostOf(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if parsed.Host != "" {
		return parsed.Host
	}
	// Bare host without scheme.
	return strings.TrimSuffix(parsed.Path, "/")
}
