package wordpress

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// strippedSelectors are removed wholesale from rendered CMS content
// before it leaves the backend.
var strippedSelectors = []string{
	"script",
	"style",
	"iframe",
	"noscript",
	"form",
	".sharedaddy",
	".jp-relatedposts",
	".advertisement",
	".ad-container",
}

var excerptSpaces = regexp.MustCompile(`\s+`)

const defaultExcerptRunes = 160

// SanitizeHTML removes active content and ad containers from an HTML
// fragment. On parse failure the fragment is dropped rather than
// passed through.
func SanitizeHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	for _, selector := range strippedSelectors {
		doc.Find(selector).Remove()
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ExcerptText reduces an HTML fragment to plain text truncated on a
// word boundary. maxRunes <= 0 uses the default length.
func ExcerptText(fragment string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = defaultExcerptRunes
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	text := excerptSpaces.ReplaceAllString(strings.TrimSpace(doc.Text()), " ")
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := maxRunes
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxRunes
	}
	return strings.TrimRight(string(runes[:cut]), " ,;:") + "…"
}
