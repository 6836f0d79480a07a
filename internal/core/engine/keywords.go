package engine

import (
	"regexp"
	"strings"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\s-]+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// spanishStopWords covers the function words the site's Spanish copy is
// built from. Keyword extraction drops them before comparing articles.
var spanishStopWords = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {}, "unos": {}, "unas": {},
	"de": {}, "del": {}, "al": {}, "a": {}, "en": {}, "y": {}, "e": {}, "o": {}, "u": {},
	"que": {}, "qué": {}, "por": {}, "para": {}, "con": {}, "sin": {}, "su": {}, "sus": {},
	"se": {}, "es": {}, "son": {}, "fue": {}, "ser": {}, "está": {}, "están": {}, "hay": {},
	"como": {}, "cómo": {}, "más": {}, "menos": {}, "pero": {}, "sobre": {}, "entre": {},
	"hasta": {}, "desde": {}, "cuando": {}, "donde": {}, "dónde": {}, "este": {}, "esta": {},
	"estos": {}, "estas": {}, "ese": {}, "esa": {}, "esos": {}, "esas": {}, "eso": {},
	"también": {}, "muy": {}, "ya": {}, "le": {}, "les": {}, "lo": {}, "ha": {}, "han": {},
	"tras": {}, "ante": {}, "todo": {}, "todos": {}, "toda": {}, "todas": {}, "otro": {},
	"otra": {}, "otros": {}, "otras": {}, "nos": {}, "años": {}, "año": {}, "día": {},
	"días": {}, "hoy": {}, "ayer": {}, "durante": {}, "según": {}, "mientras": {},
}

const maxKeywords = 20

// ExtractKeywords derives a deduplicated keyword list from text: strip
// HTML, lowercase, keep letters (accents included), digits and hyphens,
// drop Spanish stop words and tokens shorter than 3 runes, cap at 20.
func ExtractKeywords(text string) []string {
	cleaned := htmlTagPattern.ReplaceAllString(text, " ")
	cleaned = strings.ToLower(cleaned)
	cleaned = nonWordPattern.ReplaceAllString(cleaned, " ")
	cleaned = spacePattern.ReplaceAllString(cleaned, " ")

	seen := make(map[string]struct{})
	keywords := make([]string, 0, maxKeywords)
	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, "-")
		if len([]rune(word)) < 3 {
			continue
		}
		if _, stop := spanishStopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
