package engine

import (
	"regexp"
	"strings"
)

// BotClass is the outcome of user-agent classification.
type BotClass int

const (
	// BotNone means the client is rate-limited normally.
	BotNone BotClass = iota
	// BotAllowed identifies legitimate search and social-preview crawlers
	// that bypass rate limiting.
	BotAllowed
	// BotSuspicious identifies scripted clients that receive stricter limits.
	BotSuspicious
)

func (c BotClass) String() string {
	switch c {
	case BotAllowed:
		return "allowed"
	case BotSuspicious:
		return "suspicious"
	default:
		return "none"
	}
}

// Rule pairs a user-agent pattern with its classification. Rules are
// evaluated in order; first match wins.
type Rule struct {
	Pattern *regexp.Regexp
	Class   BotClass
}

// DefaultRules lists known crawlers before known scripted clients so a
// crawler matching both sets is allowed.
var DefaultRules = []Rule{
	{Pattern: regexp.MustCompile(`(?i)googlebot|bingbot|slurp|duckduckbot|baiduspider|yandex(bot)?`), Class: BotAllowed},
	{Pattern: regexp.MustCompile(`(?i)facebookexternalhit|twitterbot|linkedinbot|whatsapp|telegrambot|pinterest|applebot`), Class: BotAllowed},
	{Pattern: regexp.MustCompile(`(?i)curl|wget|python-requests|python-urllib|go-http-client|java/|libwww|okhttp|httpclient`), Class: BotSuspicious},
	{Pattern: regexp.MustCompile(`(?i)scrapy|headlesschrome|phantomjs|selenium|puppeteer|playwright`), Class: BotSuspicious},
	{Pattern: regexp.MustCompile(`(?i)masscan|nmap|nikto|sqlmap|zgrab|censys`), Class: BotSuspicious},
}

// Classifier matches user agents against an ordered rule table.
type Classifier struct {
	Rules []Rule
}

// NewClassifier creates a classifier with the default rule table.
func NewClassifier() *Classifier {
	return &Classifier{Rules: DefaultRules}
}

// Classify returns the class of the first matching rule. An empty user
// agent is treated as suspicious: real browsers always send one.
func (c *Classifier) Classify(userAgent string) BotClass {
	ua := strings.TrimSpace(userAgent)
	if ua == "" {
		return BotSuspicious
	}

	rules := DefaultRules
	if c != nil && c.Rules != nil {
		rules = c.Rules
	}

	for _, rule := range rules {
		if rule.Pattern != nil && rule.Pattern.MatchString(ua) {
			return rule.Class
		}
	}
	return BotNone
}

// StricterConfig derives the tightened limits applied to suspicious
// clients: half the request cap, double the block duration. The shared
// class table is left untouched.
func StricterConfig(cfg ClassConfig) ClassConfig {
	cfg.MaxRequests /= 2
	if cfg.MaxRequests < 1 {
		cfg.MaxRequests = 1
	}
	cfg.Block *= 2
	return cfg
}
