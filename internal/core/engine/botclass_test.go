package engine

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyKnownCrawlers(t *testing.T) {
	classifier := NewClassifier()

	cases := map[string]BotClass{
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)": BotAllowed,
		"Mozilla/5.0 (compatible; bingbot/2.0)":                                    BotAllowed,
		"facebookexternalhit/1.1":                                                  BotAllowed,
		"Twitterbot/1.0":                                                           BotAllowed,
		"curl/8.4.0":                                                               BotSuspicious,
		"python-requests/2.31.0":                                                   BotSuspicious,
		"Go-http-client/1.1":                                                       BotSuspicious,
		"Mozilla/5.0 HeadlessChrome/120.0":                                         BotSuspicious,
		"sqlmap/1.7":                                                               BotSuspicious,
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36":             BotNone,
	}

	for ua, want := range cases {
		require.Equal(t, want, classifier.Classify(ua), "user agent %q", ua)
	}
}

func TestClassifyEmptyUserAgentIsSuspicious(t *testing.T) {
	require.Equal(t, BotSuspicious, NewClassifier().Classify(""))
	require.Equal(t, BotSuspicious, NewClassifier().Classify("   "))
}

func TestClassifyFirstMatchWins(t *testing.T) {
	classifier := &Classifier{Rules: []Rule{
		{Pattern: regexp.MustCompile(`(?i)specialbot`), Class: BotAllowed},
		{Pattern: regexp.MustCompile(`(?i)bot`), Class: BotSuspicious},
	}}

	require.Equal(t, BotAllowed, classifier.Classify("SpecialBot/1.0"))
	require.Equal(t, BotSuspicious, classifier.Classify("otherbot/1.0"))
}

func TestStricterConfigNeverZero(t *testing.T) {
	strict := StricterConfig(ClassConfig{Window: time.Minute, MaxRequests: 1, Block: time.Minute})
	require.Equal(t, 1, strict.MaxRequests)
	require.Equal(t, 2*time.Minute, strict.Block)
}

func TestGateCrawlerBypassesLimits(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(map[string]ClassConfig{
		"search": {Window: time.Minute, MaxRequests: 2, Block: time.Minute},
	})
	limiter.Clock = fixedClock(now)
	gate := NewGate(limiter, nil, nil)

	googlebot := "Mozilla/5.0 (compatible; Googlebot/2.1)"
	for i := 0; i < 50; i++ {
		result := gate.Check("66.249.66.1", "search", googlebot)
		require.True(t, result.Allowed)
		require.Equal(t, BotAllowed, result.Bot)
		require.Equal(t, crawlerRemaining, result.Remaining)
	}
}

func TestGateSuspiciousClientGetsStricterLimits(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(map[string]ClassConfig{
		"search": {Window: time.Minute, MaxRequests: 20, Block: 2 * time.Minute},
	})
	limiter.Clock = fixedClock(now)
	gate := NewGate(limiter, nil, nil)

	// Half the normal cap: the 11th scripted request is blocked.
	for i := 0; i < 10; i++ {
		require.True(t, gate.Check("5.5.5.5", "search", "curl/8.4.0").Allowed)
	}
	blocked := gate.Check("5.5.5.5", "search", "curl/8.4.0")
	require.False(t, blocked.Allowed)
	require.Equal(t, now.Add(4*time.Minute), blocked.ResetTime)
}

func TestGateNormalBrowserUsesClassLimits(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewLimiter(map[string]ClassConfig{
		"search": {Window: time.Minute, MaxRequests: 3, Block: time.Minute},
	})
	limiter.Clock = fixedClock(now)
	gate := NewGate(limiter, nil, nil)

	browser := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
	for i := 0; i < 3; i++ {
		result := gate.Check("7.7.7.7", "search", browser)
		require.True(t, result.Allowed)
		require.Equal(t, BotNone, result.Bot)
	}
	require.False(t, gate.Check("7.7.7.7", "search", browser).Allowed)
}

func TestGateLimiterFailureHonorsClassPolicies(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Clock = func() time.Time { panic("limiter clock broken") }
	gate := NewGate(limiter, nil, nil)

	browser := "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"

	// Read classes stay reachable, mutating classes shut.
	require.True(t, gate.Check("9.9.9.9", "search", browser).Allowed)
	require.True(t, gate.Check("9.9.9.9", "content", browser).Allowed)
	require.False(t, gate.Check("9.9.9.9", "views", browser).Allowed)
	require.False(t, gate.Check("9.9.9.9", "subscribe", browser).Allowed)
}

func TestGateWithoutLimiterKeepsMutatingClassesClosed(t *testing.T) {
	gate := NewGate(nil, nil, nil)

	browser := "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"

	require.True(t, gate.Check("8.8.8.8", "search", browser).Allowed)
	require.True(t, gate.Check("8.8.8.8", "content", browser).Allowed)
	require.False(t, gate.Check("8.8.8.8", "views", browser).Allowed)
	require.False(t, gate.Check("8.8.8.8", "subscribe", browser).Allowed)

	// Classes outside the default table default to open.
	require.True(t, gate.Check("8.8.8.8", "feeds", browser).Allowed)
}
