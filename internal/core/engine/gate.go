package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/core"
)

// crawlerRemaining is the synthetic remaining count reported for
// allow-listed crawlers that bypass rate limiting.
const crawlerRemaining = 999

// GateResult carries the limiter decision together with the client's
// bot classification.
type GateResult struct {
	core.Decision
	Bot BotClass
}

// classPolicy resolves a class's fail policy from the default table,
// used when no limiter is available to ask.
func classPolicy(class string) core.FailPolicy {
	if cfg, ok := DefaultClasses[class]; ok {
		return cfg.OnError
	}
	return core.FailOpen
}

// Gate combines the user-agent classifier with the fixed-window limiter.
// Handlers consult it before doing any work.
type Gate struct {
	Limiter    *Limiter
	Classifier *Classifier
	Logger     *zap.Logger
}

// NewGate wires a gate from its parts. A nil classifier falls back to
// the default rule table.
func NewGate(limiter *Limiter, classifier *Classifier, logger *zap.Logger) *Gate {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Gate{Limiter: limiter, Classifier: classifier, Logger: logger}
}

// Check classifies the user agent and applies the class limits.
// Allow-listed crawlers bypass limiting entirely; suspicious clients get
// the derived stricter config. If the limiter itself fails, the class's
// fail policy decides: open for read paths, closed for mutating ones. A
// gate wired without a limiter resolves the same policies from the
// default class table, so mutating classes stay closed.
func (g *Gate) Check(identity, class, userAgent string) (result GateResult) {
	policy := classPolicy(class)
	if g != nil && g.Limiter != nil {
		policy = g.Limiter.Policy(class)
	}

	defer func() {
		if r := recover(); r != nil {
			if g != nil && g.Logger != nil {
				g.Logger.Error("rate limit gate failure",
					zap.String("class", class),
					zap.String("policy", policy.String()),
					zap.Any("panic", r))
			}
			result = GateResult{Decision: core.Decision{
				Allowed:   policy == core.FailOpen,
				ResetTime: time.Now().UTC(),
			}}
		}
	}()

	if g == nil || g.Limiter == nil {
		return GateResult{Decision: core.Decision{
			Allowed:   policy == core.FailOpen,
			ResetTime: time.Now().UTC(),
		}}
	}

	bot := g.Classifier.Classify(userAgent)

	switch bot {
	case BotAllowed:
		return GateResult{
			Decision: core.Decision{
				Allowed:   true,
				Remaining: crawlerRemaining,
				ResetTime: time.Now().UTC(),
			},
			Bot: bot,
		}
	case BotSuspicious:
		cfg := StricterConfig(g.Limiter.classConfig(class))
		return GateResult{Decision: g.Limiter.CheckWith(identity, class, cfg), Bot: bot}
	default:
		return GateResult{Decision: g.Limiter.Check(identity, class), Bot: bot}
	}
}
