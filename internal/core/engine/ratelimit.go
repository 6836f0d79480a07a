package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/notiva/notiva/internal/core"
)

// ClassConfig configures a fixed window for one endpoint class.
type ClassConfig struct {
	Window      time.Duration
	MaxRequests int
	Block       time.Duration
	OnError     core.FailPolicy
}

// DefaultClasses provides conservative per-class defaults. Tune per
// deployment via config overrides.
var DefaultClasses = map[string]ClassConfig{
	"search":    {Window: time.Minute, MaxRequests: 20, Block: 2 * time.Minute, OnError: core.FailOpen},
	"content":   {Window: time.Minute, MaxRequests: 30, Block: 5 * time.Minute, OnError: core.FailOpen},
	"views":     {Window: time.Minute, MaxRequests: 10, Block: 5 * time.Minute, OnError: core.FailClosed},
	"subscribe": {Window: 10 * time.Minute, MaxRequests: 5, Block: 30 * time.Minute, OnError: core.FailClosed},
}

// sweepProbability is the chance a Check call triggers an opportunistic
// sweep of expired entries. Best effort: a missed sweep only delays
// memory reclamation.
const sweepProbability = 0.01

// Limiter enforces fixed-window rate limits per identity and endpoint
// class. All state is process-local and lost on restart.
type Limiter struct {
	Classes map[string]ClassConfig
	Clock   func() time.Time

	mu      sync.Mutex
	entries map[string]*core.RateLimitState
	rng     *rand.Rand
}

// NewLimiter creates a limiter with the given class table, falling back
// to DefaultClasses when nil.
func NewLimiter(classes map[string]ClassConfig) *Limiter {
	if classes == nil {
		classes = DefaultClasses
	}
	return &Limiter{
		Classes: classes,
		entries: make(map[string]*core.RateLimitState),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- sweep scheduling, not security
	}
}

// Check applies the fixed-window algorithm for identity within class.
// Exactly MaxRequests calls per window are allowed; the next call blocks
// the identity for the class's block duration.
func (l *Limiter) Check(identity, class string) core.Decision {
	return l.CheckWith(identity, class, l.classConfig(class))
}

// CheckWith applies the algorithm with an explicit config, used for the
// stricter limits derived for suspicious clients. The shared class table
// is never mutated.
func (l *Limiter) CheckWith(identity, class string, cfg ClassConfig) core.Decision {
	now := l.now()
	key := identity + ":" + class

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.entries == nil {
		l.entries = make(map[string]*core.RateLimitState)
	}

	if l.rng != nil && l.rng.Float64() < sweepProbability {
		l.sweepLocked(now)
	}

	entry := l.entries[key]

	if entry != nil && entry.BlockedUntil != nil {
		if now.Before(*entry.BlockedUntil) {
			return core.Decision{Allowed: false, Remaining: 0, ResetTime: *entry.BlockedUntil}
		}
		// Block expired: start a fresh window.
		entry = nil
	}

	if entry == nil || now.Sub(entry.WindowStart) >= cfg.Window {
		entry = &core.RateLimitState{WindowStart: now}
		l.entries[key] = entry
	}

	entry.Count++
	if entry.Count > cfg.MaxRequests {
		blocked := now.Add(cfg.Block)
		entry.BlockedUntil = &blocked
		return core.Decision{Allowed: false, Remaining: 0, ResetTime: blocked}
	}

	return core.Decision{
		Allowed:   true,
		Remaining: cfg.MaxRequests - entry.Count,
		ResetTime: entry.WindowStart.Add(cfg.Window),
	}
}

// Policy returns the fail policy configured for a class.
func (l *Limiter) Policy(class string) core.FailPolicy {
	return l.classConfig(class).OnError
}

// Sweep removes entries whose window and block have both expired.
func (l *Limiter) Sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)
}

// StartSweeper runs periodic sweeps until ctx is cancelled.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// EntrySnapshot is a point-in-time copy of one limiter entry.
type EntrySnapshot struct {
	Key          string     `json:"key"`
	Count        int        `json:"count"`
	WindowStart  time.Time  `json:"window_start"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// Snapshot copies the current limiter state for the ops endpoint.
func (l *Limiter) Snapshot() []EntrySnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]EntrySnapshot, 0, len(l.entries))
	for key, entry := range l.entries {
		snap := EntrySnapshot{Key: key, Count: entry.Count, WindowStart: entry.WindowStart}
		if entry.BlockedUntil != nil {
			until := *entry.BlockedUntil
			snap.BlockedUntil = &until
		}
		out = append(out, snap)
	}
	return out
}

func (l *Limiter) sweepLocked(now time.Time) {
	for key, entry := range l.entries {
		cfg := l.classConfig(classFromKey(key))
		windowExpired := now.Sub(entry.WindowStart) >= cfg.Window
		blockExpired := entry.BlockedUntil == nil || now.After(*entry.BlockedUntil)
		if windowExpired && blockExpired {
			delete(l.entries, key)
		}
	}
}

func (l *Limiter) classConfig(class string) ClassConfig {
	classes := l.Classes
	if classes == nil {
		classes = DefaultClasses
	}
	if cfg, ok := classes[class]; ok {
		return cfg
	}
	return ClassConfig{Window: time.Minute, MaxRequests: 30, Block: 5 * time.Minute, OnError: core.FailOpen}
}

func (l *Limiter) now() time.Time {
	if l != nil && l.Clock != nil {
		return l.Clock()
	}
	return time.Now().UTC()
}

func classFromKey(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[i+1:]
		}
	}
	return key
}
