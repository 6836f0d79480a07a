// Package output renders limiter diagnostics for the CLI.
package output

import (
	"fmt"
	"strings"
	"time"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// RateLimitReport mirrors the stats endpoint payload.
type RateLimitReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Classes     map[string]ClassPolicy `json:"classes"`
	Entries     []Entry                `json:"entries"`
}

// ClassPolicy is the configured limit for one endpoint class.
type ClassPolicy struct {
	Window      string `json:"window"`
	MaxRequests int    `json:"max_requests"`
	Block       string `json:"block"`
	OnError     string `json:"on_error"`
}

// Entry is one live limiter window.
type Entry struct {
	Key          string     `json:"key"`
	Count        int        `json:"count"`
	WindowStart  time.Time  `json:"window_start"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// Formatter renders rate limit reports.
type Formatter interface {
	FormatReport(report *RateLimitReport) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func blockedLabel(entry Entry) string {
	if entry.BlockedUntil == nil {
		return "-"
	}
	return entry.BlockedUntil.UTC().Format(time.RFC3339)
}
