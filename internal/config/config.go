package config

import "time"

// Config is the complete application configuration. Values come from
// viper: defaults, an optional YAML file, then NOTIVA_* environment
// variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	WordPress WordPressConfig `mapstructure:"wordpress"`
	Search    SearchConfig    `mapstructure:"search"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Captcha   CaptchaConfig   `mapstructure:"captcha"`
	Mail      MailConfig      `mapstructure:"mail"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Debug     DebugConfig     `mapstructure:"debug"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// WordPressConfig points at the CMS REST API and the public site the
// CMS URLs are rewritten to.
type WordPressConfig struct {
	APIURL    string        `mapstructure:"api_url"`
	PublicURL string        `mapstructure:"public_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// SearchConfig tunes the search engine.
type SearchConfig struct {
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	CacheSize      int           `mapstructure:"cache_size"`
	PopularitySize int           `mapstructure:"popularity_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig carries per-class limiter overrides. Classes left out
// keep their built-in values.
type RateLimitConfig struct {
	SweepInterval time.Duration                   `mapstructure:"sweep_interval"`
	Classes       map[string]RateLimitClassConfig `mapstructure:"classes"`
}

// RateLimitClassConfig overrides one limiter class.
type RateLimitClassConfig struct {
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
	Block       time.Duration `mapstructure:"block"`

	// OnError is "open" or "closed".
	OnError string `mapstructure:"on_error"`
}

// CaptchaConfig configures subscription captcha verification. An empty
// secret disables verification.
type CaptchaConfig struct {
	Secret    string `mapstructure:"secret"`
	VerifyURL string `mapstructure:"verify_url"`
}

// MailConfig configures the transactional mail API.
type MailConfig struct {
	APIURL string `mapstructure:"api_url"`
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`

	// Format selects the encoder: "json" or "console"
	Format string `mapstructure:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DebugConfig gates diagnostic surfaces.
type DebugConfig struct {
	// Enabled opens the rate-limit stats endpoint without a token
	Enabled bool `mapstructure:"enabled"`

	// AdminToken grants stats access in production via the
	// X-Admin-Token header
	AdminToken string `mapstructure:"admin_token"`
}
