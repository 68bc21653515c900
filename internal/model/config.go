package model

import "time"

// ServerConfig is the static configuration for one adapter. It is built
// once at startup and never mutated afterwards; all runtime state
// (counters, cache) lives in the adapter instance.
type ServerConfig struct {
	Name       string     `yaml:"name"`
	SourceType SourceType `yaml:"source_type"`

	APIKey         string `yaml:"api_key,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	RequiresAPIKey bool   `yaml:"requires_api_key"`

	// Zero means uncapped.
	RateLimitPerHour int `yaml:"rate_limit_per_hour"`
	RateLimitPerDay  int `yaml:"rate_limit_per_day"`

	CacheTTL time.Duration `yaml:"cache_ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config is the complete process configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Sources     SourcesConfig     `yaml:"sources" mapstructure:"sources"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// HTTPConfig contains outbound HTTP settings shared by all adapters
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBody    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy  string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ConcurrencyConfig controls fan-out behavior
type ConcurrencyConfig struct {
	ResearchWorkers int  `yaml:"research_workers" mapstructure:"research_workers"`
	Sequential      bool `yaml:"sequential" mapstructure:"sequential"`
}

// SourceSettings configures one concrete adapter
type SourceSettings struct {
	Enabled          bool     `yaml:"enabled" mapstructure:"enabled"`
	APIKey           string   `yaml:"api_key" mapstructure:"api_key"`
	BaseURL          string   `yaml:"base_url" mapstructure:"base_url"`
	RateLimitPerHour int      `yaml:"rate_limit_per_hour" mapstructure:"rate_limit_per_hour"`
	RateLimitPerDay  int      `yaml:"rate_limit_per_day" mapstructure:"rate_limit_per_day"`
	CacheTTLSeconds  int      `yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
	TimeoutSeconds   int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	FeedURLs         []string `yaml:"feed_urls,omitempty" mapstructure:"feed_urls"`
	PageURLs         []string `yaml:"page_urls,omitempty" mapstructure:"page_urls"`
}

// SourcesConfig holds the per-adapter settings
type SourcesConfig struct {
	CompanyRegistry SourceSettings `yaml:"company_registry" mapstructure:"company_registry"`
	News            SourceSettings `yaml:"news" mapstructure:"news"`
	WebScrape       SourceSettings `yaml:"web_scrape" mapstructure:"web_scrape"`
	Financial       SourceSettings `yaml:"financial" mapstructure:"financial"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	JSON    bool `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:   15 * time.Second,
			UserAgent: "KnowledgeWeb/0.1 (+https://github.com/ppiankov/knowledgeweb)",
			MaxBody:   2_000_000,
		},
		Concurrency: ConcurrencyConfig{
			ResearchWorkers: 4,
		},
		Sources: SourcesConfig{
			CompanyRegistry: SourceSettings{
				Enabled:          true,
				RateLimitPerHour: 100,
				RateLimitPerDay:  1000,
				CacheTTLSeconds:  3600,
				TimeoutSeconds:   15,
			},
			News: SourceSettings{
				Enabled:          true,
				RateLimitPerHour: 300,
				CacheTTLSeconds:  900,
				TimeoutSeconds:   15,
			},
			WebScrape: SourceSettings{
				Enabled:          true,
				RateLimitPerHour: 120,
				CacheTTLSeconds:  1800,
				TimeoutSeconds:   20,
			},
			Financial: SourceSettings{
				Enabled:          true,
				RateLimitPerHour: 60,
				RateLimitPerDay:  500,
				CacheTTLSeconds:  300,
				TimeoutSeconds:   10,
			},
		},
	}
}

// ServerConfig converts one source's settings into the immutable adapter config
func (s SourceSettings) ServerConfig(name string, sourceType SourceType, requiresKey bool) ServerConfig {
	return ServerConfig{
		Name:             name,
		SourceType:       sourceType,
		APIKey:           s.APIKey,
		BaseURL:          s.BaseURL,
		RequiresAPIKey:   requiresKey,
		RateLimitPerHour: s.RateLimitPerHour,
		RateLimitPerDay:  s.RateLimitPerDay,
		CacheTTL:         time.Duration(s.CacheTTLSeconds) * time.Second,
		Timeout:          time.Duration(s.TimeoutSeconds) * time.Second,
	}
}
