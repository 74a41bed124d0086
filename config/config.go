package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Browser   BrowserConfig   `yaml:"browser"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Limits    LimitsConfig    `yaml:"limits"`
	LLM       LLMConfig       `yaml:"llm"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
	Webhook   WebhookConfig   `yaml:"webhook"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 8080
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"

	// MaxConcurrentRuns caps simultaneous summarize requests; extra
	// requests are rejected with 429.
	MaxConcurrentRuns int `yaml:"max_concurrent_runs"` // default: 10
}

// BrowserConfig controls the page source.
type BrowserConfig struct {
	// Mode selects the page source: "rod" (headless Chromium) or
	// "static" (plain HTTP fetch, no JavaScript).
	Mode string `yaml:"mode"` // default: "rod"

	// Headless controls whether the browser runs headless.
	Headless bool `yaml:"headless"` // default: true

	// MaxPages is the number of pages that may be open at once.
	MaxPages int `yaml:"max_pages"` // default: 10

	// DefaultProxy is the proxy URL for all requests.
	DefaultProxy string `yaml:"proxy"`

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool `yaml:"no_sandbox"` // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string `yaml:"browser_bin"`

	// Stealth masks navigator.webdriver and similar automation tells.
	Stealth bool `yaml:"stealth"` // default: false

	// IgnoreCertErrors accepts invalid TLS certificates on target sites.
	IgnoreCertErrors bool `yaml:"ignore_cert_errors"` // default: true
}

// ScraperConfig controls navigation and extraction.
type ScraperConfig struct {
	// NavigationTimeout bounds a single navigation attempt.
	NavigationTimeout time.Duration `yaml:"navigation_timeout"` // default: 60s

	// NavigationAttempts is the total number of navigation attempts.
	NavigationAttempts int `yaml:"navigation_attempts"` // default: 3

	// RetryDelay is the pause between navigation attempts.
	RetryDelay time.Duration `yaml:"retry_delay"` // default: 0 (immediate)

	// IdleWindow is how long the network must stay quiet before the page
	// counts as loaded.
	IdleWindow time.Duration `yaml:"idle_window"` // default: 500ms

	// RunTimeout bounds a summarize run from the end of navigation,
	// extraction and the LLM call included. Navigation is bounded by
	// NavigationAttempts and NavigationTimeout. Zero disables the deadline.
	RunTimeout time.Duration `yaml:"run_timeout"` // default: 120s

	// ConcurrentExtraction issues the independent DOM queries in parallel.
	ConcurrentExtraction bool `yaml:"concurrent_extraction"` // default: false

	// BlockedResourceTypes lists resource types to block. Blocking
	// "Image" zeroes natural image sizes and empties the image ranking.
	// Any blocking swaps network-idle readiness for DOM-stable readiness.
	// default: [] (nothing blocked)
	BlockedResourceTypes []string `yaml:"blocked_resource_types"`

	// BlockAds drops requests to well-known ad and tracking domains.
	BlockAds bool `yaml:"block_ads"` // default: false
}

// LimitsConfig caps every extracted signal sequence.
type LimitsConfig struct {
	Headings   int `yaml:"headings"`   // default: 50
	Paragraphs int `yaml:"paragraphs"` // default: 50
	Lists      int `yaml:"lists"`      // default: 50
	RawText    int `yaml:"raw_text"`   // default: 50
	Links      int `yaml:"links"`      // default: 15
	Images     int `yaml:"images"`     // default: 10
}

// LLMConfig selects and configures the summarization backend.
type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible API) or "gemini".
	Provider string `yaml:"provider"` // default: "openai"

	APIKey string `yaml:"api_key"`

	// Model defaults to "gpt-4o-mini" for openai and "gemini-2.5-flash"
	// for gemini.
	Model string `yaml:"model"`

	// BaseURL overrides the API endpoint (openai only).
	BaseURL string `yaml:"base_url"` // default: "https://api.openai.com/v1"

	Temperature float64 `yaml:"temperature"` // default: 0
}

// StoreConfig controls summary persistence.
type StoreConfig struct {
	// Path is the SQLite database file; ":memory:" keeps everything in RAM.
	Path string `yaml:"path"` // default: "webdigest.db"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool `yaml:"enabled"` // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string `yaml:"api_keys"`
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 `yaml:"requests_per_second"` // default: 5

	// Burst is the maximum burst size per API key.
	Burst int `yaml:"burst"` // default: 10
}

// CacheConfig controls the summarize response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int `yaml:"max_entries"` // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// WebhookConfig controls the summary.created notification.
type WebhookConfig struct {
	// URL receives a POST after every persisted summary. Empty disables it.
	URL string `yaml:"url"`

	// Secret signs the payload with HMAC-SHA256 when set.
	Secret string `yaml:"secret"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			Mode:              "release",
			MaxConcurrentRuns: 10,
		},
		Browser: BrowserConfig{
			Mode:             "rod",
			Headless:         true,
			MaxPages:         10,
			IgnoreCertErrors: true,
		},
		Scraper: ScraperConfig{
			NavigationTimeout:  60 * time.Second,
			NavigationAttempts: 3,
			IdleWindow:         500 * time.Millisecond,
			RunTimeout:         120 * time.Second,
		},
		Limits: LimitsConfig{
			Headings:   50,
			Paragraphs: 50,
			Lists:      50,
			RawText:    50,
			Links:      15,
			Images:     10,
		},
		LLM: LLMConfig{
			Provider: "openai",
			BaseURL:  "https://api.openai.com/v1",
		},
		Store: StoreConfig{
			Path: "webdigest.db",
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5.0,
			Burst:             10,
		},
		Cache: CacheConfig{
			MaxEntries: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named
// by WEBDIGEST_CONFIG, and WEBDIGEST_* environment variables, in that order.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("WEBDIGEST_CONFIG"))
}

// LoadFrom is Load with an explicit YAML file. An empty path skips the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// loadFile overlays the YAML document at path onto c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envOr("WEBDIGEST_HOST", c.Server.Host)
	c.Server.Port = envIntOr("WEBDIGEST_PORT", c.Server.Port)
	c.Server.Mode = envOr("WEBDIGEST_MODE", c.Server.Mode)
	c.Server.MaxConcurrentRuns = envIntOr("WEBDIGEST_MAX_CONCURRENT_RUNS", c.Server.MaxConcurrentRuns)

	c.Browser.Mode = envOr("WEBDIGEST_BROWSER_MODE", c.Browser.Mode)
	c.Browser.Headless = envBoolOr("WEBDIGEST_HEADLESS", c.Browser.Headless)
	c.Browser.MaxPages = envIntOr("WEBDIGEST_MAX_PAGES", c.Browser.MaxPages)
	c.Browser.DefaultProxy = envOr("WEBDIGEST_PROXY", c.Browser.DefaultProxy)
	c.Browser.NoSandbox = envBoolOr("WEBDIGEST_NO_SANDBOX", c.Browser.NoSandbox)
	c.Browser.BrowserBin = envOr("WEBDIGEST_BROWSER_BIN", c.Browser.BrowserBin)
	c.Browser.Stealth = envBoolOr("WEBDIGEST_STEALTH", c.Browser.Stealth)
	c.Browser.IgnoreCertErrors = envBoolOr("WEBDIGEST_IGNORE_CERT_ERRORS", c.Browser.IgnoreCertErrors)

	c.Scraper.NavigationTimeout = envDurationOr("WEBDIGEST_NAV_TIMEOUT", c.Scraper.NavigationTimeout)
	c.Scraper.NavigationAttempts = envIntOr("WEBDIGEST_NAV_ATTEMPTS", c.Scraper.NavigationAttempts)
	c.Scraper.RetryDelay = envDurationOr("WEBDIGEST_NAV_RETRY_DELAY", c.Scraper.RetryDelay)
	c.Scraper.IdleWindow = envDurationOr("WEBDIGEST_IDLE_WINDOW", c.Scraper.IdleWindow)
	c.Scraper.RunTimeout = envDurationOr("WEBDIGEST_RUN_TIMEOUT", c.Scraper.RunTimeout)
	c.Scraper.ConcurrentExtraction = envBoolOr("WEBDIGEST_CONCURRENT_EXTRACTION", c.Scraper.ConcurrentExtraction)
	c.Scraper.BlockedResourceTypes = envSliceOr("WEBDIGEST_BLOCKED_RESOURCES", c.Scraper.BlockedResourceTypes)
	c.Scraper.BlockAds = envBoolOr("WEBDIGEST_BLOCK_ADS", c.Scraper.BlockAds)

	c.Limits.Headings = envIntOr("WEBDIGEST_LIMIT_HEADINGS", c.Limits.Headings)
	c.Limits.Paragraphs = envIntOr("WEBDIGEST_LIMIT_PARAGRAPHS", c.Limits.Paragraphs)
	c.Limits.Lists = envIntOr("WEBDIGEST_LIMIT_LISTS", c.Limits.Lists)
	c.Limits.RawText = envIntOr("WEBDIGEST_LIMIT_RAW_TEXT", c.Limits.RawText)
	c.Limits.Links = envIntOr("WEBDIGEST_LIMIT_LINKS", c.Limits.Links)
	c.Limits.Images = envIntOr("WEBDIGEST_LIMIT_IMAGES", c.Limits.Images)

	c.LLM.Provider = envOr("WEBDIGEST_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.APIKey = envOr("WEBDIGEST_LLM_API_KEY", c.LLM.APIKey)
	c.LLM.Model = envOr("WEBDIGEST_LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = envOr("WEBDIGEST_LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = envFloatOr("WEBDIGEST_LLM_TEMPERATURE", c.LLM.Temperature)

	c.Store.Path = envOr("WEBDIGEST_DB_PATH", c.Store.Path)

	c.Auth.Enabled = envBoolOr("WEBDIGEST_AUTH_ENABLED", c.Auth.Enabled)
	c.Auth.APIKeys = envSliceOr("WEBDIGEST_API_KEYS", c.Auth.APIKeys)

	c.RateLimit.RequestsPerSecond = envFloatOr("WEBDIGEST_RATE_RPS", c.RateLimit.RequestsPerSecond)
	c.RateLimit.Burst = envIntOr("WEBDIGEST_RATE_BURST", c.RateLimit.Burst)

	c.Cache.MaxEntries = envIntOr("WEBDIGEST_CACHE_MAX_ENTRIES", c.Cache.MaxEntries)

	c.Log.Level = envOr("WEBDIGEST_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("WEBDIGEST_LOG_FORMAT", c.Log.Format)

	c.Webhook.URL = envOr("WEBDIGEST_WEBHOOK_URL", c.Webhook.URL)
	c.Webhook.Secret = envOr("WEBDIGEST_WEBHOOK_SECRET", c.Webhook.Secret)
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	d := Default()

	if c.Browser.MaxPages < 1 {
		c.Browser.MaxPages = d.Browser.MaxPages
	}
	if c.Server.MaxConcurrentRuns < 1 {
		c.Server.MaxConcurrentRuns = d.Server.MaxConcurrentRuns
	}
	if c.Scraper.NavigationAttempts < 1 {
		c.Scraper.NavigationAttempts = d.Scraper.NavigationAttempts
	}
	if c.Scraper.NavigationTimeout <= 0 {
		c.Scraper.NavigationTimeout = d.Scraper.NavigationTimeout
	}
	if c.Scraper.IdleWindow <= 0 {
		c.Scraper.IdleWindow = d.Scraper.IdleWindow
	}
	c.Limits = c.Limits.WithDefaults()

	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.Model = "gemini-2.5-flash"
		default:
			c.LLM.Model = "gpt-4o-mini"
		}
	}
}

// WithDefaults returns l with every non-positive limit replaced by its default.
func (l LimitsConfig) WithDefaults() LimitsConfig {
	d := Default().Limits
	pick := func(v, fallback int) int {
		if v < 1 {
			return fallback
		}
		return v
	}
	return LimitsConfig{
		Headings:   pick(l.Headings, d.Headings),
		Paragraphs: pick(l.Paragraphs, d.Paragraphs),
		Lists:      pick(l.Lists, d.Lists),
		RawText:    pick(l.RawText, d.RawText),
		Links:      pick(l.Links, d.Links),
		Images:     pick(l.Images, d.Images),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
