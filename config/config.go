package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Fetch   FetchConfig
	Extract ExtractConfig
	Image   ImageConfig
	Batch   BatchConfig
	Cache   CacheConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Enabled launches a browser at start-up. When false the browser
	// strategy is never part of the chain.
	Enabled bool // default: true

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the number of concurrent render slots (tabs).
	MaxPages int // default: 4

	// DefaultProxy is the proxy URL used for rendering.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// SingleProcess runs the renderer in Chrome's single-process mode
	// for constrained-memory deployments.
	SingleProcess bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// NavigationTimeout is the max time for page.Navigate alone.
	NavigationTimeout time.Duration // default: 15s

	// BlockedResourceTypes lists resource types to block while rendering.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds drops requests to known ad and tracking domains.
	BlockAds bool // default: true
}

// FetchConfig controls the single per-request HTML fetch.
type FetchConfig struct {
	// Timeout bounds the fetch independently of the strategy timeouts.
	Timeout time.Duration // default: 10s

	// AcceptLanguage biases servers toward the target locale.
	AcceptLanguage string // default: "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"

	// MaxBodyBytes caps the response body.
	MaxBodyBytes int64 // default: 10 MiB

	// DefaultProxy is the proxy URL used for fetching.
	DefaultProxy string

	// ForceCharset overrides charset detection when set (e.g. "euc-kr").
	ForceCharset string
}

// ExtractConfig controls the strategy chain.
type ExtractConfig struct {
	// DefaultTimeout is the overall budget when the caller gives none.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout caps the caller-supplied budget.
	MaxTimeout time.Duration // default: 120s

	// FastStrategyTimeout applies to trafilatura, goose and pattern.
	FastStrategyTimeout time.Duration // default: 8s

	// BrowserStrategyTimeout applies to the browser strategy.
	BrowserStrategyTimeout time.Duration // default: 25s

	// BrowserByDefault includes the browser strategy when the caller
	// neither forces nor forbids it.
	BrowserByDefault bool // default: true

	// MinTextChars is the minimum visible length of a valid body.
	MinTextChars int // default: 200

	// SitesFile is an optional YAML file with extra site profiles.
	SitesFile string
}

// ImageConfig controls image filtering thresholds.
type ImageConfig struct {
	// MinSide is the minimum declared side for meta and content images.
	MinSide int // default: 100

	// MinSideGeneric is the minimum declared side for other images.
	MinSideGeneric int // default: 300

	// MaxAspect is the banner ratio at which an image is dropped.
	MaxAspect float64 // default: 5
}

// BatchConfig controls POST /api/v1/batch/extract.
type BatchConfig struct {
	// MaxURLs is the largest accepted batch.
	MaxURLs int // default: 50

	// DefaultConcurrency applies when the caller gives none.
	DefaultConcurrency int // default: 5
}

// CacheConfig controls the article response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached articles.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("CLIPPER_HOST", "0.0.0.0"),
			Port: envIntOr("CLIPPER_PORT", 8080),
			Mode: envOr("CLIPPER_MODE", "release"),
		},
		Browser: BrowserConfig{
			Enabled:           envBoolOr("CLIPPER_BROWSER_ENABLED", true),
			Headless:          envBoolOr("CLIPPER_HEADLESS", true),
			MaxPages:          envIntOr("CLIPPER_MAX_PAGES", 4),
			DefaultProxy:      os.Getenv("CLIPPER_PROXY"),
			NoSandbox:         envBoolOr("CLIPPER_NO_SANDBOX", true),
			SingleProcess:     envBoolOr("CLIPPER_SINGLE_PROCESS", true),
			BrowserBin:        os.Getenv("CLIPPER_BROWSER_BIN"),
			NavigationTimeout: envDurationOr("CLIPPER_NAV_TIMEOUT", 15*time.Second),
			BlockedResourceTypes: envSliceOr("CLIPPER_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
			BlockAds: envBoolOr("CLIPPER_BLOCK_ADS", true),
		},
		Fetch: FetchConfig{
			Timeout:        envDurationOr("CLIPPER_FETCH_TIMEOUT", 10*time.Second),
			AcceptLanguage: envOr("CLIPPER_ACCEPT_LANGUAGE", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"),
			MaxBodyBytes:   int64(envIntOr("CLIPPER_MAX_BODY_BYTES", 10*1024*1024)),
			DefaultProxy:   os.Getenv("CLIPPER_PROXY"),
			ForceCharset:   os.Getenv("CLIPPER_FORCE_CHARSET"),
		},
		Extract: ExtractConfig{
			DefaultTimeout:         envDurationOr("CLIPPER_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:             envDurationOr("CLIPPER_MAX_TIMEOUT", 120*time.Second),
			FastStrategyTimeout:    envDurationOr("CLIPPER_FAST_STRATEGY_TIMEOUT", 8*time.Second),
			BrowserStrategyTimeout: envDurationOr("CLIPPER_BROWSER_STRATEGY_TIMEOUT", 25*time.Second),
			BrowserByDefault:       envBoolOr("CLIPPER_BROWSER_BY_DEFAULT", true),
			MinTextChars:           envIntOr("CLIPPER_MIN_TEXT_CHARS", 200),
			SitesFile:              os.Getenv("CLIPPER_SITES_FILE"),
		},
		Image: ImageConfig{
			MinSide:        envIntOr("CLIPPER_IMAGE_MIN_SIDE", 100),
			MinSideGeneric: envIntOr("CLIPPER_IMAGE_MIN_SIDE_GENERIC", 300),
			MaxAspect:      envFloatOr("CLIPPER_IMAGE_MAX_ASPECT", 5.0),
		},
		Batch: BatchConfig{
			MaxURLs:            envIntOr("CLIPPER_BATCH_MAX_URLS", 50),
			DefaultConcurrency: envIntOr("CLIPPER_BATCH_CONCURRENCY", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("CLIPPER_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("CLIPPER_LOG_LEVEL", "info"),
			Format: envOr("CLIPPER_LOG_FORMAT", "json"),
		},
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
