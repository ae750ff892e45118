package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures everything needed to run the analysis service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Crawl     CrawlConfig     `yaml:"crawl"`
	Extract   ExtractConfig   `yaml:"extract"`
	Classify  ClassifyConfig  `yaml:"classify"`
	Prompt    PromptConfig    `yaml:"prompt"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Image     ImageConfig     `yaml:"image"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout"`
	AnalysisTimeout Duration `yaml:"analysis_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// CrawlConfig controls the frontier budget, pacing and fetch limits.
type CrawlConfig struct {
	MaxPages       int      `yaml:"max_pages"`
	MaxPagesLimit  int      `yaml:"max_pages_limit"`
	Delay          Duration `yaml:"delay"`
	RequestTimeout Duration `yaml:"request_timeout"`
	DialTimeout    Duration `yaml:"dial_timeout"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	UserAgent      string   `yaml:"user_agent"`
	AcceptLanguage string   `yaml:"accept_language"`
	RespectRobots  bool     `yaml:"respect_robots"`
	RobotsCacheTTL Duration `yaml:"robots_cache_ttl"`
}

// ExtractConfig tunes page extraction.
type ExtractConfig struct {
	BodyTextLimit int `yaml:"body_text_limit"`
}

// Thresholds are exclusive lower bounds for the high and medium buckets.
type Thresholds struct {
	High   int `yaml:"high"`
	Medium int `yaml:"medium"`
}

type ClassifyConfig struct {
	Industry    Thresholds `yaml:"industry"`
	ContentType Thresholds `yaml:"content_type"`
	TopicCount  int        `yaml:"topic_count"`
}

type PromptConfig struct {
	Locale string `yaml:"locale"`
}

// RateLimitConfig configures the sliding window applied per client.
type RateLimitConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Requests      int      `yaml:"requests"`
	Window        Duration `yaml:"window"`
	SweepInterval Duration `yaml:"sweep_interval"`
	// TrustForwardedFor keys clients by X-Forwarded-For; off unless a proxy
	// in front of the server sets the header.
	TrustForwardedFor bool `yaml:"trust_forwarded_for"`
}

// CacheConfig selects the key-value store used for analysis results.
type CacheConfig struct {
	Driver string   `yaml:"driver"`
	Path   string   `yaml:"path"`
	TTL    Duration `yaml:"ttl"`
}

// ImageConfig configures the optional image-generation backend.
type ImageConfig struct {
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	Size         string  `yaml:"size"`
	Quality      string  `yaml:"quality"`
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	CostPerImage float64 `yaml:"cost_per_image"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// Default returns a Config populated with the reference behaviour.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     DurationFrom(10 * time.Second),
			WriteTimeout:    DurationFrom(120 * time.Second),
			IdleTimeout:     DurationFrom(120 * time.Second),
			AnalysisTimeout: DurationFrom(90 * time.Second),
			ShutdownTimeout: DurationFrom(10 * time.Second),
		},
		Crawl: CrawlConfig{
			MaxPages:       10,
			MaxPagesLimit:  50,
			Delay:          DurationFrom(500 * time.Millisecond),
			RequestTimeout: DurationFrom(10 * time.Second),
			DialTimeout:    DurationFrom(5 * time.Second),
			MaxBodyBytes:   5 * 1024 * 1024,
			UserAgent:      "Mozilla/5.0 (compatible; SitePromptBot/1.0; +https://example.com/bot)",
			AcceptLanguage: "ja,en-US;q=0.8,en;q=0.6",
			RespectRobots:  false,
			RobotsCacheTTL: DurationFrom(time.Hour),
		},
		Extract: ExtractConfig{
			BodyTextLimit: 5000,
		},
		Classify: ClassifyConfig{
			Industry:    Thresholds{High: 10, Medium: 5},
			ContentType: Thresholds{High: 5, Medium: 2},
			TopicCount:  15,
		},
		Prompt: PromptConfig{
			Locale: "ja-JP",
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			Requests:      10,
			Window:        DurationFrom(time.Minute),
			SweepInterval: DurationFrom(5 * time.Minute),
		},
		Cache: CacheConfig{
			Driver: "memory",
			TTL:    DurationFrom(24 * time.Hour),
		},
		Image: ImageConfig{
			Model:        "dall-e-3",
			Size:         "1792x1024",
			Quality:      "standard",
			CostPerImage: 0.08,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads, normalises and validates configuration from a YAML file. An
// empty path yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		cfg := Default()
		cfg.applyEnv()
		cfg.normalise()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return LoadFromReader(fh)
}

// LoadFromReader decodes configuration from an arbitrary reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if c.Image.APIKey == "" {
		c.Image.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := strings.TrimSpace(os.Getenv("SITEPROMPT_ADDR")); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) normalise() {
	c.Crawl.UserAgent = strings.TrimSpace(c.Crawl.UserAgent)
	c.Crawl.AcceptLanguage = strings.TrimSpace(c.Crawl.AcceptLanguage)
	c.Prompt.Locale = strings.TrimSpace(c.Prompt.Locale)
	c.Cache.Driver = strings.ToLower(strings.TrimSpace(c.Cache.Driver))
	c.Cache.Path = strings.TrimSpace(c.Cache.Path)
	c.Image.Provider = strings.ToLower(strings.TrimSpace(c.Image.Provider))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Crawl.MaxPagesLimit < c.Crawl.MaxPages {
		c.Crawl.MaxPagesLimit = c.Crawl.MaxPages
	}
}

// Validate enforces the invariants the pipeline relies on.
func (c Config) Validate() error {
	if c.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl.max_pages must be > 0 (got %d)", c.Crawl.MaxPages)
	}
	if c.Crawl.Delay.Duration < 0 {
		return fmt.Errorf("crawl.delay must be >= 0 (got %s)", c.Crawl.Delay.Duration)
	}
	if c.Crawl.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("crawl.request_timeout must be > 0 (got %s)", c.Crawl.RequestTimeout.Duration)
	}
	if c.Crawl.MaxBodyBytes <= 0 {
		return fmt.Errorf("crawl.max_body_bytes must be > 0 (got %d)", c.Crawl.MaxBodyBytes)
	}
	if c.Crawl.UserAgent == "" {
		return errors.New("crawl.user_agent must be set")
	}
	if c.Extract.BodyTextLimit <= 0 {
		return fmt.Errorf("extract.body_text_limit must be > 0 (got %d)", c.Extract.BodyTextLimit)
	}
	for name, t := range map[string]Thresholds{
		"classify.industry":     c.Classify.Industry,
		"classify.content_type": c.Classify.ContentType,
	} {
		if t.Medium < 0 || t.High < t.Medium {
			return fmt.Errorf("%s thresholds must satisfy 0 <= medium <= high (got high=%d medium=%d)", name, t.High, t.Medium)
		}
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Requests <= 0 {
			return fmt.Errorf("rate_limit.requests must be > 0 (got %d)", c.RateLimit.Requests)
		}
		if c.RateLimit.Window.Duration <= 0 {
			return errors.New("rate_limit.window must be > 0")
		}
	}
	switch c.Cache.Driver {
	case "", "none", "memory":
	case "sqlite":
		if c.Cache.Path == "" {
			return errors.New("cache.path must be set when cache.driver is sqlite")
		}
	default:
		return fmt.Errorf("unsupported cache.driver %q", c.Cache.Driver)
	}
	switch c.Image.Provider {
	case "", "none", "openai":
	default:
		return fmt.Errorf("unsupported image.provider %q", c.Image.Provider)
	}
	return nil
}
