package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Corpus        Corpus        `toml:"corpus"`
	Sync          Sync          `toml:"sync"`
	Cache         Cache         `toml:"cache"`
	Selector      Selector      `toml:"selector"`
	Inbox         Inbox         `toml:"inbox"`
	Observability Observability `toml:"observability"`
}

// Corpus describes the remote reference-profile repository.
type Corpus struct {
	Repo         string        `toml:"repo"`
	Branch       string        `toml:"branch"`
	PathPrefix   string        `toml:"path_prefix"`
	PathSuffix   string        `toml:"path_suffix"`
	TokenEnv     string        `toml:"token_env"`
	ListTimeout  time.Duration `toml:"list_timeout"`
	FetchTimeout time.Duration `toml:"fetch_timeout"`
	RateLimit    float64       `toml:"rate_limit"` // requests per second
	RateBurst    int           `toml:"rate_burst"`
}

type Sync struct {
	Quota    int           `toml:"quota"`
	Interval time.Duration `toml:"interval"`
}

type Cache struct {
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Selector struct {
	FallbackPath   string   `toml:"fallback_path"`
	ExtraStopwords []string `toml:"extra_stopwords"`
	Assisted       Assisted `toml:"assisted"`
}

// Assisted configures the optional model-backed selection strategy.
type Assisted struct {
	Enabled   bool   `toml:"enabled"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
}

// Inbox configures the compiled-symbol drop directory watched in daemon mode.
type Inbox struct {
	Dir       string        `toml:"dir"`
	Pattern   string        `toml:"pattern"`
	OutputDir string        `toml:"output_dir"`
	Debounce  time.Duration `toml:"debounce"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a config usable without any file on disk.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Corpus.Repo) == "" {
		cfg.Corpus.Repo = "kentik/snmp-profiles"
	}
	if strings.TrimSpace(cfg.Corpus.Branch) == "" {
		cfg.Corpus.Branch = "main"
	}
	if strings.TrimSpace(cfg.Corpus.PathPrefix) == "" {
		cfg.Corpus.PathPrefix = "profiles/kentik_snmp/"
	}
	if strings.TrimSpace(cfg.Corpus.PathSuffix) == "" {
		cfg.Corpus.PathSuffix = ".yml"
	}
	if strings.TrimSpace(cfg.Corpus.TokenEnv) == "" {
		cfg.Corpus.TokenEnv = "GITHUB_TOKEN"
	}
	if cfg.Corpus.ListTimeout <= 0 {
		cfg.Corpus.ListTimeout = 10 * time.Second
	}
	if cfg.Corpus.FetchTimeout <= 0 {
		cfg.Corpus.FetchTimeout = 5 * time.Second
	}
	if cfg.Corpus.RateLimit <= 0 {
		cfg.Corpus.RateLimit = 5
	}
	if cfg.Corpus.RateBurst <= 0 {
		cfg.Corpus.RateBurst = 5
	}

	if cfg.Sync.Quota <= 0 {
		cfg.Sync.Quota = 20
	}
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = 15 * time.Minute
	}

	if strings.TrimSpace(cfg.Cache.Path) == "" {
		cfg.Cache.Path = "templates.db"
	}
	if cfg.Cache.BusyTimeout <= 0 {
		cfg.Cache.BusyTimeout = 2 * time.Second
	}

	if strings.TrimSpace(cfg.Selector.FallbackPath) == "" {
		cfg.Selector.FallbackPath = "profiles/kentik_snmp/_general/generic_device.yml"
	}
	if strings.TrimSpace(cfg.Selector.Assisted.Model) == "" {
		cfg.Selector.Assisted.Model = "gemini-2.0-flash"
	}
	if strings.TrimSpace(cfg.Selector.Assisted.APIKeyEnv) == "" {
		cfg.Selector.Assisted.APIKeyEnv = "GEMINI_API_KEY"
	}

	if strings.TrimSpace(cfg.Inbox.Dir) == "" {
		cfg.Inbox.Dir = "inbox"
	}
	if strings.TrimSpace(cfg.Inbox.Pattern) == "" {
		cfg.Inbox.Pattern = "*.json"
	}
	if strings.TrimSpace(cfg.Inbox.OutputDir) == "" {
		cfg.Inbox.OutputDir = "outputs"
	}
	if cfg.Inbox.Debounce == 0 {
		cfg.Inbox.Debounce = 500 * time.Millisecond
	}

	if cfg.Observability.Port == 0 {
		cfg.Observability.Port = 9464
	}
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d", cfg.Version)
	}
	if !strings.Contains(cfg.Corpus.Repo, "/") {
		return fmt.Errorf("corpus repo %q must be owner/name", cfg.Corpus.Repo)
	}
	if cfg.Sync.Quota <= 0 {
		return fmt.Errorf("sync quota must be positive, got %d", cfg.Sync.Quota)
	}
	if cfg.Sync.Interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", cfg.Sync.Interval)
	}
	if cfg.Observability.Port < 0 || cfg.Observability.Port > 65535 {
		return fmt.Errorf("observability port %d out of range", cfg.Observability.Port)
	}
	return nil
}
