package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: PROFILEGEN_[SECTION]_[KEY] (e.g., PROFILEGEN_SYNC_QUOTA).
func ApplyEnvOverrides(cfg *Config) {
	// Corpus
	setEnvString(&cfg.Corpus.Repo, "PROFILEGEN_CORPUS_REPO")
	setEnvString(&cfg.Corpus.Branch, "PROFILEGEN_CORPUS_BRANCH")
	setEnvString(&cfg.Corpus.PathPrefix, "PROFILEGEN_CORPUS_PATH_PREFIX")
	setEnvString(&cfg.Corpus.PathSuffix, "PROFILEGEN_CORPUS_PATH_SUFFIX")
	setEnvString(&cfg.Corpus.TokenEnv, "PROFILEGEN_CORPUS_TOKEN_ENV")
	setEnvDuration(&cfg.Corpus.ListTimeout, "PROFILEGEN_CORPUS_LIST_TIMEOUT")
	setEnvDuration(&cfg.Corpus.FetchTimeout, "PROFILEGEN_CORPUS_FETCH_TIMEOUT")
	setEnvFloat64(&cfg.Corpus.RateLimit, "PROFILEGEN_CORPUS_RATE_LIMIT")
	setEnvInt(&cfg.Corpus.RateBurst, "PROFILEGEN_CORPUS_RATE_BURST")

	// Sync
	setEnvInt(&cfg.Sync.Quota, "PROFILEGEN_SYNC_QUOTA")
	setEnvDuration(&cfg.Sync.Interval, "PROFILEGEN_SYNC_INTERVAL")

	// Cache
	setEnvString(&cfg.Cache.Path, "PROFILEGEN_CACHE_PATH")
	setEnvDuration(&cfg.Cache.BusyTimeout, "PROFILEGEN_CACHE_BUSY_TIMEOUT")

	// Selector
	setEnvString(&cfg.Selector.FallbackPath, "PROFILEGEN_SELECTOR_FALLBACK_PATH")
	setEnvBool(&cfg.Selector.Assisted.Enabled, "PROFILEGEN_SELECTOR_ASSISTED_ENABLED")
	setEnvString(&cfg.Selector.Assisted.Model, "PROFILEGEN_SELECTOR_ASSISTED_MODEL")
	setEnvString(&cfg.Selector.Assisted.APIKeyEnv, "PROFILEGEN_SELECTOR_ASSISTED_API_KEY_ENV")

	// Inbox
	setEnvString(&cfg.Inbox.Dir, "PROFILEGEN_INBOX_DIR")
	setEnvString(&cfg.Inbox.Pattern, "PROFILEGEN_INBOX_PATTERN")
	setEnvString(&cfg.Inbox.OutputDir, "PROFILEGEN_INBOX_OUTPUT_DIR")
	setEnvDuration(&cfg.Inbox.Debounce, "PROFILEGEN_INBOX_DEBOUNCE")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "PROFILEGEN_OBSERVABILITY_ENABLED")
	setEnvInt(&cfg.Observability.Port, "PROFILEGEN_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "PROFILEGEN_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "PROFILEGEN_OBSERVABILITY_ENABLE_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
