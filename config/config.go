package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// URLConfig holds the parameters substituted into the marketplace URL template
type URLConfig struct {
	Bedrooms   int    `yaml:"bedrooms"`
	Department string `yaml:"department"`
	MinPrice   int    `yaml:"min_price"`
	MaxPrice   int    `yaml:"max_price"`
	Last24h    bool   `yaml:"last_24h"`
}

// DedupConfig controls cross-run duplicate filtering
type DedupConfig struct {
	Enabled     bool   `yaml:"enabled"`
	HistoryFile string `yaml:"history_file"`
}

// FeesConfig controls maintenance-fee enrichment from detail pages
type FeesConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config represents the application configuration
type Config struct {
	// Neighborhoods maps a display name to the marketplace's internal slug
	Neighborhoods map[string]string `yaml:"neighborhoods"`

	// ExcludeWords rejects any listing whose title contains one of them
	ExcludeWords []string `yaml:"exclude_words"`

	URL             URLConfig   `yaml:"url"`
	MaxPages        int         `yaml:"max_pages"`
	Dedup           DedupConfig `yaml:"dedup"`
	MaintenanceFees FeesConfig  `yaml:"maintenance_fees"`

	// Ambient settings, from environment variables
	MemcacheAddr         string `yaml:"-"`
	RedisAddr            string `yaml:"-"`
	RedisDB              int    `yaml:"-"`
	RedisStream          string `yaml:"-"`
	RedisStreamMaxLength int    `yaml:"-"`
}

// Load reads the search configuration document and applies environment
// overrides for the ambient services.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	cfg.loadEnv()

	return cfg, nil
}

// defaults returns a Config pre-filled with the values used when the
// document omits optional sections.
func defaults() *Config {
	return &Config{
		MaxPages: 3,
		Dedup: DedupConfig{
			Enabled:     true,
			HistoryFile: "visited_listings.txt",
		},
		MaintenanceFees: FeesConfig{Enabled: true},
	}
}

func (c *Config) loadEnv() {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "1000"))

	c.MemcacheAddr = getEnv("MEMCACHE_ADDR", "")
	c.RedisAddr = getEnv("REDIS_ADDR", "")
	c.RedisDB = redisDB
	c.RedisStream = getEnv("REDIS_STREAM", "listings")
	c.RedisStreamMaxLength = streamMaxLen
}

// Validate checks that the required sections are present. A failure here is
// fatal: the run must not start without search criteria.
func (c *Config) Validate() error {
	if len(c.Neighborhoods) == 0 {
		return fmt.Errorf("no neighborhoods configured")
	}
	if len(c.ExcludeWords) == 0 {
		return fmt.Errorf("no exclusion words configured")
	}
	if c.URL.Department == "" {
		return fmt.Errorf("url.department is required")
	}
	if c.URL.MaxPrice <= 0 {
		return fmt.Errorf("url.max_price must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max_pages must be positive")
	}
	return nil
}

// NeighborhoodKeys returns the configured neighborhood names in a stable
// order so runs process them deterministically.
func (c *Config) NeighborhoodKeys() []string {
	keys := make([]string, 0, len(c.Neighborhoods))
	for k := range c.Neighborhoods {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
