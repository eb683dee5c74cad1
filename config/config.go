package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the search engine.
type Config struct {
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Suggest SuggestConfig `yaml:"suggest"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndexConfig holds indexing configuration.
type IndexConfig struct {
	DataDir       string `yaml:"data_dir"`
	BatchSize     int    `yaml:"batch_size"` // auto-commit after this many pending adds
	MaxTitle      int    `yaml:"max_title"`
	MaxAuthors    int    `yaml:"max_authors"`
	MaxCategories int    `yaml:"max_categories"`
	MaxAbstract   int    `yaml:"max_abstract"`
}

// SearchConfig holds retrieval configuration.
type SearchConfig struct {
	TopK            int     `yaml:"top_k"`
	Alpha           float64 `yaml:"alpha"` // semantic share of the hybrid blend
	ProximityWeight float64 `yaml:"proximity_weight"`
	CoverageWeight  float64 `yaml:"coverage_weight"`
	SeedDocs        int     `yaml:"seed_docs"` // pseudo-relevance seed pool for semantic mode
	CacheEnabled    bool    `yaml:"cache_enabled"`
	CacheEntries    int     `yaml:"cache_entries"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes"`
}

// SuggestConfig holds autocomplete configuration.
type SuggestConfig struct {
	Limit int `yaml:"limit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			DataDir:       "data",
			BatchSize:     10,
			MaxTitle:      500,
			MaxAuthors:    200,
			MaxCategories: 200,
			MaxAbstract:   1000,
		},
		Search: SearchConfig{
			TopK:            10,
			Alpha:           0.3,
			ProximityWeight: 0,
			CoverageWeight:  0,
			SeedDocs:        30,
			CacheEnabled:    true,
			CacheEntries:    256,
			CacheTTLMinutes: 15,
		},
		Suggest: SuggestConfig{
			Limit: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CacheTTL returns the query cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Search.CacheTTLMinutes) * time.Minute
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for scholar.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "scholar.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".scholar", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the path to the query cache database.
func CacheDBPath(dataDir string) string {
	return filepath.Join(dataDir, "query_cache.db")
}

// EnsureDataDir ensures the index data directory exists.
func EnsureDataDir(dataDir string) error {
	return os.MkdirAll(dataDir, 0755)
}
