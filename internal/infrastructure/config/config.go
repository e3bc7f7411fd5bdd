// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	tolerance := cfg.Matching.PerfectTolerance
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/ledger-recon/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Matching      MatchingConfig      `yaml:"matching"`
	Lexicon       LexiconConfig       `yaml:"lexicon"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MatchingConfig holds tier thresholds. Zero values take the matcher defaults.
type MatchingConfig struct {
	PerfectTolerance     float64 `yaml:"perfect_tolerance"`
	FuzzyAmountTolerance float64 `yaml:"fuzzy_amount_tolerance"`
	FuzzyMinSimilarity   float64 `yaml:"fuzzy_min_similarity"`
	DateMinSimilarity    float64 `yaml:"date_min_similarity"`
}

// LexiconConfig points at an optional YAML file of locale tables
type LexiconConfig struct {
	Path string `yaml:"path"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default values shared by the YAML and env loaders
const (
	DefaultDatabasePath = "recon.db"
	DefaultPort         = 8080
)

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECON_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("RECON_DB_PATH", DefaultDatabasePath),
		},
		API: APIConfig{
			Port: getEnvInt("RECON_PORT", DefaultPort),
		},
		Matching: MatchingConfig{
			PerfectTolerance:     getEnvFloat("RECON_PERFECT_TOLERANCE", 0),
			FuzzyAmountTolerance: getEnvFloat("RECON_FUZZY_AMOUNT_TOLERANCE", 0),
			FuzzyMinSimilarity:   getEnvFloat("RECON_FUZZY_MIN_SIMILARITY", 0),
			DateMinSimilarity:    getEnvFloat("RECON_DATE_MIN_SIMILARITY", 0),
		},
		Lexicon: LexiconConfig{
			Path: os.Getenv("RECON_LEXICON"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// MatcherConfig returns the matcher thresholds with defaults filled in
func (c *Config) MatcherConfig() matcher.Config {
	cfg := matcher.DefaultConfig()
	if c.Matching.PerfectTolerance > 0 {
		cfg.PerfectTolerance = c.Matching.PerfectTolerance
	}
	if c.Matching.FuzzyAmountTolerance > 0 {
		cfg.FuzzyAmountTolerance = c.Matching.FuzzyAmountTolerance
	}
	if c.Matching.FuzzyMinSimilarity > 0 {
		cfg.FuzzyMinSimilarity = c.Matching.FuzzyMinSimilarity
	}
	if c.Matching.DateMinSimilarity > 0 {
		cfg.DateMinSimilarity = c.Matching.DateMinSimilarity
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = DefaultDatabasePath
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultPort
	}
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
