package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the recipedex server configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Index       IndexConfig       `yaml:"index"`
	Ranking     RankingConfig     `yaml:"ranking"`
	Ingredients IngredientsConfig `yaml:"ingredients"`
	Cache       CacheConfig       `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CorpusConfig locates the recipe data loaded at startup.
type CorpusConfig struct {
	Path                string `yaml:"path"` // pipeline JSONL/JSON or a snapshot
	IncludeInstructions bool   `yaml:"include_instructions"`
}

// AnalysisConfig selects the text analyzer.
type AnalysisConfig struct {
	Mode string `yaml:"mode"` // lemma (default), stem
}

// IndexConfig holds BM25 constants.
type IndexConfig struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// RankingConfig holds query defaults and result limits.
type RankingConfig struct {
	DefaultAlpha float64  `yaml:"default_alpha"`
	DefaultBeta  float64  `yaml:"default_beta"`
	DefaultTopK  int      `yaml:"default_top_k"`
	MaxTopK      int      `yaml:"max_top_k"`
	MinScore     *float64 `yaml:"min_score"`
}

// IngredientsConfig holds ingredient matching settings.
type IngredientsConfig struct {
	Aliases *bool `yaml:"aliases"` // default true
}

// CacheConfig holds the optional query result cache.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AliasesEnabled reports whether ingredient synonym matching is on.
func (c IngredientsConfig) AliasesEnabled() bool {
	return c.Aliases == nil || *c.Aliases
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expanding ${VAR} references first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	keys := c.Auth.APIKeys[:0]
	for _, k := range c.Auth.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	c.Auth.APIKeys = keys
	if c.Analysis.Mode == "" {
		c.Analysis.Mode = "lemma"
	}
	if c.Index.K1 == 0 {
		c.Index.K1 = 1.5
	}
	if c.Index.B == 0 {
		c.Index.B = 0.75
	}
	if c.Ranking.DefaultAlpha == 0 && c.Ranking.DefaultBeta == 0 {
		c.Ranking.DefaultAlpha = 0.7
		c.Ranking.DefaultBeta = 0.3
	}
	if c.Ranking.DefaultTopK <= 0 {
		c.Ranking.DefaultTopK = 10
	}
	if c.Ranking.MaxTopK <= 0 {
		c.Ranking.MaxTopK = 100
	}
	if c.Ranking.MinScore == nil {
		v := 1e-9
		c.Ranking.MinScore = &v
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Corpus.Path == "" {
		return fmt.Errorf("corpus.path is required")
	}
	switch c.Analysis.Mode {
	case "lemma", "stem":
	default:
		return fmt.Errorf("analysis.mode must be \"lemma\" or \"stem\", got %q", c.Analysis.Mode)
	}
	if c.Index.K1 < 0 {
		return fmt.Errorf("index.k1 must be non-negative, got %g", c.Index.K1)
	}
	if c.Index.B < 0 || c.Index.B > 1 {
		return fmt.Errorf("index.b must be in [0, 1], got %g", c.Index.B)
	}
	if !validWeight(c.Ranking.DefaultAlpha) || !validWeight(c.Ranking.DefaultBeta) {
		return fmt.Errorf("ranking weights must be finite and non-negative, got alpha=%g beta=%g",
			c.Ranking.DefaultAlpha, c.Ranking.DefaultBeta)
	}
	if c.Ranking.DefaultTopK > c.Ranking.MaxTopK {
		return fmt.Errorf("ranking.default_top_k (%d) exceeds ranking.max_top_k (%d)",
			c.Ranking.DefaultTopK, c.Ranking.MaxTopK)
	}
	if c.Ranking.MinScore != nil && (*c.Ranking.MinScore < 0 || math.IsNaN(*c.Ranking.MinScore)) {
		return fmt.Errorf("ranking.min_score must be non-negative, got %g", *c.Ranking.MinScore)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	return nil
}

func validWeight(w float64) bool {
	return w >= 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
