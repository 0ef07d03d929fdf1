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

	"github.com/kailas-cloud/homedex/internal/domain/similarity"
)

// Pipeline kinds.
const (
	PipelineLinear = "linear"
	PipelineRemote = "remote"
	PipelineNone   = "none"
)

// Config holds the homedex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Recommend RecommendConfig `yaml:"recommend"`
	Estimate  EstimateConfig  `yaml:"estimate"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // debug, info, warn, error (default: determined by env)
	Encoding string `yaml:"encoding"` // json, console (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ArtifactsConfig locates the precomputed artifact bundle.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// RecommendConfig holds similarity search settings.
type RecommendConfig struct {
	Weights     *similarity.Weights `yaml:"weights"` // nil = defaults
	DefaultTopN int                 `yaml:"default_top_n"`
}

// EstimateConfig holds price estimator settings.
type EstimateConfig struct {
	Band     *float64     `yaml:"band"`     // nil = 0.22
	Pipeline string       `yaml:"pipeline"` // linear, remote, none (default: linear)
	Linear   LinearConfig `yaml:"linear"`
	Remote   RemoteConfig `yaml:"remote"`
}

// LinearConfig locates an exported linear model.
type LinearConfig struct {
	ModelPath string `yaml:"model_path"`
}

// RemoteConfig holds inference server settings.
type RemoteConfig struct {
	BaseURL          string `yaml:"base_url"`
	TimeoutMs        int    `yaml:"timeout_ms"`
	FailureThreshold uint32 `yaml:"failure_threshold"`
	OpenTimeoutSec   int    `yaml:"open_timeout_sec"`
}

// CacheConfig holds recommendation cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.Artifacts.Dir == "" {
		c.Artifacts.Dir = "artifacts"
	}
	if c.Recommend.Weights == nil {
		w := similarity.DefaultWeights()
		c.Recommend.Weights = &w
	}
	if c.Recommend.DefaultTopN <= 0 {
		c.Recommend.DefaultTopN = 5
	}
	if c.Estimate.Band == nil {
		band := 0.22
		c.Estimate.Band = &band
	}
	if c.Estimate.Pipeline == "" {
		c.Estimate.Pipeline = PipelineLinear
	}
	if c.Estimate.Linear.ModelPath == "" {
		c.Estimate.Linear.ModelPath = filepath.Join(c.Artifacts.Dir, "pipeline.yaml")
	}
	if c.Estimate.Remote.TimeoutMs <= 0 {
		c.Estimate.Remote.TimeoutMs = 2000
	}
	if c.Estimate.Remote.FailureThreshold == 0 {
		c.Estimate.Remote.FailureThreshold = 5
	}
	if c.Estimate.Remote.OpenTimeoutSec <= 0 {
		c.Estimate.Remote.OpenTimeoutSec = 30
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "valkey"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
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
	if c.Recommend.Weights != nil {
		if err := c.Recommend.Weights.Validate(); err != nil {
			return fmt.Errorf("recommend.weights: %w", err)
		}
	}
	if b := c.Estimate.Band; b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0) || *b < 0) {
		return fmt.Errorf("estimate.band must be a non-negative number, got %g", *b)
	}
	switch c.Estimate.Pipeline {
	case PipelineLinear, PipelineNone:
		// ok
	case PipelineRemote:
		if c.Estimate.Remote.BaseURL == "" {
			return fmt.Errorf("estimate.remote.base_url is required for the remote pipeline")
		}
	default:
		return fmt.Errorf(
			"estimate.pipeline must be %q, %q or %q, got %q",
			PipelineLinear, PipelineRemote, PipelineNone, c.Estimate.Pipeline,
		)
	}
	if c.Cache.Enabled {
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required when the cache is enabled")
		}
		switch c.Cache.Driver {
		case "valkey", "redis":
			// ok
		default:
			return fmt.Errorf("cache.driver must be \"valkey\" or \"redis\", got %q", c.Cache.Driver)
		}
	}
	return nil
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
