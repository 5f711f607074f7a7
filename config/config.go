// Package config provides configuration loading and management for the
// deal desk service. Precedence: defaults, then YAML file, then environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/dealdesk/proposal"
)

// DefaultConfigFile is the config file name looked up in the working
// directory when DEALDESK_CONFIG is not set.
const DefaultConfigFile = "dealdesk.yaml"

// Config represents the complete service configuration.
type Config struct {
	Server  ServerConfig           `yaml:"server"`
	Model   ModelConfig            `yaml:"model"`
	Pricing proposal.PricingConfig `yaml:"pricing"`
	NATS    NATSConfig             `yaml:"nats"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host"`
	// Port is the listen port.
	Port int `yaml:"port"`
	// AllowedOrigins is the explicit CORS allow-list. Wildcards are
	// rejected by Validate; an empty list disables cross-origin access.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// HotReload enables watching the config file for changes.
	HotReload bool `yaml:"hot_reload"`
	// MinCompanyNameLen is the minimum accepted company_name length.
	MinCompanyNameLen int `yaml:"min_company_name_len"`
}

// ModelConfig configures the external generative service.
type ModelConfig struct {
	// Provider selects the provider adapter ("openai", "anthropic", "ollama").
	Provider string `yaml:"provider"`
	// Name is the model identifier sent to the provider.
	Name string `yaml:"name"`
	// Endpoint overrides the provider's default API URL (empty = default).
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds each generation call.
	Timeout time.Duration `yaml:"timeout"`
}

// NATSConfig configures the optional event hand-off connection.
type NATSConfig struct {
	// URL is the NATS server URL (empty = event publishing disabled).
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			AllowedOrigins:    nil,
			HotReload:         false,
			MinCompanyNameLen: proposal.DefaultMinCompanyNameLen,
		},
		Model: ModelConfig{
			Provider: "openai",
			Name:     "gpt-4-turbo-preview",
			Endpoint: "",
			Timeout:  proposal.DefaultGenerationTimeout,
		},
		Pricing: proposal.DefaultPricingConfig(),
		NATS: NATSConfig{
			URL: "",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" || strings.Contains(origin, "*") {
			return fmt.Errorf("server.allowed_origins must list explicit origins, wildcard %q not allowed", origin)
		}
	}
	if c.Server.MinCompanyNameLen < 1 {
		return fmt.Errorf("server.min_company_name_len must be at least 1")
	}
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("model.timeout must be positive")
	}
	if c.Pricing.BasePrice <= 0 {
		return fmt.Errorf("pricing.base_price must be positive")
	}
	if c.Pricing.LowerThreshold >= c.Pricing.UpperThreshold {
		return fmt.Errorf("pricing.lower_threshold must be below pricing.upper_threshold")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadFromFile loads configuration from a YAML file over defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ResolvePath returns the config file path in effect: DEALDESK_CONFIG when
// set, otherwise DefaultConfigFile in the working directory.
func ResolvePath() string {
	if path := os.Getenv("DEALDESK_CONFIG"); path != "" {
		return path
	}
	return DefaultConfigFile
}

// Load resolves the configuration: defaults, then the YAML file (from
// DEALDESK_CONFIG or DefaultConfigFile if present), then environment
// overrides, then validation.
func Load() (*Config, error) {
	explicit := os.Getenv("DEALDESK_CONFIG") != ""
	path := ResolvePath()

	config := DefaultConfig()
	if fileConfig, err := LoadFromFile(path); err == nil {
		config = fileConfig
	} else if explicit {
		// A missing default file is fine; a named one must load.
		return nil, err
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides config values from environment variables.
func (c *Config) ApplyEnv() {
	c.Server.Host = getenv("DEALDESK_HOST", c.Server.Host)
	c.Server.Port = atoienv("DEALDESK_PORT", c.Server.Port)
	if v := os.Getenv("DEALDESK_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitAndTrim(v)
	}
	c.Server.HotReload = boolenv("DEALDESK_HOT_RELOAD", c.Server.HotReload)
	c.Server.MinCompanyNameLen = atoienv("DEALDESK_MIN_COMPANY_NAME_LEN", c.Server.MinCompanyNameLen)

	c.Model.Provider = getenv("DEALDESK_MODEL_PROVIDER", c.Model.Provider)
	c.Model.Name = getenv("DEALDESK_MODEL_NAME", c.Model.Name)
	c.Model.Endpoint = getenv("DEALDESK_MODEL_ENDPOINT", c.Model.Endpoint)
	if sec := atoienv("DEALDESK_MODEL_TIMEOUT_SEC", 0); sec > 0 {
		c.Model.Timeout = time.Duration(sec) * time.Second
	}

	c.Pricing.BasePrice = floatenv("DEALDESK_BASE_PRICE", c.Pricing.BasePrice)
	c.Pricing.LowerThreshold = floatenv("DEALDESK_LOWER_THRESHOLD", c.Pricing.LowerThreshold)
	c.Pricing.UpperThreshold = floatenv("DEALDESK_UPPER_THRESHOLD", c.Pricing.UpperThreshold)

	c.NATS.URL = getenv("DEALDESK_NATS_URL", c.NATS.URL)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
