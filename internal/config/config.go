package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	Inputs InputsConfig `yaml:"inputs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// InputSource names one tabular input file and its identifier column.
type InputSource struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Column string `yaml:"column"`
}

// InputsConfig enumerates every input file the diagnostics pipeline reads.
// The universe is the original campaign contact list; outcome categories are
// listed highest priority first. Contacts matching no category receive the
// fallback status.
type InputsConfig struct {
	Universe       InputSource   `yaml:"universe"`
	Outcomes       []InputSource `yaml:"outcomes"`
	FallbackStatus string        `yaml:"fallback_status"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no file read.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Inputs.Universe.Name == "" {
		cfg.Inputs.Universe.Name = "original"
	}
	if cfg.Inputs.Universe.Path == "" {
		cfg.Inputs.Universe.Path = "contacts.csv"
	}
	if cfg.Inputs.Universe.Column == "" {
		cfg.Inputs.Universe.Column = "email"
	}
	if len(cfg.Inputs.Outcomes) == 0 {
		cfg.Inputs.Outcomes = []InputSource{
			{Name: "Successful", Path: "total_successful.csv"},
			{Name: "Hard Bounce", Path: "hard_bounces.csv"},
			{Name: "Soft Bounce", Path: "soft_bounces.csv"},
		}
	}
	for i := range cfg.Inputs.Outcomes {
		if cfg.Inputs.Outcomes[i].Column == "" {
			cfg.Inputs.Outcomes[i].Column = cfg.Inputs.Universe.Column
		}
	}
	if cfg.Inputs.FallbackStatus == "" {
		cfg.Inputs.FallbackStatus = "Upload Failure (Derived)"
	}
}

// Validate checks that the inputs configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Inputs.Universe.Path == "" {
		return fmt.Errorf("inputs.universe.path is required")
	}
	seen := make(map[string]bool, len(c.Inputs.Outcomes))
	for _, o := range c.Inputs.Outcomes {
		if o.Name == "" {
			return fmt.Errorf("every outcome category needs a name (path %q)", o.Path)
		}
		if o.Path == "" {
			return fmt.Errorf("outcome category %q needs a path", o.Name)
		}
		if seen[o.Name] {
			return fmt.Errorf("duplicate outcome category %q", o.Name)
		}
		seen[o.Name] = true
		if o.Name == c.Inputs.FallbackStatus {
			return fmt.Errorf("outcome category %q collides with the fallback status", o.Name)
		}
	}
	return nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so settings can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DIAG_UNIVERSE_PATH"); v != "" {
		cfg.Inputs.Universe.Path = v
	}
	if v := os.Getenv("DIAG_UNIVERSE_COLUMN"); v != "" {
		cfg.Inputs.Universe.Column = v
	}
	// DIAG_INPUT_DIR re-roots every relative input path, so one deployment
	// artifact can point at different report drops.
	if dir := os.Getenv("DIAG_INPUT_DIR"); dir != "" {
		if !filepath.IsAbs(cfg.Inputs.Universe.Path) {
			cfg.Inputs.Universe.Path = filepath.Join(dir, cfg.Inputs.Universe.Path)
		}
		for i := range cfg.Inputs.Outcomes {
			if !filepath.IsAbs(cfg.Inputs.Outcomes[i].Path) {
				cfg.Inputs.Outcomes[i].Path = filepath.Join(dir, cfg.Inputs.Outcomes[i].Path)
			}
		}
	}

	return cfg, nil
}
