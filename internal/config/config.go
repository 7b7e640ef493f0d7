package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vietdv277/s3du/internal/ui"
	"github.com/vietdv277/s3du/pkg/types"
)

var ErrUnknownKey = errors.New("unknown config key")

// Config represents the persisted defaults. Flags and S3DU_* environment
// variables take precedence over every value here.
type Config struct {
	Region         string `yaml:"region,omitempty"`
	Profile        string `yaml:"profile,omitempty"`
	Backend        string `yaml:"backend,omitempty"`
	ObjectVersions string `yaml:"object_versions,omitempty"`
	Unit           string `yaml:"unit,omitempty"`
	Output         string `yaml:"output,omitempty"`
	Endpoint       string `yaml:"endpoint,omitempty"`
	Concurrency    int    `yaml:"concurrency,omitempty"`
}

// Keys lists the settable keys in display order
var Keys = []string{
	"region",
	"profile",
	"backend",
	"object_versions",
	"unit",
	"output",
	"endpoint",
	"concurrency",
}

// GetConfigDir returns the config directory path
// ($XDG_CONFIG_HOME/s3du, or ~/.config/s3du)
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "s3du")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".s3du"
	}
	return filepath.Join(home, ".config", "s3du")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// LoadConfig loads the configuration file. A missing file is an empty config.
func LoadConfig() (*Config, error) {
	configPath := GetConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration file, creating its directory
func SaveConfig(cfg *Config) error {
	configDir := GetConfigDir()

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := GetConfigPath()
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set validates value and stores it under key. An empty value clears the key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "region":
		c.Region = value
	case "profile":
		c.Profile = value
	case "endpoint":
		c.Endpoint = value

	case "backend":
		if value == "" {
			c.Backend = ""
			return nil
		}
		backend, err := types.ParseBackend(value)
		if err != nil {
			return err
		}
		c.Backend = string(backend)

	case "object_versions":
		if value == "" {
			c.ObjectVersions = ""
			return nil
		}
		versions, err := types.ParseObjectVersions(value)
		if err != nil {
			return err
		}
		c.ObjectVersions = string(versions)

	case "unit":
		if value == "" {
			c.Unit = ""
			return nil
		}
		unit, err := ui.ParseUnit(value)
		if err != nil {
			return err
		}
		c.Unit = string(unit)

	case "output":
		if value == "" {
			c.Output = ""
			return nil
		}
		format, err := ui.ParseFormat(value)
		if err != nil {
			return err
		}
		c.Output = string(format)

	case "concurrency":
		if value == "" {
			c.Concurrency = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("concurrency must be a positive integer, got %q", value)
		}
		c.Concurrency = n

	default:
		return fmt.Errorf("%w %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}

	return nil
}

// Get returns the stored value of key as a string
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "region":
		return c.Region, nil
	case "profile":
		return c.Profile, nil
	case "backend":
		return c.Backend, nil
	case "object_versions":
		return c.ObjectVersions, nil
	case "unit":
		return c.Unit, nil
	case "output":
		return c.Output, nil
	case "endpoint":
		return c.Endpoint, nil
	case "concurrency":
		if c.Concurrency == 0 {
			return "", nil
		}
		return strconv.Itoa(c.Concurrency), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
}

// Settings returns the non-empty key/value pairs, keyed by config key.
// Callers use them as defaults underneath flags and environment variables.
func (c *Config) Settings() map[string]string {
	settings := make(map[string]string, len(Keys))
	for _, key := range Keys {
		if v, _ := c.Get(key); v != "" {
			settings[key] = v
		}
	}
	return settings
}

// SetValue loads the config file, sets key and saves it back
func SetValue(key, value string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	return SaveConfig(cfg)
}
