// Package config loads the goodhill command line settings from a TOML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Environment variables, applied over the config file.
const (
	EnvAPIKey    = "GOODHILL_API_KEY"
	EnvAPISecret = "GOODHILL_API_SECRET"
	EnvHosts     = "GOODHILL_HOSTS"
	EnvCABundle  = "GOODHILL_CA_BUNDLE"
	EnvTimeout   = "GOODHILL_TIMEOUT"
)

const defaultConfigPath = "~/.config/goodhill/config.toml"

var (
	ErrAPIKeyMissing    = errors.New("api key not set (api_key or " + EnvAPIKey + ")")
	ErrAPISecretMissing = errors.New("api secret not set (api_secret or " + EnvAPISecret + ")")
	ErrHostsMissing     = errors.New("no hosts set (hosts or " + EnvHosts + ")")
)

// Config holds what the command line needs to build a client.
type Config struct {
	APIKey    string
	APISecret string
	Hosts     []string
	CABundle  string

	// Timeout is the per-host attempt budget. Zero keeps the client
	// default.
	Timeout time.Duration

	// Path is the config file that was read, empty if none was found.
	Path string
}

// Load reads the config file at path (the default location when empty) and
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()

		if err := readFile(file, &cfg); err != nil {
			return Config{}, err
		}
		cfg.Path = resolved
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func readFile(r io.Reader, cfg *Config) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIKey    string   `toml:"api_key"`
		APISecret string   `toml:"api_secret"`
		Hosts     []string `toml:"hosts"`
		CABundle  string   `toml:"ca_bundle"`
		Timeout   string   `toml:"timeout"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(raw.APIKey)
	cfg.APISecret = strings.TrimSpace(raw.APISecret)
	cfg.Hosts = cleanHosts(raw.Hosts)

	if raw.CABundle != "" {
		bundle, err := expandPath(raw.CABundle)
		if err != nil {
			return fmt.Errorf("ca_bundle: %w", err)
		}
		cfg.CABundle = bundle
	}

	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = timeout
	}

	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvAPIKey)); v != "" {
		cfg.APIKey = v
	}

	if v := strings.TrimSpace(getenv(EnvAPISecret)); v != "" {
		cfg.APISecret = v
	}

	if v := getenv(EnvHosts); strings.TrimSpace(v) != "" {
		cfg.Hosts = cleanHosts(strings.Split(v, ","))
	}

	if v := strings.TrimSpace(getenv(EnvCABundle)); v != "" {
		bundle, err := expandPath(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCABundle, err)
		}
		cfg.CABundle = bundle
	}

	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = timeout
	}

	return nil
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	switch {
	case c.APIKey == "":
		return ErrAPIKeyMissing
	case c.APISecret == "":
		return ErrAPISecretMissing
	case len(c.Hosts) == 0:
		return ErrHostsMissing
	}

	return nil
}

// cleanHosts trims entries and drops empty ones, keeping order.
func cleanHosts(hosts []string) []string {
	var cleaned []string
	for _, host := range hosts {
		if host = strings.TrimSpace(host); host != "" {
			cleaned = append(cleaned, host)
		}
	}

	return cleaned
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
