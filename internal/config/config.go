package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full client configuration.
type Config struct {
	Server   ServerConfig `json:"server"`
	Dropzone string       `json:"dropzone"`
	Poll     PollConfig   `json:"poll"`
	Logging  LogConfig    `json:"logging"`
}

// ServerConfig locates and authenticates against the manifest server.
type ServerConfig struct {
	// URL is the API base URL, without a trailing slash.
	URL string `json:"url"`
	// Token is the bearer token presented on every request.
	Token string `json:"token"`
	// TimeoutSeconds bounds each request; zero uses the client default.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// PollConfig controls the load snapshot refresh loop.
type PollConfig struct {
	IntervalSeconds int `json:"interval_seconds"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Pretty switches to console output for local use.
	Pretty bool `json:"pretty"`
}

// Load reads a yaml or json config file, then applies DZ_* environment
// overrides (DZ_SERVER__TOKEN → server.token).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("DZ_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dz_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Poll.IntervalSeconds == 0 {
		c.Poll.IntervalSeconds = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.Dropzone == "" {
		return fmt.Errorf("dropzone is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %s", c.Logging.Level)
	}
	if c.Poll.IntervalSeconds < 0 {
		return fmt.Errorf("poll.interval_seconds must not be negative")
	}
	return nil
}

// PollInterval returns the refresh interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// ServerTimeout returns the per-request timeout, zero when unset.
func (c Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}
