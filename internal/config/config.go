// Package config provides YAML-based configuration for docsbot.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so container deployments can override any
// scalar setting without touching the file.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. DOCSBOT_CONFIG environment variable
//  3. ~/.docsbot/config.yaml
//  4. ./docsbot.yaml
//
// If no file is found the system runs from defaults plus env vars.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
type Config struct {
	// Discord configures the chat platform connection.
	Discord DiscordConfig `yaml:"discord"`

	// Context7 configures the upstream documentation API client.
	Context7 Context7Config `yaml:"context7"`

	// Sources lists the documentation libraries the bot can search.
	Sources []Source `yaml:"sources"`

	// DefaultSource is the Name of the source used when the user picks none.
	DefaultSource string `yaml:"default_source"`

	// Render configures the embed size limits.
	Render RenderConfig `yaml:"render"`

	// History configures the asked-question audit store.
	History HistoryConfig `yaml:"history"`

	// Metrics configures the Prometheus listener.
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`
}

// DiscordConfig holds chat platform settings.
type DiscordConfig struct {
	// Token is the bot token. Prefer env var DISCORD_TOKEN.
	Token string `yaml:"token"`
}

// Context7Config holds upstream API client settings.
type Context7Config struct {
	// APIKey is the bearer token for the documentation API. Optional;
	// prefer env var CONTEXT7_API_KEY.
	APIKey string `yaml:"api_key"`

	// BaseURL is the API base URL including the version prefix.
	BaseURL string `yaml:"base_url"`

	// RateLimit is the sustained outbound request rate (requests/second).
	// Zero disables client-side rate limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the maximum outbound burst when RateLimit is set.
	RateBurst int `yaml:"rate_burst"`
}

// Source is one searchable documentation library.
type Source struct {
	// Name is the human-visible label shown in the source dropdown and footer.
	Name string `yaml:"name"`

	// ID is the upstream library identifier (e.g. "/openhands/openhands").
	ID string `yaml:"id"`
}

// RenderConfig holds embed presentation settings. Zero size values fall
// back to the render package defaults.
type RenderConfig struct {
	// Title is the heading shown on every answer embed.
	Title string `yaml:"title"`
	// MaxFields is the maximum number of snippet fields per embed.
	MaxFields int `yaml:"max_fields"`
	// MaxFieldLen is the per-field body character limit.
	MaxFieldLen int `yaml:"max_field_len"`
	// MaxTotalLen is the aggregate character budget across field bodies.
	MaxTotalLen int `yaml:"max_total_len"`
}

// HistoryConfig holds asked-question store settings.
type HistoryConfig struct {
	// DBPath is the SQLite database path. Set to "disabled" to disable.
	DBPath string `yaml:"db_path"`
}

// MetricsConfig holds Prometheus listener settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics (e.g. ":9090").
	// Empty disables the listener.
	Addr string `yaml:"addr"`
}

// LoggingConfig holds structured logging settings. Values are bridged to
// the LOG_LEVEL / LOG_FORMAT / LOG_FILE env vars consumed by the logging
// package; already-set env vars are never overridden.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
	// File is an optional append-only log file path.
	File string `yaml:"file"`
}

// Default returns the built-in configuration: the OpenHands documentation
// sources and the stock embed limits.
func Default() Config {
	return Config{
		Context7: Context7Config{
			BaseURL:   "https://context7.com/api/v2",
			RateLimit: 0,
			RateBurst: 0,
		},
		Sources: []Source{
			{Name: "Official Docs", ID: "/websites/all-hands_dev"},
			{Name: "GitHub Repo", ID: "/openhands/openhands"},
		},
		DefaultSource: "Official Docs",
		Render: RenderConfig{
			Title:       "Docs Bot",
			MaxFields:   6,
			MaxFieldLen: 1024,
			MaxTotalLen: 5500,
		},
		History: HistoryConfig{},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// envOverrides maps environment variable names to the Config fields they
// override. Env vars always win over YAML and defaults.
var envOverrides = []struct {
	envKey string
	apply  func(*Config, string)
}{
	{"DISCORD_TOKEN", func(c *Config, v string) { c.Discord.Token = v }},
	{"CONTEXT7_API_KEY", func(c *Config, v string) { c.Context7.APIKey = v }},
	{"CONTEXT7_BASE_URL", func(c *Config, v string) { c.Context7.BaseURL = v }},
	{"CONTEXT7_RATE_LIMIT", func(c *Config, v string) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Context7.RateLimit = f
		}
	}},
	{"CONTEXT7_RATE_BURST", func(c *Config, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Context7.RateBurst = n
		}
	}},
	{"DOCSBOT_HISTORY_DB", func(c *Config, v string) { c.History.DBPath = v }},
	{"DOCSBOT_METRICS_ADDR", func(c *Config, v string) { c.Metrics.Addr = v }},
	{"LOG_LEVEL", func(c *Config, v string) { c.Logging.Level = v }},
	{"LOG_FORMAT", func(c *Config, v string) { c.Logging.Format = v }},
	{"LOG_FILE", func(c *Config, v string) { c.Logging.File = v }},
}

// loggingEnvBridge lists the Logging fields exported as env vars for the
// logging package. Already-set env vars are left alone (env always wins).
var loggingEnvBridge = []struct {
	envKey string
	value  func(*Config) string
}{
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"LOG_FILE", func(c *Config) string { return c.Logging.File }},
}

// Load builds the effective configuration: defaults, then the YAML file (if
// any), then env var overrides. It returns the config and the path that was
// loaded, or an empty path if no file was found.
func Load(explicitPath string, log *slog.Logger) (Config, string, error) {
	cfg := Default()

	path := resolveConfigPath(explicitPath)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, "", fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, "", fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
		log.Info("config: loaded YAML config", slog.String("path", path))
	} else {
		log.Debug("config: no YAML config file found, using defaults and env vars")
	}

	for _, o := range envOverrides {
		if v := os.Getenv(o.envKey); v != "" {
			o.apply(&cfg, v)
		}
	}

	// Bridge logging settings back into the environment for logging.New.
	for _, b := range loggingEnvBridge {
		if v := b.value(&cfg); v != "" && os.Getenv(b.envKey) == "" {
			os.Setenv(b.envKey, v)
		}
	}

	return cfg, path, nil
}

// Validate checks the settings required to actually run the bot.
func (c Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("config: discord token is not set (DISCORD_TOKEN)")
	}
	if c.Context7.BaseURL == "" {
		return fmt.Errorf("config: context7 base_url is empty")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: no documentation sources configured")
	}
	return nil
}

// SourceByName returns the source with the given Name, or false.
func (c Config) SourceByName(name string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// LibraryIDs returns the IDs of all configured sources, in order.
func (c Config) LibraryIDs() []string {
	ids := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		ids[i] = s.ID
	}
	return ids
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("DOCSBOT_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".docsbot", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("docsbot.yaml"); err == nil {
		return "docsbot.yaml"
	}

	return ""
}
