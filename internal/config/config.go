// Package config handles configuration loading for drover. It supports XDG
// config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for drover.
type Config struct {
	// DefaultProvider names the provider instance used when a command
	// does not pick one explicitly.
	DefaultProvider string `mapstructure:"default_provider"`
	// Providers are the configured provider instances keyed by name.
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Timeouts  TimeoutsConfig            `mapstructure:"timeouts"`
	Git       GitConfig                 `mapstructure:"git"`
	Logging   LoggingConfig             `mapstructure:"logging"`
}

// ProviderConfig is one provider instance block.
type ProviderConfig struct {
	// Vendor is the tool family (claude, codex, gemini).
	Vendor string `mapstructure:"vendor"`
	// Mode is the connection mode (cli, api).
	Mode string `mapstructure:"mode"`
	// Executable overrides the vendor's default CLI name.
	Executable string `mapstructure:"executable"`
	// Model is the default model for this instance.
	Model string `mapstructure:"model"`
	// APIKey authenticates API mode. Supports ${VAR} expansion.
	APIKey string `mapstructure:"api_key"`
	// Bedrock settings apply to Claude API mode only.
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// TimeoutsConfig holds the engine's timing knobs.
type TimeoutsConfig struct {
	// Execution caps one agent run's wall-clock time. Zero means no cap;
	// liveness is judged by the stall threshold instead.
	Execution time.Duration `mapstructure:"execution"`
	// StallThreshold is how long without output before a run counts as
	// stalled.
	StallThreshold time.Duration `mapstructure:"stall_threshold"`
}

// GitConfig holds version-control automation settings.
type GitConfig struct {
	// Remote is the default remote name.
	Remote string `mapstructure:"remote"`
	// Branch is the default branch for push and sync.
	Branch string `mapstructure:"branch"`
}

// LoggingConfig holds debug logging settings.
type LoggingConfig struct {
	// DebugFile is an optional path; logging is disabled when empty.
	DebugFile string `mapstructure:"debug_file"`
}

// Load loads configuration with precedence, highest first:
// 1. Environment variables (DROVER_* and ANTHROPIC_API_KEY)
// 2. Project config (.drover.yaml in the current directory or a parent)
// 3. User config (~/.config/drover/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if project := findProjectConfig(); project != "" {
		pv := viper.New()
		pv.SetConfigFile(project)
		if err := pv.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("DROVER")
	v.AutomaticEnv()
	v.BindEnv("default_provider", "DROVER_PROVIDER")
	v.BindEnv("logging.debug_file", "DROVER_DEBUG_FILE")

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	for name, p := range cfg.Providers {
		p.APIKey = os.ExpandEnv(p.APIKey)
		cfg.Providers[name] = p
	}
	return cfg, nil
}

// Provider resolves a provider instance by name, falling back to the
// default instance when name is empty.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	p, ok := c.Providers[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("no provider instance named %q configured", name)
	}
	return p, nil
}

// Watch re-reads the user config file whenever it changes and delivers the
// fresh config to onChange. Returns a stop function.
func Watch(onChange func(*Config)) (func(), error) {
	path := UserConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no config file to watch at %s", path)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.OnConfigChange(func(fsnotify.Event) {
		if cfg, err := unmarshal(v); err == nil {
			onChange(cfg)
		}
	})
	v.WatchConfig()

	// viper's watcher has no explicit stop; the returned function exists
	// so callers do not couple to that detail.
	return func() {}, nil
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	dir := userConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "config.yaml"))

	v.Set("default_provider", cfg.DefaultProvider)
	for name, p := range cfg.Providers {
		prefix := "providers." + name + "."
		v.Set(prefix+"vendor", p.Vendor)
		v.Set(prefix+"mode", p.Mode)
		v.Set(prefix+"executable", p.Executable)
		v.Set(prefix+"model", p.Model)
		v.Set(prefix+"api_key", p.APIKey)
	}
	v.Set("timeouts.execution", cfg.Timeouts.Execution.String())
	v.Set("timeouts.stall_threshold", cfg.Timeouts.StallThreshold.String())
	v.Set("git.remote", cfg.Git.Remote)
	v.Set("git.branch", cfg.Git.Branch)
	v.Set("logging.debug_file", cfg.Logging.DebugFile)

	return v.WriteConfig()
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(userConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_provider", "claude")
	v.SetDefault("providers.claude.vendor", "claude")
	v.SetDefault("providers.claude.mode", "cli")

	v.SetDefault("timeouts.execution", "0s")
	v.SetDefault("timeouts.stall_threshold", "2m")

	v.SetDefault("git.remote", "origin")
	v.SetDefault("git.branch", "")

	v.SetDefault("logging.debug_file", "")
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "drover")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "drover")
	}
	return filepath.Join(home, ".config", "drover")
}

// findProjectConfig searches for .drover.yaml from the current directory
// upward.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(cwd, ".drover.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return ""
		}
		cwd = parent
	}
}

// Default returns a Config with built-in defaults.
func Default() *Config {
	return &Config{
		DefaultProvider: "claude",
		Providers: map[string]ProviderConfig{
			"claude": {Vendor: "claude", Mode: "cli"},
		},
		Timeouts: TimeoutsConfig{
			StallThreshold: 2 * time.Minute,
		},
		Git: GitConfig{Remote: "origin"},
	}
}
