// Package config holds the verskeep configuration, the on-disk layout of the
// versions directory and workspace resolution.
//
// Configuration sources, highest precedence first:
//  1. command-line flags (applied by the command layer)
//  2. environment variables (VERSKEEP_*)
//  3. configuration file (YAML)
//  4. defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "VERSKEEP"
	ConfigName     = "verskeep"
	DefaultHash    = "sha256" // "sha256" | "xxh3"
	DefaultContext = 3
)

const DefaultDebounce = 500 * time.Millisecond

type Config struct {
	// Workspaces lists known workspace roots. Empty means discover.
	Workspaces []string `mapstructure:"workspaces" yaml:"workspaces"`

	// VersionsDir is the per-workspace storage directory name.
	VersionsDir string `mapstructure:"versions_dir" validate:"required,excludesall=/\\" yaml:"versions_dir"`

	// Hash selects the content digest algorithm.
	Hash string `mapstructure:"hash" validate:"required,oneof=sha256 xxh3" yaml:"hash"`

	// MaxVersionsPerFile prunes the oldest snapshots beyond this count.
	// Zero keeps everything.
	MaxVersionsPerFile int `mapstructure:"max_versions_per_file" validate:"gte=0" yaml:"max_versions_per_file"`

	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Diff    DiffConfig    `mapstructure:"diff" yaml:"diff"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type WatchConfig struct {
	// Debounce is how long the file must stay quiet before an auto-save.
	Debounce time.Duration `mapstructure:"debounce" validate:"gt=0" yaml:"debounce"`
}

type DiffConfig struct {
	// Tool is an argv template for an external viewer, e.g.
	// ["code", "--diff", "{left}", "{right}"]. Empty uses the built-in
	// unified diff.
	Tool []string `mapstructure:"tool" yaml:"tool"`

	// Context is the number of context lines in the built-in diff.
	Context int `mapstructure:"context" validate:"gte=0" yaml:"context"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		VersionsDir: DefaultVersionsDir,
		Hash:        DefaultHash,
		Watch:       WatchConfig{Debounce: DefaultDebounce},
		Diff:        DiffConfig{Context: DefaultContext},
		Logging:     LoggingConfig{Level: "INFO", Format: "text", Output: "stderr"},
	}
}

// Layout returns the storage layout for this configuration.
func (c *Config) Layout() Layout {
	return NewLayout(c.VersionsDir)
}

// Load reads configuration from path (or the default search locations when
// path is empty), the environment and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setupViper(v, path)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() string {
	return filepath.Join(configDir(), ConfigName+".yaml")
}

func setupViper(v *viper.Viper, path string) {
	def := Default()
	v.SetDefault("workspaces", def.Workspaces)
	v.SetDefault("versions_dir", def.VersionsDir)
	v.SetDefault("hash", def.Hash)
	v.SetDefault("max_versions_per_file", def.MaxVersionsPerFile)
	v.SetDefault("watch.debounce", def.Watch.Debounce)
	v.SetDefault("diff.tool", def.Diff.Tool)
	v.SetDefault("diff.context", def.Diff.Context)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)

	// VERSKEEP_WATCH_DEBOUNCE=2s
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		return
	}
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(configDir())
}

// readConfigFile reports whether a file was read. A missing file is fine.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigName)
	}
	return "."
}
