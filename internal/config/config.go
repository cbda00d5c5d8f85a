package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
}

// DatabaseConfig holds the recent-stages store settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds file-logger settings. The TUI owns the terminal, so
// logs always go to a file.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	FrameStep  int `mapstructure:"frame_step"`
	TreeIndent int `mapstructure:"tree_indent"`
	MaxRecents int `mapstructure:"max_recents"`
}

// Load reads configuration from file and env. Env var overrides use
// prefix USDINSPECT_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "usdinspect", "usdinspect.db"))
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "usdinspect", "usdinspect.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.frame_step", 1)
	v.SetDefault("ui.tree_indent", 2)
	v.SetDefault("ui.max_recents", 20)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("USDINSPECT_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "usdinspect"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("USDINSPECT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config
// directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("USDINSPECT_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "usdinspect", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.frame_step", cfg.UI.FrameStep)
	v.Set("ui.tree_indent", cfg.UI.TreeIndent)
	v.Set("ui.max_recents", cfg.UI.MaxRecents)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
