package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Workspace holds the session state files (dashboards.json, sources.json).
	Workspace string `mapstructure:"workspace" yaml:"workspace"`

	// Chart display defaults applied when a spec leaves them zero.
	DefaultChartHeight int    `mapstructure:"default_chart_height" yaml:"default_chart_height"`
	DefaultColorScheme string `mapstructure:"default_color_scheme" yaml:"default_color_scheme"`
	DefaultFontSize    int    `mapstructure:"default_font_size" yaml:"default_font_size"`

	// Transform limits.
	MaxRenderRows  int `mapstructure:"max_render_rows" yaml:"max_render_rows"`
	MaxPreviewRows int `mapstructure:"max_preview_rows" yaml:"max_preview_rows"`
	SampleSeed     int `mapstructure:"sample_seed" yaml:"sample_seed"`

	// Store behavior.
	CacheTTLMinutes     int `mapstructure:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
	HistoryLimit        int `mapstructure:"history_limit" yaml:"history_limit"`
	CleanupMaxAgeHours  int `mapstructure:"cleanup_max_age_hours" yaml:"cleanup_max_age_hours"`
	AutoRefreshInterval int `mapstructure:"auto_refresh_interval" yaml:"auto_refresh_interval"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.dashloom/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dashloom")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DASHLOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("default_chart_height", 400)
	v.SetDefault("default_color_scheme", "default")
	v.SetDefault("default_font_size", 12)
	v.SetDefault("max_render_rows", 5000)
	v.SetDefault("max_preview_rows", 1000)
	v.SetDefault("sample_seed", 0)
	v.SetDefault("cache_ttl_minutes", 30)
	v.SetDefault("history_limit", 100)
	v.SetDefault("cleanup_max_age_hours", 24)
	v.SetDefault("auto_refresh_interval", 30)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".dashloom")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve workspace default: ~/.dashloom/workspace
	if c.Workspace == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.Workspace = filepath.Join(home, ".dashloom", "workspace")
	}
	return &c, nil
}
