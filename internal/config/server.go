package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TEMPLATE_CSS_LSP_LOG_LEVEL.
const EnvPrefix = "TEMPLATE_CSS_LSP"

type ServerConfig struct {
	// Tags names the template literal tags whose contents are stylesheets.
	Tags []string `mapstructure:"tags"`
	// Language selects the add-on by the stylesheet language it serves.
	Language   string          `mapstructure:"language"`
	AddonPaths []string        `mapstructure:"addon_paths"`
	LogLevel   string          `mapstructure:"log_level"`
	Telemetry  TelemetryConfig `mapstructure:"telemetry"`
	Wasm       WasmConfig      `mapstructure:"wasm"`
}

// TelemetryConfig toggles OpenTelemetry signals.
type TelemetryConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
	TracesEnabled  bool `mapstructure:"traces_enabled"`
}

// WasmConfig holds Wasm runtime configuration.
type WasmConfig struct {
	// Memory limit per module (in pages, 64KB each).
	MemoryPages uint32 `mapstructure:"memory_pages"`
	// Enable debug logging.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory. Empty compiles in memory only.
	CacheDir string `mapstructure:"cache_dir"`
	// Maximum concurrent instances.
	MaxInstances int `mapstructure:"max_instances"`
}

func LoadServerConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("tags", []string{"css"})
	v.SetDefault("language", "scss")
	v.SetDefault("addon_paths", []string{"./addons"})
	v.SetDefault("log_level", "info")
	v.SetDefault("telemetry.metrics_enabled", false)
	v.SetDefault("telemetry.traces_enabled", false)

	// Wasm defaults
	v.SetDefault("wasm.memory_pages", 256) // 16MB
	v.SetDefault("wasm.debug", false)
	v.SetDefault("wasm.cache_dir", "")
	v.SetDefault("wasm.max_instances", 100)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values viper cannot.
func (c *ServerConfig) Validate() error {
	if len(c.Tags) == 0 {
		return fmt.Errorf("at least one template tag is required")
	}
	for _, tag := range c.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("template tags must not be empty")
		}
	}

	switch c.Language {
	case "css", "scss", "less":
	default:
		return fmt.Errorf("unsupported language: %s (must be one of: css, scss, less)", c.Language)
	}

	return nil
}
