// Package config loads genstudio settings from defaults, an optional dotenv
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when no explicit config file is given, if present.
const DefaultEnvFile = ".env"

type Config struct {
	APIKey            string        `mapstructure:"api_key"`
	ListenAddr        string        `mapstructure:"listen_addr"`
	TextBackend       string        `mapstructure:"text_backend"`
	GeminiBaseURL     string        `mapstructure:"gemini_base_url"`
	GeminiTextModel   string        `mapstructure:"gemini_text_model"`
	GeminiImageModel  string        `mapstructure:"gemini_image_model"`
	GeminiRecipeModel string        `mapstructure:"gemini_recipe_model"`
	ClaudeAPIKey      string        `mapstructure:"claude_api_key"`
	ClaudeModel       string        `mapstructure:"claude_model"`
	ClaudeBaseURL     string        `mapstructure:"claude_base_url"`
	OllamaHost        string        `mapstructure:"ollama_host"`
	OllamaModel       string        `mapstructure:"ollama_model"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	ImageOutputPath   string        `mapstructure:"image_output_path"`
	MetricsAddr       string        `mapstructure:"metrics_addr"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	LogFile           string        `mapstructure:"log_file"`
}

var defaults = map[string]any{
	"api_key":             "",
	"listen_addr":         "127.0.0.1:4000",
	"text_backend":        "gemini",
	"gemini_base_url":     "",
	"gemini_text_model":   "gemini-1.5-flash",
	"gemini_image_model":  "imagen-3.0-generate-001",
	"gemini_recipe_model": "gemini-1.5-flash",
	"claude_api_key":      "",
	"claude_model":        "claude-3-5-haiku-latest",
	"claude_base_url":     "",
	"ollama_host":         "http://localhost:11434",
	"ollama_model":        "qwen2.5",
	"generation_timeout":  60 * time.Second,
	"shutdown_timeout":    5 * time.Second,
	"image_output_path":   "generated",
	"metrics_addr":        "",
	"log_level":           "info",
	"log_format":          "json",
	"log_file":            "",
}

// Load builds the configuration. If path is non-empty it must name a readable
// dotenv/yaml/json file; otherwise DefaultEnvFile is used when it exists.
// flags, if non-nil, override everything else for the flags the user set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	switch {
	case path != "":
		v.SetConfigFile(path)
		if configType(path) != "" {
			v.SetConfigType(configType(path))
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	default:
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			v.SetConfigFile(DefaultEnvFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", DefaultEnvFile, err)
			}
		}
	}

	// Environment variables use the upper-cased key: API_KEY, LISTEN_ADDR, ...
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.TextBackend = strings.ToLower(cfg.TextBackend)
	return &cfg, nil
}

// NormalizeFlagName lets CLI flags be spelled with dashes while binding to the
// underscore config keys: --listen-addr sets listen_addr.
func NormalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
}

// configType maps a file name to a viper config type; dotenv files have no
// extension viper recognises on its own.
func configType(path string) string {
	base := path
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		base = path[idx+1:]
	}
	if base == ".env" || strings.HasSuffix(base, ".env") {
		return "env"
	}
	return ""
}

var (
	ErrMissingAPIKey       = errors.New("API_KEY is required")
	ErrMissingClaudeAPIKey = errors.New("CLAUDE_API_KEY is required when TEXT_BACKEND=claude")
	ErrUnknownTextBackend  = errors.New("unknown TEXT_BACKEND")
)

// RequireGemini fails fast when the Gemini credential is missing.
func (c *Config) RequireGemini() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ValidateTextBackend checks the selected text backend and its credentials.
func (c *Config) ValidateTextBackend() error {
	switch c.TextBackend {
	case "gemini":
		return c.RequireGemini()
	case "claude":
		if c.ClaudeAPIKey == "" {
			return ErrMissingClaudeAPIKey
		}
		return nil
	case "ollama":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTextBackend, c.TextBackend)
	}
}
