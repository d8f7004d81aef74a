// Package config loads waflow settings from defaults, an optional
// waflow.yaml, WAFLOW_* environment variables and command flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-waflow/pkg/assistant"
	"github.com/goliatone/go-waflow/pkg/rules"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "WAFLOW"

// Config is the resolved application configuration.
type Config struct {
	// Level is the validation strictness: lenient, standard or strict.
	// Empty keeps the level the ruleset declares.
	Level string `mapstructure:"level"`
	// Ruleset names a bundled preset.
	Ruleset string `mapstructure:"ruleset"`
	// RulesetFile points at a YAML ruleset and wins over Ruleset.
	RulesetFile string          `mapstructure:"ruleset_file"`
	LogLevel    string          `mapstructure:"log_level"`
	Assistant   AssistantConfig `mapstructure:"assistant"`
}

// AssistantConfig configures the model behind generate, edit, analyze and
// screenshot.
type AssistantConfig struct {
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("level", "")
	v.SetDefault("ruleset", rules.PresetV71)
	v.SetDefault("ruleset_file", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("assistant.model", assistant.DefaultModel)
	v.SetDefault("assistant.max_tokens", assistant.DefaultMaxTokens)
	v.SetDefault("assistant.api_key", "")
	v.SetDefault("assistant.base_url", "")
}

// Load resolves the configuration. file is an explicit config path; when
// empty waflow.yaml is looked up in the working directory and the user
// config directory, and its absence is not an error. flags may be nil.
func Load(v *viper.Viper, file string, flags *pflag.FlagSet) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("waflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "waflow"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", describe(file, v), err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Assistant.APIKey == "" {
		cfg.Assistant.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if _, err := rules.ParseLevel(cfg.Level); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps command flags onto configuration keys.
var flagKeys = map[string]string{
	"level":        "level",
	"ruleset":      "ruleset",
	"ruleset-file": "ruleset_file",
	"log-level":    "log_level",
	"model":        "assistant.model",
	"max-tokens":   "assistant.max_tokens",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("config: bind --%s: %w", name, err)
		}
	}
	return nil
}

func describe(file string, v *viper.Viper) string {
	if file != "" {
		return file
	}
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	return "waflow.yaml"
}

// LoadRuleset returns the configured ruleset at the configured level.
func (c *Config) LoadRuleset() (*rules.Ruleset, error) {
	var (
		rs  *rules.Ruleset
		err error
	)
	if c.RulesetFile != "" {
		f, openErr := os.Open(c.RulesetFile)
		if openErr != nil {
			return nil, fmt.Errorf("config: open ruleset: %w", openErr)
		}
		defer f.Close()
		rs, err = rules.LoadRuleset(f)
	} else {
		rs, err = rules.Preset(c.Ruleset)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Level) == "" {
		return rs, nil
	}
	level, err := rules.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return rs.WithLevel(level), nil
}

// AnthropicConfig converts the assistant settings.
func (c *Config) AnthropicConfig() assistant.AnthropicConfig {
	return assistant.AnthropicConfig{
		APIKey:    c.Assistant.APIKey,
		Model:     c.Assistant.Model,
		MaxTokens: c.Assistant.MaxTokens,
		BaseURL:   c.Assistant.BaseURL,
	}
}
