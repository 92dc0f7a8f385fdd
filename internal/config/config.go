// Package config handles todochat configuration: defaults, an optional YAML
// config file, and TODOCHAT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all todochat configuration.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	Gateway struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"gateway"`

	LLM struct {
		Model     string        `mapstructure:"model"`
		Grounding string        `mapstructure:"grounding"`
		MaxRounds int           `mapstructure:"max_rounds"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`

	Conversation struct {
		MessageWindow int `mapstructure:"message_window"`
		HistoryWindow int `mapstructure:"history_window"`
	} `mapstructure:"conversation"`

	Intent struct {
		RulesPath string `mapstructure:"rules_path"`
	} `mapstructure:"intent"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// APIKey reads the Gemini credential. It lives in the environment only; the
// config file never carries it.
func APIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("gateway.base_url", "http://localhost:8000")
	v.SetDefault("gateway.timeout", 30*time.Second)
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.grounding", "native")
	v.SetDefault("llm.max_rounds", 4)
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("conversation.message_window", 5)
	v.SetDefault("conversation.history_window", 3)
	v.SetDefault("intent.rules_path", "")
	v.SetDefault("log.level", "info")
}

// Load builds the configuration from defaults, the optional file at path, and
// environment overrides, in increasing precedence. An empty path skips the
// file layer entirely.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TODOCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.LLM.Grounding {
	case "native", "prompt":
	default:
		return fmt.Errorf("llm.grounding must be native or prompt, got %q", c.LLM.Grounding)
	}
	if c.LLM.MaxRounds < 1 {
		return fmt.Errorf("llm.max_rounds must be positive, got %d", c.LLM.MaxRounds)
	}
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	return nil
}
