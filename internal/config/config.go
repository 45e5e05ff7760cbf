package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the service.
type Config struct {
	ServerAddr       string        `mapstructure:"server_addr"`
	ServerKey        string        `mapstructure:"server_key"`
	DatabaseURL      string        `mapstructure:"database_url"`
	LookAheadDays    int           `mapstructure:"look_ahead_days"`
	GenerateInterval time.Duration `mapstructure:"generate_interval"`
	TelegramToken    string        `mapstructure:"telegram_token"`
	TelegramChatID   int64         `mapstructure:"telegram_chat_id"`
}

// Load reads configuration from an optional config.yaml and SMARTTASKER_*
// environment variables, filling in defaults where unset.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("smarttasker")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv can see it during Unmarshal.
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("server_key", "")
	v.SetDefault("database_url", "smarttasker.db")
	v.SetDefault("look_ahead_days", 30)
	v.SetDefault("generate_interval", "6h")
	v.SetDefault("telegram_token", "")
	v.SetDefault("telegram_chat_id", 0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ServerKey = strings.TrimSpace(cfg.ServerKey)
	if cfg.ServerKey == "" {
		return cfg, fmt.Errorf("server_key is required")
	}
	if cfg.LookAheadDays <= 0 {
		cfg.LookAheadDays = 30
	}
	if cfg.GenerateInterval <= 0 {
		cfg.GenerateInterval = 6 * time.Hour
	}

	return cfg, nil
}

// TelegramEnabled reports whether run digests should be sent to Telegram.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
