package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Chainhook ChainhookConfig `mapstructure:"chainhook"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Addr         string `mapstructure:"addr"`
	Environment  string `mapstructure:"environment"`
	RateLimitRPS int    `mapstructure:"rate_limit_rps"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ChainhookConfig struct {
	// AuthToken is the shared bearer secret every webhook delivery must
	// present. No default: an empty token rejects all deliveries.
	AuthToken string `mapstructure:"auth_token"`
}

// NotifyConfig holds channel credentials. Each defaults empty, which
// silently disables that channel.
type NotifyConfig struct {
	DiscordWebhookURL string        `mapstructure:"discord_webhook_url"`
	TelegramBotToken  string        `mapstructure:"telegram_bot_token"`
	TelegramAPIURL    string        `mapstructure:"telegram_api_url"`
	EmailAPIKey       string        `mapstructure:"email_api_key"`
	EmailAPIURL       string        `mapstructure:"email_api_url"`
	EmailFrom         string        `mapstructure:"email_from"`
	ExplorerURL       string        `mapstructure:"explorer_url"`
	DispatchTimeout   time.Duration `mapstructure:"dispatch_timeout"`
}

// RedisConfig selects the durable store backend; an empty addr keeps the
// in-memory store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/stackpulse")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit_rps", 100)

	v.SetDefault("log.level", "info")

	v.SetDefault("chainhook.auth_token", "")

	v.SetDefault("notify.discord_webhook_url", "")
	v.SetDefault("notify.telegram_bot_token", "")
	v.SetDefault("notify.telegram_api_url", "")
	v.SetDefault("notify.email_api_key", "")
	v.SetDefault("notify.email_api_url", "")
	v.SetDefault("notify.email_from", "StackPulse <alerts@stackpulse.app>")
	v.SetDefault("notify.explorer_url", "https://explorer.stacks.co")
	v.SetDefault("notify.dispatch_timeout", "5s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("metrics.enabled", true)
}
