package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "tessera/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Telegram  sharedConfig.TelegramConfig  `mapstructure:"telegram"`
	Crypto    sharedConfig.CryptoConfig    `mapstructure:"crypto"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"ratelimit"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("TESSERA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Config file is optional: the required values may come entirely from env.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate checks that all required settings are present. Absence of the bot
// token, the staff group id, or the cipher secret is a fatal startup error.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (TESSERA_TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.GroupID == 0 {
		return fmt.Errorf("telegram.group_id is required (TESSERA_TELEGRAM_GROUP_ID)")
	}
	if c.Crypto.SecretKey == "" {
		return fmt.Errorf("crypto.secret_key is required (TESSERA_CRYPTO_SECRET_KEY)")
	}
	key, err := hex.DecodeString(c.Crypto.SecretKey)
	if err != nil {
		return fmt.Errorf("crypto.secret_key must be hex-encoded: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("crypto.secret_key must decode to 32 bytes, got %d", len(key))
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.path", "bot.db")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Telegram defaults
	viper.SetDefault("telegram.poll_timeout", 30)
	viper.SetDefault("telegram.send_timeout", 30)

	// Rate limit defaults
	viper.SetDefault("ratelimit.cooldown_seconds", 10)
	viper.SetDefault("ratelimit.max_tracked_users", 10000)

	// Redis defaults (disabled unless configured)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
}
