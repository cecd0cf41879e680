package config

import "fmt"

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelegramConfig struct {
	BotToken    string `mapstructure:"bot_token"`
	GroupID     int64  `mapstructure:"group_id"`
	PollTimeout int    `mapstructure:"poll_timeout"`
	SendTimeout int    `mapstructure:"send_timeout"`
}

func (t *TelegramConfig) IsConfigured() bool {
	return t.BotToken != "" && t.GroupID != 0
}

type CryptoConfig struct {
	// SecretKey is the hex-encoded 32-byte key for the identity cipher.
	SecretKey string `mapstructure:"secret_key"`
}

type RateLimitConfig struct {
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
	MaxTrackedUsers int `mapstructure:"max_tracked_users"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
