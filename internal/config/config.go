package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`

	DatabaseDSN string `mapstructure:"database_dsn"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db"`

	ServerURL    string `mapstructure:"server_url"`
	ServerSecret string `mapstructure:"server_secret"`

	ReconcileDelay time.Duration `mapstructure:"reconcile_delay"`
	StatusTTL      time.Duration `mapstructure:"status_ttl"`
	MobileScheme   string        `mapstructure:"mobile_scheme"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("database_dsn", "roomgate:roomgate@tcp(127.0.0.1:3306)/roomgate?parseTime=true")
	v.SetDefault("redis_addr", "127.0.0.1:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("reconcile_delay", "40s")
	v.SetDefault("status_ttl", "30s")
	v.SetDefault("mobile_scheme", "bigbluebutton")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Server: %s\n", cfg.Mode, cfg.Port, cfg.ServerURL)
	return &cfg, nil
}
