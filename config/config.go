package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"` // seconds
	Debug       bool   `mapstructure:"debug"`
}

type StorageConfig struct {
	Backend              string `mapstructure:"backend"` // file | sqlite | redis
	FilePath             string `mapstructure:"file_path"`
	FlushIntervalSeconds int    `mapstructure:"flush_interval_seconds"`
	SQLitePath           string `mapstructure:"sqlite_path"`
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type RateLimitConfig struct {
	// Per-user sliding window for counted chat events.
	UserLimit    int `mapstructure:"user_limit"`
	UserWindowMs int `mapstructure:"user_window_ms"`
	// Per-IP limiting for the admin HTTP surface.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CacheConfig struct {
	Enabled     bool  `mapstructure:"enabled"`
	MaxSizeMB   int   `mapstructure:"max_size_mb"`
	TTLSeconds  int   `mapstructure:"ttl_seconds"`
	CounterSize int64 `mapstructure:"counter_size"`
}

type BackupConfig struct {
	Dir  string `mapstructure:"dir"`
	Keep int    `mapstructure:"keep"`
}

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type Config struct {
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Backup    BackupConfig    `mapstructure:"backup"`
	WebServer WebServerConfig `mapstructure:"webserver"`
}

func LoadConfig() (Config, error) {
	var config Config

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Enable environment variable overrides: telegram.token becomes
	// ACTIVITYBOT_TELEGRAM_TOKEN. Without the replacer viper would look
	// up ACTIVITYBOT_TELEGRAM.TOKEN, a name no shell can set.
	viper.SetEnvPrefix("ACTIVITYBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults + env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Error reading config file: %v", err)
			return config, err
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		log.Printf("Unable to decode into struct: %v", err)
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return config
}

func setDefaults() {
	// Telegram defaults
	viper.SetDefault("telegram.token", "")
	viper.SetDefault("telegram.poll_timeout", 60)
	viper.SetDefault("telegram.debug", false)

	// Storage defaults
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.file_path", "data/users.json")
	viper.SetDefault("storage.flush_interval_seconds", 300) // 5 minutes
	viper.SetDefault("storage.sqlite_path", "data/activity.db")

	// Redis defaults
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 5)

	// RateLimit defaults
	viper.SetDefault("ratelimit.user_limit", 20)
	viper.SetDefault("ratelimit.user_window_ms", 60000)
	viper.SetDefault("ratelimit.requests_per_second", 10.0)
	viper.SetDefault("ratelimit.burst", 20)

	// Cache defaults
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size_mb", 16)
	viper.SetDefault("cache.ttl_seconds", 30)
	viper.SetDefault("cache.counter_size", 10000)

	// Backup defaults
	viper.SetDefault("backup.dir", "data/backups")
	viper.SetDefault("backup.keep", 10)

	// WebServer defaults
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.ip", "127.0.0.1")
	viper.SetDefault("webserver.read_timeout", 15)
	viper.SetDefault("webserver.write_timeout", 15)
	viper.SetDefault("webserver.shutdown_timeout", 30)
}
