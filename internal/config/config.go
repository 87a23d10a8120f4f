package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the main struct that holds all configuration for the application.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notifiers NotifiersConfig `mapstructure:"notifiers"`
}

// LoggerConfig holds logging-specific settings.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// HTTPConfig holds HTTP server-specific settings.
type HTTPConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`
}

// PostgresConfig holds all settings for the PostgreSQL database connection.
type PostgresConfig struct {
	DSN  string     `mapstructure:"dsn"`
	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig defines the connection pool settings for the database.
type PoolConfig struct {
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig holds all settings for the Redis connection.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig selects the dedupe/scan cache backend and its retention.
// The "memory" backend is only safe for a single scheduler instance; any
// horizontally scaled deployment must use "redis" or duplicate
// notifications will be sent.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"` // "memory" or "redis"
	DedupeTTL time.Duration `mapstructure:"dedupe_ttl"`
}

// SchedulerConfig holds the scan loop settings.
type SchedulerConfig struct {
	Interval           time.Duration `mapstructure:"interval"`
	StartupDelay       time.Duration `mapstructure:"startup_delay"`
	GracePeriod        time.Duration `mapstructure:"grace_period"`
	OuterThresholdDays int           `mapstructure:"outer_threshold_days"`
	Workers            int           `mapstructure:"workers"`
}

// ScanTTL is the lifetime of scan cache snapshots: slightly longer than the
// scan interval so a late cycle does not produce a visible gap on the read path.
func (s SchedulerConfig) ScanTTL() time.Duration {
	return s.Interval + s.Interval/2
}

// NotifiersConfig holds configurations for all notification channels.
type NotifiersConfig struct {
	// Mode can be "log_only" or "production".
	// In "log_only" mode, all notifiers are replaced by the LogNotifier.
	Mode  string      `mapstructure:"mode"`
	Email EmailConfig `mapstructure:"email"`
	SMS   SMSConfig   `mapstructure:"sms"`
}

// EmailConfig holds SMTP settings for the email notifier.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SMSConfig holds settings for the SMS gateway notifier.
type SMSConfig struct {
	GatewayURL string        `mapstructure:"gateway_url"`
	APIKey     string        `mapstructure:"api_key"`
	From       string        `mapstructure:"from"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// NewConfig parses the YAML file and environment variables to return a
// configuration struct. Contract violations fail here, before any loop
// starts; this is the only error class that is fatal to startup.
func NewConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigFile("configs/config.yaml")

	v.SetDefault("logger.level", "info")
	v.SetDefault("http.port", ":8080")
	v.SetDefault("http.gin_mode", "release")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.dedupe_ttl", 30*24*time.Hour)
	v.SetDefault("scheduler.interval", 24*time.Hour)
	v.SetDefault("scheduler.startup_delay", 30*time.Second)
	v.SetDefault("scheduler.grace_period", time.Minute)
	v.SetDefault("scheduler.outer_threshold_days", 90)
	v.SetDefault("scheduler.workers", 5)
	v.SetDefault("notifiers.mode", "log_only")
	v.SetDefault("notifiers.sms.timeout", 10*time.Second)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("config: scheduler.interval must be positive, got %s", c.Scheduler.Interval)
	}
	if c.Scheduler.StartupDelay < 0 {
		return fmt.Errorf("config: scheduler.startup_delay must not be negative, got %s", c.Scheduler.StartupDelay)
	}
	if c.Scheduler.GracePeriod <= 0 {
		return fmt.Errorf("config: scheduler.grace_period must be positive, got %s", c.Scheduler.GracePeriod)
	}
	if c.Scheduler.OuterThresholdDays < 1 || c.Scheduler.OuterThresholdDays > 90 {
		return fmt.Errorf("config: scheduler.outer_threshold_days must be in 1..90, got %d", c.Scheduler.OuterThresholdDays)
	}
	if c.Scheduler.Workers < 1 {
		return fmt.Errorf("config: scheduler.workers must be at least 1, got %d", c.Scheduler.Workers)
	}
	if c.Cache.DedupeTTL <= c.Scheduler.Interval {
		return fmt.Errorf("config: cache.dedupe_ttl (%s) must exceed scheduler.interval (%s)", c.Cache.DedupeTTL, c.Scheduler.Interval)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache.backend: %q", c.Cache.Backend)
	}
	switch c.Notifiers.Mode {
	case "log_only", "production":
	default:
		return fmt.Errorf("config: unknown notifiers.mode: %q", c.Notifiers.Mode)
	}
	return nil
}
