package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Cache: CacheConfig{Backend: "memory", DedupeTTL: 30 * 24 * time.Hour},
		Scheduler: SchedulerConfig{
			Interval:           24 * time.Hour,
			StartupDelay:       30 * time.Second,
			GracePeriod:        time.Minute,
			OuterThresholdDays: 90,
			Workers:            5,
		},
		Notifiers: NotifiersConfig{Mode: "log_only"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsContractViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Scheduler.Interval = 0 }},
		{"negative startup delay", func(c *Config) { c.Scheduler.StartupDelay = -time.Second }},
		{"zero grace period", func(c *Config) { c.Scheduler.GracePeriod = 0 }},
		{"outer threshold below range", func(c *Config) { c.Scheduler.OuterThresholdDays = 0 }},
		{"outer threshold above range", func(c *Config) { c.Scheduler.OuterThresholdDays = 91 }},
		{"no workers", func(c *Config) { c.Scheduler.Workers = 0 }},
		{"dedupe ttl not above interval", func(c *Config) { c.Cache.DedupeTTL = time.Hour }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"unknown notifier mode", func(c *Config) { c.Notifiers.Mode = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestScanTTLExceedsInterval(t *testing.T) {
	s := SchedulerConfig{Interval: 24 * time.Hour}
	assert.Greater(t, s.ScanTTL(), s.Interval)
}
