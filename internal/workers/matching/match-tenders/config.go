package matchtenders

import (
	"fmt"
	"time"

	"tender-matching/internal/common/config"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if wc, ok := appConfig.Workers[TaskType]; ok {
		cfg.Enabled = wc.Enabled
		if wc.MaxJobsActive > 0 {
			cfg.MaxJobsActive = wc.MaxJobsActive
		}
		if wc.Timeout > 0 {
			cfg.Timeout = time.Duration(wc.Timeout) * time.Millisecond
		}
	}
	return cfg
}
