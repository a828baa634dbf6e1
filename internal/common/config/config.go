// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	HTTP     HTTPConfig              `mapstructure:"http"`
	Matching MatchingConfig          `mapstructure:"matching"`
	Search   SearchConfig            `mapstructure:"search"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	Plaintext      bool   `mapstructure:"plaintext"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single address shorthand
}

func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type HTTPConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type MatchingConfig struct {
	DefaultLimit       int                 `mapstructure:"default_limit"`
	FallbackDistanceKm float64             `mapstructure:"fallback_distance_km"`
	PoolCapMode        string              `mapstructure:"pool_cap_mode"`
	ClampScores        bool                `mapstructure:"clamp_scores"`
	CacheTTL           int                 `mapstructure:"cache_ttl"` // seconds, 0 disables the cache
	Weights            MatchingWeightsSets `mapstructure:"weights"`
}

func (m MatchingConfig) CacheTTLDuration() time.Duration {
	return time.Duration(m.CacheTTL) * time.Second
}

type MatchingWeightsSets struct {
	TenderToContractor WeightsConfig `mapstructure:"tender_to_contractor"`
	ContractorToTender WeightsConfig `mapstructure:"contractor_to_tender"`
}

type WeightsConfig struct {
	Skills       float64 `mapstructure:"skills"`
	Proximity    float64 `mapstructure:"proximity"`
	Reliability  float64 `mapstructure:"reliability"`
	Availability float64 `mapstructure:"availability"`
}

func (w WeightsConfig) validate(name string) error {
	for field, v := range map[string]float64{
		"skills":       w.Skills,
		"proximity":    w.Proximity,
		"reliability":  w.Reliability,
		"availability": w.Availability,
	} {
		if v < 0 {
			return fmt.Errorf("matching.weights.%s.%s must not be negative", name, field)
		}
	}
	return nil
}

type SearchConfig struct {
	Index string `mapstructure:"index"`
}
