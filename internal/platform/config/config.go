package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	strs "github.com/dr-roshyara/public-digit-sub005/pkg/platform/strings"
)

// envPrefix namespaces every environment variable, e.g. MEMBERSHIP_SERVER_ADDR.
const envPrefix = "MEMBERSHIP"

// Config is the full process configuration.
type Config struct {
	Server    Server          `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Geography GeographyConfig `mapstructure:"geography"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Sweep     SweepConfig     `mapstructure:"sweep"`
	Log       LogConfig       `mapstructure:"log"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `mapstructure:"addr"`
	MetricsAddr       string        `mapstructure:"metrics_addr"`
	AdminToken        string        `mapstructure:"admin_token"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects Postgres. An empty URL runs on in-memory stores.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig backs the geography cache and membership code sequences.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig drives the outbox relay. No brokers disables publishing.
type KafkaConfig struct {
	Brokers           []string      `mapstructure:"brokers"`
	Topic             string        `mapstructure:"topic"`
	Partitions        int32         `mapstructure:"partitions"`
	ReplicationFactor int16         `mapstructure:"replication_factor"`
	BatchSize         int           `mapstructure:"batch_size"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff"`
}

// GeographyConfig points at the geography service. An empty BaseURL serves
// references from a static development directory.
type GeographyConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// IdentityConfig points at the SCIM identity provider.
type IdentityConfig struct {
	SCIMURL      string        `mapstructure:"scim_url"`
	TokenURL     string        `mapstructure:"token_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Scopes       []string      `mapstructure:"scopes"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type PolicyConfig struct {
	File string `mapstructure:"file"`
}

// SweepConfig drives the expiry sweep. Tenants named here are swept in
// addition to those with an entry in the policy file.
type SweepConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	Tenants   []string      `mapstructure:"tenants"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var defaults = map[string]any{
	"server.addr":                ":8080",
	"server.metrics_addr":        ":9090",
	"server.admin_token":         "",
	"server.read_header_timeout": 5 * time.Second,
	"server.shutdown_timeout":    10 * time.Second,

	"database.url":               "",
	"database.max_open_conns":    20,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": 30 * time.Minute,

	"redis.url":            "",
	"redis.pool_size":      10,
	"redis.min_idle_conns": 2,
	"redis.dial_timeout":   5 * time.Second,
	"redis.read_timeout":   3 * time.Second,
	"redis.write_timeout":  3 * time.Second,

	"kafka.brokers":            []string{},
	"kafka.topic":              "membership.events",
	"kafka.partitions":         6,
	"kafka.replication_factor": 1,
	"kafka.batch_size":         100,
	"kafka.poll_interval":      time.Second,
	"kafka.max_backoff":        30 * time.Second,

	"geography.base_url":  "",
	"geography.timeout":   2 * time.Second,
	"geography.cache_ttl": 10 * time.Minute,

	"identity.scim_url":      "",
	"identity.token_url":     "",
	"identity.client_id":     "",
	"identity.client_secret": "",
	"identity.scopes":        []string{},
	"identity.timeout":       5 * time.Second,

	"policy.file": "",

	"sweep.enabled":    true,
	"sweep.interval":   time.Hour,
	"sweep.batch_size": 100,
	"sweep.tenants":    []string{},

	"log.level":  "info",
	"log.format": "json",
}

// Load reads configuration from MEMBERSHIP_* environment variables and, when
// MEMBERSHIP_CONFIG_FILE is set, from that file. Environment wins over file.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(envPrefix + "_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Kafka.Brokers = strs.DedupeAndTrim(cfg.Kafka.Brokers)
	cfg.Identity.Scopes = strs.DedupeAndTrim(cfg.Identity.Scopes)
	cfg.Sweep.Tenants = strs.DedupeAndTrim(cfg.Sweep.Tenants)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Kafka.BatchSize <= 0 {
		errs = append(errs, errors.New("kafka.batch_size must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if c.Sweep.Enabled && c.Sweep.Interval <= 0 {
		errs = append(errs, errors.New("sweep.interval must be positive"))
	}
	if c.Identity.SCIMURL != "" && c.Identity.ClientID == "" {
		errs = append(errs, errors.New("identity.client_id is required with identity.scim_url"))
	}
	return errors.Join(errs...)
}
