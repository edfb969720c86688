package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, "membership.events", cfg.Kafka.Topic)
	assert.Equal(t, 100, cfg.Kafka.BatchSize)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Database.URL)
	assert.True(t, cfg.Sweep.Enabled)
	assert.Equal(t, time.Hour, cfg.Sweep.Interval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("MEMBERSHIP_SERVER_ADDR", ":9000")
	t.Setenv("MEMBERSHIP_SERVER_ADMIN_TOKEN", "s3cret")
	t.Setenv("MEMBERSHIP_DATABASE_URL", "postgres://localhost/membership")
	t.Setenv("MEMBERSHIP_SWEEP_INTERVAL", "15m")
	t.Setenv("MEMBERSHIP_LOG_LEVEL", "debug")
	t.Setenv("MEMBERSHIP_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,kafka-1:9092")
	t.Setenv("MEMBERSHIP_SWEEP_TENANTS", "T1,T2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Server.AdminToken)
	assert.Equal(t, "postgres://localhost/membership", cfg.Database.URL)
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"T1", "T2"}, cfg.Sweep.Tenants)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "membership.yaml")
	body := `
server:
  addr: ":7000"
kafka:
  brokers: ["broker-1:9092", "broker-2:9092"]
  topic: party.members
policy:
  file: /etc/membership/policy.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("MEMBERSHIP_CONFIG_FILE", path)
	t.Setenv("MEMBERSHIP_SERVER_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Server.Addr, "environment overrides the file")
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "party.members", cfg.Kafka.Topic)
	assert.Equal(t, "/etc/membership/policy.yaml", cfg.Policy.File)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("MEMBERSHIP_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("brokers without topic", func(t *testing.T) {
		cfg := base()
		cfg.Kafka.Brokers = []string{"localhost:9092"}
		cfg.Kafka.Topic = ""
		assert.ErrorContains(t, cfg.Validate(), "kafka.topic")
	})

	t.Run("scim without client id", func(t *testing.T) {
		cfg := base()
		cfg.Identity.SCIMURL = "https://idp.example.com/scim/v2"
		assert.ErrorContains(t, cfg.Validate(), "identity.client_id")
	})

	t.Run("every problem is reported", func(t *testing.T) {
		cfg := base()
		cfg.Server.Addr = ""
		cfg.Sweep.Interval = 0
		err := cfg.Validate()
		assert.ErrorContains(t, err, "server.addr")
		assert.ErrorContains(t, err, "sweep.interval")
	})
}
