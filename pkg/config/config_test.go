package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	LogLevel string        `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Brokers  []string      `env:"TEST_CFG_BROKERS" envSeparator:","`
	CacheTTL time.Duration `env:"TEST_CFG_CACHE_TTL" envDefault:"5m"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_BROKERS", "a:9092,b:9092")
	t.Setenv("TEST_CFG_CACHE_TTL", "30s")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "1111")
	t.Setenv("SHOPPER_TEST_CFG_PORT", "2222")

	var cfg testConfig
	require.NoError(t, LoadWithPrefix(&cfg, "SHOPPER_"))
	assert.Equal(t, 2222, cfg.Port)
}
