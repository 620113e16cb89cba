package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Token.SigningSecret = "secret"
	return cfg
}

func TestProvider(t *testing.T) {
	t.Run("builds a fully wired proxy handler", func(t *testing.T) {
		provider := NewProvider(testConfig())

		handler, err := provider.ProxyHandler()
		require.NoError(t, err)
		assert.NotNil(t, handler)
	})

	t.Run("components are cached after first build", func(t *testing.T) {
		provider := NewProvider(testConfig())

		first, err := provider.TokenMinter()
		require.NoError(t, err)
		second, err := provider.TokenMinter()
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("rejects malformed durations", func(t *testing.T) {
		cfg := testConfig()
		cfg.Cache.TTL = "not-a-duration"
		provider := NewProvider(cfg)

		_, err := provider.PrincipalResolver()
		assert.Error(t, err)
	})

	t.Run("logger honors configured level and format", func(t *testing.T) {
		cfg := testConfig()
		cfg.Observability.LogLevel = "debug"
		cfg.Observability.LogFormat = "json"
		provider := NewProvider(cfg)

		logger := provider.Logger()
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	})
}
