package config

import "fmt"

// Config is the root configuration structure for the gateway
type Config struct {
	// Environment is "development" or "production".
	// Production tightens validation of required credentials.
	Environment string `koanf:"environment"`

	// Server configuration (HTTP listener)
	Server ServerConfig `koanf:"server"`

	// Backend configuration (the affiliate API the gateway fronts)
	Backend BackendConfig `koanf:"backend"`

	// Auth configuration (identity provider and session store)
	Auth AuthConfig `koanf:"auth"`

	// Token configuration (bearer assertion minting)
	Token TokenConfig `koanf:"token"`

	// Cache configuration (principal cache)
	Cache CacheConfig `koanf:"cache"`

	// Observability configuration (logging)
	Observability ObservabilityConfig `koanf:"observability"`

	// explicitBackendURL records whether backend.base_url was configured
	// rather than defaulted; production requires it explicitly
	explicitBackendURL bool
}

// ServerConfig contains network-level server settings
type ServerConfig struct {
	// HTTPPort is the port the gateway listens on
	HTTPPort int `koanf:"http_port"`
}

// BackendConfig configures access to the backend API
type BackendConfig struct {
	// BaseURL is the backend API base, e.g. "http://localhost:8080/api/v1"
	BaseURL string `koanf:"base_url"`

	// InternalAPIKey authenticates server-to-server calls
	InternalAPIKey string `koanf:"internal_api_key"`

	// Timeout bounds each backend call (duration string like "30s")
	Timeout string `koanf:"timeout"`
}

// AuthConfig configures the identity provider integration
type AuthConfig struct {
	// BaseURL is the identity provider's API base
	BaseURL string `koanf:"base_url"`

	// Secret is the identity provider's shared secret
	Secret string `koanf:"secret"`

	// OAuthClientID and OAuthClientSecret configure the OAuth client the
	// identity provider uses for social sign-in
	OAuthClientID     string `koanf:"oauth_client_id"`
	OAuthClientSecret string `koanf:"oauth_client_secret"`

	// SessionStoreURL is the identity provider's session-store connection
	// string (passed through to deployment, not dialed by the gateway)
	SessionStoreURL string `koanf:"session_store_url"`

	// Timeout bounds each session lookup (duration string like "10s")
	Timeout string `koanf:"timeout"`
}

// TokenConfig configures bearer assertion minting
type TokenConfig struct {
	// SigningSecret is the HMAC secret shared with the backend
	SigningSecret string `koanf:"signing_secret"`

	// TTL is the assertion lifetime (duration string like "24h")
	TTL string `koanf:"ttl"`
}

// CacheConfig configures the principal cache
type CacheConfig struct {
	// TTL is how long resolved principals stay cached (duration string)
	TTL string `koanf:"ttl"`

	// MaxEntries caps the cache size
	MaxEntries int `koanf:"max_entries"`
}

// ObservabilityConfig configures logging
type ObservabilityConfig struct {
	// LogLevel is one of "debug", "info", "warn", "error"
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json"
	LogFormat string `koanf:"log_format"`
}

// Production environment name
const EnvProduction = "production"

// applyDefaults fills in development defaults for unset fields
func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 3000
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8080/api/v1"
	}
	if c.Backend.Timeout == "" {
		c.Backend.Timeout = "30s"
	}
	if c.Auth.BaseURL == "" {
		c.Auth.BaseURL = "http://localhost:3000/api/auth"
	}
	if c.Auth.Timeout == "" {
		c.Auth.Timeout = "10s"
	}
	if c.Token.SigningSecret == "" {
		// Shared-secret fallback: deployments that only configure the
		// identity provider's secret sign assertions with it
		c.Token.SigningSecret = c.Auth.Secret
	}
	if c.Token.TTL == "" {
		c.Token.TTL = "24h"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "5m"
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 1000
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.LogFormat == "" {
		c.Observability.LogFormat = "text"
	}
}

// Validate checks that required settings are present.
// The signing secret is always required; production additionally requires an
// explicit backend base URL and the internal API key.
func (c *Config) Validate() error {
	if c.Token.SigningSecret == "" {
		return fmt.Errorf("token.signing_secret is required")
	}

	if c.Environment == EnvProduction {
		if !c.explicitBackendURL {
			return fmt.Errorf("backend.base_url must be configured in production")
		}
		if c.Backend.InternalAPIKey == "" {
			return fmt.Errorf("backend.internal_api_key is required in production")
		}
	}

	return nil
}
