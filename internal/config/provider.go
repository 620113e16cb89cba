package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/partnerdash/gateway/internal/principal"
	"github.com/partnerdash/gateway/internal/probe"
	"github.com/partnerdash/gateway/internal/proxy"
	"github.com/partnerdash/gateway/internal/session"
	"github.com/partnerdash/gateway/internal/token"
	"github.com/partnerdash/gateway/internal/usersync"
)

// Provider constructs application components from configuration.
// Components are built lazily and cached after the first call.
type Provider struct {
	config *Config

	logger      *logrus.Logger
	resolver    principal.Resolver
	sessions    session.Store
	minter      *token.Minter
	forwarder   *proxy.Forwarder
	observer    probe.ProxyObserver
	syncHandler *usersync.Handler
}

// NewProvider creates a provider from configuration
func NewProvider(config *Config) *Provider {
	return &Provider{config: config}
}

// Logger returns the configured application logger
func (p *Provider) Logger() *logrus.Logger {
	if p.logger != nil {
		return p.logger
	}

	logger := logrus.New()

	level, err := logrus.ParseLevel(p.config.Observability.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if p.config.Observability.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	p.logger = logger
	return logger
}

// PrincipalResolver returns the backend resolver wrapped in the bounded cache
func (p *Provider) PrincipalResolver() (principal.Resolver, error) {
	if p.resolver != nil {
		return p.resolver, nil
	}

	backendTimeout, err := parseDuration("backend.timeout", p.config.Backend.Timeout)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("cache.ttl", p.config.Cache.TTL)
	if err != nil {
		return nil, err
	}

	backend := principal.NewBackendResolver(principal.BackendResolverConfig{
		BaseURL: p.config.Backend.BaseURL,
		APIKey:  p.config.Backend.InternalAPIKey,
		Timeout: backendTimeout,
		Logger:  p.Logger(),
	})

	cache := principal.NewCache(principal.CacheConfig{
		TTL:        cacheTTL,
		MaxEntries: p.config.Cache.MaxEntries,
	})

	p.resolver = principal.NewCachingResolver(backend, cache)
	return p.resolver, nil
}

// SessionStore returns the identity-provider session store
func (p *Provider) SessionStore() (session.Store, error) {
	if p.sessions != nil {
		return p.sessions, nil
	}

	authTimeout, err := parseDuration("auth.timeout", p.config.Auth.Timeout)
	if err != nil {
		return nil, err
	}

	p.sessions = session.NewAuthClient(session.AuthClientConfig{
		BaseURL: p.config.Auth.BaseURL,
		Timeout: authTimeout,
		Logger:  p.Logger(),
	})
	return p.sessions, nil
}

// TokenMinter returns the configured assertion minter
func (p *Provider) TokenMinter() (*token.Minter, error) {
	if p.minter != nil {
		return p.minter, nil
	}

	ttl, err := parseDuration("token.ttl", p.config.Token.TTL)
	if err != nil {
		return nil, err
	}

	sessions, err := p.SessionStore()
	if err != nil {
		return nil, err
	}
	resolver, err := p.PrincipalResolver()
	if err != nil {
		return nil, err
	}

	minter, err := token.NewMinter(token.MinterConfig{
		SigningSecret: p.config.Token.SigningSecret,
		TTL:           ttl,
		Sessions:      sessions,
		Principals:    resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("create token minter: %w", err)
	}

	p.minter = minter
	return minter, nil
}

// ProxyHandler returns the proxy handler with all dependencies wired
func (p *Provider) ProxyHandler() (*proxy.Handler, error) {
	minter, err := p.TokenMinter()
	if err != nil {
		return nil, err
	}

	forwarder, err := p.Forwarder()
	if err != nil {
		return nil, err
	}

	return proxy.NewHandler(minter, forwarder, p.Observer()), nil
}

// Forwarder returns the backend forwarder
func (p *Provider) Forwarder() (*proxy.Forwarder, error) {
	if p.forwarder != nil {
		return p.forwarder, nil
	}

	timeout, err := parseDuration("backend.timeout", p.config.Backend.Timeout)
	if err != nil {
		return nil, err
	}

	p.forwarder = proxy.NewForwarder(proxy.ForwarderConfig{
		BaseURL: p.config.Backend.BaseURL,
		Timeout: timeout,
		Logger:  p.Logger(),
	})
	return p.forwarder, nil
}

// Observer returns the proxy lifecycle observer
func (p *Provider) Observer() probe.ProxyObserver {
	if p.observer != nil {
		return p.observer
	}
	p.observer = probe.NewLoggingObserver(p.Logger())
	return p.observer
}

// SyncHandler returns the user-sync endpoint handler
func (p *Provider) SyncHandler() (*usersync.Handler, error) {
	if p.syncHandler != nil {
		return p.syncHandler, nil
	}

	timeout, err := parseDuration("backend.timeout", p.config.Backend.Timeout)
	if err != nil {
		return nil, err
	}

	p.syncHandler = usersync.NewHandler(usersync.HandlerConfig{
		BackendURL: p.config.Backend.BaseURL,
		APIKey:     p.config.Backend.InternalAPIKey,
		Timeout:    timeout,
		Logger:     p.Logger(),
	})
	return p.syncHandler, nil
}

// HTTPPort returns the configured listener port
func (p *Provider) HTTPPort() int {
	return p.config.Server.HTTPPort
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
