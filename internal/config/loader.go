package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the gateway's environment variables.
// A double underscore separates config levels so keys with underscores stay
// addressable: GATEWAY_BACKEND__BASE_URL -> backend.base_url
const envPrefix = "GATEWAY_"

// flagMapping maps command-line flag names to config paths
var flagMapping = map[string]string{
	"http-port":   "server.http_port",
	"backend-url": "backend.base_url",
	"environment": "environment",
	"log-level":   "observability.log_level",
	"log-format":  "observability.log_format",
}

// RegisterFlags adds the gateway's config-overriding flags to a flag set
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Int("http-port", 0, "HTTP listener port (default: from config or 3000)")
	flags.String("backend-url", "", "backend API base URL (default: from config)")
	flags.String("environment", "", `deployment environment: "development" or "production"`)
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
}

// Loader reads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags, environment, file.
type Loader struct {
	k *koanf.Koanf
}

// NewLoader loads configuration from the given file path (optional) and the
// process environment. flags may be nil.
func NewLoader(path string, flags *pflag.FlagSet) (*Loader, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			parser := parserFor(path)
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k,
			func(key, value string) (string, interface{}) {
				path, ok := flagMapping[key]
				if !ok {
					return "", nil
				}
				return path, value
			})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	return &Loader{k: k}, nil
}

// Get unmarshals and finalizes the configuration
func (l *Loader) Get() (*Config, error) {
	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.explicitBackendURL = cfg.Backend.BaseURL != ""
	cfg.applyDefaults()
	return &cfg, nil
}

// parserFor selects a config parser by file extension
func parserFor(path string) koanf.Parser {
	if filepath.Ext(path) == ".json" {
		return koanfjson.Parser()
	}
	return koanfyaml.Parser()
}

// envKeyToPath converts GATEWAY_BACKEND__BASE_URL to backend.base_url
func envKeyToPath(key string) string {
	trimmed := strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(strings.ToLower(trimmed), "__", ".")
}
