package config

import (
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	kenv "github.com/knadh/koanf/providers/env"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root config structure.
type Config struct {
	DefaultProvider string                    `koanf:"default_provider"`
	Providers       map[string]ProviderConfig `koanf:"providers"`
}

// ProviderConfig defines a single provider entry in config.
type ProviderConfig struct {
	APIKey          string `koanf:"api_key"`
	Model           string `koanf:"model"`
	MaxOutputTokens int    `koanf:"max_output_tokens"`
}

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// Load loads configuration from path or default locations. Load is safe for
// repeated calls.
//
// Priority:
// 1. ASSISTANT_CONFIG_PATH if set
// 2. ./config.yaml
func Load() (*Config, error) {
	loadOnce.Do(func() {
		k := koanf.New(".")

		path := os.Getenv("ASSISTANT_CONFIG_PATH")
		if path == "" {
			path = "config.yaml"
		}

		if err := k.Load(kfile.Provider(path), yaml.Parser()); err != nil {
			loadErr = err
			return
		}

		// Environment overrides: ASSISTANT__PROVIDERS__OPENAI__API_KEY=...
		// Double underscore splits levels. The file nests everything under
		// an assistant root key, so the env keys must carry it too.
		if err := k.Load(kenv.Provider("ASSISTANT__", "__", func(s string) string {
			return "assistant__" + strings.ToLower(strings.TrimPrefix(s, "ASSISTANT__"))
		}), nil); err != nil {
			loadErr = err
			return
		}

		var cfg Config
		if err := k.Unmarshal("assistant", &cfg); err != nil {
			loadErr = err
			return
		}

		resolveEnvVars(&cfg)

		loaded = &cfg
	})
	return loaded, loadErr
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// resolveEnvVars resolves ${VAR} patterns in config string fields
func resolveEnvVars(cfg *Config) {
	for key, pc := range cfg.Providers {
		pc.APIKey = resolveEnvString(pc.APIKey)
		pc.Model = resolveEnvString(pc.Model)
		cfg.Providers[key] = pc
	}
}

// resolveEnvString replaces ${VAR} with environment variable values
func resolveEnvString(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}
