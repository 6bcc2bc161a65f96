package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "COUNCIL",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "COUNCIL",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (COUNCIL_*)
// 3. Project config (.council.yaml in current directory)
// 4. User config (~/.config/council/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".council")
		l.v.SetConfigType("yaml")

		// Project config takes precedence over user config
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "council"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	l.v.SetDefault("council.models", []string{"claude", "gpt", "gemini"})
	l.v.SetDefault("council.total_timeout", "30s")
	l.v.SetDefault("council.model_timeout", "12s")
	l.v.SetDefault("council.min_responses", 2)
	l.v.SetDefault("council.fallback_model", "claude")
	l.v.SetDefault("council.max_response_length", 0)
	l.v.SetDefault("council.financial_threshold", 10000.0)

	// Empty defaults so env-only keys are visible to Unmarshal.
	l.v.SetDefault("providers.claude.api_key", "")
	l.v.SetDefault("providers.gpt.api_key", "")
	l.v.SetDefault("providers.gemini.api_key", "")

	l.v.SetDefault("providers.claude.enabled", true)
	l.v.SetDefault("providers.claude.display_name", "Claude")
	l.v.SetDefault("providers.claude.base_url", "https://api.anthropic.com/v1")
	l.v.SetDefault("providers.claude.model", "claude-sonnet-4-20250514")
	l.v.SetDefault("providers.claude.max_tokens", 4096)
	l.v.SetDefault("providers.claude.temperature", 0.7)
	l.v.SetDefault("providers.claude.rate_per_sec", 2.0)
	l.v.SetDefault("providers.gpt.enabled", true)
	l.v.SetDefault("providers.gpt.display_name", "GPT")
	l.v.SetDefault("providers.gpt.base_url", "https://api.openai.com/v1")
	l.v.SetDefault("providers.gpt.model", "gpt-4o")
	l.v.SetDefault("providers.gpt.max_tokens", 4096)
	l.v.SetDefault("providers.gpt.temperature", 0.7)
	l.v.SetDefault("providers.gpt.rate_per_sec", 2.0)
	l.v.SetDefault("providers.gemini.enabled", true)
	l.v.SetDefault("providers.gemini.display_name", "Gemini")
	l.v.SetDefault("providers.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	l.v.SetDefault("providers.gemini.model", "gemini-2.5-flash")
	l.v.SetDefault("providers.gemini.max_tokens", 4096)
	l.v.SetDefault("providers.gemini.temperature", 0.7)
	l.v.SetDefault("providers.gemini.rate_per_sec", 2.0)

	l.v.SetDefault("quota.backend", "memory")
	l.v.SetDefault("quota.redis_addr", "localhost:6379")
	l.v.SetDefault("quota.redis_db", 0)

	l.v.SetDefault("storage.path", ".council/deliberations.db")

	l.v.SetDefault("server.addr", ":8080")
	l.v.SetDefault("server.allowed_origins", []string{"*"})
	l.v.SetDefault("server.read_timeout", "15s")
	l.v.SetDefault("server.write_timeout", "60s")
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}
