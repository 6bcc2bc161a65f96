// Package config loads and validates application configuration.
package config

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Council   CouncilConfig   `mapstructure:"council" yaml:"council"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Quota     QuotaConfig     `mapstructure:"quota" yaml:"quota"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file,omitempty"`
}

// CouncilConfig configures deliberation behavior.
type CouncilConfig struct {
	Models             []string `mapstructure:"models" yaml:"models"`
	TotalTimeout       string   `mapstructure:"total_timeout" yaml:"total_timeout"`
	ModelTimeout       string   `mapstructure:"model_timeout" yaml:"model_timeout"`
	MinResponses       int      `mapstructure:"min_responses" yaml:"min_responses"`
	FallbackModel      string   `mapstructure:"fallback_model" yaml:"fallback_model"`
	MaxResponseLength  int      `mapstructure:"max_response_length" yaml:"max_response_length"`
	FinancialThreshold float64  `mapstructure:"financial_threshold" yaml:"financial_threshold"`
}

// ProvidersConfig configures the model adapters.
type ProvidersConfig struct {
	Claude ProviderConfig `mapstructure:"claude" yaml:"claude"`
	GPT    ProviderConfig `mapstructure:"gpt" yaml:"gpt"`
	Gemini ProviderConfig `mapstructure:"gemini" yaml:"gemini"`
}

// ProviderConfig configures a single model provider.
type ProviderConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	DisplayName string  `mapstructure:"display_name" yaml:"display_name"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model       string  `mapstructure:"model" yaml:"model"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	RatePerSec  float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

// QuotaConfig configures daily usage tracking.
type QuotaConfig struct {
	Backend   string `mapstructure:"backend" yaml:"backend"`
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db" yaml:"redis_db"`
}

// StorageConfig configures deliberation persistence.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout    string   `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   string   `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// EnabledProviders returns the provider names enabled in config.
func (c *Config) EnabledProviders() []string {
	var names []string
	if c.Providers.Claude.Enabled {
		names = append(names, "claude")
	}
	if c.Providers.GPT.Enabled {
		names = append(names, "gpt")
	}
	if c.Providers.Gemini.Enabled {
		names = append(names, "gemini")
	}
	return names
}

// Provider returns the configuration for a named provider.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	switch name {
	case "claude":
		return c.Providers.Claude, true
	case "gpt":
		return c.Providers.GPT, true
	case "gemini":
		return c.Providers.Gemini, true
	}
	return ProviderConfig{}, false
}
