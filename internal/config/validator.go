package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{errors: make(ValidationErrors, 0)}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateCouncil(&cfg.Council)
	v.validateProviders(cfg)
	v.validateQuota(&cfg.Quota)
	v.validateServer(&cfg.Server)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

// Errors returns the collected validation errors.
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: msg,
	})
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"auto": true, "json": true, "text": true,
}

func (v *Validator) validateLog(cfg *LogConfig) {
	if !validLogLevels[cfg.Level] {
		v.addError("log.level", cfg.Level, "must be one of: debug, info, warn, error")
	}
	if !validLogFormats[cfg.Format] {
		v.addError("log.format", cfg.Format, "must be one of: auto, json, text")
	}
}

func (v *Validator) validateCouncil(cfg *CouncilConfig) {
	if len(cfg.Models) == 0 {
		v.addError("council.models", cfg.Models, "at least one model is required")
	}
	total := v.validateDuration("council.total_timeout", cfg.TotalTimeout)
	model := v.validateDuration("council.model_timeout", cfg.ModelTimeout)
	if total > 0 && model > 0 && model > total {
		v.addError("council.model_timeout", cfg.ModelTimeout, "must not exceed council.total_timeout")
	}
	if cfg.MinResponses < 1 {
		v.addError("council.min_responses", cfg.MinResponses, "must be at least 1")
	}
	if len(cfg.Models) > 0 && cfg.MinResponses > len(cfg.Models) {
		v.addError("council.min_responses", cfg.MinResponses, "must not exceed the model count")
	}
	if cfg.FallbackModel == "" {
		v.addError("council.fallback_model", cfg.FallbackModel, "is required")
	}
	if cfg.MaxResponseLength < 0 {
		v.addError("council.max_response_length", cfg.MaxResponseLength, "must not be negative")
	}
	if cfg.FinancialThreshold < 0 {
		v.addError("council.financial_threshold", cfg.FinancialThreshold, "must not be negative")
	}
}

func (v *Validator) validateProviders(cfg *Config) {
	enabled := cfg.EnabledProviders()
	if len(enabled) == 0 {
		v.addError("providers", nil, "at least one provider must be enabled")
	}
	for _, name := range enabled {
		pc, _ := cfg.Provider(name)
		prefix := "providers." + name
		if pc.BaseURL == "" {
			v.addError(prefix+".base_url", pc.BaseURL, "is required for an enabled provider")
		}
		if pc.Model == "" {
			v.addError(prefix+".model", pc.Model, "is required for an enabled provider")
		}
		if pc.MaxTokens <= 0 {
			v.addError(prefix+".max_tokens", pc.MaxTokens, "must be positive")
		}
		if pc.Temperature < 0 || pc.Temperature > 2 {
			v.addError(prefix+".temperature", pc.Temperature, "must be between 0 and 2")
		}
		if pc.RatePerSec <= 0 {
			v.addError(prefix+".rate_per_sec", pc.RatePerSec, "must be positive")
		}
	}
	for _, name := range cfg.Council.Models {
		if _, ok := cfg.Provider(name); !ok {
			v.addError("council.models", name, "unknown provider")
		}
	}
}

func (v *Validator) validateQuota(cfg *QuotaConfig) {
	switch cfg.Backend {
	case "memory":
	case "redis":
		if cfg.RedisAddr == "" {
			v.addError("quota.redis_addr", cfg.RedisAddr, "is required for the redis backend")
		}
	default:
		v.addError("quota.backend", cfg.Backend, "must be one of: memory, redis")
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Addr == "" {
		v.addError("server.addr", cfg.Addr, "is required")
	}
	v.validateDuration("server.read_timeout", cfg.ReadTimeout)
	v.validateDuration("server.write_timeout", cfg.WriteTimeout)
}

func (v *Validator) validateDuration(field, value string) time.Duration {
	if value == "" {
		v.addError(field, value, "is required")
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		v.addError(field, value, "must be a valid duration (e.g. 30s)")
		return 0
	}
	if d <= 0 {
		v.addError(field, value, "must be positive")
		return 0
	}
	return d
}
