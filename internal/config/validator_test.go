package config

import (
	"strings"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatalf("want validation error for %s", field)
	}
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("err = %T, want ValidationErrors", err)
	}
	for _, e := range errs {
		if e.Field == field {
			return
		}
	}
	t.Errorf("no error for field %s in: %v", field, err)
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Log.Level = "verbose"
	assertFieldError(t, NewValidator().Validate(cfg), "log.level")
}

func TestValidate_LogFormat(t *testing.T) {
	cfg := validConfig(t)
	cfg.Log.Format = "xml"
	assertFieldError(t, NewValidator().Validate(cfg), "log.format")
}

func TestValidate_CouncilTimeouts(t *testing.T) {
	cfg := validConfig(t)
	cfg.Council.TotalTimeout = "not-a-duration"
	assertFieldError(t, NewValidator().Validate(cfg), "council.total_timeout")

	cfg = validConfig(t)
	cfg.Council.TotalTimeout = "5s"
	cfg.Council.ModelTimeout = "10s"
	assertFieldError(t, NewValidator().Validate(cfg), "council.model_timeout")
}

func TestValidate_MinResponses(t *testing.T) {
	cfg := validConfig(t)
	cfg.Council.MinResponses = 0
	assertFieldError(t, NewValidator().Validate(cfg), "council.min_responses")

	cfg = validConfig(t)
	cfg.Council.MinResponses = 5
	assertFieldError(t, NewValidator().Validate(cfg), "council.min_responses")
}

func TestValidate_FallbackRequired(t *testing.T) {
	cfg := validConfig(t)
	cfg.Council.FallbackModel = ""
	assertFieldError(t, NewValidator().Validate(cfg), "council.fallback_model")
}

func TestValidate_UnknownCouncilModel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Council.Models = append(cfg.Council.Models, "mystery")
	assertFieldError(t, NewValidator().Validate(cfg), "council.models")
}

func TestValidate_NoProvidersEnabled(t *testing.T) {
	cfg := validConfig(t)
	cfg.Providers.Claude.Enabled = false
	cfg.Providers.GPT.Enabled = false
	cfg.Providers.Gemini.Enabled = false
	assertFieldError(t, NewValidator().Validate(cfg), "providers")
}

func TestValidate_EnabledProviderFields(t *testing.T) {
	cfg := validConfig(t)
	cfg.Providers.Claude.BaseURL = ""
	assertFieldError(t, NewValidator().Validate(cfg), "providers.claude.base_url")

	cfg = validConfig(t)
	cfg.Providers.GPT.Temperature = 3.5
	assertFieldError(t, NewValidator().Validate(cfg), "providers.gpt.temperature")

	cfg = validConfig(t)
	cfg.Providers.Gemini.RatePerSec = 0
	assertFieldError(t, NewValidator().Validate(cfg), "providers.gemini.rate_per_sec")
}

func TestValidate_QuotaBackend(t *testing.T) {
	cfg := validConfig(t)
	cfg.Quota.Backend = "dynamo"
	assertFieldError(t, NewValidator().Validate(cfg), "quota.backend")

	cfg = validConfig(t)
	cfg.Quota.Backend = "redis"
	cfg.Quota.RedisAddr = ""
	assertFieldError(t, NewValidator().Validate(cfg), "quota.redis_addr")
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Log.Level = "verbose"
	cfg.Council.FallbackModel = ""
	cfg.Server.Addr = ""

	err := NewValidator().Validate(cfg)
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("err = %T, want ValidationErrors", err)
	}
	if len(errs) != 3 {
		t.Errorf("errors = %d, want 3: %v", len(errs), errs)
	}
	if !strings.Contains(errs.Error(), "log.level") {
		t.Errorf("joined message misses fields: %s", errs.Error())
	}
}
