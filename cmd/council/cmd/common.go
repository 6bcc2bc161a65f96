package cmd

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/council-mode/council/internal/adapters/model"
	"github.com/council-mode/council/internal/adapters/quota"
	"github.com/council-mode/council/internal/adapters/store"
	"github.com/council-mode/council/internal/config"
	"github.com/council-mode/council/internal/core"
	"github.com/council-mode/council/internal/council"
	"github.com/council-mode/council/internal/logging"
	"github.com/council-mode/council/internal/metrics"
)

// loadConfig loads and validates configuration using the shared viper
// instance so CLI flag bindings take effect.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader = loader.WithConfigFile(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildLogger(cfg *config.Config) *logging.Logger {
	if quiet {
		return logging.NewNop()
	}
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// buildRegistry configures the adapter registry from the enabled providers.
func buildRegistry(cfg *config.Config) *model.Registry {
	registry := model.NewRegistry()
	for _, name := range cfg.EnabledProviders() {
		pc, _ := cfg.Provider(name)
		registry.Configure(name, model.ProviderConfig{
			Name:        name,
			DisplayName: pc.DisplayName,
			BaseURL:     pc.BaseURL,
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			MaxTokens:   pc.MaxTokens,
			Temperature: pc.Temperature,
		})
	}
	return registry
}

func buildLimiters(cfg *config.Config) *council.LimiterPool {
	pool := council.NewLimiterPool(council.DefaultRateLimiterConfig())
	for _, name := range cfg.EnabledProviders() {
		pc, _ := cfg.Provider(name)
		pool.Configure(name, council.RateLimiterConfig{
			MaxTokens:  pc.RatePerSec * 2,
			RefillRate: pc.RatePerSec,
		})
	}
	return pool
}

func dispatchOptions(cfg *config.Config) (council.DispatchOptions, error) {
	total, err := time.ParseDuration(cfg.Council.TotalTimeout)
	if err != nil {
		return council.DispatchOptions{}, fmt.Errorf("parsing council.total_timeout: %w", err)
	}
	perModel, err := time.ParseDuration(cfg.Council.ModelTimeout)
	if err != nil {
		return council.DispatchOptions{}, fmt.Errorf("parsing council.model_timeout: %w", err)
	}
	return council.DispatchOptions{
		Models:       cfg.Council.Models,
		TotalTimeout: total,
		ModelTimeout: perModel,
		MinResponses: cfg.Council.MinResponses,
	}, nil
}

// buildQuota picks the configured quota backend.
func buildQuota(cfg *config.Config) (core.QuotaService, error) {
	switch cfg.Quota.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Quota.RedisAddr,
			DB:   cfg.Quota.RedisDB,
		})
		return quota.NewRedisQuota(client), nil
	case "memory":
		return quota.NewMemoryQuota(), nil
	default:
		return nil, fmt.Errorf("unknown quota backend: %s", cfg.Quota.Backend)
	}
}

// buildEngine wires the full pipeline. The store and quota service are
// handed back so callers can serve reads and close on shutdown. A nil
// recorder means no telemetry.
func buildEngine(cfg *config.Config, logger *logging.Logger, recorder *metrics.Recorder) (*council.Engine, *store.SQLiteStore, core.QuotaService, error) {
	registry := buildRegistry(cfg)

	opts, err := dispatchOptions(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	quotaSvc, err := buildQuota(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, nil, nil, err
	}

	dispatcherOpts := []council.DispatcherOption{council.WithLimiterPool(buildLimiters(cfg))}
	if recorder != nil {
		dispatcherOpts = append(dispatcherOpts, council.WithObserver(recorder))
	}
	dispatcher := council.NewDispatcher(registry, logger, dispatcherOpts...)

	evaluator := council.NewTriggerEvaluatorWithPolicies(
		council.DefaultTierPolicies(), cfg.Council.FinancialThreshold)

	engineOpts := []council.EngineOption{
		council.WithStore(db),
		council.WithQuota(quotaSvc),
		council.WithTriggerEvaluator(evaluator),
		council.WithDispatchOptions(opts),
		council.WithSynthesisOptions(council.SynthesisOptions{MaxLength: cfg.Council.MaxResponseLength}),
		council.WithFallbackModel(cfg.Council.FallbackModel),
	}
	if recorder != nil {
		engineOpts = append(engineOpts, council.WithTriggerObserver(recorder))
	}

	engine := council.NewEngine(dispatcher, logger, engineOpts...)
	return engine, db, quotaSvc, nil
}
