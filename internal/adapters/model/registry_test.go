package model

import (
	"testing"

	"github.com/council-mode/council/internal/core"
)

func TestRegistry_GetUnconfiguredProvider(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("claude")
	if !core.IsCategory(err, core.ErrCatValidation) {
		t.Errorf("err = %v, want validation for a known but unconfigured provider", err)
	}
}

func TestRegistry_GetUnknownProvider(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("mystery")
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Errorf("err = %v, want not_found", err)
	}
}

func TestRegistry_ConfigureThenGet(t *testing.T) {
	r := NewRegistry()
	r.Configure("claude", ProviderConfig{
		Name:    "claude",
		BaseURL: "https://api.anthropic.com/v1",
		Model:   "claude-sonnet",
	})

	first, err := r.Get("claude")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	second, err := r.Get("claude")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first != second {
		t.Error("Get() should cache the built client")
	}
}

func TestRegistry_ConfigureDropsCachedClient(t *testing.T) {
	r := NewRegistry()
	r.Configure("claude", ProviderConfig{Name: "claude", BaseURL: "https://one", Model: "m"})

	first, err := r.Get("claude")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	r.Configure("claude", ProviderConfig{Name: "claude", BaseURL: "https://two", Model: "m"})
	second, err := r.Get("claude")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first == second {
		t.Error("reconfiguring should rebuild the client")
	}
}

func TestRegistry_RegisterDirectClient(t *testing.T) {
	r := NewRegistry()
	fake := &ScriptedClient{ProviderName: "fake", Content: "x"}
	r.Register("fake", fake)

	got, err := r.Get("fake")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != core.ModelClient(fake) {
		t.Error("Get() should return the registered client unchanged")
	}
	if !r.Has("fake") {
		t.Error("Has() should see the registered client")
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", &ScriptedClient{ProviderName: "zeta"})

	names := r.List()
	if len(names) != 4 {
		t.Fatalf("List() = %v, want the three built-ins plus zeta", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("List() not sorted: %v", names)
		}
	}
}

func TestRegistry_CustomFactory(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("custom", func(cfg ProviderConfig) (core.ModelClient, error) {
		return &ScriptedClient{ProviderName: cfg.Name}, nil
	})
	r.Configure("custom", ProviderConfig{Name: "custom"})

	got, err := r.Get("custom")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name() != "custom" {
		t.Errorf("Name() = %q", got.Name())
	}
}
