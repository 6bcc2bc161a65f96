package model

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/council-mode/council/internal/core"
)

// ClientFactory creates a client from provider configuration.
type ClientFactory func(cfg ProviderConfig) (core.ModelClient, error)

// Registry resolves configured model clients. It is built once at process
// start and handed to the dispatcher by reference; there is no lazily
// initialized package-level registry.
type Registry struct {
	factories map[string]ClientFactory
	clients   map[string]core.ModelClient
	configs   map[string]ProviderConfig
	mu        sync.RWMutex
}

// NewRegistry creates a registry with the built-in provider factories.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]ClientFactory),
		clients:   make(map[string]core.ModelClient),
		configs:   make(map[string]ProviderConfig),
	}
	httpFactory := func(cfg ProviderConfig) (core.ModelClient, error) {
		return NewHTTPClient(cfg, &http.Client{})
	}
	for _, name := range []string{"claude", "gpt", "gemini"} {
		r.factories[name] = httpFactory
	}
	return r
}

// RegisterFactory registers a factory for a provider type.
func (r *Registry) RegisterFactory(name string, factory ClientFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Register adds a ready-made client directly, bypassing the factory. Used
// for test fakes and custom providers.
func (r *Registry) Register(name string, client core.ModelClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
}

// Configure sets configuration for a provider. Any cached client is
// dropped so the next Get rebuilds it.
func (r *Registry) Configure(name string, cfg ProviderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
	delete(r.clients, name)
}

// Get returns a client by name, creating it from its factory if necessary.
func (r *Registry) Get(name string) (core.ModelClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[name]; ok {
		return client, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, core.ErrNotFound("model provider", name)
	}
	cfg, ok := r.configs[name]
	if !ok {
		return nil, core.ErrValidation(core.CodeInvalidConfig, fmt.Sprintf("provider %s is not configured", name))
	}

	client, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating client %s: %w", name, err)
	}
	r.clients[name] = client
	return client, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for name := range r.factories {
		seen[name] = true
	}
	for name := range r.clients {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks whether a provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.clients[name]; ok {
		return true
	}
	_, ok := r.factories[name]
	return ok
}

var _ core.AdapterRegistry = (*Registry)(nil)
