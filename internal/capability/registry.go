package capability

import (
	"fmt"

	"github.com/mohammad-safakhou/neurohub/config"
)

// ErrProviderMissing indicates no provider is registered for a category.
var ErrProviderMissing = fmt.Errorf("provider missing")

// Registry holds providers in the order they were configured.
type Registry struct {
	order     []string
	providers map[string]Provider
}

// NewRegistry registers providers in order. A later provider for the same
// category replaces the earlier one but keeps its position.
func NewRegistry(providers ...Provider) *Registry {
	reg := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		if p == nil {
			continue
		}
		if _, ok := reg.providers[p.Category()]; !ok {
			reg.order = append(reg.order, p.Category())
		}
		reg.providers[p.Category()] = p
	}
	return reg
}

// NewRegistryFromConfig builds HTTP providers for the router categories.
func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	pc := HTTPProviderConfig{
		Secret:        cfg.Auth.ServiceSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		ProbeTimeout:  cfg.Agents.ProbeTimeout,
		InvokeTimeout: cfg.Agents.InvokeTimeout,
	}
	providers := make([]Provider, 0, len(config.RouterCategories))
	for _, category := range config.RouterCategories {
		url, ok := cfg.Agents.Endpoints[category]
		if !ok || url == "" {
			return nil, fmt.Errorf("%w: no endpoint for %s", ErrProviderMissing, category)
		}
		providers = append(providers, NewHTTPProvider(category, url, pc))
	}
	return NewRegistry(providers...), nil
}

// Provider returns the provider for a category.
func (r *Registry) Provider(category string) (Provider, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderMissing, category)
	}
	p, ok := r.providers[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderMissing, category)
	}
	return p, nil
}

// Providers returns all providers in configured order.
func (r *Registry) Providers() []Provider {
	if r == nil {
		return nil
	}
	out := make([]Provider, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.providers[c])
	}
	return out
}

// Categories returns the registered categories in configured order.
func (r *Registry) Categories() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}
