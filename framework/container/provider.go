package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the bindings of one concern.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	type PluginServiceProvider struct{ container.BaseProvider }
//
//	func (p *PluginServiceProvider) Register(app *container.Container) {
//	    app.Singleton("plugins", func(c *container.Container) (any, error) {
//	        return plugin.NewDefault(), nil
//	    })
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here. Use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(app *Container) error

	// Provides returns the list of abstract keys this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil / empty slice if the provider is always eager.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily, when
	// one of its Provides() abstracts is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[ServiceProvider]bool // provider → still waiting for first use
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[ServiceProvider]bool),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// A provider registered after Boot() is booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.deferred[provider] = true
		r.interceptDeferred(provider)
		return nil
	}

	provider.Register(r.app)
	r.eager = append(r.eager, provider)

	if r.booted {
		return provider.Boot(r.app)
	}
	return nil
}

// interceptDeferred binds a placeholder for each deferred abstract.
// The first Make() of any of them registers (and, once booted, boots)
// the provider for real, then resolves the provider's own binding.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, abstract := range provider.Provides() {
		abs := abstract
		r.app.Bind(abs, func(c *Container) (any, error) {
			if err := r.loadDeferred(provider); err != nil {
				return nil, err
			}
			return c.Make(abs)
		})
	}
}

func (r *ProviderRegistry) loadDeferred(provider ServiceProvider) error {
	if !r.deferred[provider] {
		return nil
	}
	delete(r.deferred, provider)
	// Drop the placeholders so a provider that forgets one of its
	// abstracts yields ErrNotBound instead of recursing.
	for _, abs := range provider.Provides() {
		r.app.Forget(abs)
	}
	provider.Register(r.app)
	if r.booted {
		return provider.Boot(r.app)
	}
	return nil
}

// Boot calls Boot() on all eager providers, stopping at the first error.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.eager {
		if err := provider.Boot(r.app); err != nil {
			return err
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }
