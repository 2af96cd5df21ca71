// Package container provides a small IoC container and a Service Provider
// system. The input filter framework uses it as its step registry: every
// filter and validator constructor, and every shared input or input filter,
// is a binding in a container.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        (everything resolves after this)
//  4. Build input filters
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("filter.string_trim", func(c *container.Container) (any, error) {
//	    return filter.StringTrim{}, nil
//	})
//
//	// Singleton: created once, reused
//	c.Singleton("logger", func(c *container.Container) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return logging.New(cfg.Log)
//	})
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("validator.not_empty", "validator.NotEmpty")
//
// # Resolving
//
//	raw, err := c.Make("logger")
//	logger, err := container.Resolve[*zap.Logger](c, "logger")
//
// Resolution never panics except through MustResolve; an unknown abstract
// yields an error wrapping ErrNotBound.
//
// # Tags
//
//	c.Tag([]string{"filter.string_trim", "filter.to_int"}, "filters")
//	keys := c.TaggedKeys("filters")
//
// # Extend / Decorate
//
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return instance.(*zap.Logger).Named("inputfilter")
//	})
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) (any, error) {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
package container
