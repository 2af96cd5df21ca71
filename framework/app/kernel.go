package app

import (
	"errors"

	"go.uber.org/zap"

	"github.com/km-arc/go-inputfilter/framework/config"
	"github.com/km-arc/go-inputfilter/framework/container"
	"github.com/km-arc/go-inputfilter/framework/inputfilter"
	"github.com/km-arc/go-inputfilter/framework/plugin"
	"github.com/km-arc/go-inputfilter/framework/providers"
)

// Version is reported by the CLI's --version flag.
const Version = "0.1.0"

// ErrNotBooted is returned by the service accessors before Boot has run.
var ErrNotBooted = errors.New("app: application not booted")

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	closed bool
}

// New creates the application and registers the framework providers.
// Call Boot before resolving anything.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Registering before Boot never fails.
	_ = registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	_ = registry.Register(&providers.LoggingServiceProvider{})
	_ = registry.Register(&providers.PluginServiceProvider{})
	_ = registry.Register(&providers.InputFilterServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, providers.ConfigKey)
}

// Logger resolves the application logger.
func (a *Application) Logger() (*zap.Logger, error) {
	return resolveBooted[*zap.Logger](a, providers.LoggerKey)
}

// Registry resolves the filter/validator registry.
func (a *Application) Registry() (*plugin.Registry, error) {
	return resolveBooted[*plugin.Registry](a, providers.PluginsKey)
}

// Factory resolves the element factory, loading its deferred provider on
// first use.
func (a *Application) Factory() (*inputfilter.Factory, error) {
	return resolveBooted[*inputfilter.Factory](a, providers.FactoryKey)
}

// resolveBooted refuses to build services before Boot has named the logger
// and registered the built-in steps.
func resolveBooted[T any](a *Application, abstract string) (T, error) {
	if !a.Providers.Booted() {
		var zero T
		return zero, ErrNotBooted
	}
	return container.Resolve[T](a.Container, abstract)
}

// Close flushes the logger if it was ever built. Calling it again is a no-op.
func (a *Application) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if !a.Resolved(providers.LoggerKey) {
		return nil
	}
	logger, err := container.Resolve[*zap.Logger](a.Container, providers.LoggerKey)
	if err != nil {
		return err
	}
	_ = logger.Sync() // stderr sync fails on some platforms
	return nil
}

// Closed reports whether Close has run.
func (a *Application) Closed() bool { return a.closed }
