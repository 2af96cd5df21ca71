package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-inputfilter/framework/config"
	"github.com/km-arc/go-inputfilter/framework/container"
	"github.com/km-arc/go-inputfilter/framework/inputfilter"
	"github.com/km-arc/go-inputfilter/framework/logging"
	"github.com/km-arc/go-inputfilter/framework/plugin"
)

// Abstracts bound by the framework providers.
const (
	ConfigKey  = "config"
	LoggerKey  = "logger"
	PluginsKey = "plugins"
	FactoryKey = "inputfilter.factory"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton(ConfigKey, func(c *container.Container) (any, error) {
		return config.Load(envFiles...), nil
	})
	_ = app.Alias(ConfigKey, "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger from the "config" binding.
//
// Bound abstracts:
//   - "logger"  → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton(LoggerKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log)
	})
}

// Boot names the logger after the application, fails early on a bad
// LOG_LEVEL and traces later resolutions at debug level.
func (p *LoggingServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, ConfigKey)
	if err != nil {
		return err
	}
	if _, err := app.Make(LoggerKey); err != nil {
		return err
	}
	app.Extend(LoggerKey, func(instance any, _ *container.Container) any {
		return instance.(*zap.Logger).Named(cfg.App.Name)
	})

	logger, err := container.Resolve[*zap.Logger](app, LoggerKey)
	if err != nil {
		return err
	}
	app.AfterResolving(func(abstract string, _ any) {
		logger.Debug("resolved", zap.String("abstract", abstract))
	})
	return nil
}

// ── PluginServiceProvider ─────────────────────────────────────────────────────

// PluginServiceProvider registers the step registry. Built-in filters and
// validators are bound into the application container itself, so they can be
// aliased, extended or replaced like any other binding.
//
// Bound abstracts:
//   - "plugins"                     → *plugin.Registry
//   - "filter.*", "validator.*"     → step constructors
type PluginServiceProvider struct {
	container.BaseProvider
}

func (p *PluginServiceProvider) Register(app *container.Container) {
	app.Singleton(PluginsKey, func(c *container.Container) (any, error) {
		reg := plugin.New(c)
		plugin.RegisterDefaults(reg)
		return reg, nil
	})
}

// ── InputFilterServiceProvider ────────────────────────────────────────────────

// InputFilterServiceProvider registers the element factory. It is deferred:
// nothing is built until "inputfilter.factory" is first resolved.
//
// Bound abstracts:
//   - "inputfilter.factory"  → *inputfilter.Factory
//
// Configuration keys read from "config":
//   - InputFilter.RequiredMessage
type InputFilterServiceProvider struct {
	container.BaseProvider
}

func (p *InputFilterServiceProvider) IsDeferred() bool   { return true }
func (p *InputFilterServiceProvider) Provides() []string { return []string{FactoryKey} }

func (p *InputFilterServiceProvider) Register(app *container.Container) {
	app.Singleton(FactoryKey, func(c *container.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, ConfigKey)
		if err != nil {
			return nil, err
		}
		logger, err := container.Resolve[*zap.Logger](c, LoggerKey)
		if err != nil {
			return nil, err
		}
		reg, err := container.Resolve[*plugin.Registry](c, PluginsKey)
		if err != nil {
			return nil, err
		}
		return inputfilter.NewFactory(reg,
			inputfilter.WithLogger(logger.Named("inputfilter")),
			inputfilter.WithRequiredMessage(cfg.InputFilter.RequiredMessage),
		), nil
	})
}
