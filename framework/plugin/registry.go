package plugin

import (
	"errors"
	"fmt"
	"slices"

	"github.com/km-arc/go-inputfilter/framework/container"
	"github.com/km-arc/go-inputfilter/framework/filter"
	"github.com/km-arc/go-inputfilter/framework/validator"
)

// ErrUnknownStep is returned when a name has no registered constructor or
// shared instance.
var ErrUnknownStep = errors.New("plugin: unknown step")

const (
	filterPrefix    = "filter."
	validatorPrefix = "validator."
	sharedPrefix    = "shared."

	filtersTag    = "filters"
	validatorsTag = "validators"
)

// Options configure a step built by name, e.g. {"min": 3, "max": 20}.
type Options map[string]any

// FilterConstructor builds a filter from its options.
type FilterConstructor func(opts Options) (filter.Filter, error)

// ValidatorConstructor builds a validator from its options.
type ValidatorConstructor func(opts Options) (validator.Validator, error)

// Registry resolves filters, validators and shared tree elements by name.
// It is an explicit object handed to whoever builds trees; there is no
// process-wide registry.
//
//	reg := plugin.NewDefault()
//	trim, _ := reg.Filter("string_trim", nil)
//	length, _ := reg.Validator("string_length", plugin.Options{"min": 3})
type Registry struct {
	c *container.Container
}

// New returns an empty registry backed by c (a fresh container when nil).
func New(c *container.Container) *Registry {
	if c == nil {
		c = container.New()
	}
	return &Registry{c: c}
}

// NewDefault returns a registry holding every built-in filter and validator.
func NewDefault() *Registry {
	r := New(nil)
	RegisterDefaults(r)
	return r
}

// Container exposes the backing container.
func (r *Registry) Container() *container.Container { return r.c }

// ── Registration ──────────────────────────────────────────────────────────────

// RegisterFilter binds ctor under name and every alias.
func (r *Registry) RegisterFilter(name string, ctor FilterConstructor, aliases ...string) {
	r.register(filterPrefix, filtersTag, name, ctor, aliases)
}

// RegisterValidator binds ctor under name and every alias.
func (r *Registry) RegisterValidator(name string, ctor ValidatorConstructor, aliases ...string) {
	r.register(validatorPrefix, validatorsTag, name, ctor, aliases)
}

func (r *Registry) register(prefix, tag, name string, ctor any, aliases []string) {
	key := prefix + name
	r.c.Instance(key, ctor)
	r.c.Tag([]string{key}, tag)
	for _, alias := range aliases {
		// An alias equal to the name is the only failure and is harmless.
		_ = r.c.Alias(key, prefix+alias)
	}
}

// Share registers a pre-configured element (an input, input filter or
// collection) that specs can reference by name through their "type" key.
// The same instance is returned on every lookup, so a factory layering a
// spec onto it mutates it for every later build too.
func (r *Registry) Share(name string, element any) {
	r.c.Instance(sharedPrefix+name, element)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Filter builds the filter registered under name.
func (r *Registry) Filter(name string, opts Options) (filter.Filter, error) {
	ctor, err := resolve[FilterConstructor](r.c, filterPrefix, name)
	if err != nil {
		if r.HasValidator(name) {
			return nil, fmt.Errorf("%w (%q is a validator)", err, name)
		}
		return nil, err
	}
	f, err := ctor(opts)
	if err != nil {
		return nil, fmt.Errorf("plugin: filter %q: %w", name, err)
	}
	return f, nil
}

// Validator builds the validator registered under name.
func (r *Registry) Validator(name string, opts Options) (validator.Validator, error) {
	ctor, err := resolve[ValidatorConstructor](r.c, validatorPrefix, name)
	if err != nil {
		if r.HasFilter(name) {
			return nil, fmt.Errorf("%w (%q is a filter)", err, name)
		}
		return nil, err
	}
	v, err := ctor(opts)
	if err != nil {
		return nil, fmt.Errorf("plugin: validator %q: %w", name, err)
	}
	return v, nil
}

// Shared returns the element registered with Share.
func (r *Registry) Shared(name string) (any, bool) {
	if name == "" || !r.c.Bound(sharedPrefix+name) {
		return nil, false
	}
	el, err := r.c.Make(sharedPrefix + name)
	return el, err == nil
}

// HasFilter reports whether a filter is registered under name or alias.
func (r *Registry) HasFilter(name string) bool { return r.c.Bound(filterPrefix + name) }

// HasValidator reports whether a validator is registered under name or alias.
func (r *Registry) HasValidator(name string) bool { return r.c.Bound(validatorPrefix + name) }

// Filters returns the canonical names of every registered filter.
func (r *Registry) Filters() []string { return r.names(filtersTag, filterPrefix) }

// Validators returns the canonical names of every registered validator.
func (r *Registry) Validators() []string { return r.names(validatorsTag, validatorPrefix) }

func (r *Registry) names(tag, prefix string) []string {
	keys := r.c.TaggedKeys(tag)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len(prefix):])
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func resolve[T any](c *container.Container, prefix, name string) (T, error) {
	var zero T
	if name == "" || !c.Bound(prefix+name) {
		return zero, fmt.Errorf("%w: %s%q", ErrUnknownStep, prefix, name)
	}
	return container.Resolve[T](c, prefix+name)
}
