package inputfilter

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/km-arc/go-inputfilter/framework/filter"
	"github.com/km-arc/go-inputfilter/framework/plugin"
	"github.com/km-arc/go-inputfilter/framework/validator"
)

// Element types accepted by the "type" key.
const (
	TypeInput       = "input"
	TypeInputFilter = "input_filter"
	TypeCollection  = "collection"
)

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithLogger sets the logger used for build tracing.
func WithLogger(l *zap.Logger) FactoryOption {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRequiredMessage replaces the default isEmpty message of every input
// and collection the factory creates.
func WithRequiredMessage(msg string) FactoryOption {
	return func(f *Factory) { f.requiredMessage = msg }
}

// Factory builds element trees from specs, resolving named filters,
// validators and shared elements through its registry.
//
//	f := inputfilter.NewFactory(plugin.NewDefault())
//	form, err := f.CreateInputFilter(map[string]any{
//	    "email": map[string]any{
//	        "filters":    []any{"string_trim"},
//	        "validators": []any{"email_address"},
//	    },
//	})
type Factory struct {
	registry        *plugin.Registry
	logger          *zap.Logger
	requiredMessage string
}

// NewFactory returns a factory using registry (the default registry when nil).
func NewFactory(registry *plugin.Registry, opts ...FactoryOption) *Factory {
	if registry == nil {
		registry = plugin.NewDefault()
	}
	f := &Factory{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the registry steps and shared elements are resolved from.
func (f *Factory) Registry() *plugin.Registry { return f.registry }

// ── Entry points ─────────────────────────────────────────────────────────────

// Create builds whatever element the spec's "type" names, an Input by default.
//
// When "type" names a shared element, the spec is layered onto that very
// instance: every Create appends the spec's filters and validators to the
// shared chains again, and the element can be placed only once per tree
// (a second placement is an ErrConfiguration).
func (f *Factory) Create(spec any) (Element, error) {
	s, err := toSpec(spec)
	if err != nil {
		return nil, err
	}
	typ, err := typeOf(s)
	if err != nil {
		return nil, err
	}
	switch typ {
	case "", TypeInput:
		return f.configureInput(f.newInput(), s)
	case TypeInputFilter:
		return f.populate(New(), s)
	case TypeCollection:
		return f.configureCollection(f.newCollection(), s)
	}

	shared, err := f.shared(typ)
	if err != nil {
		return nil, err
	}
	switch el := shared.(type) {
	case *Input:
		return f.configureInput(el, s)
	case *InputFilter:
		return f.populate(el, s)
	case *CollectionInputFilter:
		return f.configureCollection(el, s)
	}
	return nil, fmt.Errorf("%w: shared %q is a %T, not an element", ErrConfiguration, typ, shared)
}

// CreateInput builds an Input. The spec's type, when present, must be
// "input" or name a shared Input.
func (f *Factory) CreateInput(spec any) (*Input, error) {
	el, err := f.createAs(spec, TypeInput)
	if err != nil {
		return nil, err
	}
	return el.(*Input), nil
}

// CreateInputFilter builds an InputFilter whose children are the spec's
// entries other than "type" and "name".
func (f *Factory) CreateInputFilter(spec any) (*InputFilter, error) {
	el, err := f.createAs(spec, TypeInputFilter)
	if err != nil {
		return nil, err
	}
	return el.(*InputFilter), nil
}

// CreateCollection builds a CollectionInputFilter.
func (f *Factory) CreateCollection(spec any) (*CollectionInputFilter, error) {
	el, err := f.createAs(spec, TypeCollection)
	if err != nil {
		return nil, err
	}
	return el.(*CollectionInputFilter), nil
}

// createAs defaults an untyped spec to want and rejects any other kind.
func (f *Factory) createAs(spec any, want string) (Element, error) {
	s, err := toSpec(spec)
	if err != nil {
		return nil, err
	}
	typ, err := typeOf(s)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		typ = want
		s = withType(s, want)
	}

	el, err := f.Create(s)
	if err != nil {
		return nil, err
	}
	ok := false
	switch el.(type) {
	case *Input:
		ok = want == TypeInput
	case *InputFilter:
		ok = want == TypeInputFilter
	case *CollectionInputFilter:
		ok = want == TypeCollection
	}
	if !ok {
		return nil, fmt.Errorf("%w: type %q does not build an %s", ErrConfiguration, typ, want)
	}
	return el, nil
}

// ── Input ────────────────────────────────────────────────────────────────────

func (f *Factory) newInput() *Input {
	in := NewInput("")
	if f.requiredMessage != "" {
		in.SetRequiredMessage(f.requiredMessage)
	}
	return in
}

func (f *Factory) configureInput(in *Input, s *Spec) (*Input, error) {
	for _, key := range s.Keys() {
		v, _ := s.Get(key)
		var err error
		switch key {
		case "type":
		case "name":
			var name string
			if name, err = cast.ToStringE(v); err == nil {
				in.SetName(name)
			}
		case "required":
			err = setBool(v, func(b bool) { in.SetRequired(b) })
		case "allow_empty":
			err = setBool(v, func(b bool) { in.SetAllowEmpty(b) })
		case "continue_if_empty":
			err = setBool(v, func(b bool) { in.SetContinueIfEmpty(b) })
		case "break_on_failure":
			err = setBool(v, func(b bool) { in.SetBreakOnFailure(b) })
		case "error_message":
			var msg string
			if msg, err = cast.ToStringE(v); err == nil {
				in.SetErrorMessage(msg)
			}
		case "fallback_value":
			in.SetFallbackValue(plain(v))
		case "filters":
			err = f.attachFilters(in, v)
		case "validators":
			err = f.attachValidators(in, v)
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return nil, fmt.Errorf("%w: input %q: %s: %w", ErrConfiguration, in.Name(), key, err)
		}
	}
	f.logger.Debug("input built",
		zap.String("name", in.Name()),
		zap.Int("filters", in.FilterChain().Len()),
		zap.Int("validators", in.ValidatorChain().Len()),
	)
	return in, nil
}

func (f *Factory) attachFilters(in *Input, v any) error {
	if chain, ok := v.(*filter.Chain); ok {
		in.SetFilterChain(chain)
		return nil
	}
	entries, err := stepList(v)
	if err != nil {
		return err
	}
	for i, entry := range entries {
		if ready, ok := entry.(filter.Filter); ok {
			in.FilterChain().Attach(ready)
			continue
		}
		step, err := parseStep(entry)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		flt, err := f.registry.Filter(step.name, step.options)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		priority := filter.DefaultPriority
		if step.hasPriority {
			priority = step.priority
		}
		in.FilterChain().Attach(flt, priority)
	}
	return nil
}

func (f *Factory) attachValidators(in *Input, v any) error {
	if chain, ok := v.(*validator.Chain); ok {
		in.SetValidatorChain(chain)
		return nil
	}
	entries, err := stepList(v)
	if err != nil {
		return err
	}
	for i, entry := range entries {
		if ready, ok := entry.(validator.Validator); ok {
			in.ValidatorChain().Attach(ready, false)
			continue
		}
		step, err := parseStep(entry)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		val, err := f.registry.Validator(step.name, step.options)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		priority := validator.DefaultPriority
		if step.hasPriority {
			priority = step.priority
		}
		in.ValidatorChain().Attach(val, step.breakOnFailure, priority)
	}
	return nil
}

// ── InputFilter ──────────────────────────────────────────────────────────────

// populate adds every child entry of s to group. Numeric keys (positional
// entries) fall back to the child's own name.
func (f *Factory) populate(group *InputFilter, s *Spec) (*InputFilter, error) {
	for _, key := range s.Keys() {
		v, _ := s.Get(key)
		if v == nil {
			continue
		}
		if key == "type" || key == "name" {
			if name, ok := v.(string); ok {
				if key == "name" {
					group.SetName(name)
				}
				continue
			}
		}

		child, err := f.child(v)
		if err != nil {
			return nil, fmt.Errorf("input filter %q: child %q: %w", group.Name(), key, err)
		}
		name := key
		if _, err := strconv.Atoi(key); err == nil {
			name = child.Name()
		}
		if name == "" {
			return nil, fmt.Errorf("%w: input filter %q: entry %q has no name", ErrConfiguration, group.Name(), key)
		}
		if child.Name() == "" {
			child.SetName(name)
		}
		if existing, ok := group.elements[name]; ok && existing == child {
			// A shared group built again already holds this child.
			continue
		}
		if err := placeOnce(group, child); err != nil {
			return nil, fmt.Errorf("%w: input filter %q: entry %q: %w", ErrConfiguration, group.Name(), key, err)
		}
		if err := group.Add(child, name); err != nil {
			return nil, err
		}
	}
	f.logger.Debug("input filter built", zap.String("name", group.Name()), zap.Int("children", group.Count()))
	return group, nil
}

// placeOnce fails when child, or anything below it, is already part of
// group's tree. Only shared elements can be reached twice.
func placeOnce(group *InputFilter, child Element) error {
	inTree := map[Element]bool{}
	walk(group, func(el Element) { inTree[el] = true })

	var dup Element
	walk(child, func(el Element) {
		if dup == nil && inTree[el] {
			dup = el
		}
	})
	if dup != nil {
		return fmt.Errorf("shared element %q is already placed in this tree", dup.Name())
	}
	return nil
}

func (f *Factory) child(v any) (Element, error) {
	if el, ok := v.(Element); ok {
		return el, nil
	}
	return f.Create(v)
}

// ── Collection ───────────────────────────────────────────────────────────────

func (f *Factory) newCollection() *CollectionInputFilter {
	c := NewCollection(nil)
	if f.requiredMessage != "" {
		c.SetRequiredMessage(f.requiredMessage)
	}
	return c
}

func (f *Factory) configureCollection(c *CollectionInputFilter, s *Spec) (*CollectionInputFilter, error) {
	for _, key := range s.Keys() {
		v, _ := s.Get(key)
		var err error
		switch key {
		case "type":
		case "name":
			var name string
			if name, err = cast.ToStringE(v); err == nil {
				c.SetName(name)
			}
		case "required":
			err = setBool(v, func(b bool) { c.SetRequired(b) })
		case "required_message":
			var msg string
			if msg, err = cast.ToStringE(v); err == nil {
				c.SetRequiredMessage(msg)
			}
		case "count":
			var n int
			if n, err = cast.ToIntE(v); err == nil {
				c.SetCount(n)
			}
		case "input_filter":
			var template *InputFilter
			if template, err = f.template(v); err == nil {
				c.SetInputFilter(template)
			}
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			return nil, fmt.Errorf("%w: collection %q: %s: %w", ErrConfiguration, c.Name(), key, err)
		}
	}
	f.logger.Debug("collection built", zap.String("name", c.Name()), zap.Int("template_inputs", c.InputFilter().Count()))
	return c, nil
}

// template accepts an *InputFilter, the name of a shared one, or a spec.
func (f *Factory) template(v any) (*InputFilter, error) {
	switch t := v.(type) {
	case *InputFilter:
		return t, nil
	case string:
		shared, err := f.shared(t)
		if err != nil {
			return nil, err
		}
		if group, ok := shared.(*InputFilter); ok {
			return group, nil
		}
		return nil, fmt.Errorf("shared %q is a %T, not an input filter", t, shared)
	}
	return f.CreateInputFilter(v)
}

func (f *Factory) shared(name string) (any, error) {
	el, ok := f.registry.Shared(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", ErrConfiguration, name)
	}
	f.logger.Debug("layering onto shared element", zap.String("name", name))
	return el, nil
}

// ── Spec helpers ─────────────────────────────────────────────────────────────

type stepSpec struct {
	name           string
	options        plugin.Options
	priority       int
	hasPriority    bool
	breakOnFailure bool
}

// parseStep reads a bare name or a {name, options, priority,
// break_on_failure} entry.
func parseStep(entry any) (stepSpec, error) {
	if name, ok := entry.(string); ok {
		return stepSpec{name: name}, nil
	}
	s, err := toSpec(entry)
	if err != nil {
		return stepSpec{}, err
	}

	var step stepSpec
	v, ok := s.Get("name")
	if !ok {
		return stepSpec{}, fmt.Errorf("%w: step spec has no name", ErrConfiguration)
	}
	if step.name, err = cast.ToStringE(v); err != nil || step.name == "" {
		return stepSpec{}, fmt.Errorf("%w: step name must be a non-empty string", ErrConfiguration)
	}
	if v, ok := s.Get("options"); ok && v != nil {
		opts, ok := plain(v).(map[string]any)
		if !ok {
			return stepSpec{}, fmt.Errorf("%w: step %q: options must be a mapping", ErrConfiguration, step.name)
		}
		step.options = opts
	}
	if v, ok := s.Get("priority"); ok {
		if step.priority, err = cast.ToIntE(v); err != nil {
			return stepSpec{}, fmt.Errorf("%w: step %q: priority: %w", ErrConfiguration, step.name, err)
		}
		step.hasPriority = true
	}
	if v, ok := s.Get("break_on_failure"); ok {
		if step.breakOnFailure, err = cast.ToBoolE(v); err != nil {
			return stepSpec{}, fmt.Errorf("%w: step %q: break_on_failure: %w", ErrConfiguration, step.name, err)
		}
	}
	return step, nil
}

func stepList(v any) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return t, nil
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	}
	return nil, errors.New("must be a list")
}

func typeOf(s *Spec) (string, error) {
	v, ok := s.Get("type")
	if !ok || v == nil {
		return "", nil
	}
	typ, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: type must be a string, got %T", ErrConfiguration, v)
	}
	return typ, nil
}

// withType returns a copy of s with its type set, leaving the caller's
// spec untouched.
func withType(s *Spec, typ string) *Spec {
	out := NewSpec().Set("type", typ)
	for _, k := range s.Keys() {
		if k == "type" {
			continue
		}
		v, _ := s.Get(k)
		out.Set(k, v)
	}
	return out
}

func setBool(v any, set func(bool)) error {
	b, err := cast.ToBoolE(v)
	if err != nil {
		return err
	}
	set(b)
	return nil
}
