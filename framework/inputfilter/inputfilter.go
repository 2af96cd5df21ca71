package inputfilter

import (
	"fmt"
	"maps"
	"slices"
)

// InputFilter is a named, ordered group of inputs and nested groups that
// is validated as a unit against one data map.
//
// An InputFilter holds the state of one validation cycle (data, results,
// messages); run one cycle at a time per instance.
type InputFilter struct {
	name string

	names    []string
	elements map[string]Element

	validationGroup []string

	data    map[string]any
	hasData bool
	unknown map[string]any

	validInputs   map[string]Element
	invalidInputs map[string]Element
}

// New returns an empty InputFilter.
func New() *InputFilter {
	return &InputFilter{elements: make(map[string]Element)}
}

// Name returns the group's name, its default key in a parent group.
func (f *InputFilter) Name() string { return f.name }

// SetName renames the group.
func (f *InputFilter) SetName(name string) { f.name = name }

// ── Building ─────────────────────────────────────────────────────────────────

// Add registers child under name, or under child.Name() when name is
// omitted. Adding to an existing name merges two inputs or two input
// filters; any other combination replaces the old entry in place.
func (f *InputFilter) Add(child Element, name ...string) error {
	if child == nil {
		return fmt.Errorf("%w: cannot add a nil element", ErrInvalidArgument)
	}
	key := child.Name()
	if len(name) > 0 && name[0] != "" {
		key = name[0]
	}
	if key == "" {
		return fmt.Errorf("%w: element %T has no name", ErrInvalidArgument, child)
	}

	existing, ok := f.elements[key]
	if !ok {
		f.names = append(f.names, key)
		f.elements[key] = child
		return nil
	}

	switch old := existing.(type) {
	case *Input:
		if in, ok := child.(*Input); ok {
			old.Merge(in)
			return nil
		}
	case *InputFilter:
		if nested, ok := child.(*InputFilter); ok {
			return old.Merge(nested)
		}
	}
	f.elements[key] = child
	return nil
}

// Get returns the element registered under name.
func (f *InputFilter) Get(name string) (Element, error) {
	el, ok := f.elements[name]
	if !ok {
		return nil, fmt.Errorf("%w: no input named %q", ErrNotFound, name)
	}
	return el, nil
}

// Has reports whether an element is registered under name.
func (f *InputFilter) Has(name string) bool {
	_, ok := f.elements[name]
	return ok
}

// Remove unregisters name.
func (f *InputFilter) Remove(name string) error {
	if !f.Has(name) {
		return fmt.Errorf("%w: no input named %q", ErrNotFound, name)
	}
	delete(f.elements, name)
	f.names = slices.DeleteFunc(f.names, func(n string) bool { return n == name })
	f.validationGroup = slices.DeleteFunc(f.validationGroup, func(n string) bool { return n == name })
	return nil
}

// Count returns the number of registered elements.
func (f *InputFilter) Count() int { return len(f.names) }

// Names returns the registered names in insertion order.
func (f *InputFilter) Names() []string { return slices.Clone(f.names) }

// Merge adds every element of other, in other's order, using the Add rules.
func (f *InputFilter) Merge(other *InputFilter) error {
	if other == nil {
		return nil
	}
	for _, name := range other.names {
		if err := f.Add(other.elements[name], name); err != nil {
			return err
		}
	}
	return nil
}

// ── Validation group ─────────────────────────────────────────────────────────

// SetValidationGroup restricts the next validations to names. Calling it
// with no names restores the default of every registered element.
func (f *InputFilter) SetValidationGroup(names ...string) error {
	for _, name := range names {
		if !f.Has(name) {
			return fmt.Errorf("%w: validation group references unknown input %q", ErrNotFound, name)
		}
	}
	if len(names) == 0 {
		f.validationGroup = nil
		return nil
	}
	f.validationGroup = slices.Clone(names)
	return nil
}

// ValidationGroup returns the names the next validation evaluates.
func (f *InputFilter) ValidationGroup() []string {
	if f.validationGroup == nil {
		return f.Names()
	}
	return slices.Clone(f.validationGroup)
}

func (f *InputFilter) active() []string {
	if f.validationGroup == nil {
		return f.names
	}
	return f.validationGroup
}

// ── Data ─────────────────────────────────────────────────────────────────────

// SetData distributes data over the registered elements and starts a new
// validation cycle. data may be any map with string keys, url.Values, an
// iter.Seq2[string, any] or a Cursor.
//
// Inputs absent from data are reset; nested groups absent from data receive
// empty data, so their inputs resolve to nil. On error the previous cycle is
// dropped as well and IsValid fails with ErrRuntimeUsage.
func (f *InputFilter) SetData(data any) error {
	m, ok := toMap(data)
	if !ok {
		f.clearData()
		return fmt.Errorf("%w: input filter data must be map-like, got %T", ErrInvalidArgument, data)
	}

	f.data = m
	f.hasData = true
	f.validInputs = nil
	f.invalidInputs = nil

	for _, name := range f.names {
		value, present := m[name]
		switch el := f.elements[name].(type) {
		case *Input:
			if present {
				el.SetValue(value)
			} else {
				el.ResetValue()
			}
		case group:
			if !present || value == nil {
				value = el.emptyData()
			}
			if err := el.SetData(value); err != nil {
				f.clearData()
				return fmt.Errorf("input %q: %w", name, err)
			}
		}
	}

	f.unknown = make(map[string]any)
	for k, v := range m {
		if !f.Has(k) {
			f.unknown[k] = v
		}
	}
	return nil
}

// clearData drops a partially applied cycle so IsValid reports
// ErrRuntimeUsage until the next successful SetData.
func (f *InputFilter) clearData() {
	f.data = nil
	f.hasData = false
	f.unknown = nil
}

// Data returns the data passed to the last SetData, unfiltered.
func (f *InputFilter) Data() map[string]any { return f.data }

func (f *InputFilter) emptyData() any { return map[string]any{} }

// ── Validation ───────────────────────────────────────────────────────────────

// IsValid validates every element of the active validation group. There is
// no short-circuit: each element is checked and reports its own messages.
//
// context is passed to every validator in the tree; when nil, the raw values
// of every registered element are used, inside the validation group or not.
// Optional inputs missing from the data are skipped.
func (f *InputFilter) IsValid(context map[string]any) (bool, error) {
	if !f.hasData {
		return false, fmt.Errorf("%w: IsValid called before SetData", ErrRuntimeUsage)
	}
	if context == nil {
		context = f.rawValuesOf(f.names)
	}

	f.validInputs = make(map[string]Element)
	f.invalidInputs = make(map[string]Element)
	valid := true

	for _, name := range f.active() {
		el := f.elements[name]
		ok := true

		switch e := el.(type) {
		case *Input:
			if _, present := f.data[name]; !present && !e.IsRequired() {
				continue
			}
			ok = e.IsValid(context)
		case group:
			var err error
			if ok, err = e.IsValid(context); err != nil {
				return false, fmt.Errorf("input %q: %w", name, err)
			}
		}

		if ok {
			f.validInputs[name] = el
		} else {
			f.invalidInputs[name] = el
			valid = false
		}
	}
	return valid, nil
}

// ValidInput returns the elements that passed the last validation.
func (f *InputFilter) ValidInput() map[string]Element { return maps.Clone(f.validInputs) }

// InvalidInput returns the elements that failed the last validation.
func (f *InputFilter) InvalidInput() map[string]Element { return maps.Clone(f.invalidInputs) }

// Messages returns the failures of the last validation keyed by name.
// Inputs contribute validator.Messages, nested filters a nested map and
// collections a map keyed by the failing record indexes.
func (f *InputFilter) Messages() map[string]any {
	out := make(map[string]any, len(f.invalidInputs))
	for name, el := range f.invalidInputs {
		switch e := el.(type) {
		case *Input:
			out[name] = e.Messages()
		case group:
			out[name] = e.messageTree()
		}
	}
	return out
}

func (f *InputFilter) messageTree() any { return f.Messages() }

// ── Values ───────────────────────────────────────────────────────────────────

// Values returns the filtered values of the active validation group.
func (f *InputFilter) Values() map[string]any {
	out := make(map[string]any, len(f.names))
	for _, name := range f.active() {
		switch e := f.elements[name].(type) {
		case *Input:
			out[name] = e.Value()
		case group:
			out[name] = e.valueTree()
		}
	}
	return out
}

// RawValues returns the unfiltered values of the active validation group.
func (f *InputFilter) RawValues() map[string]any { return f.rawValuesOf(f.active()) }

func (f *InputFilter) rawValuesOf(names []string) map[string]any {
	out := make(map[string]any, len(names))
	for _, name := range names {
		switch e := f.elements[name].(type) {
		case *Input:
			out[name] = e.RawValue()
		case group:
			out[name] = e.rawValueTree()
		}
	}
	return out
}

func (f *InputFilter) valueTree() any    { return f.Values() }
func (f *InputFilter) rawValueTree() any { return f.RawValues() }

// Value returns the filtered value of a single element.
func (f *InputFilter) Value(name string) (any, error) {
	el, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	switch e := el.(type) {
	case *Input:
		return e.Value(), nil
	case group:
		return e.valueTree(), nil
	}
	return nil, nil
}

// RawValue returns the unfiltered value of a single element.
func (f *InputFilter) RawValue(name string) (any, error) {
	el, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	switch e := el.(type) {
	case *Input:
		return e.RawValue(), nil
	case group:
		return e.rawValueTree(), nil
	}
	return nil, nil
}

// ── Unknown fields ───────────────────────────────────────────────────────────

// HasUnknown reports whether the last SetData carried keys that match no
// registered element. Nested groups track their own unknown keys.
func (f *InputFilter) HasUnknown() (bool, error) {
	if !f.hasData {
		return false, fmt.Errorf("%w: HasUnknown called before SetData", ErrRuntimeUsage)
	}
	return len(f.unknown) > 0, nil
}

// Unknown returns the unregistered keys of the last SetData with their values.
func (f *InputFilter) Unknown() (map[string]any, error) {
	if !f.hasData {
		return nil, fmt.Errorf("%w: Unknown called before SetData", ErrRuntimeUsage)
	}
	return maps.Clone(f.unknown), nil
}

// ── Clone ────────────────────────────────────────────────────────────────────

// Clone returns a deep copy of the tree structure without any cycle state.
func (f *InputFilter) Clone() *InputFilter {
	cp := &InputFilter{
		name:            f.name,
		names:           slices.Clone(f.names),
		elements:        make(map[string]Element, len(f.elements)),
		validationGroup: slices.Clone(f.validationGroup),
	}
	for name, el := range f.elements {
		cp.elements[name] = el.cloneElement()
	}
	return cp
}

func (f *InputFilter) cloneElement() Element { return f.Clone() }
