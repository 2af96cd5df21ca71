package validator

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// DefaultPriority is used when Attach is called without an explicit priority.
const DefaultPriority = 1

// ── Types ────────────────────────────────────────────────────────────────────

// Messages maps a failure code to a human-readable message.
//
//	{"isEmpty": "Value is required and can't be empty"}
type Messages map[string]string

// Validator checks a single value. context carries the sibling raw values of
// the group being validated and may be nil.
//
// Validators are stateless: failure messages are returned, never stored, so
// one instance can be shared by many inputs and chains.
type Validator interface {
	IsValid(value any, context map[string]any) (bool, Messages)
}

// Func adapts a plain function to the Validator interface.
type Func func(value any, context map[string]any) (bool, Messages)

// IsValid calls f(value, context).
func (f Func) IsValid(value any, context map[string]any) (bool, Messages) {
	return f(value, context)
}

// IsEmpty reports whether value is nil, the empty string, or an empty
// slice, array or map. Zero numbers and false are not empty.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ── Chain ────────────────────────────────────────────────────────────────────

type entry struct {
	validator      Validator
	breakOnFailure bool
	priority       int
}

// Chain is an ordered pipeline of validators. Validators with a higher
// priority run first; equal priorities run in attach order.
//
// Every call to IsValid starts from an empty message set. A failing validator
// attached with breakOnFailure stops the chain.
type Chain struct {
	entries  []entry
	messages Messages
}

// NewChain returns an empty chain. An empty chain accepts every value.
func NewChain() *Chain {
	return &Chain{messages: Messages{}}
}

// Attach appends v. priority defaults to DefaultPriority.
func (c *Chain) Attach(v Validator, breakOnFailure bool, priority ...int) *Chain {
	p := DefaultPriority
	if len(priority) > 0 {
		p = priority[0]
	}
	c.entries = append(c.entries, entry{validator: v, breakOnFailure: breakOnFailure, priority: p})
	return c
}

// AttachFunc is shorthand for Attach(validator.Func(fn), breakOnFailure, priority...).
func (c *Chain) AttachFunc(fn func(value any, context map[string]any) (bool, Messages), breakOnFailure bool, priority ...int) *Chain {
	return c.Attach(Func(fn), breakOnFailure, priority...)
}

// Prepend places v ahead of every validator currently attached.
func (c *Chain) Prepend(v Validator, breakOnFailure bool) *Chain {
	p := DefaultPriority
	for _, e := range c.entries {
		if e.priority >= p {
			p = e.priority + 1
		}
	}
	c.entries = append(c.entries, entry{validator: v, breakOnFailure: breakOnFailure, priority: p})
	return c
}

// Merge appends every validator of other, keeping break flags and priorities.
func (c *Chain) Merge(other *Chain) *Chain {
	if other == nil {
		return c
	}
	c.entries = append(c.entries, other.entries...)
	return c
}

// IsValid runs the chain against value and records the failure messages of
// this call, replacing those of any previous call.
func (c *Chain) IsValid(value any, context map[string]any) bool {
	c.messages = Messages{}
	valid := true
	for _, e := range c.ordered() {
		ok, msgs := e.validator.IsValid(value, context)
		if ok {
			continue
		}
		valid = false
		maps.Copy(c.messages, msgs)
		if e.breakOnFailure {
			break
		}
	}
	return valid
}

// Messages returns the failures recorded by the last IsValid call.
func (c *Chain) Messages() Messages {
	if c == nil || c.messages == nil {
		return Messages{}
	}
	return maps.Clone(c.messages)
}

// Contains reports whether any attached validator satisfies match.
func (c *Chain) Contains(match func(Validator) bool) bool {
	if c == nil {
		return false
	}
	for _, e := range c.entries {
		if match(e.validator) {
			return true
		}
	}
	return false
}

// Validators returns the attached validators in execution order.
func (c *Chain) Validators() []Validator {
	ordered := c.ordered()
	out := make([]Validator, len(ordered))
	for i, e := range ordered {
		out[i] = e.validator
	}
	return out
}

// Len returns the number of attached validators.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Clone returns a chain with its own entry list and no recorded messages.
// The validators themselves are shared.
func (c *Chain) Clone() *Chain {
	if c == nil {
		return NewChain()
	}
	return &Chain{entries: slices.Clone(c.entries), messages: Messages{}}
}

func (c *Chain) ordered() []entry {
	if c == nil || len(c.entries) == 0 {
		return nil
	}
	out := slices.Clone(c.entries)
	slices.SortStableFunc(out, func(a, b entry) int {
		return b.priority - a.priority
	})
	return out
}

// ── Message templates ────────────────────────────────────────────────────────

// failure builds a single-entry Messages for code, preferring an override
// when one is configured. %name% placeholders are replaced from vars.
func failure(overrides Messages, code, template string, vars map[string]any) Messages {
	if msg, ok := overrides[code]; ok {
		template = msg
	}
	return Messages{code: format(template, vars)}
}

func format(template string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(template, "%") {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "%"+k+"%", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
