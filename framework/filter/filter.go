package filter

import "slices"

// DefaultPriority is used when Attach is called without an explicit priority.
const DefaultPriority = 1000

// ── Types ────────────────────────────────────────────────────────────────────

// Filter transforms a single value. Implementations must not mutate their
// input and should return values they do not understand unchanged.
type Filter interface {
	Filter(value any) any
}

// Func adapts a plain function to the Filter interface.
type Func func(value any) any

// Filter calls f(value).
func (f Func) Filter(value any) any { return f(value) }

// step is one attached filter together with its priority.
type step struct {
	filter   Filter
	priority int
}

// ── Chain ────────────────────────────────────────────────────────────────────

// Chain is an ordered pipeline of filters. Steps with a higher priority run
// first; steps sharing a priority run in the order they were attached.
//
//	chain := filter.NewChain()
//	chain.Attach(filter.StringTrim{})
//	chain.Attach(filter.StringToLower{}, 2000) // runs before StringTrim
//	out := chain.Filter("  HELLO ")           // "hello"
type Chain struct {
	steps []step
}

// NewChain returns an empty chain. An empty chain is the identity.
func NewChain() *Chain {
	return &Chain{}
}

// Attach appends f with the given priority (DefaultPriority if omitted).
func (c *Chain) Attach(f Filter, priority ...int) *Chain {
	p := DefaultPriority
	if len(priority) > 0 {
		p = priority[0]
	}
	c.steps = append(c.steps, step{filter: f, priority: p})
	return c
}

// AttachFunc is shorthand for Attach(filter.Func(fn), priority...).
func (c *Chain) AttachFunc(fn func(value any) any, priority ...int) *Chain {
	return c.Attach(Func(fn), priority...)
}

// Merge appends every step of other, keeping each step's priority.
func (c *Chain) Merge(other *Chain) *Chain {
	if other == nil {
		return c
	}
	c.steps = append(c.steps, other.steps...)
	return c
}

// Filter runs value through every step in priority order.
func (c *Chain) Filter(value any) any {
	if c == nil {
		return value
	}
	for _, s := range c.ordered() {
		value = s.filter.Filter(value)
	}
	return value
}

// Len returns the number of attached steps.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.steps)
}

// Filters returns the attached filters in execution order.
func (c *Chain) Filters() []Filter {
	ordered := c.ordered()
	out := make([]Filter, len(ordered))
	for i, s := range ordered {
		out[i] = s.filter
	}
	return out
}

// Clone returns a chain with its own step list. The filters are shared.
func (c *Chain) Clone() *Chain {
	if c == nil {
		return NewChain()
	}
	return &Chain{steps: slices.Clone(c.steps)}
}

// ordered returns a stably sorted copy of the steps, highest priority first.
func (c *Chain) ordered() []step {
	if c == nil || len(c.steps) == 0 {
		return nil
	}
	out := slices.Clone(c.steps)
	slices.SortStableFunc(out, func(a, b step) int {
		return b.priority - a.priority
	})
	return out
}
