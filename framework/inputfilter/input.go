package inputfilter

import (
	"maps"

	"github.com/km-arc/go-inputfilter/framework/filter"
	"github.com/km-arc/go-inputfilter/framework/validator"
)

// ErrorMessageKey is the only key of an input's messages when an error
// message override is configured and validation fails.
const ErrorMessageKey = "errorMessage"

// Input is a single named field: a raw value, the filters that normalise it
// and the validators that check the filtered result.
//
//	in := inputfilter.NewInput("email")
//	in.FilterChain().Attach(filter.StringTrim{})
//	in.ValidatorChain().Attach(validator.EmailAddress{}, true)
//	in.SetValue(" alice@example.com ")
//	in.IsValid(nil) // true
//	in.Value()      // "alice@example.com"
type Input struct {
	name string

	filters    *filter.Chain
	validators *validator.Chain
	notEmpty   *validator.NotEmpty

	required        bool
	allowEmpty      bool
	continueIfEmpty bool
	breakOnFailure  bool

	fallback    any
	hasFallback bool

	errorMessage string

	raw      any
	hasValue bool

	messages validator.Messages
}

// NewInput returns a required input with empty chains.
func NewInput(name string) *Input {
	return &Input{
		name:       name,
		filters:    filter.NewChain(),
		validators: validator.NewChain(),
		notEmpty:   &validator.NotEmpty{},
		required:   true,
		messages:   validator.Messages{},
	}
}

// ── Identity & chains ────────────────────────────────────────────────────────

// Name returns the input's own name, which is also its default key in a group.
func (in *Input) Name() string { return in.name }

// SetName renames the input.
func (in *Input) SetName(name string) { in.name = name }

// FilterChain returns the chain applied before validation. Attach to it
// directly to add filters.
func (in *Input) FilterChain() *filter.Chain { return in.filters }

// SetFilterChain replaces the filter chain; nil installs an empty one.
func (in *Input) SetFilterChain(c *filter.Chain) *Input {
	if c == nil {
		c = filter.NewChain()
	}
	in.filters = c
	return in
}

// ValidatorChain returns the validators run against the filtered value.
func (in *Input) ValidatorChain() *validator.Chain { return in.validators }

// SetValidatorChain replaces the validator chain; nil installs an empty one.
func (in *Input) SetValidatorChain(c *validator.Chain) *Input {
	if c == nil {
		c = validator.NewChain()
	}
	in.validators = c
	return in
}

// ── Flags ────────────────────────────────────────────────────────────────────

// IsRequired reports whether a missing or empty value fails with isEmpty.
// Inputs are required by default.
func (in *Input) IsRequired() bool { return in.required }

// SetRequired sets the required flag.
func (in *Input) SetRequired(required bool) *Input {
	in.required = required
	return in
}

// AllowEmpty reports whether an empty value passes without running the
// validators.
func (in *Input) AllowEmpty() bool { return in.allowEmpty }

// SetAllowEmpty sets the allow-empty flag.
func (in *Input) SetAllowEmpty(allow bool) *Input {
	in.allowEmpty = allow
	return in
}

// ContinueIfEmpty reports whether the validators run even for empty values.
func (in *Input) ContinueIfEmpty() bool { return in.continueIfEmpty }

// SetContinueIfEmpty sets the continue-if-empty flag. When set, no NotEmpty
// check is injected for required inputs.
func (in *Input) SetContinueIfEmpty(cont bool) *Input {
	in.continueIfEmpty = cont
	return in
}

// BreakOnFailure is advisory for callers walking a tree; it does not change
// how this input validates.
func (in *Input) BreakOnFailure() bool { return in.breakOnFailure }

// SetBreakOnFailure sets the advisory break-on-failure flag.
func (in *Input) SetBreakOnFailure(brk bool) *Input {
	in.breakOnFailure = brk
	return in
}

// ── Fallback & messages ──────────────────────────────────────────────────────

// SetFallbackValue makes the input unconditionally valid; Value and RawValue
// report v whatever was submitted.
func (in *Input) SetFallbackValue(v any) *Input {
	in.fallback = v
	in.hasFallback = true
	return in
}

// FallbackValue returns the configured fallback (nil when none).
func (in *Input) FallbackValue() any { return in.fallback }

// HasFallback reports whether SetFallbackValue was called since the last
// ClearFallbackValue.
func (in *Input) HasFallback() bool { return in.hasFallback }

// ClearFallbackValue removes the fallback; validation runs normally again.
func (in *Input) ClearFallbackValue() *Input {
	in.fallback = nil
	in.hasFallback = false
	return in
}

// ErrorMessage returns the override set by SetErrorMessage, or "".
func (in *Input) ErrorMessage() string { return in.errorMessage }

// SetErrorMessage replaces every failure message with msg.
func (in *Input) SetErrorMessage(msg string) *Input {
	in.errorMessage = msg
	return in
}

// SetRequiredMessage overrides the isEmpty message reported for missing
// required values.
func (in *Input) SetRequiredMessage(msg string) *Input {
	in.notEmpty = &validator.NotEmpty{Messages: validator.Messages{validator.CodeIsEmpty: msg}}
	return in
}

// Messages returns the failures of the last IsValid call.
func (in *Input) Messages() validator.Messages {
	return maps.Clone(in.messages)
}

// ── Value ────────────────────────────────────────────────────────────────────

// SetValue stores the raw value for the next validation. A nil value still
// counts as set.
func (in *Input) SetValue(v any) *Input {
	in.raw = v
	in.hasValue = true
	return in
}

// ResetValue forgets the value, as if it had never been set.
func (in *Input) ResetValue() *Input {
	in.raw = nil
	in.hasValue = false
	return in
}

// HasValue reports whether a value was set since the last ResetValue.
func (in *Input) HasValue() bool { return in.hasValue }

// RawValue returns the unfiltered value (nil when unset).
func (in *Input) RawValue() any {
	if in.hasFallback {
		return in.fallback
	}
	return in.raw
}

// Value returns the raw value passed through the filter chain.
func (in *Input) Value() any {
	if in.hasFallback {
		return in.fallback
	}
	return in.filters.Filter(in.RawValue())
}

// ── Validation ───────────────────────────────────────────────────────────────

// IsValid filters and validates the current value. context is handed to
// every validator unchanged.
//
// A required input that was never given a value fails with isEmpty without
// running its validators, unless the chain holds its own NotEmpty.
func (in *Input) IsValid(context map[string]any) bool {
	in.messages = validator.Messages{}

	if in.hasFallback {
		return true
	}

	value := in.Value()
	empty := validator.IsEmpty(value)
	hasNotEmpty := in.validators.Contains(validator.IsNotEmpty)

	switch {
	case !in.required && empty && !in.continueIfEmpty:
		return true
	case in.required && !in.hasValue && !in.continueIfEmpty && !hasNotEmpty:
		_, msgs := in.notEmpty.IsValid(nil, context)
		return in.fail(msgs)
	case empty && in.allowEmpty && !in.continueIfEmpty:
		return true
	}

	chain := in.validators
	if in.required && !in.continueIfEmpty && !hasNotEmpty {
		// The stored chain is never touched; the check lives for this call only.
		chain = in.validators.Clone()
		chain.Prepend(in.notEmpty, true)
	}

	if chain.IsValid(value, context) {
		return true
	}
	return in.fail(chain.Messages())
}

func (in *Input) fail(msgs validator.Messages) bool {
	if in.errorMessage != "" {
		msgs = validator.Messages{ErrorMessageKey: in.errorMessage}
	}
	in.messages = msgs
	return false
}

// ── Merge & clone ────────────────────────────────────────────────────────────

// Merge folds other into in. Name, error message, the required and empty
// flags and break-on-failure are taken from other; chains are concatenated;
// the value is copied only when other has one.
func (in *Input) Merge(other *Input) *Input {
	if other == nil {
		return in
	}
	in.name = other.name
	in.errorMessage = other.errorMessage
	in.breakOnFailure = other.breakOnFailure
	in.required = other.required
	in.allowEmpty = other.allowEmpty
	in.continueIfEmpty = other.continueIfEmpty
	if other.hasValue {
		in.SetValue(other.raw)
	}
	in.filters.Merge(other.filters)
	in.validators.Merge(other.validators)
	return in
}

// Clone returns an independent copy with its own chains and no messages.
func (in *Input) Clone() *Input {
	cp := *in
	cp.filters = in.filters.Clone()
	cp.validators = in.validators.Clone()
	cp.messages = validator.Messages{}
	return &cp
}

func (in *Input) cloneElement() Element { return in.Clone() }
