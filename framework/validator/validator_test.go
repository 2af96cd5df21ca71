package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inputfilter/framework/validator"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts v accepts value.
func pass(t *testing.T, label string, v validator.Validator, value any) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		ok, msgs := v.IsValid(value, nil)
		assert.True(t, ok, "expected PASS, got FAIL: %v", msgs)
		assert.Empty(t, msgs)
	})
}

// fail asserts v rejects value with the given failure code.
func fail(t *testing.T, label string, v validator.Validator, value any, code string) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		ok, msgs := v.IsValid(value, nil)
		assert.False(t, ok, "expected FAIL with %q, but validator PASSED", code)
		assert.Contains(t, msgs, code)
	})
}

// counting records how often it ran and fails when ok is false.
type counting struct {
	code  string
	ok    bool
	calls int
}

func (c *counting) IsValid(any, map[string]any) (bool, validator.Messages) {
	c.calls++
	if c.ok {
		return true, nil
	}
	return false, validator.Messages{c.code: c.code + " failed"}
}

// ── Chain ────────────────────────────────────────────────────────────────────

func TestChain_EmptyAcceptsEverything(t *testing.T) {
	chain := validator.NewChain()
	assert.True(t, chain.IsValid(nil, nil))
	assert.Empty(t, chain.Messages())
}

func TestChain_BreakOnFailureStopsChain(t *testing.T) {
	a := &counting{code: "a"}
	b := &counting{code: "b"}
	chain := validator.NewChain().Attach(a, true).Attach(b, false)

	assert.False(t, chain.IsValid("x", nil))
	assert.Equal(t, validator.Messages{"a": "a failed"}, chain.Messages())
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls)
}

func TestChain_WithoutBreakCollectsAllFailures(t *testing.T) {
	a := &counting{code: "a"}
	b := &counting{code: "b"}
	chain := validator.NewChain().Attach(a, false).Attach(b, false)

	assert.False(t, chain.IsValid("x", nil))
	assert.Equal(t, validator.Messages{"a": "a failed", "b": "b failed"}, chain.Messages())
}

func TestChain_MessagesResetEveryCall(t *testing.T) {
	a := &counting{code: "a"}
	chain := validator.NewChain().Attach(a, false)

	require.False(t, chain.IsValid("x", nil))
	require.Len(t, chain.Messages(), 1)

	a.ok = true
	assert.True(t, chain.IsValid("x", nil))
	assert.Empty(t, chain.Messages())
}

func TestChain_PriorityOrder(t *testing.T) {
	var order []string
	record := func(name string) validator.Func {
		return func(any, map[string]any) (bool, validator.Messages) {
			order = append(order, name)
			return true, nil
		}
	}
	chain := validator.NewChain()
	chain.Attach(record("low"), false, 1)
	chain.Attach(record("high"), false, 10)
	chain.Attach(record("low2"), false, 1)
	chain.Prepend(record("first"), false)

	require.True(t, chain.IsValid("x", nil))
	assert.Equal(t, []string{"first", "high", "low", "low2"}, order)
}

func TestChain_MergeKeepsBreakFlags(t *testing.T) {
	a := &counting{code: "a"}
	b := &counting{code: "b"}
	other := validator.NewChain().Attach(a, true)
	chain := validator.NewChain().Merge(other).Attach(b, false)

	assert.Equal(t, 2, chain.Len())
	assert.False(t, chain.IsValid("x", nil))
	assert.Equal(t, 0, b.calls)
}

func TestChain_CloneIsIndependent(t *testing.T) {
	chain := validator.NewChain().Attach(&counting{code: "a", ok: true}, false)
	clone := chain.Clone()
	clone.Prepend(&validator.NotEmpty{}, true)

	assert.Equal(t, 1, chain.Len())
	assert.Equal(t, 2, clone.Len())
	assert.False(t, chain.Contains(validator.IsNotEmpty))
	assert.True(t, clone.Contains(validator.IsNotEmpty))
}

// ── IsEmpty ──────────────────────────────────────────────────────────────────

func TestIsEmpty(t *testing.T) {
	for _, v := range []any{nil, "", []any{}, map[string]any{}, []string{}, map[string]int{}} {
		assert.True(t, validator.IsEmpty(v), "%#v should be empty", v)
	}
	for _, v := range []any{0, 0.0, false, " ", []any{nil}, map[string]any{"a": nil}} {
		assert.False(t, validator.IsEmpty(v), "%#v should not be empty", v)
	}
}

// ── Built-ins ────────────────────────────────────────────────────────────────

func TestNotEmpty(t *testing.T) {
	v := &validator.NotEmpty{}
	pass(t, "non-empty", v, "Alice")
	pass(t, "zero", v, 0)
	fail(t, "empty string", v, "", validator.CodeIsEmpty)
	fail(t, "whitespace only", v, "   ", validator.CodeIsEmpty)
	fail(t, "nil", v, nil, validator.CodeIsEmpty)
	fail(t, "empty slice", v, []any{}, validator.CodeIsEmpty)
}

func TestNotEmpty_DefaultMessage(t *testing.T) {
	_, msgs := (&validator.NotEmpty{}).IsValid("", nil)
	assert.Equal(t, validator.Messages{"isEmpty": "Value is required and can't be empty"}, msgs)
}

func TestStringLength(t *testing.T) {
	v := validator.StringLength{Min: 3, Max: 5}
	pass(t, "exactly min", v, "abc")
	pass(t, "exactly max", v, "hello")
	pass(t, "unicode rune count", v, "日本語")
	fail(t, "too short", v, "ab", "stringLengthTooShort")
	fail(t, "too long", v, "toolong", "stringLengthTooLong")
	fail(t, "not a string", v, 12, "stringLengthInvalid")
}

func TestStringLength_MessageTemplate(t *testing.T) {
	_, msgs := validator.StringLength{Min: 3}.IsValid("ab", nil)
	assert.Equal(t, "The input is less than 3 characters long", msgs["stringLengthTooShort"])

	custom := validator.StringLength{Min: 3, Messages: validator.Messages{"stringLengthTooShort": "min %min%, got '%value%'"}}
	_, msgs = custom.IsValid("ab", nil)
	assert.Equal(t, "min 3, got 'ab'", msgs["stringLengthTooShort"])
}

func TestRegex(t *testing.T) {
	v, err := validator.NewRegex(`^[a-z]+$`)
	require.NoError(t, err)
	pass(t, "match", v, "abc")
	fail(t, "no match", v, "ABC", "regexNotMatch")
	fail(t, "wrong type", v, []any{}, "regexInvalid")

	_, err = validator.NewRegex(`(`)
	assert.Error(t, err)
}

func TestEmailAddress(t *testing.T) {
	v := validator.EmailAddress{}
	pass(t, "valid email", v, "user@example.com")
	pass(t, "valid email with subdomain", v, "user@mail.example.co.uk")
	fail(t, "no @ sign", v, "notanemail", "emailAddressInvalidFormat")
	fail(t, "no domain", v, "user@", "emailAddressInvalidFormat")
	fail(t, "display name", v, "Alice <alice@example.com>", "emailAddressInvalidFormat")
}

func TestURI(t *testing.T) {
	pass(t, "https", validator.URI{}, "https://example.com/x")
	fail(t, "relative", validator.URI{}, "/x", "notUri")
	pass(t, "relative allowed", validator.URI{AllowRelative: true}, "/x")
	fail(t, "scheme restricted", validator.URI{Schemes: []string{"https"}}, "ftp://example.com", "notUri")
}

func TestCharacterClasses(t *testing.T) {
	pass(t, "digits", validator.Digits{}, "0123")
	pass(t, "digits int", validator.Digits{}, 42)
	fail(t, "digits letters", validator.Digits{}, "12a", "notDigits")
	fail(t, "digits empty", validator.Digits{}, "", "digitsStringEmpty")

	pass(t, "alpha", validator.Alpha{}, "Émile")
	fail(t, "alpha space", validator.Alpha{}, "a b", "notAlpha")
	pass(t, "alpha space allowed", validator.Alpha{AllowWhiteSpace: true}, "a b")

	pass(t, "alnum", validator.Alnum{}, "abc123")
	fail(t, "alnum dash", validator.Alnum{}, "abc-123", "notAlnum")
}

func TestNumericComparisons(t *testing.T) {
	between := validator.Between{Min: 1, Max: 10, Inclusive: true}
	pass(t, "between min boundary", between, 1)
	pass(t, "between numeric string", between, "10")
	fail(t, "between above", between, 11, "notBetween")
	fail(t, "between strict boundary", validator.Between{Min: 1, Max: 10}, 10, "notBetweenStrict")
	fail(t, "between not numeric", between, "abc", "valueNotNumeric")

	pass(t, "gt", validator.GreaterThan{Min: 18}, 19)
	fail(t, "gt equal", validator.GreaterThan{Min: 18}, 18, "notGreaterThan")
	pass(t, "gte equal", validator.GreaterThan{Min: 18, Inclusive: true}, "18")

	pass(t, "lt", validator.LessThan{Max: 5}, 4.5)
	fail(t, "lte above", validator.LessThan{Max: 5, Inclusive: true}, 6, "notLessThanInclusive")
}

func TestInArray(t *testing.T) {
	loose := validator.InArray{Haystack: []any{1, "two"}}
	pass(t, "loose numeric string", loose, "1")
	pass(t, "exact", loose, "two")
	fail(t, "missing", loose, "three", "notInArray")

	strict := validator.InArray{Haystack: []any{1}, Strict: true}
	fail(t, "strict type mismatch", strict, "1", "notInArray")
}

func TestIdentical(t *testing.T) {
	v := validator.Identical{Token: "password"}

	ok, _ := v.IsValid("secret", map[string]any{"password": "secret"})
	assert.True(t, ok)

	ok, msgs := v.IsValid("other", map[string]any{"password": "secret"})
	assert.False(t, ok)
	assert.Contains(t, msgs, "notSame")

	ok, msgs = v.IsValid("secret", map[string]any{})
	assert.False(t, ok)
	assert.Contains(t, msgs, "missingToken")
}

func TestCallback(t *testing.T) {
	even := validator.Callback{Fn: func(v any, _ map[string]any) bool {
		n, ok := v.(int)
		return ok && n%2 == 0
	}}
	pass(t, "even", even, 2)
	fail(t, "odd", even, 3, "callbackValue")
	fail(t, "nil fn", validator.Callback{}, 3, "callbackValue")
}
