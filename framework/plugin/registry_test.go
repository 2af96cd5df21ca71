package plugin_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inputfilter/framework/filter"
	"github.com/km-arc/go-inputfilter/framework/plugin"
	"github.com/km-arc/go-inputfilter/framework/validator"
)

func TestRegistry_FilterByNameAndAlias(t *testing.T) {
	reg := plugin.NewDefault()

	for _, name := range []string{"string_trim", "StringTrim"} {
		f, err := reg.Filter(name, nil)
		require.NoError(t, err, name)
		assert.Equal(t, "x", f.Filter("  x  "), name)
	}

	f, err := reg.Filter("string_trim", plugin.Options{"charlist": "-"})
	require.NoError(t, err)
	assert.Equal(t, "x", f.Filter("--x-"))
}

func TestRegistry_UnknownStep(t *testing.T) {
	reg := plugin.NewDefault()

	_, err := reg.Filter("nope", nil)
	assert.True(t, errors.Is(err, plugin.ErrUnknownStep))

	_, err = reg.Validator("", nil)
	assert.True(t, errors.Is(err, plugin.ErrUnknownStep))
}

func TestRegistry_WrongKindNamesTheOtherKind(t *testing.T) {
	reg := plugin.NewDefault()

	_, err := reg.Filter("not_empty", nil)
	require.ErrorIs(t, err, plugin.ErrUnknownStep)
	assert.Contains(t, err.Error(), `"not_empty" is a validator`)

	_, err = reg.Validator("string_trim", nil)
	require.ErrorIs(t, err, plugin.ErrUnknownStep)
	assert.Contains(t, err.Error(), `"string_trim" is a filter`)

	_, err = reg.Filter("nope", nil)
	assert.NotContains(t, err.Error(), " is a ")
}

func TestRegistry_ValidatorOptions(t *testing.T) {
	reg := plugin.NewDefault()

	v, err := reg.Validator("string_length", plugin.Options{"min": "3", "max": 5})
	require.NoError(t, err)
	assert.Equal(t, validator.StringLength{Min: 3, Max: 5}, v)

	ok, _ := v.IsValid("ab", nil)
	assert.False(t, ok)

	_, err = reg.Validator("string_length", plugin.Options{"min": "three"})
	assert.Error(t, err)

	_, err = reg.Validator("regex", nil)
	assert.Error(t, err)

	_, err = reg.Validator("regex", plugin.Options{"pattern": "("})
	assert.Error(t, err)
}

func TestRegistry_BetweenDefaultsInclusive(t *testing.T) {
	reg := plugin.NewDefault()

	v, err := reg.Validator("between", plugin.Options{"min": 1, "max": 10})
	require.NoError(t, err)
	ok, _ := v.IsValid(10, nil)
	assert.True(t, ok)

	v, err = reg.Validator("Between", plugin.Options{"min": 1, "max": 10, "inclusive": false})
	require.NoError(t, err)
	ok, _ = v.IsValid(10, nil)
	assert.False(t, ok)
}

func TestRegistry_MessageOverrides(t *testing.T) {
	reg := plugin.NewDefault()

	v, err := reg.Validator("not_empty", plugin.Options{
		"messages": map[string]any{validator.CodeIsEmpty: "fill it in"},
	})
	require.NoError(t, err)

	ok, msgs := v.IsValid("", nil)
	assert.False(t, ok)
	assert.Equal(t, validator.Messages{validator.CodeIsEmpty: "fill it in"}, msgs)
}

func TestRegistry_Callback(t *testing.T) {
	reg := plugin.NewDefault()

	v, err := reg.Validator("callback", plugin.Options{
		"callback": func(value any) bool { return value == "ok" },
	})
	require.NoError(t, err)
	ok, _ := v.IsValid("ok", nil)
	assert.True(t, ok)

	_, err = reg.Validator("callback", plugin.Options{"callback": "not a func"})
	assert.Error(t, err)
}

func TestRegistry_CustomSteps(t *testing.T) {
	reg := plugin.New(nil)
	reg.RegisterFilter("reverse", func(plugin.Options) (filter.Filter, error) {
		return filter.Func(func(v any) any {
			s, _ := v.(string)
			r := []rune(s)
			for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
				r[i], r[j] = r[j], r[i]
			}
			return string(r)
		}), nil
	}, "Reverse")

	assert.True(t, reg.HasFilter("Reverse"))
	assert.False(t, reg.HasValidator("reverse"))
	assert.Equal(t, []string{"reverse"}, reg.Filters())

	f, err := reg.Filter("Reverse", nil)
	require.NoError(t, err)
	assert.Equal(t, "cba", f.Filter("abc"))
}

func TestRegistry_Shared(t *testing.T) {
	reg := plugin.New(nil)
	shared := &struct{ name string }{"address"}
	reg.Share("address", shared)

	got, ok := reg.Shared("address")
	require.True(t, ok)
	assert.Same(t, shared, got)

	_, ok = reg.Shared("missing")
	assert.False(t, ok)
}

func TestRegistry_DefaultNames(t *testing.T) {
	reg := plugin.NewDefault()

	assert.Contains(t, reg.Filters(), "html_sanitize")
	assert.Contains(t, reg.Validators(), "email_address")
	assert.NotContains(t, reg.Validators(), "EmailAddress")
}
