package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inputfilter/framework/app"
	"github.com/km-arc/go-inputfilter/framework/providers"
	"github.com/km-arc/go-inputfilter/framework/validator"
)

func TestApplication_BootAndBuild(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("INPUTFILTER_REQUIRED_MESSAGE", "Required")

	a := app.New("testdata/missing.env")
	require.NoError(t, a.Boot())
	defer a.Close()

	assert.Equal(t, "testing", a.Config().App.Env)
	assert.False(t, a.Resolved(providers.FactoryKey), "factory provider is deferred")

	f, err := a.Factory()
	require.NoError(t, err)
	assert.True(t, a.Resolved(providers.FactoryKey))

	same, err := a.Factory()
	require.NoError(t, err)
	assert.Same(t, f, same)

	in, err := f.CreateInput(map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.False(t, in.IsValid(nil))
	assert.Equal(t, validator.Messages{validator.CodeIsEmpty: "Required"}, in.Messages())
}

func TestApplication_RegistryLivesInAppContainer(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	a := app.New("testdata/missing.env")
	require.NoError(t, a.Boot())

	reg, err := a.Registry()
	require.NoError(t, err)
	assert.Same(t, a.Container, reg.Container())
	assert.True(t, a.Bound("filter.string_trim"))
	assert.True(t, a.Bound("validator.NotEmpty"))
}

func TestApplication_BadLogLevelFailsBoot(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouting")
	a := app.New("testdata/missing.env")

	assert.Error(t, a.Boot())
}

func TestApplication_AccessorsNeedBoot(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	a := app.New("testdata/missing.env")

	_, err := a.Factory()
	assert.ErrorIs(t, err, app.ErrNotBooted)
	_, err = a.Registry()
	assert.ErrorIs(t, err, app.ErrNotBooted)
	_, err = a.Logger()
	assert.ErrorIs(t, err, app.ErrNotBooted)

	require.NoError(t, a.Boot())
	_, err = a.Factory()
	assert.NoError(t, err)
}

func TestApplication_CloseIsIdempotent(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	a := app.New("testdata/missing.env")
	require.NoError(t, a.Boot())

	assert.False(t, a.Closed())
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.True(t, a.Closed())
}
