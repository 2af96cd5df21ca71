package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/km-arc/go-inputfilter/framework/app"
)

const testSpec = `
username:
  filters: [string_trim]
  validators:
    - name: string_length
      options: {min: 3}
tags:
  type: collection
  input_filter:
    label: {}
`

func writeSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSpec), 0o600))
	return path
}

// newTestCLI returns a CLI reading stdin and writing to out, with no env file.
func newTestCLI(t *testing.T, stdin string, out io.Writer, args ...string) *cli {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	c := newCLI()
	c.root.SetOut(out)
	c.root.SetIn(strings.NewReader(stdin))
	c.root.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "none.env")}, args...))
	return c
}

func run(t *testing.T, stdin string, args ...string) (report, error) {
	t.Helper()
	var out bytes.Buffer
	err := newTestCLI(t, stdin, &out, args...).execute(context.Background())

	var rep report
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	}
	return rep, err
}

func TestValidate_Valid(t *testing.T) {
	rep, err := run(t, `{"username": "  alice ", "tags": [{"label": "go"}]}`, "validate", "--spec", writeSpec(t))
	require.NoError(t, err)

	assert.True(t, rep.Valid)
	assert.Equal(t, "alice", rep.Values["username"])
	assert.Empty(t, rep.Messages)
}

func TestValidate_InvalidExitsWithError(t *testing.T) {
	rep, err := run(t, "username: al\ntags:\n  - label: x\n  - {}\n", "validate", "-s", writeSpec(t))
	assert.ErrorIs(t, err, errInvalid)

	assert.False(t, rep.Valid)
	assert.Contains(t, rep.Messages, "username")
	assert.Equal(t, map[string]any{
		"1": map[string]any{"label": map[string]any{"isEmpty": "Value is required and can't be empty"}},
	}, rep.Messages["tags"])
}

func TestValidate_StrictUnknown(t *testing.T) {
	data := `{"username": "alice", "tags": [], "extra": 1}`

	rep, err := run(t, data, "validate", "-s", writeSpec(t))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"extra": float64(1)}, rep.Unknown)

	rep, err = run(t, data, "validate", "-s", writeSpec(t), "--strict")
	assert.ErrorIs(t, err, errInvalid)
	assert.False(t, rep.Valid)
}

func TestValidate_RawValues(t *testing.T) {
	rep, err := run(t, `{"username": "  alice "}`, "validate", "-s", writeSpec(t), "--raw")
	require.NoError(t, err)
	assert.Equal(t, "  alice ", rep.Values["username"])
}

func TestValidate_DataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"username": "alice"}`), 0o600))

	rep, err := run(t, "", "validate", "-s", writeSpec(t), "-d", path)
	require.NoError(t, err)
	assert.True(t, rep.Valid)
}

func TestValidate_MissingSpec(t *testing.T) {
	_, err := run(t, "{}", "validate", "-s", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errInvalid)
}

func TestValidate_InvalidStillClosesApp(t *testing.T) {
	c := newTestCLI(t, `{"username": "al"}`, io.Discard, "validate", "-s", writeSpec(t))

	assert.ErrorIs(t, c.execute(context.Background()), errInvalid)
	require.NotNil(t, c.app)
	assert.True(t, c.app.Closed())
}

func TestSteps(t *testing.T) {
	var out bytes.Buffer
	c := newTestCLI(t, "", &out, "steps")

	require.NoError(t, c.execute(context.Background()))
	assert.Contains(t, out.String(), "string_trim")
	assert.Contains(t, out.String(), "email_address")
	assert.True(t, c.app.Closed())
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	c := newTestCLI(t, "", &out, "--version")

	require.NoError(t, c.execute(context.Background()))
	assert.Contains(t, out.String(), app.Version)
	assert.Nil(t, c.app, "--version does not boot the application")
}

// syncBuffer lets the test read output while the watch loop writes it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestValidate_WatchRerunsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dataPath := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"username": "al"}`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	c := newTestCLI(t, "", out, "validate", "-s", writeSpec(t), "-d", dataPath, "--watch", "--pretty=false")

	done := make(chan error, 1)
	go func() { done <- c.execute(ctx) }()

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"valid":false`)
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(dataPath, []byte(`{"username": "alice"}`), 0o600))
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"valid":true`)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestValidate_WatchNeedsDataFile(t *testing.T) {
	_, err := run(t, "{}", "validate", "-s", writeSpec(t), "--watch")
	assert.ErrorContains(t, err, "--watch needs --data")
}
