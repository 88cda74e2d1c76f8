package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachegate/cachegate/config"
	"github.com/cachegate/cachegate/internal/command"
	"github.com/cachegate/cachegate/internal/core"
	"github.com/cachegate/cachegate/internal/engine/memory"
)

func testApp(engine core.Engine) *app {
	return &app{
		registry: command.NewRegistry(),
		openEngine: func(context.Context) (core.Engine, func() error, error) {
			return engine, func() error { return nil }, nil
		},
	}
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsTable(t *testing.T) {
	out, err := execute(t, testApp(nil), "commands")
	require.NoError(t, err)
	assert.Contains(t, out, "least-touched")
	assert.Contains(t, out, "clear-namespace")
	assert.Contains(t, out, "--key --value")
}

func TestEngineCommands_RoundTrip(t *testing.T) {
	a := testApp(memory.New(memory.Options{}))

	out, err := execute(t, a, "write", "--key", "greeting", "--value", `{"text":"hi"}`, "--namespace", "ns")
	require.NoError(t, err)
	assert.JSONEq(t, `true`, out)

	out, err = execute(t, a, "read", "--key", "greeting", "--namespace", "ns")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, out)

	out, err = execute(t, a, "exists", "--key", "greeting", "--namespace", "ns")
	require.NoError(t, err)
	assert.JSONEq(t, `true`, out)

	out, err = execute(t, a, "keys", "--namespace", "ns")
	require.NoError(t, err)
	assert.JSONEq(t, `["greeting"]`, out)

	out, err = execute(t, a, "delete", "--key", "greeting", "--namespace", "ns")
	require.NoError(t, err)
	assert.JSONEq(t, `true`, out)

	_, err = execute(t, a, "read", "--key", "greeting", "--namespace", "ns")
	assert.Error(t, err)
}

func TestEngineCommands_InputErrors(t *testing.T) {
	a := testApp(memory.New(memory.Options{}))

	_, err := execute(t, a, "read")
	assert.ErrorContains(t, err, "key")

	_, err = execute(t, a, "write", "--key", "k", "--value", "{not json")
	assert.ErrorContains(t, err, "--value must be JSON")

	_, err = execute(t, a, "least-touched", "--count", "0")
	assert.ErrorContains(t, err, "count is required")
}

func TestOpenSharedEngine_RequiresRedis(t *testing.T) {
	cfg := &config.AppConfig{}
	cfg.Sanitize()

	_, _, err := openSharedEngine(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, errSharedEngineRequired)
}
