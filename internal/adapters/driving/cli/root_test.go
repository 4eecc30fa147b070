package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "ephemeral", "data-dir", "config-dir"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	want := []string{"alerts", "chat", "ingest", "mcp", "patient", "retrieve", "seed", "settings", "version"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestBuilder_ReceivesFlagsAndCleansUp(t *testing.T) {
	ts, cleanupServices := setupTestServices()
	defer cleanupServices()

	var gotOpts Options
	closed := false
	SetBuilder(func(_ context.Context, opts Options) (Services, func(), error) {
		gotOpts = opts
		return Services{Patients: ts.patients}, func() { closed = true }, nil
	})
	defer func() {
		SetBuilder(nil)
		ephemeral, dataDir, configDir = false, "", ""
	}()

	out, err := execute("--ephemeral", "--data-dir", "/tmp/d", "--config-dir", "/tmp/c", "patient", "list")

	require.NoError(t, err)
	assert.Equal(t, Options{DataDir: "/tmp/d", ConfigDir: "/tmp/c", Ephemeral: true}, gotOpts)
	assert.True(t, closed)
	assert.Equal(t, "p1\n", out)
	assert.Nil(t, chatService)
}

func TestBuilder_SkippedForVersion(t *testing.T) {
	called := false
	SetBuilder(func(context.Context, Options) (Services, func(), error) {
		called = true
		return Services{}, nil, nil
	})
	defer SetBuilder(nil)

	_, err := execute("version")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestBuilder_ErrorAbortsCommand(t *testing.T) {
	SetBuilder(func(context.Context, Options) (Services, func(), error) {
		return Services{}, nil, errBoom
	})
	defer SetBuilder(nil)

	_, err := execute("patient", "list")

	assert.ErrorIs(t, err, errBoom)
}
