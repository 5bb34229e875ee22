package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tablescope/internal/backend/backendtest"
	"github.com/koustreak/tablescope/internal/cli/commands"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("HOME", dir)
	return dir
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "tablescope", cmd.Use)
	assert.NotNil(t, cmd.RunE, "root starts the interface")
	assert.Equal(t, "true", cmd.Annotations[commands.AnnotationInteractive])

	for _, flag := range []string{"config", "backend-url", "request-timeout", "connect-timeout", "log-level", "log-format", "log-output", "log-file"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	want := []string{"version", "ui", "connect", "schema", "load", "search", "objects", "config"}
	var got []string
	for _, c := range cmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestRootCmd_ConnectAgainstBackend(t *testing.T) {
	isolate(t)
	srv := backendtest.New(t)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"connect", "--backend-url", srv.URL, "--log-level", "error", "--connect-timeout", "2s"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Connection Successful!")
	assert.Equal(t, 1, srv.Count(backendtest.RouteConnect))
}

func TestRootCmd_ConfigFileFlag(t *testing.T) {
	dir := isolate(t)
	srv := backendtest.New(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  base_url: "+srv.URL+"\nlog:\n  level: error\n"), 0o600))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "connect"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 1, srv.Count(backendtest.RouteConnect))
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	isolate(t)

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", "nope.yaml", "version"})

	assert.Error(t, cmd.Execute())
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	isolate(t)

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"--log-level", "loud", "version"})

	assert.Error(t, cmd.Execute())
}

func TestInteractiveLogFile(t *testing.T) {
	dir := isolate(t)

	assert.Equal(t, "/tmp/x.log", interactiveLogFile("/tmp/x.log"))
	assert.Equal(t, filepath.Join(dir, "cache", "tablescope", "tablescope.log"), interactiveLogFile(""))
}
