package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	require.NoError(t, err)

	require.Equal(t, "me17ScoAAAAJ", cfg.Profile.UserID)
	require.Equal(t, "https://scholar.google.com", cfg.Profile.BaseURL)
	require.Contains(t, cfg.Profile.UserAgent, "Chrome/104.0.0.0")
	require.Equal(t, 30, cfg.Fetch.TimeoutSeconds)
	require.Equal(t, 8000, cfg.Server.Port)
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
profile:
  user_id: abc123
server:
  port: 9000
`)
	cfg, err := parse(data)
	require.NoError(t, err)

	require.Equal(t, "abc123", cfg.Profile.UserID)
	require.Equal(t, 9000, cfg.Server.Port)
	// Defaults should still be set for unspecified fields
	require.Equal(t, "en", cfg.Profile.Language)
	require.Equal(t, "public", cfg.Output.Dir)
}

func TestProfileURL(t *testing.T) {
	cfg := Default()
	require.Equal(t, "https://scholar.google.com/citations?hl=en&user=me17ScoAAAAJ", cfg.ProfileURL())

	cfg.Profile.BaseURL = "http://127.0.0.1:8080/"
	cfg.Profile.UserID = "xyz"
	require.Equal(t, "http://127.0.0.1:8080/citations?hl=en&user=xyz", cfg.ProfileURL())
}

func TestPaths(t *testing.T) {
	cfg := Default()
	require.Equal(t, filepath.Join("public", "scholar.json"), cfg.OutputPath())
	require.Equal(t, filepath.Join("debug", "debug_page.html"), cfg.DebugPath())
}

func TestTimeout(t *testing.T) {
	cfg := Default()
	require.Equal(t, 30*time.Second, cfg.Timeout())

	cfg.Fetch.TimeoutSeconds = 0
	require.Equal(t, time.Duration(0), cfg.Timeout())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, DefaultConfigYAML, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "me17ScoAAAAJ", cfg.Profile.UserID)
}

func TestLoadMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, DefaultConfigYAML, 0o644))

	local := []byte(`
profile:
  user_id: override-id
output:
  dir: site/data
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.yaml"), local, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "override-id", cfg.Profile.UserID)
	require.Equal(t, "site/data", cfg.Output.Dir)
	// untouched values come from the base file
	require.Equal(t, "scholar.json", cfg.Output.File)
	require.Equal(t, "en", cfg.Profile.Language)
}

func TestLocalOverridesIgnoreZeroValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, DefaultConfigYAML, 0o644))

	local := []byte(`
fetch:
  timeout_seconds: 0
output:
  debug_dir: ""
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.yaml"), local, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.Timeout())
	require.Equal(t, "debug", cfg.Output.DebugDir)

	// the base file can still disable the timeout
	base := []byte("fetch:\n  timeout_seconds: 0\n")
	require.NoError(t, os.WriteFile(path, base, 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "config.local.yaml")))

	cfg, err = Load(path)
	require.NoError(t, err)
	require.Zero(t, cfg.Timeout())
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "/etc/x/config.local.yaml", LocalPath("/etc/x/config.yaml"))
}

func TestResolveExplicitMissing(t *testing.T) {
	_, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	require.NotEmpty(t, cfg.GetDataDir())

	cfg.Output.DataDir = "/custom/path"
	require.Equal(t, "/custom/path", cfg.GetDataDir())
}
