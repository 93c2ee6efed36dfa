package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, []string{"-", "!"}, cfg.ActiveMarkers())
}

func TestValidateRejectsBadMarkers(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty", func(c *Config) { c.Symbols.Open = "" }, "symbols.open"},
		{"multi", func(c *Config) { c.Symbols.Done = "xx" }, "symbols.done"},
		{"duplicate", func(c *Config) { c.Symbols.Top = "-" }, "share the marker"},
		{"separator", func(c *Config) { c.Symbols.Separator = "" }, "symbols.separator"},
		{"portfolio", func(c *Config) { c.Files.Portfolio = nil }, "files.portfolio"},
		{"property", func(c *Config) { c.Properties.Due = "due: " }, "separator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPathResolution(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Files.BaseDir = "/data/atlas"

	require.Equal(t, "/data/atlas/home.txt", cfg.Path("home.txt"))
	require.Equal(t, "/elsewhere/x.txt", cfg.Path("/elsewhere/x.txt"))
	require.Equal(t, []string{"/data/atlas/home.txt", "/data/atlas/work.txt"}, cfg.PortfolioPaths())
	require.True(t, cfg.IsPortfolio("/data/atlas/work.txt"))
	require.True(t, cfg.IsPortfolio("/data/atlas/./work.txt"))
	require.False(t, cfg.IsPortfolio("/data/atlas/booked.txt"))
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlas.yaml")
	content := `symbols:
  open: "o"
  done: "d"
  separator: " "
files:
  base_dir: ` + dir + `
  portfolio:
    - inbox.txt
sort_tokens:
  - "@am"
options:
  refresh_after_done: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "o", cfg.Symbols.Open)
	require.Equal(t, "d", cfg.Symbols.Done)
	require.Equal(t, "!", cfg.Symbols.Top)
	require.Equal(t, []string{"inbox.txt"}, cfg.Files.Portfolio)
	require.Equal(t, []string{"@am"}, cfg.SortTokens)
	require.True(t, cfg.Options.RefreshAfterDone)
	require.Equal(t, "due:", cfg.Properties.Due)
	require.Equal(t, dir, cfg.Files.BaseDir)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n  caller: true\n"), 0o644))
	t.Setenv("ATLAS_FILES_BASE_DIR", "/tmp/env-atlas")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/env-atlas", cfg.Files.BaseDir)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.True(t, cfg.Logging.Caller)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbols:\n  top: \"-\"\n"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "validation")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "atlas.yaml")
	require.NoError(t, WriteDefault(path))
	require.Error(t, WriteDefault(path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Symbols, cfg.Symbols)
	require.Equal(t, DefaultConfig().Files.Portfolio, cfg.Files.Portfolio)
}
