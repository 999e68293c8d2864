package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Analysis.ReadingWPM)
	assert.Nil(t, cfg.Session.DebounceMs)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[analysis]
reading-wpm = 250
words-per-page = 300

[session]
debounce-ms = 150
wpm-window-minutes = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Analysis.ReadingWPM)
	assert.Equal(t, 250, *cfg.Analysis.ReadingWPM)
	require.NotNil(t, cfg.Analysis.WordsPerPage)
	assert.Equal(t, 300, *cfg.Analysis.WordsPerPage)
	assert.Nil(t, cfg.Analysis.MaxRunes)
	require.NotNil(t, cfg.Session.DebounceMs)
	assert.Equal(t, 150, *cfg.Session.DebounceMs)
	require.NotNil(t, cfg.Session.WPMWindowMinutes)
	assert.Equal(t, 3, *cfg.Session.WPMWindowMinutes)
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[analysis]\nreading-speed = 1\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading-speed")
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "writestat", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "writestat", "writestat.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/data", "writestat", "writestat.log"), DefaultLogPath())
}
