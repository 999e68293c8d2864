package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/session"
	"github.com/verte-zerg/writestat/internal/textstats"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeStdin(t *testing.T) {
	isolateHome(t)
	out, err := runCLI(t, "Hello world. This is a test.", "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "stdin · Document")
	assert.Regexp(t, `Words\s+6`, out)
	assert.Regexp(t, `Sentences\s+2`, out)
}

func TestAnalyzeFileSelection(t *testing.T) {
	dir := isolateHome(t)
	path := filepath.Join(dir, "draft.md")
	require.NoError(t, os.WriteFile(path, []byte("One two three. Four five."), 0o644))

	out, err := runCLI(t, "", "analyze", path, "--start", "15", "--end", "25")
	require.NoError(t, err)
	assert.Contains(t, out, "Selection 15-25")
	assert.Regexp(t, `Words\s+2`, out)
}

func TestAnalyzeUsesConfigFile(t *testing.T) {
	dir := isolateHome(t)
	cfgDir := filepath.Join(dir, "config", "writestat")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("[analysis]\nwords-per-page = 2\n"), 0o644))

	out, err := runCLI(t, "a b c d e", "analyze")
	require.NoError(t, err)
	assert.Regexp(t, `Pages\s+3`, out)

	out, err = runCLI(t, "a b c d e", "analyze", "--words-per-page", "5")
	require.NoError(t, err)
	assert.Regexp(t, `Pages\s+1`, out)
}

func TestAnalyzeRejectsInvalidFlags(t *testing.T) {
	isolateHome(t)
	_, err := runCLI(t, "text", "analyze", "--reading-wpm", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--reading-wpm must be > 0")
}

func TestHistoryEmpty(t *testing.T) {
	isolateHome(t)
	out, err := runCLI(t, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(model.DefaultConfig()))
	cfg := model.DefaultConfig()
	cfg.IdleTimeout = 0
	require.EqualError(t, validateConfig(cfg), "--idle-timeout-ms must be > 0")
}

func TestSessionRecord(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, ok := sessionRecord("/doc.md", session.Snapshot{}, textstats.Metrics{}, now)
	assert.False(t, ok)

	snap := session.Snapshot{
		StartedAt:    now.Add(-time.Hour),
		Baseline:     100,
		WordCount:    160,
		WordsWritten: 70,
		Writing:      20 * time.Minute,
		Idle:         40 * time.Minute,
		WPM:          3,
	}
	rec, ok := sessionRecord("/doc.md", snap, textstats.Metrics{ReadingTimeMinutes: 1}, now)
	require.True(t, ok)
	assert.Equal(t, int64(1200000), rec.WritingMs)
	assert.Equal(t, int64(2400000), rec.IdleMs)
	assert.Equal(t, 70, rec.WordsWritten)
	assert.Equal(t, 160, rec.FinalWords)
	assert.Equal(t, 1, rec.ReadingMinutes)
	assert.Equal(t, now, rec.EndedAt)
}

func TestNewFileLoggerRejectsLevel(t *testing.T) {
	_, err := newFileLogger(filepath.Join(t.TempDir(), "log", "writestat.log"), "loud")
	require.Error(t, err)

	logger, err := newFileLogger(filepath.Join(t.TempDir(), "log", "writestat.log"), "debug")
	require.NoError(t, err)
	logger.Debug("hello")
	_ = logger.Sync()
}
