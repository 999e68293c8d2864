package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  \n"), 0o644))
	_, err := LoadWords(path)
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestLoadAbbreviations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abbreviations.txt")
	content := "Approx.\n# comment\nfig\n\ne.g.\nVOL\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadAbbreviations(path, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"approx": {}, "fig": {}, "vol": {}}, set)
}

func TestLoadAbbreviationsMissingFile(t *testing.T) {
	set, err := LoadAbbreviations(filepath.Join(t.TempDir(), "absent.txt"), nil)
	require.NoError(t, err)
	assert.Empty(t, set)

	set, err = LoadAbbreviations("", nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestLoadAbbreviationsCustomFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abbreviations.txt")
	require.NoError(t, os.WriteFile(path, []byte("fig\napprox\n"), 0o644))
	set, err := LoadAbbreviations(path, func(s string) bool { return len(s) <= 3 })
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"fig": {}}, set)
}
