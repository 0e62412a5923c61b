package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	return s, path
}

func TestStore_GetDefaultOnMiss(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, 1.0, s.Get(KeyScrollSpeed, 1.0))
	assert.Nil(t, s.Get("never_set", nil))
}

func TestStore_SetGetRoundtrip(t *testing.T) {
	s, _ := newTestStore(t)

	s.Set(KeyTheme, "dark")
	s.Set(KeyFontSize, 24)

	assert.Equal(t, "dark", s.Get(KeyTheme, "light"))
	assert.Equal(t, 24, s.Get(KeyFontSize, 16))
	assert.Equal(t, []string{KeyFontSize, KeyTheme}, s.Keys())
}

func TestStore_Remove(t *testing.T) {
	s, _ := newTestStore(t)

	s.Set(KeyLastFile, "speech.md")
	s.Remove(KeyLastFile)
	assert.Equal(t, "none", s.Get(KeyLastFile, "none"))

	// Removing an absent key must not fail.
	s.Remove("ghost")
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	s, path := newTestStore(t)
	s.Set(KeyTheme, "high-contrast")
	s.Set(KeyWPM, 180.0)

	reopened, err := NewStore(path)
	require.NoError(t, err)

	assert.Equal(t, "high-contrast", reopened.Get(KeyTheme, ""))
	// JSON numbers come back as float64.
	assert.Equal(t, 180.0, reopened.Get(KeyWPM, 0.0))
}

func TestStore_CorruptedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewStore(path)
	require.NoError(t, err, "a corrupted settings file must not fail the store")
	assert.Empty(t, s.Keys())
	assert.Equal(t, "fallback", s.Get(KeyTheme, "fallback"))
}

func TestStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "settings.json")

	s, err := NewStore(path)
	require.NoError(t, err)
	s.Set(KeyTheme, "dark")

	_, err = os.Stat(path)
	assert.NoError(t, err, "settings file should exist after the first write")
}
