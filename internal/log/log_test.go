package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The package keeps a single global logger guarded by sync.Once, so all
// assertions against it live in one test.
func TestGlobalLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	cleanup, err := Init(path)
	require.NoError(t, err)
	defer cleanup()

	Info(CatContainer, "resolved capability", "capability", "content.parser")
	ErrorErr(CatContent, "load failed", os.ErrNotExist, "path", "missing.md")
	Debug(CatWatcher, "odd fields", "orphan")

	SetMinLevel(LevelWarn)
	Info(CatUI, "below min level, suppressed")
	SetMinLevel(LevelDebug)

	SetEnabled(false)
	Info(CatUI, "disabled, suppressed")
	SetEnabled(true)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "[INFO] [container] resolved capability capability=content.parser")
	assert.Contains(t, out, "[ERROR] [content] load failed")
	assert.Contains(t, out, "error=file does not exist")
	assert.Contains(t, out, "orphan=<missing>")
	assert.NotContains(t, out, "suppressed")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}
