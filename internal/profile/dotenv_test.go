package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("EMOCTX_DOTENV_PROBE=loaded\nEMOCTX_MOOD_WINDOW=9\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("EMOCTX_DOTENV_PROBE") })
	t.Setenv("EMOCTX_MOOD_WINDOW", "7")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), file))
	assert.Equal(t, "loaded", os.Getenv("EMOCTX_DOTENV_PROBE"))
	assert.Equal(t, "7", os.Getenv("EMOCTX_MOOD_WINDOW"))
}
