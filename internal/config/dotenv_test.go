package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AMBRYFS_DOTENV_TEST=from-file\nAMBRYFS_DOTENV_KEEP=from-file\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("AMBRYFS_DOTENV_TEST")
	})
	t.Setenv("AMBRYFS_DOTENV_KEEP", "from-process")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("AMBRYFS_DOTENV_TEST"))
	assert.Equal(t, "from-process", os.Getenv("AMBRYFS_DOTENV_KEEP"))
}
