package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "gizzard.toml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func Test_Load_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gizzard.toml")
	content := `
cache_dir = "/tmp/gizcaches"
cc = "clang"
cc_flags = ["-lm", "-O1"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0664))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/gizcaches", cfg.CacheDir)
	assert.Equal(t, "clang", cfg.CC)
	assert.Equal(t, []string{"-lm", "-O1"}, cfg.CCFlags)
	// unset keys keep their defaults.
	assert.Equal(t, "main", cfg.OutName)
}

func Test_Load_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gizzard.toml")
	require.NoError(t, os.WriteFile(path, []byte(`cc = ""`), 0664))

	_, err := Load(path)
	assert.Error(t, err)
}

func Test_Validate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	bad := Default()
	bad.CacheDir = ""
	assert.Error(t, bad.Validate())
}
