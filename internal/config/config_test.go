package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigOrDefaultNoFile(t *testing.T) {
	cfg := LoadConfigOrDefault("")
	require.NotNil(t, cfg)
	assert.Equal(t, "Cover (front)", cfg.Defaults.PictureType)
	assert.Equal(t, "eng", cfg.Defaults.Language)
}

func TestLoadConfigOrDefaultNonexistentFile(t *testing.T) {
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	require.NotNil(t, cfg)
	assert.Equal(t, "eng", cfg.Defaults.Language)
}

func TestLoadConfigOrDefaultValidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tag.yaml")

	content := "defaults:\n  combine_comments: true\n  language: spa\n  debug: true\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	cfg := LoadConfigOrDefault(configPath)
	require.NotNil(t, cfg)
	assert.True(t, cfg.Defaults.CombineComments)
	assert.Equal(t, "spa", cfg.Defaults.Language)
	assert.True(t, cfg.Defaults.Debug)
}

func TestLoadConfigOrDefaultInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("defaults: [this is not a map"), 0o600))

	cfg := LoadConfigOrDefault(configPath)
	require.NotNil(t, cfg)
	assert.Equal(t, "eng", cfg.Defaults.Language)
}

func TestFindConfigFileCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tag.yaml"), []byte("defaults:\n  language: fra\n"), 0o600))

	assert.Equal(t, "tag.yaml", FindConfigFile())
}
