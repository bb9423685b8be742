package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Defaults(t *testing.T) {
	m, err := NewManagerAt(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "openai", m.GetDefaultProvider())
	assert.Empty(t, m.GetDefaultModel())
	assert.Equal(t, Config{}, m.Snapshot())
}

func TestManager_SetAndReload(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManagerAt(dir)
	require.NoError(t, err)

	require.NoError(t, m.SetDefaults("anthropic", "claude-sonnet-4-5-20250929"))
	require.NoError(t, m.Set("temperature", "0.5"))
	require.NoError(t, m.Set("temperature", "2"))
	require.NoError(t, m.Set("temperature", "0.5"))
	require.NoError(t, m.Set("max_tokens", "800"))
	require.NoError(t, m.Set("provider", " Gemini "))

	reloaded, err := NewManagerAt(dir)
	require.NoError(t, err)
	assert.Equal(t, Config{
		DefaultProvider: "gemini",
		DefaultModel:    "claude-sonnet-4-5-20250929",
		Temperature:     0.5,
		MaxTokens:       800,
	}, reloaded.Snapshot())
	assert.Equal(t, filepath.Join(dir, "config.json"), reloaded.Path())
}

func TestManager_SetRejectsBadValues(t *testing.T) {
	m, err := NewManagerAt(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, m.Set("temperature", "hot"))
	assert.Error(t, m.Set("temperature", "3"))
	assert.Error(t, m.Set("temperature", "0"), "zero would read back as unset")
	assert.Error(t, m.Set("temperature", "-0.5"))
	assert.Error(t, m.Set("max_tokens", "0"))
	assert.Error(t, m.Set("colour", "blue"))
	assert.NoFileExists(t, m.Path())
}

func TestManager_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644))

	_, err := NewManagerAt(dir)
	assert.ErrorContains(t, err, "failed to parse config")
}
