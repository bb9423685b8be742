package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
presets:
  Objects:
    system: "  You list objects.  "
    user: List every object
  summary:
    system: You summarise.
    user: Summarise the text
    mode: TEXT
    model: gpt-4o-mini
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"objects", "summary"}, set.Names())

	objects, ok := set.Get("OBJECTS")
	require.True(t, ok)
	assert.Equal(t, "You list objects.", objects.System)
	assert.Equal(t, ModeImage, objects.Mode)
	assert.True(t, objects.IsImage())

	summary, ok := set.Get("summary")
	require.True(t, ok)
	assert.Equal(t, ModeText, summary.Mode)
	assert.False(t, summary.IsImage())
	assert.Equal(t, "gpt-4o-mini", summary.Model)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("presets: [1, 2"))
	assert.ErrorContains(t, err, "parse prompt file")

	_, err = Parse([]byte("presets:\n  x:\n    system: s\n"))
	assert.ErrorContains(t, err, "user prompt is required")

	_, err = Parse([]byte("presets:\n  x:\n    user: u\n    mode: audio\n"))
	assert.ErrorContains(t, err, "mode must be image or text")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, set.Names(), 2)

	empty, err := Load("  ")
	require.NoError(t, err)
	assert.Empty(t, empty.Names())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuiltinMerge(t *testing.T) {
	file, err := Parse([]byte(sample))
	require.NoError(t, err)

	merged := Builtin().Merge(file)
	assert.Equal(t, []string{"describe", "objects", "summary"}, merged.Names())

	objects, _ := merged.Get("objects")
	assert.Equal(t, "List every object", objects.User, "file presets override builtins")

	def, ok := merged.Get(DefaultName)
	require.True(t, ok)
	assert.True(t, def.IsImage())
}
