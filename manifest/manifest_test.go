package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesEntries(t *testing.T) {
	path := writeManifest(t, `[
		{"path": "songs/a.mp3", "name": "Track A", "youtubeID": "abc123"},
		{"path": "songs/b.wav", "name": "Track B", "options": {"skipSeconds": 12.5}}
	]`)

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "songs/a.mp3", entries[0].Path)
	assert.Equal(t, "Track A", entries[0].Name)
	assert.Equal(t, "abc123", entries[0].YouTubeID)

	assert.Equal(t, "songs/b.wav", entries[1].Path)
	assert.Equal(t, 12.5, entries[1].SkipSeconds)
}

func TestLoad_MissingPathErrors(t *testing.T) {
	path := writeManifest(t, `[{"name": "no path here"}]`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EmptyArray(t *testing.T) {
	path := writeManifest(t, `[]`)

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
