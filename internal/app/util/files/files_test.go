package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAudioFile(t *testing.T) {
	tests := map[string]bool{
		"memo.m4a":   true,
		"MEMO.M4A":   true,
		"talk.mp3":   true,
		"raw.wav":    true,
		"video.mp4":  false,
		"notes.txt":  false,
		"no_ext":     false,
		"voice.caf":  true,
		"archive.gz": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsAudioFile(name), name)
	}
}

func TestGetAllAudioFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	write := func(name string, age time.Duration) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0644))
		require.NoError(t, os.Chtimes(path, base.Add(age), base.Add(age)))
	}
	write("second.m4a", 2*time.Minute)
	write("first.mp3", time.Minute)
	write("readme.txt", 0)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.m4a"), 0755))

	found, err := GetAllAudioFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "first.mp3", found[0].Name)
	assert.Equal(t, "second.m4a", found[1].Name)
	assert.Equal(t, filepath.Join(dir, "first.mp3"), found[0].FullPath)
	assert.Equal(t, int64(len("first.mp3")), found[0].Size)
}

func TestGetAllAudioFiles_MissingDir(t *testing.T) {
	_, err := GetAllAudioFiles(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to read input directory")
}
