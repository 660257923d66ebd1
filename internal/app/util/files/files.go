package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// AudioExtensions are the file extensions treated as captured audio.
var AudioExtensions = []string{".m4a", ".mp3", ".wav", ".aac", ".ogg", ".caf"}

// AudioFile is an audio file found on disk.
type AudioFile struct {
	FullPath string
	Name     string
	Size     int64
	ModTime  time.Time
}

// IsAudioFile reports whether name has an audio extension.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range AudioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// GetAllAudioFiles lists the audio files directly inside dir, oldest
// first. Paths are absolute.
func GetAllAudioFiles(dir string) ([]AudioFile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var found []AudioFile
	for _, entry := range entries {
		if entry.IsDir() || !IsAudioFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		found = append(found, AudioFile{
			FullPath: filepath.Join(abs, entry.Name()),
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].Name < found[j].Name
		}
		return found[i].ModTime.Before(found[j].ModTime)
	})
	return found, nil
}
