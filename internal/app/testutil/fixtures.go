package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

// SampleAudio is the payload written by WriteAudioFile.
var SampleAudio = []byte("ID3\x03\x00\x00\x00fake-m4a-payload")

// WriteAudioFile writes SampleAudio to dir/name and returns the path.
func WriteAudioFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, SampleAudio, 0644); err != nil {
		t.Fatalf("write audio fixture: %v", err)
	}
	return path
}

// NoteFixture saves a note titled title.
func NoteFixture(t *testing.T, store repository.NoteDAO, title string) *model.Note {
	t.Helper()
	note := &model.Note{Title: title}
	if _, err := store.SaveNote(context.Background(), note); err != nil {
		t.Fatalf("save note fixture: %v", err)
	}
	return note
}

// AudioRecordFixture saves a not-yet-uploaded record backed by a real temp file.
func AudioRecordFixture(t *testing.T, store repository.AudioRecordDAO, noteID int, title string) *model.AudioRecord {
	t.Helper()
	path := WriteAudioFile(t, t.TempDir(), title+".m4a")
	rec := model.NewAudioRecord(noteID, title, path, 3*time.Second, int64(len(SampleAudio)))
	if _, err := store.SaveAudioRecord(context.Background(), rec); err != nil {
		t.Fatalf("save audio record fixture: %v", err)
	}
	return rec
}

// UploadedRecordFixture saves a record that already has a backend id.
func UploadedRecordFixture(t *testing.T, store repository.AudioRecordDAO, noteID int, title, backendID string) *model.AudioRecord {
	t.Helper()
	rec := model.NewAudioRecord(noteID, title, "/recordings/"+title+".m4a", 3*time.Second, 1024)
	rec.BackendAudioID = backendID
	rec.IsUploaded = true
	if _, err := store.SaveAudioRecord(context.Background(), rec); err != nil {
		t.Fatalf("save audio record fixture: %v", err)
	}
	return rec
}
