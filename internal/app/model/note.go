package model

import "time"

// Note is a container of audio records.
type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Loaded by the record store, not persisted with the note.
	AudioRecords []AudioRecord `json:"audio_records,omitempty"`
}

func (n *Note) HasAudioRecords() bool {
	return len(n.AudioRecords) > 0
}

func (n *Note) AudioRecordCount() int {
	return len(n.AudioRecords)
}
