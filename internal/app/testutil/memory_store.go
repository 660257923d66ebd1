package testutil

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

// MemoryStore is an in-memory repository.RecordStore.
type MemoryStore struct {
	mu sync.RWMutex

	notes   map[int]model.Note
	records map[int]model.AudioRecord
	nextID  int

	// ErrorMap forces method -> error.
	ErrorMap map[string]error
	// SaveHook runs before every SaveAudioRecord; a non-nil error aborts the save.
	SaveHook func(rec model.AudioRecord) error

	history []model.AudioRecord
}

var _ repository.RecordStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		notes:    make(map[int]model.Note),
		records:  make(map[int]model.AudioRecord),
		nextID:   1,
		ErrorMap: make(map[string]error),
	}
}

func (m *MemoryStore) injected(method string) error {
	if err, ok := m.ErrorMap[method]; ok {
		return err
	}
	return nil
}

func (m *MemoryStore) GetNotes(ctx context.Context) ([]model.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injected("GetNotes"); err != nil {
		return nil, err
	}

	notes := make([]model.Note, 0, len(m.notes))
	for _, n := range m.notes {
		n.AudioRecords = m.recordsForNote(n.ID)
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Date.After(notes[j].Date) })
	return notes, nil
}

func (m *MemoryStore) GetNote(ctx context.Context, id int) (*model.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injected("GetNote"); err != nil {
		return nil, err
	}

	n, ok := m.notes[id]
	if !ok {
		return nil, apperrors.NotFound("note", id)
	}
	n.AudioRecords = m.recordsForNote(id)
	return &n, nil
}

func (m *MemoryStore) SaveNote(ctx context.Context, note *model.Note) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("SaveNote"); err != nil {
		return 0, err
	}

	now := time.Now()
	if note.ID == 0 {
		note.ID = m.nextID
		m.nextID++
		note.CreatedAt = now
		if note.Date.IsZero() {
			note.Date = now
		}
	}
	note.UpdatedAt = now

	stored := *note
	stored.AudioRecords = nil
	m.notes[note.ID] = stored
	return note.ID, nil
}

func (m *MemoryStore) DeleteNote(ctx context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("DeleteNote"); err != nil {
		return err
	}

	for id, r := range m.records {
		if r.NoteID == note.ID {
			delete(m.records, id)
		}
	}
	delete(m.notes, note.ID)
	return nil
}

func (m *MemoryStore) GetAudioRecord(ctx context.Context, id int) (*model.AudioRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injected("GetAudioRecord"); err != nil {
		return nil, err
	}

	r, ok := m.records[id]
	if !ok {
		return nil, apperrors.NotFound("audio record", id)
	}
	return &r, nil
}

func (m *MemoryStore) GetAudioRecordsByNoteID(ctx context.Context, noteID int) ([]model.AudioRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injected("GetAudioRecordsByNoteID"); err != nil {
		return nil, err
	}
	return m.recordsForNote(noteID), nil
}

func (m *MemoryStore) GetAudioRecords(ctx context.Context) ([]model.AudioRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.injected("GetAudioRecords"); err != nil {
		return nil, err
	}

	records := make([]model.AudioRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (m *MemoryStore) SaveAudioRecord(ctx context.Context, record *model.AudioRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("SaveAudioRecord"); err != nil {
		return 0, err
	}
	if m.SaveHook != nil {
		if err := m.SaveHook(*record); err != nil {
			return 0, err
		}
	}

	if record.ID == 0 {
		record.ID = m.nextID
		m.nextID++
		if record.RecordedAt.IsZero() {
			record.RecordedAt = time.Now()
		}
	} else if _, ok := m.records[record.ID]; !ok {
		return 0, apperrors.NotFound("audio record", record.ID)
	}
	record.UpdatedAt = time.Now()

	m.records[record.ID] = *record
	m.history = append(m.history, *record)
	return record.ID, nil
}

// MarkUploaded copies only the upload fields onto the stored record.
func (m *MemoryStore) MarkUploaded(ctx context.Context, record *model.AudioRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("MarkUploaded"); err != nil {
		return err
	}

	stored, ok := m.records[record.ID]
	if !ok {
		return apperrors.NotFound("audio record", record.ID)
	}
	record.UpdatedAt = time.Now()
	stored.BackendAudioID = record.BackendAudioID
	stored.IsUploaded = record.IsUploaded
	stored.FileName = record.FileName
	stored.FileSizeBytes = record.FileSizeBytes
	stored.UpdatedAt = record.UpdatedAt

	m.records[record.ID] = stored
	m.history = append(m.history, stored)
	return nil
}

func (m *MemoryStore) DeleteAudioRecord(ctx context.Context, record *model.AudioRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("DeleteAudioRecord"); err != nil {
		return err
	}

	if record.FilePath != "" {
		os.Remove(record.FilePath)
	}
	delete(m.records, record.ID)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// SetError forces method to fail with err until cleared with a nil err.
func (m *MemoryStore) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.ErrorMap, method)
		return
	}
	m.ErrorMap[method] = err
}

// SetSaveHook installs hook under the store lock.
func (m *MemoryStore) SetSaveHook(hook func(rec model.AudioRecord) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveHook = hook
}

// Put stores record as-is, bypassing hooks and history. Useful for seeding
// state such as a record left processing by a crash.
func (m *MemoryStore) Put(record model.AudioRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == 0 {
		record.ID = m.nextID
		m.nextID++
	} else if record.ID >= m.nextID {
		m.nextID = record.ID + 1
	}
	m.records[record.ID] = record
}

// History returns every successfully saved audio record, in save order.
func (m *MemoryStore) History() []model.AudioRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.AudioRecord, len(m.history))
	copy(out, m.history)
	return out
}

// StatusHistory returns the saved statuses of one record, in save order.
func (m *MemoryStore) StatusHistory(id int) []model.SummaryStatus {
	var out []model.SummaryStatus
	for _, r := range m.History() {
		if r.ID == id {
			out = append(out, r.SummaryStatus)
		}
	}
	return out
}

// MustGet returns the stored record or fails the test.
func (m *MemoryStore) MustGet(t *testing.T, id int) model.AudioRecord {
	t.Helper()
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		t.Fatalf("audio record %d not in store", id)
	}
	return r
}

func (m *MemoryStore) recordsForNote(noteID int) []model.AudioRecord {
	records := make([]model.AudioRecord, 0)
	for _, r := range m.records {
		if r.NoteID == noteID {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].RecordedAt.After(records[j].RecordedAt) })
	return records
}
