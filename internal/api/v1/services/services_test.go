package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "voicenotes/internal/api/errors"
	"voicenotes/internal/api/v1/dto"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/summarizer"
	"voicenotes/internal/app/testutil"
	"voicenotes/internal/app/uploader"
)

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Enqueue(ctx context.Context, rec *model.AudioRecord) bool {
	return m.Called(ctx, rec).Bool(0)
}

func (m *MockSummarizer) ResumePending(ctx context.Context, records []*model.AudioRecord) int {
	return m.Called(ctx, records).Int(0)
}

func (m *MockSummarizer) ReSummarize(ctx context.Context, rec *model.AudioRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockSummarizer) Refresh(ctx context.Context, id int) (*model.AudioRecord, bool, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*model.AudioRecord)
	return rec, args.Bool(1), args.Error(2)
}

func (m *MockSummarizer) Tracked(id int) bool {
	return m.Called(id).Bool(0)
}

func (m *MockSummarizer) Reserve(id int) bool {
	return m.Called(id).Bool(0)
}

func (m *MockSummarizer) Release(id int) {
	m.Called(id)
}

func (m *MockSummarizer) QueueLen() int {
	return m.Called().Int(0)
}

// syncEnv wires the services to a real orchestrator over a memory store.
type syncEnv struct {
	store *testutil.MemoryStore
	api   *testutil.FakeSummaryAPI
	up    *uploader.Service
	orch  *summarizer.Orchestrator
}

func newSyncEnv(t *testing.T) *syncEnv {
	t.Helper()
	store := testutil.NewMemoryStore()
	api := testutil.NewFakeSummaryAPI()
	up := uploader.NewService(api, store, nil)
	orch := summarizer.New(store, api, up, summarizer.WithPollInterval(0))
	t.Cleanup(orch.Close)
	return &syncEnv{store: store, api: api, up: up, orch: orch}
}

func (e *syncEnv) uploads() int {
	n := 0
	for _, c := range e.api.Calls() {
		if strings.HasPrefix(c, "upload:") {
			n++
		}
	}
	return n
}

// lookupHookSyncer runs afterLookup between listing the unuploaded
// records and uploading them.
type lookupHookSyncer struct {
	Syncer
	afterLookup func()
}

func (s *lookupHookSyncer) GetUnuploadedAudioRecords(ctx context.Context) ([]model.AudioRecord, error) {
	recs, err := s.Syncer.GetUnuploadedAudioRecords(ctx)
	if err == nil && s.afterLookup != nil {
		s.afterLookup()
	}
	return recs, err
}

// uploadHookSyncer runs beforeUpload while the record is being uploaded.
type uploadHookSyncer struct {
	Syncer
	beforeUpload func(rec *model.AudioRecord)
}

func (s *uploadHookSyncer) UploadAudioRecord(ctx context.Context, rec *model.AudioRecord) error {
	s.beforeUpload(rec)
	return s.Syncer.UploadAudioRecord(ctx, rec)
}

func TestAudioService_SyncSkipsTrackedRecords(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	note := testutil.NoteFixture(t, env.store, "sync")
	busy := testutil.AudioRecordFixture(t, env.store, note.ID, "busy")
	idle := testutil.AudioRecordFixture(t, env.store, note.ID, "idle")

	// not started, so busy stays queued
	require.True(t, env.orch.Enqueue(ctx, busy))

	svc := NewAudioService(env.store, env.orch, env.up, nil)
	resp, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.SyncResponse{Uploaded: 1, Skipped: 1}, resp)

	assert.False(t, env.store.MustGet(t, busy.ID).IsUploaded)
	assert.True(t, env.store.MustGet(t, idle.ID).IsUploaded)
	assert.False(t, env.orch.Tracked(idle.ID))
}

func TestAudioService_SyncAfterConcurrentSummary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env := newSyncEnv(t)
	changes, unsubscribe := env.orch.Subscribe(64)
	defer unsubscribe()
	env.orch.Start(ctx)

	note := testutil.NoteFixture(t, env.store, "race")
	rec := testutil.AudioRecordFixture(t, env.store, note.ID, "memo")

	syncer := &lookupHookSyncer{Syncer: env.up, afterLookup: func() {
		fresh := env.store.MustGet(t, rec.ID)
		require.True(t, env.orch.Enqueue(ctx, &fresh))
		deadline := time.After(5 * time.Second)
		for {
			select {
			case c := <-changes:
				if c.Terminal() {
					require.Equal(t, model.SummaryCompleted, c.Status)
					return
				}
			case <-deadline:
				t.Fatal("summary did not finish")
			}
		}
	}}

	svc := NewAudioService(env.store, env.orch, syncer, nil)
	resp, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, &dto.SyncResponse{Skipped: 1}, resp)

	stored := env.store.MustGet(t, rec.ID)
	assert.Equal(t, model.SummaryCompleted, stored.SummaryStatus)
	assert.True(t, stored.HasSummary)
	assert.Equal(t, "summary of "+stored.BackendAudioID, stored.SummaryText)
	assert.Equal(t, 1, env.uploads())
}

func TestAudioService_SyncHoldsRecordDuringUpload(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	note := testutil.NoteFixture(t, env.store, "hold")
	rec := testutil.AudioRecordFixture(t, env.store, note.ID, "memo")

	var accepted, tracked bool
	syncer := &uploadHookSyncer{Syncer: env.up, beforeUpload: func(r *model.AudioRecord) {
		fresh := env.store.MustGet(t, r.ID)
		accepted = env.orch.Enqueue(ctx, &fresh)
		tracked = env.orch.Tracked(r.ID)
	}}

	svc := NewAudioService(env.store, env.orch, syncer, nil)
	resp, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Uploaded)
	assert.False(t, accepted)
	assert.True(t, tracked)

	stored := env.store.MustGet(t, rec.ID)
	assert.True(t, stored.IsUploaded)
	assert.Equal(t, model.SummaryNone, stored.SummaryStatus)
	assert.False(t, env.orch.Tracked(rec.ID))
}

func TestAudioService_UpdateAudioRecord(t *testing.T) {
	ctx := context.Background()
	str := func(s string) *string { return &s }

	t.Run("edits title and transcript", func(t *testing.T) {
		env := newSyncEnv(t)
		rec := testutil.UploadedRecordFixture(t, env.store, 1, "memo", "remote-1")
		svc := NewAudioService(env.store, env.orch, env.up, nil)

		resp, err := svc.UpdateAudioRecord(ctx, rec.ID, &dto.UpdateAudioRecordRequest{
			Title:          str(" standup "),
			TranscriptText: str("corrected transcript"),
		})
		require.NoError(t, err)
		assert.Equal(t, "standup", resp.Title)

		stored := env.store.MustGet(t, rec.ID)
		assert.Equal(t, "standup", stored.Title)
		assert.Equal(t, "corrected transcript", stored.TranscriptText)
		assert.Equal(t, "remote-1", stored.BackendAudioID)
		assert.False(t, env.orch.Tracked(rec.ID))
	})

	t.Run("refused while queued", func(t *testing.T) {
		env := newSyncEnv(t)
		rec := testutil.UploadedRecordFixture(t, env.store, 1, "memo", "remote-1")
		require.True(t, env.orch.Enqueue(ctx, rec))
		svc := NewAudioService(env.store, env.orch, env.up, nil)

		_, err := svc.UpdateAudioRecord(ctx, rec.ID, &dto.UpdateAudioRecordRequest{Title: str("new")})
		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus())
		assert.Equal(t, "memo", env.store.MustGet(t, rec.ID).Title)
		assert.True(t, env.orch.Tracked(rec.ID))
	})

	t.Run("summary edit without summary", func(t *testing.T) {
		env := newSyncEnv(t)
		rec := testutil.UploadedRecordFixture(t, env.store, 1, "memo", "remote-1")
		svc := NewAudioService(env.store, env.orch, env.up, nil)

		_, err := svc.UpdateAudioRecord(ctx, rec.ID, &dto.UpdateAudioRecordRequest{SummaryText: str("mine")})
		assert.ErrorIs(t, err, apperrors.ErrNoSummary)
		assert.False(t, env.orch.Tracked(rec.ID))
	})

	t.Run("missing record", func(t *testing.T) {
		env := newSyncEnv(t)
		svc := NewAudioService(env.store, env.orch, env.up, nil)

		_, err := svc.UpdateAudioRecord(ctx, 99, &dto.UpdateAudioRecordRequest{Title: str("x")})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestAudioService_DeleteAudioRecordRefusedWhileQueued(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	rec := testutil.UploadedRecordFixture(t, env.store, 1, "memo", "remote-1")
	require.True(t, env.orch.Enqueue(ctx, rec))

	svc := NewAudioService(env.store, env.orch, env.up, nil)
	err := svc.DeleteAudioRecord(ctx, rec.ID)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus())
	env.store.MustGet(t, rec.ID)
}

func TestAudioService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("ready", func(t *testing.T) {
		env := newSyncEnv(t)
		rec := testutil.UploadedRecordFixture(t, env.store, 1, "memo", "remote-1")
		svc := NewAudioService(env.store, env.orch, env.up, nil)

		resp, err := svc.Refresh(ctx, rec.ID)
		require.NoError(t, err)
		assert.True(t, resp.Ready)
		assert.Equal(t, "summary of remote-1", resp.Record.SummaryText)
		assert.True(t, env.store.MustGet(t, rec.ID).HasSummary)
	})

	t.Run("in progress", func(t *testing.T) {
		env := newSyncEnv(t)
		rec := testutil.UploadedRecordFixture(t, env.store, 1, "memo", "remote-1")
		require.True(t, env.orch.Reserve(rec.ID))
		defer env.orch.Release(rec.ID)
		svc := NewAudioService(env.store, env.orch, env.up, nil)

		_, err := svc.Refresh(ctx, rec.ID)
		var apiErr *apierrors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus())
	})
}

func TestAudioService_SummarizeNotEligible(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	rec := testutil.UploadedRecordFixture(t, store, 1, "done", "remote-1")

	sum := new(MockSummarizer)
	sum.On("Enqueue", ctx, mock.MatchedBy(func(r *model.AudioRecord) bool { return r.ID == rec.ID })).Return(false)

	svc := NewAudioService(store, sum, nil, nil)
	_, err := svc.Summarize(ctx, rec.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotEligible)
}

func TestNoteService_GetNoteResumesOnce(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	note := testutil.NoteFixture(t, store, "resume")
	testutil.AudioRecordFixture(t, store, note.ID, "a")

	sum := new(MockSummarizer)
	sum.On("ResumePending", ctx, mock.MatchedBy(func(recs []*model.AudioRecord) bool { return len(recs) == 1 })).
		Return(0).Once()

	svc := NewNoteService(store, sum, nil)
	for i := 0; i < 3; i++ {
		resp, err := svc.GetNote(ctx, note.ID)
		require.NoError(t, err)
		assert.Len(t, resp.AudioRecords, 1)
	}
	sum.AssertExpectations(t)
}

func TestNoteService_UpdateNote(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	note := testutil.NoteFixture(t, store, "draft")
	testutil.AudioRecordFixture(t, store, note.ID, "a")

	svc := NewNoteService(store, new(MockSummarizer), nil)
	resp, err := svc.UpdateNote(ctx, note.ID, &dto.UpdateNoteRequest{Title: "  weekly sync "})
	require.NoError(t, err)
	assert.Equal(t, "weekly sync", resp.Title)
	assert.Len(t, resp.AudioRecords, 1)

	stored, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly sync", stored.Title)

	_, err = svc.UpdateNote(ctx, 99, &dto.UpdateNoteRequest{Title: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNoteService_DeleteNoteReleasesOnConflict(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	note := testutil.NoteFixture(t, env.store, "busy")
	idle := testutil.AudioRecordFixture(t, env.store, note.ID, "a")
	busy := testutil.AudioRecordFixture(t, env.store, note.ID, "b")
	require.True(t, env.orch.Enqueue(ctx, busy))

	svc := NewNoteService(env.store, env.orch, nil)
	err := svc.DeleteNote(ctx, note.ID)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.HTTPStatus())

	_, err = env.store.GetNote(ctx, note.ID)
	assert.NoError(t, err)
	assert.False(t, env.orch.Tracked(idle.ID))
	assert.True(t, env.orch.Tracked(busy.ID))
}

func TestNoteService_DeleteNote(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	note := testutil.NoteFixture(t, env.store, "done")
	rec := testutil.AudioRecordFixture(t, env.store, note.ID, "a")

	svc := NewNoteService(env.store, env.orch, nil)
	require.NoError(t, svc.DeleteNote(ctx, note.ID))

	_, err := env.store.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, env.orch.Tracked(rec.ID))
}
