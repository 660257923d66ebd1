package summarizer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"voicenotes/internal/app/api/summary"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/testutil"
	"voicenotes/internal/app/uploader"
)

const waitTimeout = 5 * time.Second

type harness struct {
	store   *testutil.MemoryStore
	api     *testutil.FakeSummaryAPI
	orch    *Orchestrator
	metrics *Metrics
	changes <-chan Change
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	store := testutil.NewMemoryStore()
	api := testutil.NewFakeSummaryAPI()
	metrics := NewMetrics(prometheus.NewRegistry())

	base := []Option{WithPollInterval(0), WithMetrics(metrics)}
	orch := New(store, api, uploader.NewService(api, store, nil), append(base, opts...)...)
	changes, cancel := orch.Subscribe(1024)

	t.Cleanup(func() {
		cancel()
		orch.Close()
	})
	return &harness{store: store, api: api, orch: orch, metrics: metrics, changes: changes}
}

func (h *harness) start(t *testing.T) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h.orch.Start(ctx)
	return cancel
}

// waitTerminal collects changes until n terminal ones have arrived.
func waitTerminal(t *testing.T, changes <-chan Change, n int) (all, terminal []Change) {
	t.Helper()
	deadline := time.After(waitTimeout)
	for len(terminal) < n {
		select {
		case c, ok := <-changes:
			if !ok {
				t.Fatalf("change stream closed after %d terminal changes", len(terminal))
			}
			all = append(all, c)
			if c.Terminal() {
				terminal = append(terminal, c)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %d terminal changes, got %d", n, len(terminal))
		}
	}
	return all, terminal
}

func assertInvariants(t *testing.T, changes []Change) {
	t.Helper()
	for _, c := range changes {
		assert.NoError(t, c.Record.Validate(), "change %v of record %d", c.Fields, c.Record.ID)
		if c.Record.HasSummary {
			assert.Equal(t, model.SummaryCompleted, c.Status)
		}
	}
}

func TestEnqueue_CompletesPipeline(t *testing.T) {
	h := newHarness(t)
	h.api.PollsUntilComplete = 2
	rec := testutil.AudioRecordFixture(t, h.store, 1, "memo")

	h.start(t)
	require.True(t, h.orch.Enqueue(context.Background(), rec))

	all, terminal := waitTerminal(t, h.changes, 1)
	assertInvariants(t, all)

	done := terminal[0]
	assert.Equal(t, model.SummaryCompleted, done.Status)
	assert.True(t, done.Record.HasSummary)
	assert.Equal(t, "summary of remote-1", done.Record.SummaryText)
	assert.InDelta(t, 0.9, done.Record.SummaryConfidence, 1e-9)
	assert.Equal(t, "en", done.Record.SummaryLanguageCode)
	assert.Equal(t, "transcript of remote-1", done.Record.TranscriptText)

	stored := h.store.MustGet(t, rec.ID)
	assert.Equal(t, model.SummaryCompleted, stored.SummaryStatus)
	assert.True(t, stored.IsUploaded)
	assert.Equal(t, "remote-1", stored.BackendAudioID)
	assert.Equal(t, []model.SummaryStatus{
		model.SummaryNone,       // fixture
		model.SummaryQueued,     // enqueue
		model.SummaryQueued,     // upload linkage
		model.SummaryProcessing, // pipeline start
		model.SummaryCompleted,
	}, h.store.StatusHistory(rec.ID))
	assert.Equal(t, 3, h.api.PollCount("remote-1"))

	assert.Equal(t, 1.0, promtest.ToFloat64(h.metrics.Terminal.WithLabelValues("completed")))
	assert.Equal(t, 0.0, promtest.ToFloat64(h.metrics.QueueDepth))
}

func TestEnqueue_Ineligible(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	queued := testutil.UploadedRecordFixture(t, h.store, 1, "a", "a-1")
	require.True(t, h.orch.Enqueue(ctx, queued))
	require.Equal(t, 1, h.orch.QueueLen())

	processing := testutil.UploadedRecordFixture(t, h.store, 1, "b", "b-1")
	processing.SummaryStatus = model.SummaryProcessing

	done := testutil.UploadedRecordFixture(t, h.store, 1, "c", "c-1")
	done.SummaryStatus = model.SummaryCompleted
	done.HasSummary = true

	sameID := *queued
	sameID.SummaryStatus = model.SummaryFailed

	assert.False(t, h.orch.Enqueue(ctx, nil))
	assert.False(t, h.orch.Enqueue(ctx, processing))
	assert.False(t, h.orch.Enqueue(ctx, done))
	assert.False(t, h.orch.Enqueue(ctx, queued))
	assert.False(t, h.orch.Enqueue(ctx, &sameID))
	assert.Equal(t, 1, h.orch.QueueLen())
	assert.True(t, h.orch.Tracked(queued.ID))
	assert.Equal(t, model.SummaryProcessing, processing.SummaryStatus)
}

func TestEnqueue_FIFO(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := testutil.UploadedRecordFixture(t, h.store, 1, "a", "a-1")
	b := testutil.UploadedRecordFixture(t, h.store, 1, "b", "b-1")
	c := testutil.UploadedRecordFixture(t, h.store, 1, "c", "c-1")

	// enqueue before starting so all three wait in the queue
	require.True(t, h.orch.Enqueue(ctx, a))
	require.True(t, h.orch.Enqueue(ctx, b))
	require.True(t, h.orch.Enqueue(ctx, c))
	assert.Equal(t, 3, h.orch.QueueLen())

	h.start(t)
	_, terminal := waitTerminal(t, h.changes, 3)

	ids := []int{terminal[0].Record.ID, terminal[1].Record.ID, terminal[2].Record.ID}
	assert.Equal(t, []int{a.ID, b.ID, c.ID}, ids)
	assert.Equal(t, []string{"a-1", "b-1", "c-1"}, h.api.TranscriptionOrder())
}

func TestResumePending_ConcurrentCallsSingleDrainer(t *testing.T) {
	h := newHarness(t)
	h.api.Delay = 2 * time.Millisecond
	h.api.PollsUntilComplete = 1
	h.start(t)

	makeBatch := func(prefix string) []*model.AudioRecord {
		batch := make([]*model.AudioRecord, 0, 5)
		for i := 0; i < 5; i++ {
			rec := testutil.UploadedRecordFixture(t, h.store, 1, fmt.Sprintf("%s%d", prefix, i), fmt.Sprintf("%s-%d", prefix, i))
			rec.SummaryStatus = model.SummaryProcessing
			h.store.Put(*rec)
			batch = append(batch, rec)
		}
		return batch
	}
	first, second := makeBatch("x"), makeBatch("y")

	var wg sync.WaitGroup
	counts := make([]int, 2)
	for i, batch := range [][]*model.AudioRecord{first, second} {
		wg.Add(1)
		go func(i int, batch []*model.AudioRecord) {
			defer wg.Done()
			counts[i] = h.orch.ResumePending(context.Background(), batch)
		}(i, batch)
	}
	wg.Wait()

	assert.Equal(t, 10, counts[0]+counts[1])
	all, terminal := waitTerminal(t, h.changes, 10)
	assertInvariants(t, all)

	assert.Len(t, terminal, 10)
	assert.Equal(t, 1, h.api.MaxOpen())
	assert.Equal(t, 10.0, promtest.ToFloat64(h.metrics.Terminal.WithLabelValues("completed")))
}

func TestResumePending_SameRecordsTwice(t *testing.T) {
	h := newHarness(t)

	batch := make([]*model.AudioRecord, 0, 5)
	for i := 0; i < 5; i++ {
		rec := testutil.UploadedRecordFixture(t, h.store, 1, fmt.Sprintf("r%d", i), fmt.Sprintf("r-%d", i))
		rec.SummaryStatus = model.SummaryQueued
		batch = append(batch, rec)
	}

	var wg sync.WaitGroup
	counts := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			counts[i] = h.orch.ResumePending(context.Background(), batch)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, counts[0]+counts[1])
	assert.Equal(t, 5, h.orch.QueueLen())
}

func TestPipeline_PollExhausted(t *testing.T) {
	h := newHarness(t)
	h.api.PollsUntilComplete = -1
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "slow", "slow-1")

	h.start(t)
	require.True(t, h.orch.Enqueue(context.Background(), rec))

	all, terminal := waitTerminal(t, h.changes, 1)
	assertInvariants(t, all)

	failed := terminal[0]
	assert.Equal(t, model.SummaryFailed, failed.Status)
	assert.False(t, failed.Record.HasSummary)
	assert.True(t, apperrors.Is(failed.Err, apperrors.ErrPollExhausted))
	assert.Equal(t, DefaultPollAttempts, h.api.PollCount("slow-1"))
	assert.Equal(t, model.SummaryFailed, h.store.MustGet(t, rec.ID).SummaryStatus)
	assert.Equal(t, 1.0, promtest.ToFloat64(h.metrics.Failures.WithLabelValues("poll_exhausted")))
}

func TestPipeline_PollAttemptsOption(t *testing.T) {
	h := newHarness(t, WithPollAttempts(3))
	h.api.PollsUntilComplete = -1
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "slow", "slow-1")

	h.start(t)
	require.True(t, h.orch.Enqueue(context.Background(), rec))
	waitTerminal(t, h.changes, 1)

	assert.Equal(t, 3, h.api.PollCount("slow-1"))
}

func TestPipeline_PollTransportErrorStopsPolling(t *testing.T) {
	h := newHarness(t)
	h.api.PollErr = &summary.APIError{Code: "request_failed", Message: "connection reset", Retryable: true}
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")

	h.start(t)
	require.True(t, h.orch.Enqueue(context.Background(), rec))
	_, terminal := waitTerminal(t, h.changes, 1)

	assert.Equal(t, model.SummaryFailed, terminal[0].Status)
	assert.True(t, apperrors.Is(terminal[0].Err, apperrors.ErrPollTransport))
	assert.Equal(t, 1, h.api.PollCount("m-1"))
}

func TestPipeline_StepFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, h *harness) *model.AudioRecord
		reason string
	}{
		{
			name: "upload failure",
			setup: func(t *testing.T, h *harness) *model.AudioRecord {
				h.api.UploadErr = errors.New("413 payload too large")
				return testutil.AudioRecordFixture(t, h.store, 1, "big")
			},
			reason: "upload",
		},
		{
			name: "transcription start error",
			setup: func(t *testing.T, h *harness) *model.AudioRecord {
				h.api.TranscribeErr = &summary.APIError{Code: "api_error", StatusCode: 500}
				return testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
			},
			reason: "transcription_start",
		},
		{
			name: "transcription start unsuccessful",
			setup: func(t *testing.T, h *harness) *model.AudioRecord {
				h.api.TranscribeFailed = true
				return testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
			},
			reason: "transcription_start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			rec := tt.setup(t, h)

			h.start(t)
			require.True(t, h.orch.Enqueue(context.Background(), rec))
			all, terminal := waitTerminal(t, h.changes, 1)
			assertInvariants(t, all)

			assert.Equal(t, model.SummaryFailed, terminal[0].Status)
			assert.Equal(t, tt.reason, apperrors.Reason(terminal[0].Err))
			assert.Equal(t, model.SummaryFailed, h.store.MustGet(t, rec.ID).SummaryStatus)
		})
	}
}

func TestPipeline_LinkageMissing(t *testing.T) {
	store := testutil.NewMemoryStore()
	up := testutil.NewMockUploader(t)
	up.On("UploadAudioRecord", mock.Anything, mock.Anything).Return(nil)

	orch := New(store, testutil.NewFakeSummaryAPI(), up, WithPollInterval(0))
	changes, cancel := orch.Subscribe(16)
	defer cancel()
	defer orch.Close()

	rec := testutil.AudioRecordFixture(t, store, 1, "memo")
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	orch.Start(ctx)
	require.True(t, orch.Enqueue(ctx, rec))

	_, terminal := waitTerminal(t, changes, 1)
	assert.Equal(t, model.SummaryFailed, terminal[0].Status)
	assert.True(t, apperrors.Is(terminal[0].Err, apperrors.ErrLinkageMissing))
	up.AssertExpectations(t)
}

func TestPipeline_PersistenceFailureContinuesDrain(t *testing.T) {
	h := newHarness(t)
	bad := testutil.UploadedRecordFixture(t, h.store, 1, "bad", "bad-1")
	good := testutil.UploadedRecordFixture(t, h.store, 1, "good", "good-1")

	h.store.SetSaveHook(func(rec model.AudioRecord) error {
		if rec.ID == bad.ID && rec.SummaryStatus == model.SummaryCompleted {
			return errors.New("disk I/O error")
		}
		return nil
	})

	h.start(t)
	ctx := context.Background()
	require.True(t, h.orch.Enqueue(ctx, bad))
	require.True(t, h.orch.Enqueue(ctx, good))

	all, terminal := waitTerminal(t, h.changes, 2)
	assertInvariants(t, all)

	assert.Equal(t, bad.ID, terminal[0].Record.ID)
	assert.Equal(t, model.SummaryFailed, terminal[0].Status)
	assert.True(t, apperrors.Is(terminal[0].Err, apperrors.ErrPersistence))
	assert.Equal(t, model.SummaryFailed, h.store.MustGet(t, bad.ID).SummaryStatus)

	assert.Equal(t, good.ID, terminal[1].Record.ID)
	assert.Equal(t, model.SummaryCompleted, terminal[1].Status)
}

func TestResumePending_AfterCrash(t *testing.T) {
	h := newHarness(t)
	h.store.Put(model.AudioRecord{
		ID:             7,
		NoteID:         1,
		Title:          "interrupted",
		FilePath:       "/recordings/interrupted.m4a",
		BackendAudioID: "int-7",
		IsUploaded:     true,
		SummaryStatus:  model.SummaryProcessing,
	})

	loaded, err := h.store.GetAudioRecord(context.Background(), 7)
	require.NoError(t, err)

	h.start(t)
	assert.Equal(t, 1, h.orch.ResumePending(context.Background(), []*model.AudioRecord{loaded}))

	all, terminal := waitTerminal(t, h.changes, 1)
	assertInvariants(t, all)
	assert.Equal(t, model.SummaryNone, all[0].Status)
	assert.Equal(t, model.SummaryQueued, all[1].Status)
	assert.Equal(t, model.SummaryCompleted, terminal[0].Status)
	assert.Equal(t, []model.SummaryStatus{
		model.SummaryNone,
		model.SummaryQueued,
		model.SummaryProcessing,
		model.SummaryCompleted,
	}, h.store.StatusHistory(7))
}

func TestResumePending_SkipsSettledRecords(t *testing.T) {
	h := newHarness(t)
	records := []*model.AudioRecord{
		nil,
		{ID: 1, SummaryStatus: model.SummaryNone},
		{ID: 2, SummaryStatus: model.SummaryFailed},
		{ID: 3, SummaryStatus: model.SummaryCompleted, HasSummary: true},
	}
	assert.Equal(t, 0, h.orch.ResumePending(context.Background(), records))
	assert.Equal(t, 0, h.orch.QueueLen())
	assert.Empty(t, h.store.History())
}

func TestResumePending_AfterCloseLeavesRecordsStored(t *testing.T) {
	h := newHarness(t)
	h.store.Put(model.AudioRecord{
		ID:             7,
		NoteID:         1,
		BackendAudioID: "int-7",
		IsUploaded:     true,
		SummaryStatus:  model.SummaryProcessing,
	})
	loaded, err := h.store.GetAudioRecord(context.Background(), 7)
	require.NoError(t, err)

	h.orch.Close()

	assert.Equal(t, 0, h.orch.ResumePending(context.Background(), []*model.AudioRecord{loaded}))
	assert.Equal(t, model.SummaryProcessing, h.store.MustGet(t, 7).SummaryStatus)
	assert.Equal(t, model.SummaryProcessing, loaded.SummaryStatus)
	assert.Empty(t, h.store.History())
}

func TestReserve_BlocksQueueUntilRelease(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")

	require.True(t, h.orch.Reserve(rec.ID))
	assert.False(t, h.orch.Reserve(rec.ID))
	assert.True(t, h.orch.Tracked(rec.ID))

	assert.False(t, h.orch.Enqueue(ctx, rec))
	assert.True(t, apperrors.Is(h.orch.Reset(ctx, rec), apperrors.ErrNotEligible))
	interrupted := rec.Clone()
	interrupted.SummaryStatus = model.SummaryProcessing
	assert.Equal(t, 0, h.orch.ResumePending(ctx, []*model.AudioRecord{&interrupted}))
	assert.Equal(t, 0, h.orch.QueueLen())

	h.orch.Release(rec.ID)
	assert.False(t, h.orch.Tracked(rec.ID))
	assert.True(t, h.orch.Enqueue(ctx, rec))
	assert.False(t, h.orch.Reserve(rec.ID), "queued records cannot be reserved")
	assert.False(t, h.orch.Reserve(0))
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("completed remote result replaces local text", func(t *testing.T) {
		h := newHarness(t)
		rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
		rec.SummaryStatus = model.SummaryCompleted
		rec.HasSummary = true
		rec.SummaryText = "hand edited"
		rec.TranscriptText = "hand edited transcript"
		h.store.Put(*rec)

		got, ok, err := h.orch.Refresh(ctx, rec.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "summary of m-1", got.SummaryText)

		stored := h.store.MustGet(t, rec.ID)
		assert.Equal(t, "summary of m-1", stored.SummaryText)
		assert.Equal(t, "transcript of m-1", stored.TranscriptText)
		assert.Equal(t, model.SummaryCompleted, stored.SummaryStatus)
		assert.NoError(t, stored.Validate())
		assert.False(t, h.orch.Tracked(rec.ID))
	})

	t.Run("not ready", func(t *testing.T) {
		h := newHarness(t)
		h.api.SetPollsUntilComplete(-1)
		rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")

		got, ok, err := h.orch.Refresh(ctx, rec.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, rec.ID, got.ID)
		assert.False(t, h.store.MustGet(t, rec.ID).HasSummary)
	})

	t.Run("refused while queued", func(t *testing.T) {
		h := newHarness(t)
		rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
		require.True(t, h.orch.Enqueue(ctx, rec))

		_, _, err := h.orch.Refresh(ctx, rec.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible))
	})

	t.Run("missing record", func(t *testing.T) {
		h := newHarness(t)

		_, _, err := h.orch.Refresh(ctx, 42)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		assert.False(t, h.orch.Tracked(42))
	})

	t.Run("not uploaded", func(t *testing.T) {
		h := newHarness(t)
		rec := testutil.AudioRecordFixture(t, h.store, 1, "memo")

		_, _, err := h.orch.Refresh(ctx, rec.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrLinkageMissing))
		assert.False(t, h.orch.Tracked(rec.ID))
	})
}

func TestReSummarize(t *testing.T) {
	h := newHarness(t)
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
	rec.SummaryStatus = model.SummaryCompleted
	rec.HasSummary = true
	rec.SummaryText = "old summary"
	rec.SummaryConfidence = 0.5
	h.store.Put(*rec)

	h.api.SummaryFor = func(audioID string) string { return "new summary" }
	h.start(t)

	require.NoError(t, h.orch.ReSummarize(context.Background(), rec))

	all, terminal := waitTerminal(t, h.changes, 1)
	assertInvariants(t, all)

	reset := all[0]
	assert.Equal(t, model.SummaryNone, reset.Status)
	assert.False(t, reset.Record.HasSummary)
	assert.Empty(t, reset.Record.SummaryText)
	assert.Zero(t, reset.Record.SummaryConfidence)

	assert.Equal(t, model.SummaryCompleted, terminal[0].Status)
	assert.True(t, terminal[0].Record.HasSummary)
	assert.Equal(t, "new summary", terminal[0].Record.SummaryText)
	assert.Equal(t, "new summary", h.store.MustGet(t, rec.ID).SummaryText)
}

func TestReset_RefusesInFlight(t *testing.T) {
	h := newHarness(t)
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
	require.True(t, h.orch.Enqueue(context.Background(), rec))

	err := h.orch.Reset(context.Background(), rec)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible))

	processing := &model.AudioRecord{ID: 99, SummaryStatus: model.SummaryProcessing}
	assert.True(t, apperrors.Is(h.orch.Reset(context.Background(), processing), apperrors.ErrNotEligible))
}

func TestReset_PersistenceFailure(t *testing.T) {
	h := newHarness(t)
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
	h.store.SetError("SaveAudioRecord", errors.New("read-only"))

	err := h.orch.Reset(context.Background(), rec)
	assert.True(t, apperrors.Is(err, apperrors.ErrPersistence))
}

func TestEnqueue_PersistenceFailureStillQueues(t *testing.T) {
	h := newHarness(t)
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
	h.store.SetError("SaveAudioRecord", errors.New("locked"))

	assert.True(t, h.orch.Enqueue(context.Background(), rec))
	assert.Equal(t, model.SummaryQueued, rec.SummaryStatus)
	assert.Equal(t, 1, h.orch.QueueLen())
}

func TestNotifier_TerminalOnly(t *testing.T) {
	notified := make(chan Change, 8)
	h := newHarness(t, WithNotifier(func(c Change) { notified <- c }))
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")

	h.start(t)
	require.True(t, h.orch.Enqueue(context.Background(), rec))
	waitTerminal(t, h.changes, 1)

	select {
	case c := <-notified:
		assert.Equal(t, model.SummaryCompleted, c.Status)
	case <-time.After(waitTimeout):
		t.Fatal("notifier not called")
	}
	select {
	case c := <-notified:
		t.Fatalf("unexpected extra notification: %v", c.Status)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCancelledContextLeavesRecordResumable(t *testing.T) {
	h := newHarness(t, WithPollInterval(time.Hour))
	h.api.PollsUntilComplete = -1
	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")

	cancel := h.start(t)
	require.True(t, h.orch.Enqueue(context.Background(), rec))

	require.Eventually(t, func() bool { return h.api.PollCount("m-1") == 1 }, waitTimeout, time.Millisecond)
	cancel()

	select {
	case <-h.orch.done:
	case <-time.After(waitTimeout):
		t.Fatal("worker did not stop")
	}
	assert.Equal(t, model.SummaryProcessing, h.store.MustGet(t, rec.ID).SummaryStatus)
	assert.False(t, h.orch.Tracked(rec.ID))
}

func TestClose(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.orch.Close()
	h.orch.Close()

	rec := testutil.UploadedRecordFixture(t, h.store, 1, "memo", "m-1")
	assert.False(t, h.orch.Enqueue(context.Background(), rec))

	_, ok := <-h.changes
	assert.False(t, ok, "subscriptions are closed")
}

func TestSubscribe_Cancel(t *testing.T) {
	h := newHarness(t)
	ch, cancel := h.orch.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// a full subscriber never blocks enqueue
	slow, stop := h.orch.Subscribe(1)
	defer stop()
	for i := 0; i < 3; i++ {
		rec := testutil.UploadedRecordFixture(t, h.store, 1, fmt.Sprintf("r%d", i), fmt.Sprintf("r-%d", i))
		assert.True(t, h.orch.Enqueue(context.Background(), rec))
	}
	assert.Len(t, slow, 1)
}
