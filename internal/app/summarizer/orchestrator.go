package summarizer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"voicenotes/internal/app/api/summary"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
)

const (
	DefaultPollAttempts = 12
	DefaultPollInterval = 5 * time.Second
)

// Store persists audio records.
type Store interface {
	GetAudioRecord(ctx context.Context, id int) (*model.AudioRecord, error)
	SaveAudioRecord(ctx context.Context, record *model.AudioRecord) (int, error)
}

// Uploader pushes a record's file to the remote service and links the
// returned backend id.
type Uploader interface {
	UploadAudioRecord(ctx context.Context, record *model.AudioRecord) error
}

// Notifier receives terminal changes. It runs on its own goroutine and is
// never awaited.
type Notifier func(Change)

// Orchestrator serializes upload, transcription and summary polling for
// audio records. A single worker drains a FIFO queue, so at most one
// pipeline runs at any time.
type Orchestrator struct {
	store    Store
	api      summary.API
	uploader Uploader
	logger   *zap.Logger
	metrics  *Metrics
	notifier Notifier

	pollAttempts int
	pollInterval time.Duration

	mu      sync.Mutex
	pending []*model.AudioRecord
	// tracked holds every record that is queued or running, by pointer
	// and by id.
	tracked    map[*model.AudioRecord]struct{}
	trackedIDs map[int]struct{}
	// reserved ids are being written outside the queue (upload sync, edits).
	reserved map[int]struct{}
	closed   bool
	started  bool
	wake     chan struct{}
	done     chan struct{}

	subsMu  sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logging.OrNop(logger) }
}

func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithPollAttempts sets how many summary polls a pipeline issues before giving up.
func WithPollAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.pollAttempts = n
		}
	}
}

// WithPollInterval sets the delay between summary polls. Zero polls back to back.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.pollInterval = d
		}
	}
}

// New creates an orchestrator. Call Start to launch the worker.
func New(store Store, api summary.API, uploader Uploader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		api:          api,
		uploader:     uploader,
		logger:       zap.NewNop(),
		pollAttempts: DefaultPollAttempts,
		pollInterval: DefaultPollInterval,
		tracked:      make(map[*model.AudioRecord]struct{}),
		trackedIDs:   make(map[int]struct{}),
		reserved:     make(map[int]struct{}),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		subs:         make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(nil)
	}
	return o
}

// Start launches the worker. The worker stops when ctx is cancelled or
// Close is called. Calling Start more than once has no effect.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.started || o.closed {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()

	go o.run(ctx)
}

// Close stops accepting work, lets the running pipeline finish and waits
// for the worker to exit. Records still waiting stay persisted as queued
// and are picked up by ResumePending on the next start.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	started := o.started
	o.mu.Unlock()

	o.signal()
	if started {
		<-o.done
	}

	o.subsMu.Lock()
	for id, ch := range o.subs {
		close(ch)
		delete(o.subs, id)
	}
	o.subsMu.Unlock()
}

// Enqueue schedules rec for summarization and returns immediately. It
// returns false without side effects when rec is nil, already has a
// summary, is queued or processing, or is already tracked by id.
func (o *Orchestrator) Enqueue(ctx context.Context, rec *model.AudioRecord) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enqueueLocked(ctx, rec)
}

func (o *Orchestrator) enqueueLocked(ctx context.Context, rec *model.AudioRecord) bool {
	if rec == nil || o.closed || o.isTrackedLocked(rec) {
		return false
	}
	if !rec.CanSummarize() {
		return false
	}

	change := applyQueued(rec)
	if _, err := o.store.SaveAudioRecord(ctx, rec); err != nil {
		// the in-memory state is authoritative until the worker persists again
		o.logger.Warn("failed to persist queued status",
			zap.Int("record_id", rec.ID),
			zap.Int("note_id", rec.NoteID),
			zap.Error(err))
	}
	o.emit(change)

	o.pending = append(o.pending, rec)
	o.tracked[rec] = struct{}{}
	if rec.ID != 0 {
		o.trackedIDs[rec.ID] = struct{}{}
	}
	o.metrics.QueueDepth.Set(float64(len(o.pending)))
	o.logger.Debug("audio record queued", zap.Int("record_id", rec.ID), zap.Int("queue_len", len(o.pending)))

	o.signal()
	return true
}

// ResumePending re-enqueues records left queued or processing by an
// earlier run. Each is reset to none and persisted first. It returns the
// number of records enqueued. A closed orchestrator resumes nothing and
// leaves the records as stored.
func (o *Orchestrator) ResumePending(ctx context.Context, records []*model.AudioRecord) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0
	}
	resumed := 0
	for _, rec := range records {
		if rec == nil || o.isTrackedLocked(rec) {
			continue
		}
		if !rec.SummaryStatus.InFlight() || rec.HasSummary {
			continue
		}

		change := applyRequeueReset(rec)
		if _, err := o.store.SaveAudioRecord(ctx, rec); err != nil {
			o.logger.Warn("failed to persist reset status",
				zap.Int("record_id", rec.ID),
				zap.Int("note_id", rec.NoteID),
				zap.Error(err))
		}
		o.emit(change)

		if o.enqueueLocked(ctx, rec) {
			resumed++
		}
	}
	if resumed > 0 {
		o.logger.Info("resumed pending summaries", zap.Int("count", resumed))
	}
	return resumed
}

// Reset clears rec's summary and returns it to none. It refuses records
// that are queued or processing.
func (o *Orchestrator) Reset(ctx context.Context, rec *model.AudioRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resetLocked(ctx, rec)
}

func (o *Orchestrator) resetLocked(ctx context.Context, rec *model.AudioRecord) error {
	if rec == nil || o.isTrackedLocked(rec) || rec.SummaryStatus.InFlight() {
		return apperrors.ErrNotEligible
	}

	change := applyReset(rec)
	if _, err := o.store.SaveAudioRecord(ctx, rec); err != nil {
		return apperrors.Mark(apperrors.ErrPersistence, err)
	}
	o.emit(change)
	return nil
}

// ReSummarize resets rec and enqueues it again.
func (o *Orchestrator) ReSummarize(ctx context.Context, rec *model.AudioRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.resetLocked(ctx, rec); err != nil {
		return err
	}
	if !o.enqueueLocked(ctx, rec) {
		return apperrors.ErrNotEligible
	}
	return nil
}

// QueueLen returns the number of records waiting behind the running pipeline.
func (o *Orchestrator) QueueLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Tracked reports whether the record with id is queued, running or
// reserved.
func (o *Orchestrator) Tracked(id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.idTrackedLocked(id)
}

// Reserve claims id for a caller that writes the record itself. Until
// Release, Enqueue, ResumePending, Reset and other Reserve calls refuse
// the id. It returns false when the id is already queued, running or
// reserved.
func (o *Orchestrator) Reserve(id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if id == 0 || o.idTrackedLocked(id) {
		return false
	}
	o.reserved[id] = struct{}{}
	return true
}

// Release ends a reservation made with Reserve.
func (o *Orchestrator) Release(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.reserved, id)
}

func (o *Orchestrator) idTrackedLocked(id int) bool {
	if _, ok := o.trackedIDs[id]; ok {
		return true
	}
	_, ok := o.reserved[id]
	return ok
}

func (o *Orchestrator) isTrackedLocked(rec *model.AudioRecord) bool {
	if _, ok := o.tracked[rec]; ok {
		return true
	}
	return rec.ID != 0 && o.idTrackedLocked(rec.ID)
}

func (o *Orchestrator) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// next pops the queue head. ok is false when the worker should exit.
func (o *Orchestrator) next(ctx context.Context) (*model.AudioRecord, bool) {
	for {
		o.mu.Lock()
		if o.closed || ctx.Err() != nil {
			o.mu.Unlock()
			return nil, false
		}
		if len(o.pending) > 0 {
			rec := o.pending[0]
			o.pending[0] = nil
			o.pending = o.pending[1:]
			o.metrics.QueueDepth.Set(float64(len(o.pending)))
			o.mu.Unlock()
			return rec, true
		}
		o.mu.Unlock()

		select {
		case <-o.wake:
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (o *Orchestrator) run(ctx context.Context) {
	defer close(o.done)
	o.logger.Info("summarization worker started",
		zap.Int("poll_attempts", o.pollAttempts),
		zap.Duration("poll_interval", o.pollInterval))

	for {
		rec, ok := o.next(ctx)
		if !ok {
			o.logger.Info("summarization worker stopped")
			return
		}

		o.metrics.ActivePipelines.Inc()
		o.process(ctx, rec)
		o.metrics.ActivePipelines.Dec()

		o.mu.Lock()
		delete(o.tracked, rec)
		delete(o.trackedIDs, rec.ID)
		o.mu.Unlock()
	}
}

// Subscribe returns a channel receiving every change. Sends never block:
// a subscriber that falls more than buffer changes behind misses changes.
// The channel is closed by cancel or by Close.
func (o *Orchestrator) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	o.subsMu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	o.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.subsMu.Lock()
			defer o.subsMu.Unlock()
			if c, ok := o.subs[id]; ok {
				delete(o.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

func (o *Orchestrator) emit(change Change) {
	o.subsMu.Lock()
	for _, ch := range o.subs {
		select {
		case ch <- change:
		default:
			o.logger.Debug("dropping change for slow subscriber", zap.Int("record_id", change.Record.ID))
		}
	}
	o.subsMu.Unlock()

	if change.Terminal() {
		o.metrics.Terminal.WithLabelValues(string(change.Status)).Inc()
		if o.notifier != nil {
			go o.notifier(change)
		}
	}
}
