package summarizer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"voicenotes/internal/app/api/summary"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/model"
)

// Pipeline steps, as logged.
const (
	stepUpload     = "upload"
	stepLinkage    = "linkage"
	stepTranscribe = "transcribe"
	stepPoll       = "poll"
	stepPersist    = "persist"
)

// process runs one record through upload, transcription and polling. Every
// outcome ends in completed or failed, except when ctx is cancelled: the
// record then keeps its persisted in-flight status for ResumePending.
func (o *Orchestrator) process(ctx context.Context, rec *model.AudioRecord) {
	started := time.Now()
	log := o.logger.With(zap.Int("record_id", rec.ID), zap.Int("note_id", rec.NoteID))
	log.Info("summarization started")

	if !rec.IsUploaded {
		if err := o.uploader.UploadAudioRecord(ctx, rec); err != nil {
			o.fail(ctx, rec, stepUpload, apperrors.Mark(apperrors.ErrUploadFailed, err))
			return
		}
	}

	if err := o.commit(ctx, rec, applyProcessing(rec)); err != nil {
		o.fail(ctx, rec, stepPersist, err)
		return
	}

	if rec.BackendAudioID == "" {
		o.fail(ctx, rec, stepLinkage, apperrors.ErrLinkageMissing)
		return
	}

	tr, err := o.api.StartTranscription(ctx, rec.BackendAudioID)
	if err == nil && (tr == nil || !tr.Success) {
		err = unsuccessful(tr)
	}
	if err != nil {
		o.fail(ctx, rec, stepTranscribe, apperrors.Mark(apperrors.ErrTranscriptionStart, err))
		return
	}
	if change, ok := applyTranscript(rec, tr); ok {
		if err := o.commit(ctx, rec, change); err != nil {
			o.fail(ctx, rec, stepPersist, err)
			return
		}
	}

	resp, err := o.poll(ctx, rec.BackendAudioID)
	if err != nil {
		o.fail(ctx, rec, stepPoll, err)
		return
	}

	if err := o.commit(ctx, rec, applyCompleted(rec, resp)); err != nil {
		o.fail(ctx, rec, stepPersist, err)
		return
	}
	log.Info("summarization completed", zap.Duration("elapsed", time.Since(started)))
}

// Refresh fetches the transcript and summary of an uploaded record once,
// outside the queue. The record is loaded after its id is reserved, so
// the returned copy reflects what was stored. ready is false when the
// remote summary is not available yet. Records that are queued, running
// or reserved are refused with ErrNotEligible.
func (o *Orchestrator) Refresh(ctx context.Context, id int) (rec *model.AudioRecord, ready bool, err error) {
	if !o.Reserve(id) {
		return nil, false, apperrors.ErrNotEligible
	}
	defer o.Release(id)

	rec, err = o.store.GetAudioRecord(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if rec.BackendAudioID == "" {
		return rec, false, apperrors.ErrLinkageMissing
	}
	resp, err := o.api.GetSummary(ctx, rec.BackendAudioID)
	if err != nil {
		return rec, false, apperrors.Mark(apperrors.ErrPollTransport, err)
	}
	if !resp.Completed() {
		return rec, false, nil
	}
	if err := o.commit(ctx, rec, applyRefreshed(rec, resp)); err != nil {
		return rec, false, err
	}
	o.logger.Info("summary refreshed", zap.Int("record_id", rec.ID), zap.Int("note_id", rec.NoteID))
	return rec, true, nil
}

// poll asks for the summary up to pollAttempts times with pollInterval
// between attempts. A transport error ends polling at once.
func (o *Orchestrator) poll(ctx context.Context, audioID string) (*summary.SummaryResponse, error) {
	attempts := 0
	defer func() { o.metrics.PollAttempts.Observe(float64(attempts)) }()

	for attempts < o.pollAttempts {
		if attempts > 0 {
			if err := sleep(ctx, o.pollInterval); err != nil {
				return nil, apperrors.Mark(apperrors.ErrPollTransport, err)
			}
		}
		attempts++

		resp, err := o.api.GetSummary(ctx, audioID)
		if err != nil {
			return nil, apperrors.Mark(apperrors.ErrPollTransport, err)
		}
		if resp.Completed() {
			return resp, nil
		}
		if resp != nil {
			o.logger.Debug("summary not ready",
				zap.String("audio_id", audioID),
				zap.Int("attempt", attempts),
				zap.String("remote_status", resp.Status))
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrPollExhausted, "%d attempts", attempts)
}

// commit persists the record and then publishes change.
func (o *Orchestrator) commit(ctx context.Context, rec *model.AudioRecord, change Change) error {
	if _, err := o.store.SaveAudioRecord(ctx, rec); err != nil {
		return apperrors.Mark(apperrors.ErrPersistence, err)
	}
	o.emit(change)
	return nil
}

// fail moves rec to failed with a best-effort save. A cancelled ctx leaves
// the record untouched instead.
func (o *Orchestrator) fail(ctx context.Context, rec *model.AudioRecord, step string, cause error) {
	log := o.logger.With(
		zap.Int("record_id", rec.ID),
		zap.Int("note_id", rec.NoteID),
		zap.String("step", step))

	if ctx.Err() != nil {
		log.Warn("summarization interrupted; record left for resume",
			zap.String("status", rec.SummaryStatus.String()),
			zap.Error(cause))
		return
	}

	change := applyFailed(rec, cause)
	if _, err := o.store.SaveAudioRecord(ctx, rec); err != nil {
		log.Error("failed to persist failed status", zap.Error(err))
	}
	o.metrics.Failures.WithLabelValues(apperrors.Reason(cause)).Inc()
	log.Error("summarization failed", zap.String("reason", apperrors.Reason(cause)), zap.Error(cause))
	o.emit(change)
}

func unsuccessful(tr *summary.TranscriptionResponse) error {
	if tr == nil {
		return apperrors.Mark(apperrors.ErrResponseInvalid, apperrors.New("empty response"))
	}
	msg := tr.Message
	if msg == "" {
		msg = "success=false"
	}
	return apperrors.Mark(apperrors.ErrResponseInvalid, apperrors.New(msg))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
