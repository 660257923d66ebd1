package summarizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"voicenotes/internal/app/api/summary"
	"voicenotes/internal/app/model"
)

func TestApplyCompleted(t *testing.T) {
	rec := &model.AudioRecord{ID: 1, SummaryStatus: model.SummaryProcessing, TranscriptText: "kept"}
	change := applyCompleted(rec, &summary.SummaryResponse{
		Success: true,
		Status:  summary.StatusCompleted,
		Summary: summary.SummaryDTO{Text: "brief"},
		Transcription: summary.TranscriptionDTO{
			Text:         "ignored",
			Confidence:   0.75,
			LanguageCode: "tr",
		},
	})

	assert.Equal(t, model.SummaryCompleted, change.Status)
	assert.True(t, rec.HasSummary)
	assert.Equal(t, "brief", rec.SummaryText)
	assert.Equal(t, "tr", rec.SummaryLanguageCode)
	assert.Equal(t, "kept", rec.TranscriptText)
	assert.NotContains(t, change.Fields, FieldTranscriptText)
	assert.Contains(t, change.Fields, FieldSummaryStatus)
	assert.NoError(t, change.Record.Validate())
}

func TestApplyFailed_ClearsSummaryFlag(t *testing.T) {
	rec := &model.AudioRecord{ID: 1, SummaryStatus: model.SummaryCompleted, HasSummary: true}
	cause := errors.New("save failed")

	change := applyFailed(rec, cause)
	assert.Equal(t, model.SummaryFailed, rec.SummaryStatus)
	assert.False(t, rec.HasSummary)
	assert.Same(t, cause, change.Err)
	assert.True(t, change.Terminal())
	assert.NoError(t, rec.Validate())
}

func TestApplyReset(t *testing.T) {
	rec := &model.AudioRecord{
		SummaryStatus:       model.SummaryCompleted,
		HasSummary:          true,
		SummaryText:         "old",
		SummaryConfidence:   0.9,
		SummaryLanguageCode: "en",
		TranscriptText:      "transcript",
	}
	change := applyReset(rec)

	assert.Equal(t, model.SummaryNone, change.Status)
	assert.False(t, rec.HasSummary)
	assert.Empty(t, rec.SummaryText)
	assert.Empty(t, rec.SummaryLanguageCode)
	assert.Equal(t, "transcript", rec.TranscriptText)
	assert.False(t, change.Terminal())
}

func TestApplyTranscript(t *testing.T) {
	rec := &model.AudioRecord{}
	_, ok := applyTranscript(rec, &summary.TranscriptionResponse{Success: true})
	assert.False(t, ok)

	change, ok := applyTranscript(rec, &summary.TranscriptionResponse{Success: true, Text: "hello", LanguageCode: "en"})
	assert.True(t, ok)
	assert.Equal(t, []string{FieldTranscriptText, FieldTranscriptLanguageCode}, change.Fields)
	assert.Equal(t, "hello", rec.TranscriptText)
}

func TestChangeRecordIsACopy(t *testing.T) {
	rec := &model.AudioRecord{ID: 3}
	change := applyQueued(rec)
	rec.SummaryStatus = model.SummaryFailed

	assert.Equal(t, model.SummaryQueued, change.Record.SummaryStatus)
}
