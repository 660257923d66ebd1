package summarizer

import (
	"time"

	"voicenotes/internal/app/api/summary"
	"voicenotes/internal/app/model"
)

// Names of the AudioRecord fields a Change may report.
const (
	FieldSummaryStatus          = "SummaryStatus"
	FieldHasSummary             = "HasSummary"
	FieldSummaryText            = "SummaryText"
	FieldSummaryConfidence      = "SummaryConfidence"
	FieldSummaryLanguageCode    = "SummaryLanguageCode"
	FieldTranscriptText         = "TranscriptText"
	FieldTranscriptLanguageCode = "TranscriptLanguageCode"
)

// Change describes one state transition of an audio record. Record is a
// copy taken right after the transition.
type Change struct {
	Record model.AudioRecord
	Fields []string
	Status model.SummaryStatus
	Err    error
	At     time.Time
}

// Terminal reports whether the change ends an enqueue attempt.
func (c Change) Terminal() bool {
	return c.Status.Terminal()
}

func newChange(rec *model.AudioRecord, err error, fields ...string) Change {
	return Change{
		Record: rec.Clone(),
		Fields: fields,
		Status: rec.SummaryStatus,
		Err:    err,
		At:     time.Now(),
	}
}

// The functions below only mutate the record they are given; persistence
// and notification happen in the orchestrator.

func applyQueued(rec *model.AudioRecord) Change {
	rec.SummaryStatus = model.SummaryQueued
	return newChange(rec, nil, FieldSummaryStatus)
}

func applyProcessing(rec *model.AudioRecord) Change {
	rec.SummaryStatus = model.SummaryProcessing
	return newChange(rec, nil, FieldSummaryStatus)
}

// applyRequeueReset returns an interrupted record to none before it is
// enqueued again.
func applyRequeueReset(rec *model.AudioRecord) Change {
	rec.SummaryStatus = model.SummaryNone
	return newChange(rec, nil, FieldSummaryStatus)
}

// applyReset clears a previous summary so the record can be summarized again.
func applyReset(rec *model.AudioRecord) Change {
	rec.SummaryStatus = model.SummaryNone
	rec.HasSummary = false
	rec.SummaryText = ""
	rec.SummaryConfidence = 0
	rec.SummaryLanguageCode = ""
	return newChange(rec, nil,
		FieldSummaryStatus, FieldHasSummary, FieldSummaryText, FieldSummaryConfidence, FieldSummaryLanguageCode)
}

func applyTranscript(rec *model.AudioRecord, resp *summary.TranscriptionResponse) (Change, bool) {
	if resp == nil || resp.Text == "" {
		return Change{}, false
	}
	rec.TranscriptText = resp.Text
	fields := []string{FieldTranscriptText}
	if resp.LanguageCode != "" {
		rec.TranscriptLanguageCode = resp.LanguageCode
		fields = append(fields, FieldTranscriptLanguageCode)
	}
	return newChange(rec, nil, fields...), true
}

func applyCompleted(rec *model.AudioRecord, resp *summary.SummaryResponse) Change {
	rec.HasSummary = true
	rec.SummaryText = resp.Summary.Text
	rec.SummaryConfidence = resp.Transcription.Confidence
	rec.SummaryLanguageCode = resp.Transcription.LanguageCode
	fields := []string{FieldHasSummary, FieldSummaryText, FieldSummaryConfidence, FieldSummaryLanguageCode}
	if rec.TranscriptText == "" && resp.Transcription.Text != "" {
		rec.TranscriptText = resp.Transcription.Text
		rec.TranscriptLanguageCode = resp.Transcription.LanguageCode
		fields = append(fields, FieldTranscriptText, FieldTranscriptLanguageCode)
	}
	rec.SummaryStatus = model.SummaryCompleted
	return newChange(rec, nil, append(fields, FieldSummaryStatus)...)
}

// applyRefreshed replaces local transcript and summary with a completed
// remote result.
func applyRefreshed(rec *model.AudioRecord, resp *summary.SummaryResponse) Change {
	fetched := resp.Transcription.Text != ""
	if fetched {
		rec.TranscriptText = resp.Transcription.Text
		rec.TranscriptLanguageCode = resp.Transcription.LanguageCode
	}
	change := applyCompleted(rec, resp)
	if fetched {
		change.Fields = append(change.Fields, FieldTranscriptText, FieldTranscriptLanguageCode)
	}
	return change
}

func applyFailed(rec *model.AudioRecord, cause error) Change {
	rec.SummaryStatus = model.SummaryFailed
	rec.HasSummary = false
	return newChange(rec, cause, FieldSummaryStatus, FieldHasSummary)
}
