package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"voicenotes/internal/app/api/summary"
)

// FakeSummaryAPI is a scripted summary.API.
//
// Each audio id is "open" from StartTranscription until GetSummary reports
// completion or an error, so MaxOpen shows how many pipelines overlapped.
type FakeSummaryAPI struct {
	mu sync.Mutex

	UploadErr        error
	UploadNoSuccess  bool
	TranscribeErr    error
	TranscribeFailed bool
	// Transcript is echoed from StartTranscription when set.
	Transcript string
	// PollsUntilComplete is how many pending polls precede completion.
	// Negative never completes.
	PollsUntilComplete int
	PollErr            error
	// Delay is slept inside every call.
	Delay time.Duration
	// SummaryFor builds the summary text for an audio id.
	SummaryFor func(audioID string) string

	nextID  int
	polls   map[string]int
	open    map[string]bool
	maxOpen int
	calls   []string
	order   []string
}

var _ summary.API = (*FakeSummaryAPI)(nil)

func NewFakeSummaryAPI() *FakeSummaryAPI {
	return &FakeSummaryAPI{
		nextID: 1,
		polls:  make(map[string]int),
		open:   make(map[string]bool),
	}
}

func (f *FakeSummaryAPI) sleep(ctx context.Context) {
	if f.Delay <= 0 {
		return
	}
	select {
	case <-time.After(f.Delay):
	case <-ctx.Done():
	}
}

func (f *FakeSummaryAPI) Upload(ctx context.Context, fileName string, audio io.Reader) (*summary.UploadResponse, error) {
	f.sleep(ctx)
	data, _ := io.ReadAll(audio)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upload:"+fileName)
	if f.UploadErr != nil {
		return nil, f.UploadErr
	}
	if f.UploadNoSuccess {
		return &summary.UploadResponse{Success: false, Message: "rejected"}, nil
	}

	id := fmt.Sprintf("remote-%d", f.nextID)
	f.nextID++
	return &summary.UploadResponse{
		Success:  true,
		AudioID:  id,
		Filename: fileName,
		FileSize: int64(len(data)),
	}, nil
}

func (f *FakeSummaryAPI) StartTranscription(ctx context.Context, audioID string) (*summary.TranscriptionResponse, error) {
	f.sleep(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "transcribe:"+audioID)
	if f.TranscribeErr != nil {
		return nil, f.TranscribeErr
	}
	if f.TranscribeFailed {
		return &summary.TranscriptionResponse{Success: false, AudioID: audioID, Message: "quota exceeded"}, nil
	}

	f.open[audioID] = true
	if len(f.open) > f.maxOpen {
		f.maxOpen = len(f.open)
	}
	f.order = append(f.order, audioID)
	resp := &summary.TranscriptionResponse{Success: true, AudioID: audioID, Status: summary.StatusTranscribing}
	if f.Transcript != "" {
		resp.Text = f.Transcript
		resp.LanguageCode = "en"
	}
	return resp, nil
}

func (f *FakeSummaryAPI) GetSummary(ctx context.Context, audioID string) (*summary.SummaryResponse, error) {
	f.sleep(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "summary:"+audioID)
	if f.PollErr != nil {
		delete(f.open, audioID)
		return nil, f.PollErr
	}

	f.polls[audioID]++
	if f.PollsUntilComplete < 0 || f.polls[audioID] <= f.PollsUntilComplete {
		return &summary.SummaryResponse{Success: true, AudioID: audioID, Status: summary.StatusSummarizing}, nil
	}

	delete(f.open, audioID)
	text := "summary of " + audioID
	if f.SummaryFor != nil {
		text = f.SummaryFor(audioID)
	}
	return &summary.SummaryResponse{
		Success: true,
		AudioID: audioID,
		Status:  summary.StatusCompleted,
		Summary: summary.SummaryDTO{Text: text},
		Transcription: summary.TranscriptionDTO{
			Text:         "transcript of " + audioID,
			Confidence:   0.9,
			LanguageCode: "en",
		},
	}, nil
}

func (f *FakeSummaryAPI) GetStatus(ctx context.Context, audioID string) (*summary.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "status:"+audioID)
	return &summary.StatusResponse{Success: true, AudioID: audioID, Status: summary.StatusSummarizing}, nil
}

// Close ends an open pipeline that will never poll again, such as one
// that exhausted its attempts.
func (f *FakeSummaryAPI) Close(audioID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.open, audioID)
}

// SetPollsUntilComplete changes the poll script under the lock.
func (f *FakeSummaryAPI) SetPollsUntilComplete(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PollsUntilComplete = n
	f.polls = make(map[string]int)
}

func (f *FakeSummaryAPI) MaxOpen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxOpen
}

// Calls returns every call as "method:arg".
func (f *FakeSummaryAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// TranscriptionOrder returns audio ids in the order transcription started.
func (f *FakeSummaryAPI) TranscriptionOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// PollCount returns how many times GetSummary was called for audioID.
func (f *FakeSummaryAPI) PollCount(audioID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == "summary:"+audioID {
			n++
		}
	}
	return n
}
