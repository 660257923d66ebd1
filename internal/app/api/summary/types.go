package summary

// UploadResponse is returned by POST /api/audio/upload.
type UploadResponse struct {
	Success    bool   `json:"success"`
	AudioID    string `json:"audioId"`
	Message    string `json:"message"`
	Filename   string `json:"filename"`
	FileSize   int64  `json:"fileSize"`
	UploadedAt string `json:"uploadedAt"`
}

// TranscriptionResponse is returned by POST /api/audio/{id}/transcribe.
// Text and LanguageCode are filled when the service transcribes synchronously.
type TranscriptionResponse struct {
	Success       bool    `json:"success"`
	AudioID       string  `json:"audioId"`
	JobID         string  `json:"jobId"`
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	EstimatedTime string  `json:"estimatedTime"`
	Text          string  `json:"text"`
	LanguageCode  string  `json:"languageCode"`
	Confidence    float64 `json:"confidence"`
	AudioDuration int     `json:"audioDuration"`
}

// SummaryResponse is returned by GET /api/audio/{id}/summary.
type SummaryResponse struct {
	Success        bool             `json:"success"`
	AudioID        string           `json:"audioId"`
	Status         string           `json:"status"`
	Transcription  TranscriptionDTO `json:"transcription"`
	Summary        SummaryDTO       `json:"summary"`
	ProcessingTime string           `json:"processingTime"`
}

// Completed reports whether the summary is ready to be stored.
func (r *SummaryResponse) Completed() bool {
	return r != nil && r.Success && r.Status == StatusCompleted
}

type TranscriptionDTO struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Duration   float64 `json:"duration"`
	// Language is the legacy field; prefer LanguageCode.
	Language     string `json:"language"`
	LanguageCode string `json:"languageCode"`
}

type SummaryDTO struct {
	Text      string   `json:"text"`
	KeyPoints []string `json:"keyPoints"`
	Sentiment string   `json:"sentiment"`
	Chapters  []string `json:"chapters"`
}

// StatusResponse is returned by GET /api/audio/{id}/status.
type StatusResponse struct {
	Success                bool   `json:"success"`
	AudioID                string `json:"audioId"`
	Status                 string `json:"status"`
	Message                string `json:"message"`
	EstimatedTimeRemaining string `json:"estimatedTimeRemaining"`
	Error                  string `json:"error"`
}

// Remote processing states reported in Status fields.
const (
	StatusUploaded     = "uploaded"
	StatusTranscribing = "transcribing"
	StatusSummarizing  = "summarizing"
	StatusCompleted    = "completed"
	StatusFailed       = "failed"
)
