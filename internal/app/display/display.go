// Package display holds presentation metadata for audio records: status
// texts, flags and formatted values. Everything here is a pure lookup.
package display

import (
	"fmt"
	"strings"
	"time"

	"voicenotes/internal/app/model"
)

// Info describes how a summary status is presented.
type Info struct {
	Text                string `json:"text"`
	InProgress          bool   `json:"in_progress"`
	Loading             bool   `json:"loading"`
	ShowSummarizeButton bool   `json:"show_summarize_button"`
}

var statusInfo = map[model.SummaryStatus]Info{
	model.SummaryNone:       {ShowSummarizeButton: true},
	model.SummaryQueued:     {Text: "AI summary queued...", InProgress: true, ShowSummarizeButton: true},
	model.SummaryProcessing: {Text: "AI summary in progress...", InProgress: true, Loading: true, ShowSummarizeButton: true},
	model.SummaryCompleted:  {Text: "AI summary ready."},
	model.SummaryFailed:     {Text: "AI summary failed.", ShowSummarizeButton: true},
}

// ForStatus returns the presentation of status. Unknown values present as none.
func ForStatus(status model.SummaryStatus) Info {
	if info, ok := statusInfo[status]; ok {
		return info
	}
	return statusInfo[model.SummaryNone]
}

var languageFlags = map[string]string{
	"tr": "🇹🇷",
	"en": "🇬🇧",
	"de": "🇩🇪",
	"fr": "🇫🇷",
	"es": "🇪🇸",
	"it": "🇮🇹",
	"ru": "🇷🇺",
	"ar": "🇸🇦",
	"zh": "🇨🇳",
	"ja": "🇯🇵",
	"pt": "🇵🇹",
	"hi": "🇮🇳",
}

// LanguageFlag maps a language code such as "en" or "en_us" to a flag emoji.
func LanguageFlag(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if i := strings.IndexAny(code, "_-"); i > 0 {
		code = code[:i]
	}
	if flag, ok := languageFlags[code]; ok {
		return flag
	}
	return "🌐"
}

// FormatDuration renders d as mm:ss using total minutes.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// FormatSize renders a byte count as B, KB or MB with one decimal.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// FormatRecordedAt renders t like "Jan 02, 15:04".
func FormatRecordedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 02, 15:04")
}

// DefaultTruncate is the summary preview length.
const DefaultTruncate = 200

// Truncate shortens text to max runes and appends "...".
func Truncate(text string, max int) string {
	if max <= 0 {
		max = DefaultTruncate
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// Record is the presentation view of an audio record.
type Record struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Duration       string `json:"duration"`
	Size           string `json:"size"`
	RecordedAt     string `json:"recorded_at"`
	Status         Info   `json:"status"`
	SummaryPreview string `json:"summary_preview,omitempty"`
	LanguageFlag   string `json:"language_flag,omitempty"`
}

// ForRecord builds the presentation view of rec.
func ForRecord(rec model.AudioRecord) Record {
	return Record{
		ID:             rec.ID,
		Title:          rec.Title,
		Duration:       FormatDuration(rec.Duration),
		Size:           FormatSize(rec.FileSizeBytes),
		RecordedAt:     FormatRecordedAt(rec.RecordedAt),
		Status:         ForStatus(rec.SummaryStatus),
		SummaryPreview: Truncate(rec.SummaryText, DefaultTruncate),
		LanguageFlag:   LanguageFlag(rec.SummaryLanguageCode),
	}
}
