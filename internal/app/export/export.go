package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"voicenotes/internal/app/display"
	"voicenotes/internal/app/model"
)

// Header is the first row of every export.
var Header = []string{
	"ID", "Title", "Recorded At", "Duration", "Size", "Status",
	"Summary", "Confidence", "Language", "Transcript",
}

// ToExcel writes one row per audio record of note to outputFilePath.
func ToExcel(note *model.Note, records []model.AudioRecord, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName(note))
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range Header {
		headerRow.AddCell().Value = h
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprint(r.ID)
		row.AddCell().Value = r.Title
		row.AddCell().Value = recordedAt(r.RecordedAt)
		row.AddCell().Value = display.FormatDuration(r.Duration)
		row.AddCell().Value = display.FormatSize(r.FileSizeBytes)
		row.AddCell().Value = string(r.SummaryStatus)
		row.AddCell().Value = r.SummaryText
		row.AddCell().Value = confidence(r)
		row.AddCell().Value = r.SummaryLanguageCode
		row.AddCell().Value = r.TranscriptText
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("save %s: %w", outputFilePath, err)
	}
	return nil
}

var sheetNameReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", ":", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// sheetName returns the note title made safe for a sheet name: no reserved
// characters and at most 31 characters.
func sheetName(note *model.Note) string {
	name := "Audio Records"
	if note != nil && strings.TrimSpace(note.Title) != "" {
		name = sheetNameReplacer.Replace(note.Title)
	}
	runes := []rune(name)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}

func recordedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func confidence(r model.AudioRecord) string {
	if !r.HasSummary {
		return ""
	}
	return fmt.Sprintf("%.2f", r.SummaryConfidence)
}
