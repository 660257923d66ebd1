package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/app/audio"
	"voicenotes/internal/app/display"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
)

var (
	noteID   int
	filePath string
	title    string
	duration time.Duration
	dir      string
	noProbe  bool

	editTitle      string
	editTranscript string
	editSummary    string
)

// Cmd groups the audio record subcommands
var Cmd = &cobra.Command{
	Use:   "audio",
	Short: "Register, edit and list audio records",
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Attach a captured audio file to a note",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(filePath)
		if err != nil {
			return err
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("audio file: %w", err)
		}

		store, cleanup, err := cli.InitStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := store.GetNote(cmd.Context(), noteID); err != nil {
			return err
		}

		if duration == 0 && !noProbe && audio.Available() {
			if probed, err := audio.Probe(cmd.Context(), path); err == nil {
				duration = probed.Duration
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
		}

		rec := model.NewAudioRecord(noteID, title, path, duration, info.Size())
		if _, err := store.SaveAudioRecord(cmd.Context(), rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added audio record %d (%s)\n", rec.ID, display.FormatSize(rec.FileSizeBytes))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Attach every audio file in a directory to a note",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := cli.InitStore()
		if err != nil {
			return err
		}
		defer cleanup()

		note, err := store.GetNote(cmd.Context(), noteID)
		if err != nil {
			return err
		}

		logger, err := logging.NewLogger(cli.Verbose)
		if err != nil {
			return err
		}
		defer logger.Sync()

		var probe audio.ProbeFunc
		if !noProbe {
			if audio.Available() {
				probe = audio.Probe
			} else {
				logger.Warn("ffprobe not found, durations left empty", zap.String("binary", audio.FFProbeBinary))
			}
		}

		result, err := audio.NewImporter(store, probe, logger).ImportDir(cmd.Context(), note, dir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, r := range result.Imported {
			fmt.Fprintf(out, "added audio record %d %s (%s)\n", r.ID, r.FileName, display.FormatDuration(r.Duration))
		}
		fmt.Fprintf(out, "%d imported, %d already attached, %d failed\n", len(result.Imported), result.Skipped, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("%d files could not be imported", result.Failed)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the audio records of a note",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := cli.InitStore()
		if err != nil {
			return err
		}
		defer cleanup()

		records, err := store.GetAudioRecordsByNoteID(cmd.Context(), noteID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tDURATION\tRECORDED\tSTATUS\tSUMMARY")
		for _, r := range records {
			v := display.ForRecord(r)
			status := v.Status.Text
			if status == "" {
				status = string(r.SummaryStatus)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s %s\n", v.ID, v.Title, v.Duration, v.RecordedAt, status, v.LanguageFlag, display.Truncate(r.SummaryText, 60))
		}
		return w.Flush()
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit the title, transcript or summary of an audio record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cli.ParseID(args[0])
		if err != nil {
			return err
		}

		var edit model.AudioRecordEdit
		if cmd.Flags().Changed("title") {
			edit.Title = &editTitle
		}
		if cmd.Flags().Changed("transcript") {
			edit.TranscriptText = &editTranscript
		}
		if cmd.Flags().Changed("summary") {
			edit.SummaryText = &editSummary
		}
		if edit.Empty() {
			return fmt.Errorf("nothing to edit: pass --title, --transcript or --summary")
		}

		store, cleanup, err := cli.InitStore()
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := store.GetAudioRecord(cmd.Context(), id)
		if err != nil {
			return err
		}
		// a running server owns in-flight records
		if rec.SummaryStatus.InFlight() {
			return apperrors.Wrapf(apperrors.ErrNotEligible, "audio record %d is %s", id, rec.SummaryStatus)
		}
		if err := rec.ApplyEdit(edit); err != nil {
			return err
		}
		if _, err := store.SaveAudioRecord(cmd.Context(), rec); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated audio record %d\n", rec.ID)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <id>",
	Short: "Fetch the transcript and summary of an uploaded record once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cli.ParseID(args[0])
		if err != nil {
			return err
		}

		a, cleanup, err := cli.InitApp()
		if err != nil {
			return err
		}
		defer cleanup()

		rec, ready, err := a.Orchestrator.Refresh(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !ready {
			fmt.Fprintf(out, "summary for audio record %d is not ready yet\n", id)
			return nil
		}
		fmt.Fprintf(out, "audio record %d refreshed\n%s\n", rec.ID, rec.SummaryText)
		return nil
	},
}

func init() {
	addCmd.Flags().IntVarP(&noteID, "note", "n", 0, "note id")
	addCmd.Flags().StringVarP(&filePath, "file", "f", "", "audio file path")
	addCmd.Flags().StringVarP(&title, "title", "t", "", "record title")
	addCmd.Flags().DurationVarP(&duration, "duration", "d", 0, "recording duration, e.g. 1m30s")
	addCmd.Flags().BoolVar(&noProbe, "no-probe", false, "do not run ffprobe for the duration")
	addCmd.MarkFlagRequired("note")
	addCmd.MarkFlagRequired("file")

	importCmd.Flags().IntVarP(&noteID, "note", "n", 0, "note id")
	importCmd.Flags().StringVar(&dir, "dir", ".", "directory holding the audio files")
	importCmd.Flags().BoolVar(&noProbe, "no-probe", false, "do not run ffprobe for durations")
	importCmd.MarkFlagRequired("note")

	listCmd.Flags().IntVarP(&noteID, "note", "n", 0, "note id")
	listCmd.MarkFlagRequired("note")

	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "new title")
	editCmd.Flags().StringVar(&editTranscript, "transcript", "", "replacement transcript text")
	editCmd.Flags().StringVar(&editSummary, "summary", "", "replacement summary text")

	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(importCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(editCmd)
	Cmd.AddCommand(refreshCmd)
}
