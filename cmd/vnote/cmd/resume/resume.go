package resume

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/progress"
	"voicenotes/internal/app/summarizer"
)

var (
	noteID       int
	showProgress bool
	timeout      time.Duration
)

func init() {
	Cmd.Flags().IntVarP(&noteID, "note", "n", 0, "only resume records of this note")
	Cmd.Flags().BoolVarP(&showProgress, "progress", "p", false, "force progress bars when not on a terminal")
	Cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "give up waiting after this long")
}

// Cmd represents the resume command
var Cmd = &cobra.Command{
	Use:   "resume",
	Short: "Finish summaries left queued or processing",
	Long: `Finish summaries left queued or processing

- Every record still queued or processing is reset and queued again
- Records are processed one at a time in note order
- One progress bar per note`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := cli.InitApp()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		notes, err := a.Store.GetNotes(ctx)
		if err != nil {
			return err
		}
		if noteID != 0 {
			notes = lo.Filter(notes, func(n model.Note, _ int) bool { return n.ID == noteID })
			if len(notes) == 0 {
				return fmt.Errorf("note %d not found", noteID)
			}
		}

		changes, unsubscribe := a.Orchestrator.Subscribe(256)
		defer unsubscribe()

		manager := progress.NewManager(progress.Config{
			Enabled: progress.ShouldShow(showProgress),
			Writer:  os.Stderr,
		})
		defer manager.Shutdown()

		ids := make(map[int]struct{})
		bars := make(map[int]*progress.Bar)
		for i := range notes {
			n := &notes[i]
			pending := lo.FilterMap(n.AudioRecords, func(r model.AudioRecord, _ int) (*model.AudioRecord, bool) {
				return &r, r.SummaryStatus.InFlight() && !r.HasSummary
			})
			if len(pending) == 0 {
				continue
			}

			resumed := a.Orchestrator.ResumePending(ctx, pending)
			if resumed == 0 {
				continue
			}
			for _, r := range pending {
				ids[r.ID] = struct{}{}
			}
			bars[n.ID] = manager.CreateBar(resumed, n.Title)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "nothing to resume")
			return nil
		}

		a.Orchestrator.Start(ctx)

		var completed, failed int
		err = cli.WaitTerminal(ctx, changes, ids, func(c summarizer.Change) {
			if c.Status == model.SummaryCompleted {
				completed++
			} else {
				failed++
			}
			if bar, ok := bars[c.Record.NoteID]; ok {
				bar.Increment()
			}
		})
		if err == nil {
			manager.Wait()
		}

		fmt.Fprintf(out, "resumed %d records: %d completed, %d failed\n", len(ids), completed, failed)
		return err
	},
}
