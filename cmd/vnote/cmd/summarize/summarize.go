package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/app/display"
	"voicenotes/internal/app/summarizer"
)

var (
	wait    bool
	again   bool
	timeout time.Duration
)

func init() {
	Cmd.Flags().BoolVarP(&wait, "wait", "w", false, "run the pipeline and wait for the result")
	Cmd.Flags().BoolVar(&again, "again", false, "discard an existing summary and summarize again")
	Cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "give up waiting after this long")
}

// Cmd represents the summarize command
var Cmd = &cobra.Command{
	Use:   "summarize <audioID>",
	Short: "Queue an audio record for transcription and summary",
	Long: `Queue an audio record for transcription and summary

- Without --wait the record is only marked queued; "vnote resume" or
  "vnote serve" picks it up
- With --wait the record is uploaded, transcribed and polled until the
  summary is ready or polling gives up`,
	Args: cobra.ExactArgs(1),
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

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		rec, err := a.Store.GetAudioRecord(ctx, id)
		if err != nil {
			return err
		}

		changes, unsubscribe := a.Orchestrator.Subscribe(64)
		defer unsubscribe()
		if wait {
			a.Orchestrator.Start(ctx)
		}

		if again {
			err = a.Orchestrator.ReSummarize(ctx, rec)
		} else if !a.Orchestrator.Enqueue(ctx, rec) {
			err = fmt.Errorf("audio record %d is not eligible (status %s, has summary %t)", id, rec.SummaryStatus, rec.HasSummary)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !wait {
			fmt.Fprintf(out, "audio record %d queued\n", id)
			return nil
		}

		return cli.WaitTerminal(ctx, changes, map[int]struct{}{id: {}}, func(c summarizer.Change) {
			info := display.ForStatus(c.Status)
			fmt.Fprintf(out, "audio record %d: %s\n", id, info.Text)
			if c.Err != nil {
				fmt.Fprintf(out, "  error: %v\n", c.Err)
				return
			}
			fmt.Fprintf(out, "%s %s\n", display.LanguageFlag(c.Record.SummaryLanguageCode), c.Record.SummaryText)
		})
	},
}
