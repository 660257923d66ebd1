package note

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/app/model"
)

// Cmd groups the note subcommands
var Cmd = &cobra.Command{
	Use:   "note",
	Short: "Create, rename and list notes",
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		if title == "" {
			return fmt.Errorf("title is required")
		}

		store, cleanup, err := cli.InitStore()
		if err != nil {
			return err
		}
		defer cleanup()

		n := &model.Note{Title: title}
		if _, err := store.SaveNote(cmd.Context(), n); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created note %d\n", n.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := cli.InitStore()
		if err != nil {
			return err
		}
		defer cleanup()

		notes, err := store.GetNotes(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tDATE\tRECORDS\tSUMMARIZED")
		for _, n := range notes {
			summarized := 0
			for _, r := range n.AudioRecords {
				if r.HasSummary {
					summarized++
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", n.ID, n.Title, n.Date.Format("2006-01-02 15:04"), n.AudioRecordCount(), summarized)
		}
		return w.Flush()
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <title>",
	Short: "Rename a note",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := cli.ParseID(args[0])
		if err != nil {
			return err
		}
		title := strings.TrimSpace(strings.Join(args[1:], " "))
		if title == "" {
			return fmt.Errorf("title is required")
		}

		store, cleanup, err := cli.InitStore()
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := store.GetNote(cmd.Context(), id)
		if err != nil {
			return err
		}
		n.Title = title
		if _, err := store.SaveNote(cmd.Context(), n); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed note %d\n", n.ID)
		return nil
	},
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(editCmd)
}
