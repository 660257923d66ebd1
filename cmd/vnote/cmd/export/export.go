package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/app/export"
)

var (
	noteID         int
	outputFilePath string
)

func init() {
	Cmd.Flags().IntVarP(&noteID, "note", "n", 0, "note to export")
	Cmd.Flags().StringVarP(&outputFilePath, "out", "o", "", "output .xlsx path")

	Cmd.MarkFlagRequired("note")
	Cmd.MarkFlagRequired("out")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a note's audio records and summaries to excel",
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

		if err := export.ToExcel(note, note.AudioRecords, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}
