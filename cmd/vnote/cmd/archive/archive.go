package archive

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/app/archive"
)

var noteID int

func init() {
	Cmd.Flags().IntVarP(&noteID, "note", "n", 0, "note whose audio files are archived")
	Cmd.MarkFlagRequired("note")
}

// Cmd represents the archive command
var Cmd = &cobra.Command{
	Use:   "archive",
	Short: "Copy a note's audio files to S3-compatible storage",
	Long: `Copy a note's audio files to S3-compatible storage

- Objects are stored as notes/{noteID}/{recordID}-{file}
- The bucket is created when missing
- Configure with MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_BUCKET`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := cli.InitApp()
		if err != nil {
			return err
		}
		defer cleanup()

		if a.Config.Archive.Endpoint == "" {
			return fmt.Errorf("archive endpoint not configured (set MINIO_ENDPOINT)")
		}
		client, err := archive.NewMinioClient(a.Config.Archive)
		if err != nil {
			return err
		}

		note, err := a.Store.GetNote(cmd.Context(), noteID)
		if err != nil {
			return err
		}

		result, err := archive.NewService(client, a.Config.Archive.Bucket, a.Logger).ArchiveNote(cmd.Context(), note)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, key := range result.Archived {
			fmt.Fprintln(out, key)
		}
		fmt.Fprintf(out, "archived %d records, %d failed\n", len(result.Archived), result.Failed)
		return nil
	},
}
