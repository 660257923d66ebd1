package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/cli"
)

// Cmd represents the sync command
var Cmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload every audio record not yet on the remote service",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := cli.InitApp()
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.Uploader.SyncUnuploaded(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sync finished: %d uploaded, %d failed\n", result.Uploaded, result.Failed)
		if result.Failed > 0 {
			return fmt.Errorf("%d uploads failed", result.Failed)
		}
		return nil
	},
}
