package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/internal/app"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/repository/migrate"
)

var (
	fromDriver string
	fromDSN    string
)

func init() {
	Cmd.Flags().StringVar(&fromDriver, "from-driver", "sqlite3", "source store driver (sqlite3 or postgres)")
	Cmd.Flags().StringVar(&fromDSN, "from", "", "source store DSN or sqlite path")
	Cmd.MarkFlagRequired("from")
}

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy notes and audio records from another store into the configured one",
	Long: `Copy notes and audio records from another store into the configured one

- Typical use: move a sqlite database to postgres
- Note ids are reassigned by the destination
- Records without a file or with inconsistent summary state are skipped`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.NewLogger(cfg.Log.Development)
		if err != nil {
			return err
		}
		defer logger.Sync()

		src, err := app.OpenRecordStore(cmd.Context(), fromDriver, fromDSN, logger)
		if err != nil {
			return fmt.Errorf("open source store: %w", err)
		}
		defer src.Close()

		dst, err := app.OpenRecordStore(cmd.Context(), cfg.Store.Driver, cfg.Store.DSN, logger)
		if err != nil {
			return fmt.Errorf("open destination store: %w", err)
		}
		defer dst.Close()

		result, err := migrate.Copy(cmd.Context(), src, dst, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %d notes and %d audio records (%d skipped)\n",
			result.Notes, result.AudioRecords, result.Skipped)
		return nil
	},
}
