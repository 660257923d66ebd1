package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vnote/cmd/archive"
	"voicenotes/cmd/vnote/cmd/audio"
	"voicenotes/cmd/vnote/cmd/cli"
	"voicenotes/cmd/vnote/cmd/export"
	"voicenotes/cmd/vnote/cmd/migrate"
	"voicenotes/cmd/vnote/cmd/note"
	"voicenotes/cmd/vnote/cmd/resume"
	"voicenotes/cmd/vnote/cmd/serve"
	"voicenotes/cmd/vnote/cmd/summarize"
	"voicenotes/cmd/vnote/cmd/sync"
	"voicenotes/cmd/vnote/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vnote",
	Short: "Voice notes with AI summaries",
	Long: `Voice notes with AI summaries.

- Notes hold audio records captured elsewhere
- Records are uploaded, transcribed and summarized by the remote service
- Status is persisted after every step, so interrupted work resumes`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(note.Cmd)
	rootCmd.AddCommand(audio.Cmd)
	rootCmd.AddCommand(summarize.Cmd)
	rootCmd.AddCommand(resume.Cmd)
	rootCmd.AddCommand(sync.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(archive.Cmd)
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVar(&cli.ConfigPath, "config", "", "config file (default $VOICENOTES_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&cli.Verbose, "verbose", "V", false, "verbose output")
}
