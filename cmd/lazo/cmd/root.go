package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"lazo-pipeline/cmd/lazo/cmd/export"
	"lazo-pipeline/cmd/lazo/cmd/migrate"
	"lazo-pipeline/cmd/lazo/cmd/normalize"
	"lazo-pipeline/cmd/lazo/cmd/serve"
	"lazo-pipeline/cmd/lazo/cmd/submit"
	"lazo-pipeline/cmd/lazo/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lazo",
	Short: "Therapy session processing pipeline",
	Long: `Lazo accepts recorded therapy sessions, transcribes them on the backend
routed for the caller's plan, computes conversational biometry and produces a
structured clinical note.

- serve runs the HTTP API and the background worker pool
- submit uploads a recording and waits for the result
- normalize and export work offline on saved payloads`,
	SilenceUsage: true,
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
	rootCmd.AddCommand(submit.Cmd)
	rootCmd.AddCommand(normalize.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
