package main // Entry point package

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const programName = "song-sponsorship"

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Song sponsorship service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is fine; real environments set variables directly.
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd, args)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		importCommand(),
		exportCommand(),
		hashPasswordCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
