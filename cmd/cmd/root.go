package cmd

import (
	"os"

	"github.com/ostafen/fatro/internal/logger"
	"github.com/spf13/cobra"
)

const AppName = "fatro"

// log is shared by every subcommand for diagnostic output below the level of
// a command's own result (e.g. which partition offset mount resolved to).
// Its level is set from the --log-level persistent flag in Execute.
var log = logger.New(os.Stderr, logger.InfoLevel)

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - read-only FAT32 reader and FUSE mount tool",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			log = logger.New(os.Stderr, logger.ParseLevel(level))
		},
	}
	rootCmd.PersistentFlags().String("log-level", "INFO", "Minimum log level: DEBUG, INFO, WARN, ERROR.")

	rootCmd.AddCommand(DefineMountCommand())
	rootCmd.AddCommand(DefineLsCommand())
	rootCmd.AddCommand(DefineExtractCommand())
	rootCmd.AddCommand(DefineInfoCommand())

	return rootCmd.Execute()
}
