package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var dbFlag string
	var logLevelFlag string
	var logFormatFlag string
	var workersFlag int
	var noProgressFlag bool

	ctx := newCommandContext(&configFlag, &dbFlag, &logLevelFlag, &logFormatFlag, &workersFlag, &noProgressFlag)

	rootCmd := &cobra.Command{
		Use:           "dupicheck",
		Short:         "Find and act on near-duplicate images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Database path override (default: hidden file inside the scanned folder)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "Hashing worker pool size (0 = one per CPU)")
	rootCmd.PersistentFlags().BoolVar(&noProgressFlag, "no-progress", false, "Disable the hashing progress bar")

	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newMoveCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newIgnoredCommand(ctx))
	rootCmd.AddCommand(newReintegrateCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
