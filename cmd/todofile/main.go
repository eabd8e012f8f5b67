package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "todofile failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "todofile [FILE]",
		Short: "Edit a to-do list stored as a plain text file",
		Long: "todofile edits a single to-do list. Without FILE it reopens the most recently\n" +
			"modified list in the data directory. Edits are saved after a short pause and on exit.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return run(cmd.Context(), cfg, file)
		},
	}

	bindFlags(cmd, opts)
	return cmd
}

func bindFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.toml (default: per-user config dir)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding to-do files")
	flags.DurationVar(&opts.saveDelay, "save-delay", 0, "quiet period before edits are saved")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.journal, "journal", "", `activity journal database path, or "off"`)
}
