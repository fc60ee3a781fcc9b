package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/sunipkm/devsync/config"
	"github.com/sunipkm/devsync/rsync"
)

var (
	file    string
	force   bool
	dryRun  bool
	verbose bool
)

// hostArgs accepts exactly one positional HOST. The host value is taken
// verbatim, without any hostname or address validation.
func hostArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("HOST is required.")
	}

	if len(args) > 1 {
		return fmt.Errorf("Unknown argument %s", args[1])
	}

	return nil
}

var rootCmd = &cobra.Command{
	Use:   "devsync [flags] HOST",
	Short: "Push the current working tree to a remote development host.",
	Long: `devsync pushes the current working directory to HOST with rsync.

The transfer runs in archive mode, carries nested .gitignore files,
leaves version control metadata behind, applies the working tree's
.gitignore rules as a filter and removes remote files that no longer
exist locally once the transfer completes. The destination is a path
under the remote user's home directory, configurable via .devsync.yaml.`,
	Args: hostArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Arguments parsed fine, errors from here on are not usage
		// problems.
		cmd.SilenceUsage = true

		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		cfg, err := config.Load(file)
		if err != nil {
			return err
		}

		r := rsync.New(cfg, rsync.Options{
			Host:   args[0],
			DryRun: dryRun,
			Force:  force,
		})

		return r.Run(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}

		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&file, "file", "f", "", "run config yaml file path, defaults to .devsync.yaml in the working directory (optional)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be transferred without doing it (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "prints additional debug information (optional)")

	rootCmd.Flags().BoolVar(&force, "force", false, "force a full re-sync (currently reserved)")
}
