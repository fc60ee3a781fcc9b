package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sunipkm/devsync/config"
	"github.com/sunipkm/devsync/env"
	"github.com/sunipkm/devsync/fileutil"
	"github.com/sunipkm/devsync/sftpsync"
)

var sshUser, sshKey string

func init() {
	sftpCmd.Flags().StringVar(&sshUser, "ssh-user", "", "the remote SSH user, falls back to DEVSYNC_SSH_USER (optional)")
	sftpCmd.Flags().StringVar(&sshKey, "ssh-key", "", "the base64 encoded ssh private key content or the ssh private key file path or the raw private key content, falls back to DEVSYNC_SSH_KEY (optional)")

	rootCmd.AddCommand(sftpCmd)
}

var sftpCmd = &cobra.Command{
	Use:   "sftp [flags] HOST",
	Short: "Push the working tree over SFTP for hosts without rsync.",
	Args:  hostArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		cfg, err := config.Load(file)
		if err != nil {
			return err
		}

		user := env.Fallback(sshUser, env.DEVSYNC_SSH_USER)
		key := env.Fallback(sshKey, env.DEVSYNC_SSH_KEY)

		if user == "" || key == "" {
			return errors.New("ssh user and key are required for SFTP connection")
		}

		return sftpsync.New(cfg, args[0], user, key, dryRun).Push(fileutil.WorkDir())
	},
}
