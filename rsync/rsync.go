package rsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/sunipkm/devsync/config"
)

// Fixed transfer behaviour: archive mode with human readable sizes,
// nested .gitignore files travel with the tree, version control
// metadata stays local, the working tree's .gitignore rules filter the
// transfer and stray destination files are removed after the transfer
// completes.
var baseArgs = []string{
	"-avh",
	"--include=**.gitignore",
	"--exclude=/.git",
	"--filter=:- .gitignore",
	"--delete-after",
}

type Options struct {
	Host   string
	DryRun bool

	// Force is accepted on the command line but is not mapped to any
	// rsync flag.
	// TODO: map it to --ignore-times once the intended behaviour is
	// confirmed with the original script's users.
	Force bool
}

type Rsync struct {
	config  *config.Config
	options Options
}

func New(cfg *config.Config, options Options) *Rsync {
	return &Rsync{
		config:  cfg,
		options: options,
	}
}

// Destination assembles the remote target. A relative remote path is
// resolved by rsync against the remote user's home directory.
func (r *Rsync) Destination() string {
	dest := r.options.Host + ":" + r.config.RemotePath

	if r.config.RemoteUser != "" {
		dest = r.config.RemoteUser + "@" + dest
	}

	return dest
}

func (r *Rsync) Args() []string {
	args := make([]string, 0, len(baseArgs)+len(r.config.Excludes)+3)
	args = append(args, baseArgs...)

	if r.options.DryRun {
		args = append(args, "--dry-run")
	}

	for _, exclude := range r.config.Excludes {
		args = append(args, "--exclude="+exclude)
	}

	return append(args, "./", r.Destination())
}

// Run spawns the transfer with the parent's stdio attached and blocks
// until it completes. A failure exit status surfaces unwrapped as an
// *exec.ExitError so callers can pass it through.
func (r *Rsync) Run(ctx context.Context) error {
	args := r.Args()
	slog.Debug("invoking transfer tool", slog.String("command", r.config.RsyncBin), slog.Any("args", args))

	cmd := exec.CommandContext(ctx, r.config.RsyncBin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rsync: %w", err)
	}

	return nil
}
