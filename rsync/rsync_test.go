package rsync

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"

	"github.com/sunipkm/devsync/config"
)

func TestArgs(t *testing.T) {
	assert := assert.New(t)

	r := New(config.Default(), Options{Host: "myhost"})
	args := r.Args()

	assert.Equal("-avh", args[0])
	assert.True(slices.Contains(args, "--include=**.gitignore"))
	assert.True(slices.Contains(args, "--exclude=/.git"))
	assert.True(slices.Contains(args, "--filter=:- .gitignore"))
	assert.True(slices.Contains(args, "--delete-after"))
	assert.False(slices.Contains(args, "--dry-run"))

	assert.Equal("./", args[len(args)-2])
	assert.Equal("myhost:piccaccel-lnx/", args[len(args)-1])
}

func TestArgsDryRun(t *testing.T) {
	r := New(config.Default(), Options{Host: "myhost", DryRun: true})

	if !slices.Contains(r.Args(), "--dry-run") {
		t.Errorf("expected --dry-run in args but got: %v", r.Args())
	}
}

func TestArgsExtraExcludes(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.Excludes = []string{"target", "*.o"}

	args := New(cfg, Options{Host: "myhost"}).Args()

	assert.True(slices.Contains(args, "--exclude=target"))
	assert.True(slices.Contains(args, "--exclude=*.o"))
}

func TestForceDoesNotChangeArgs(t *testing.T) {
	cfg := config.Default()

	plain := New(cfg, Options{Host: "myhost"}).Args()
	forced := New(cfg, Options{Host: "myhost", Force: true}).Args()

	assert.Equal(t, plain, forced)
}

func TestDestination(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	assert.Equal("myhost:piccaccel-lnx/", New(cfg, Options{Host: "myhost"}).Destination())

	cfg.RemoteUser = "pi"
	cfg.RemotePath = "projects/pico/"
	assert.Equal("pi@pico.local:projects/pico/", New(cfg, Options{Host: "pico.local"}).Destination())
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.RsyncBin = "true"

	r := New(cfg, Options{Host: "myhost"})
	if err := r.Run(context.Background()); err != nil {
		t.Errorf("expected nil error but got: %v", err)
	}
}

func TestRunFailureExitStatus(t *testing.T) {
	cfg := config.Default()
	cfg.RsyncBin = "false"

	err := New(cfg, Options{Host: "myhost"}).Run(context.Background())
	if err == nil {
		t.Fatal("expected error but got nil")
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError but got: %v", err)
	}

	assert.Equal(t, 1, exitErr.ExitCode())
}
