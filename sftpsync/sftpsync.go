package sftpsync

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/k0kubun/go-ansi"
	sftpdialer "github.com/pkg/sftp"
	"github.com/schollz/progressbar/v3"

	"github.com/sunipkm/devsync/config"
	"github.com/sunipkm/devsync/dialer"
	"github.com/sunipkm/devsync/fileutil"
)

type SftpSync struct {
	config *config.Config
	host   string
	user   string
	key    string
	dryRun bool
}

func New(cfg *config.Config, host, user, key string, dryRun bool) *SftpSync {
	return &SftpSync{
		config: cfg,
		host:   host,
		user:   user,
		key:    key,
		dryRun: dryRun,
	}
}

func createProgressBar(maxBytes int64, filename string) *progressbar.ProgressBar {
	bar := progressbar.NewOptions64(maxBytes,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(25),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][reset] uploading %s...", filename)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	return bar
}

func (s *SftpSync) remoteRoot() string {
	return path.Clean(strings.TrimSuffix(s.config.RemotePath, "/"))
}

// Push uploads the working tree under root to the remote host and then
// removes remote files that have no local counterpart, mirroring the
// delete-after behaviour of the rsync path. Uploads are sequential over
// a single connection.
func (s *SftpSync) Push(root string) error {
	excludes := append([]string{".git"}, s.config.Excludes...)

	files, err := fileutil.ListTree(root, excludes)
	if err != nil {
		return fmt.Errorf("fail to list the working tree, error: %v", err)
	}

	if len(files) == 0 {
		return errors.New("no file found for syncing")
	}

	if s.dryRun {
		for _, file := range files {
			slog.Info("would upload", slog.String("file", file), slog.String("destination", path.Join(s.remoteRoot(), file)))
		}

		return nil
	}

	conn, err := dialer.NewSsh(s.host, s.key, s.user).CreateSshClient()
	if err != nil {
		return fmt.Errorf("fail to create ssh connection, error: %v", err)
	}

	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("fail to close ssh connection", slog.Any("error", err))
		}
	}()

	client, err := sftpdialer.NewClient(conn)
	if err != nil {
		return err
	}

	defer func() {
		if err := client.Close(); err != nil {
			slog.Error("fail to close sftp connection", slog.Any("error", err))
		}
	}()

	for _, file := range files {
		if err := s.upload(client, root, file); err != nil {
			return err
		}
	}

	return s.deleteStrays(client, files)
}

func (s *SftpSync) upload(client *sftpdialer.Client, root, file string) error {
	local, err := os.Open(filepath.Join(root, filepath.FromSlash(file)))
	if err != nil {
		return fmt.Errorf("fail to open the source file: %s, error: %v", file, err)
	}

	defer func() {
		if err := local.Close(); err != nil {
			slog.Error("fail to close the source file", slog.Any("error", err))
		}
	}()

	info, err := local.Stat()
	if err != nil {
		return fmt.Errorf("fail to get source file stat, error: %v", err)
	}

	remotePath := path.Join(s.remoteRoot(), file)

	if dir := path.Dir(remotePath); dir != "." {
		if err := client.MkdirAll(dir); err != nil {
			return fmt.Errorf("fail to create remote directory %s, error: %v", dir, err)
		}
	}

	remote, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("fail to create remote file %s via SFTP, error: %v", remotePath, err)
	}

	defer func() {
		if err := remote.Close(); err != nil {
			slog.Error("fail to close sftp file", slog.Any("error", err))
		}
	}()

	bar := createProgressBar(info.Size(), file)

	if _, err := io.Copy(io.MultiWriter(remote, bar), local); err != nil {
		return fmt.Errorf("fail to upload %s to %s, error: %v", file, remotePath, err)
	}

	return nil
}

// deleteStrays removes remote regular files absent from the local tree.
// Directories are left in place.
func (s *SftpSync) deleteStrays(client *sftpdialer.Client, files []string) error {
	root := s.remoteRoot()

	var remote []string

	walker := client.Walk(root)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return fmt.Errorf("fail to walk the remote tree, error: %v", err)
		}

		if walker.Stat().IsDir() {
			continue
		}

		remote = append(remote, walker.Path())
	}

	for _, stray := range strayPaths(root, remote, files) {
		slog.Debug("removing remote file absent from source", slog.String("path", stray))

		if err := client.Remove(stray); err != nil {
			return fmt.Errorf("fail to remove remote file %s, error: %v", stray, err)
		}
	}

	return nil
}

func strayPaths(root string, remote, local []string) []string {
	keep := make(map[string]struct{}, len(local))
	for _, file := range local {
		keep[path.Join(root, file)] = struct{}{}
	}

	var strays []string
	for _, p := range remote {
		if _, ok := keep[p]; !ok {
			strays = append(strays, p)
		}
	}

	return strays
}
