//go:build !coverage

package testutils

import (
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

type fileLister struct {
	files []os.FileInfo
}

// ListAt follows the sftp.ListerAt contract: io.EOF signals the end of
// the list, otherwise ReadDir loops on the server forever.
func (fl *fileLister) ListAt(list []os.FileInfo, offset int64) (int, error) {
	start := offset
	if start >= int64(len(fl.files)) {
		return 0, io.EOF
	}

	end := min(start+int64(len(list)), int64(len(fl.files)))
	copy(list, fl.files[start:end])

	n := int(end - start)
	if end >= int64(len(fl.files)) {
		return n, io.EOF
	}

	return n, nil
}

// SftpHandler serves requests against the local filesystem under Root,
// which stands in for the remote user's home directory.
type SftpHandler struct {
	Root string
}

func (sh *SftpHandler) path(requestPath string) string {
	return filepath.Join(sh.Root, filepath.FromSlash(requestPath))
}

func (sh *SftpHandler) Filelist(req *sftp.Request) (sftp.ListerAt, error) {
	path := sh.path(req.Filepath)
	slog.Debug("[sftp] list request", slog.String("method", req.Method), slog.String("path", path))

	if req.Method == "List" {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}

		var infos []os.FileInfo
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				return nil, err
			}
			infos = append(infos, info)
		}

		return &fileLister{files: infos}, nil
	}

	// Stat, Lstat and friends report on the path itself.
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &fileLister{files: []os.FileInfo{info}}, nil
}

func (sh *SftpHandler) Filewrite(req *sftp.Request) (io.WriterAt, error) {
	path := sh.path(req.Filepath)
	slog.Debug("[sftp] writing file", slog.String("file", path))

	return os.Create(path)
}

func (sh *SftpHandler) Fileread(req *sftp.Request) (io.ReaderAt, error) {
	path := sh.path(req.Filepath)
	slog.Debug("[sftp] reading file", slog.String("file", path))

	return os.Open(path)
}

func (sh *SftpHandler) Filecmd(req *sftp.Request) error {
	path := sh.path(req.Filepath)
	slog.Debug("[sftp] command", slog.String("method", req.Method), slog.String("path", path))

	switch req.Method {
	case "Mkdir":
		return os.MkdirAll(path, 0755)
	case "Remove":
		return os.Remove(path)
	case "Rename":
		return os.Rename(path, sh.path(req.Target))
	case "Rmdir":
		return os.RemoveAll(path)
	case "Setstat":
		return nil
	default:
		return os.ErrInvalid
	}
}

// StartSftpServer accepts numberOfRequests connections on address and
// serves SFTP against the local directory root. onClient runs once the
// listener is up.
func StartSftpServer(address, privateKey, root string, numberOfRequests int, onClient func()) error {
	sshConfig := &ssh.ServerConfig{
		PublicKeyCallback: func(c ssh.ConnMetadata, pubKey ssh.PublicKey) (*ssh.Permissions, error) {
			return &ssh.Permissions{
				Extensions: map[string]string{
					"pubkey-fp": ssh.FingerprintSHA256(pubKey),
				},
			}, nil
		},
	}

	private, err := ssh.ParsePrivateKey([]byte(privateKey))
	if err != nil {
		return err
	}

	sshConfig.AddHostKey(private)
	listener, err := net.Listen("tcp", address)

	if err != nil {
		return err
	}

	defer func() {
		if err = listener.Close(); err != nil {
			slog.Error("fail to close listener", slog.Any("error", err))
		}
	}()

	go func() {
		onClient()
	}()

	for range numberOfRequests {
		nConn, err := listener.Accept()
		if err != nil {
			return err
		}

		conn, chans, reqs, err := ssh.NewServerConn(nConn, sshConfig)
		if err != nil {
			return err
		}

		slog.Debug("SSH logged in", slog.Any("key", conn.Permissions.Extensions["pubkey-fp"]))

		go ssh.DiscardRequests(reqs)

		for newChannel := range chans {
			if newChannel.ChannelType() != "session" {
				newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
				continue
			}

			channel, requests, err := newChannel.Accept()
			if err != nil {
				return err
			}

			go func() {
				defer func() {
					if err = channel.Close(); err != nil {
						slog.Error("fail to close ssh channel", slog.Any("error", err))
					}
				}()

				HandleSftpRequests(requests, channel, root)
			}()
		}
	}

	return nil
}

func HandleSftpRequests(requests <-chan *ssh.Request, channel ssh.Channel, root string) {
	for req := range requests {
		if req.Type == "subsystem" && string(req.Payload[4:]) == "sftp" {
			req.Reply(true, nil)

			handler := &SftpHandler{Root: root}
			server := sftp.NewRequestServer(channel, sftp.Handlers{
				FileGet:  handler,
				FilePut:  handler,
				FileCmd:  handler,
				FileList: handler,
			})

			if err := server.Serve(); err != nil && err != io.EOF {
				log.Printf("SFTP server exited with error: %v", err)
			}

			return
		}

		req.Reply(false, nil)
	}
}
