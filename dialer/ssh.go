package dialer

import (
	"encoding/base64"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
)

type Ssh struct {
	host string
	key  string
	user string
}

func NewSsh(host, key, user string) *Ssh {
	return &Ssh{
		host,
		key,
		user,
	}
}

func ensureHaveSSHPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(addr, "22")
	}
	return addr
}

// resolveKey accepts the base64 encoded private key content, a path to
// the key file, or the raw key content.
func resolveKey(key string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(key); err == nil {
		return decoded, nil
	}

	if _, err := os.Stat(key); err == nil {
		content, err := os.ReadFile(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read ssh key file %s: %v", key, err)
		}

		return content, nil
	}

	return []byte(key), nil
}

func (s *Ssh) CreateSshClient() (*ssh.Client, error) {
	host := ensureHaveSSHPort(s.host)

	key, err := resolveKey(s.key)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh signer: %w", err)
	}

	conf := &ssh.ClientConfig{
		User:            s.user,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
	}

	return ssh.Dial("tcp", host, conf)
}
