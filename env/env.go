package env

import "os"

const (
	DEVSYNC_SSH_USER = "DEVSYNC_SSH_USER"
	DEVSYNC_SSH_KEY  = "DEVSYNC_SSH_KEY"
)

// Fallback returns value when it is non empty, otherwise the named
// environment variable.
func Fallback(value, envVar string) string {
	if value != "" {
		return value
	}

	return os.Getenv(envVar)
}
