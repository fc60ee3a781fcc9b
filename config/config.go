package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is picked up from the working directory when no config
// file is passed explicitly.
const DefaultFile = ".devsync.yaml"

const (
	defaultRemotePath = "piccaccel-lnx/"
	defaultRsyncBin   = "rsync"
)

var (
	ErrEmptyRemotePath    = errors.New("remotepath must not be empty")
	ErrAbsoluteRemotePath = errors.New("remotepath must be relative to the remote home directory")
	ErrEmptyRsyncBin      = errors.New("rsyncbin must not be empty")
)

type Config struct {
	RemotePath string   `yaml:"remotepath"`
	RemoteUser string   `yaml:"remoteuser"`
	RsyncBin   string   `yaml:"rsyncbin"`
	Excludes   []string `yaml:"excludes"`
}

func Default() *Config {
	return &Config{
		RemotePath: defaultRemotePath,
		RsyncBin:   defaultRsyncBin,
	}
}

// Load reads the run config from file. An empty file argument falls
// back to .devsync.yaml in the working directory, which is allowed to
// be absent.
func Load(file string) (*Config, error) {
	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}

	content, err := os.ReadFile(file)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}

		return nil, fmt.Errorf("failed to read config file %s, error: %v", file, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s, error: %v", file, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s, error: %v", file, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs error

	if strings.TrimSpace(c.RemotePath) == "" {
		errs = errors.Join(errs, ErrEmptyRemotePath)
	} else if strings.HasPrefix(c.RemotePath, "/") {
		errs = errors.Join(errs, ErrAbsoluteRemotePath)
	}

	if strings.TrimSpace(c.RsyncBin) == "" {
		errs = errors.Join(errs, ErrEmptyRsyncBin)
	}

	return errs
}
