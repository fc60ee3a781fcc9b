package fileutil

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

func WorkDir() string {
	dir, err := os.Getwd()
	if err != nil {
		log.Printf("Cannot get the current directory: %v, using $HOME directory!", err)
		dir, err = os.UserHomeDir()
		if err != nil {
			log.Printf("Cannot get the user home directory: %v, using /tmp directory!", err)
			dir = os.TempDir()
		}
	}

	return dir
}

// ListTree returns the slash separated relative paths of all regular
// files under root, skipping any path matching one of the exclude
// prefixes. Prefixes are literal, rooted at root.
func ListTree(root string, excludes []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		rel = filepath.ToSlash(rel)

		if excluded(rel, excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, rel)
		}

		return nil
	})

	return files, err
}

func excluded(rel string, excludes []string) bool {
	for _, prefix := range excludes {
		prefix = strings.TrimSuffix(strings.TrimPrefix(prefix, "/"), "/")
		if prefix == "" {
			continue
		}

		if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
			return true
		}
	}

	return false
}
