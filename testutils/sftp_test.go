package testutils

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func listerFixture(t *testing.T, names ...string) *fileLister {
	t.Helper()

	dir := t.TempDir()

	var infos []os.FileInfo
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}

		infos = append(infos, info)
	}

	return &fileLister{files: infos}
}

func TestFileListerListAt(t *testing.T) {
	assert := assert.New(t)

	lister := listerFixture(t, "a.txt", "b.txt")

	// A buffer covering the whole list drains it in one call.
	list := make([]os.FileInfo, 4)
	n, err := lister.ListAt(list, 0)
	assert.Equal(2, n)
	assert.Equal(io.EOF, err)
	assert.Equal("a.txt", list[0].Name())
	assert.Equal("b.txt", list[1].Name())

	// A smaller buffer pages through and only the last page reports
	// the end of the list.
	list = make([]os.FileInfo, 1)
	n, err = lister.ListAt(list, 0)
	assert.Equal(1, n)
	assert.Nil(err)
	assert.Equal("a.txt", list[0].Name())

	n, err = lister.ListAt(list, 1)
	assert.Equal(1, n)
	assert.Equal(io.EOF, err)
	assert.Equal("b.txt", list[0].Name())

	n, err = lister.ListAt(list, 2)
	assert.Equal(0, n)
	assert.Equal(io.EOF, err)
}

func TestFileListerListAtEmpty(t *testing.T) {
	lister := &fileLister{}

	n, err := lister.ListAt(make([]os.FileInfo, 1), 0)

	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}
