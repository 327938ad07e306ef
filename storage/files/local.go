// Package files stores uploaded attachments on the local filesystem.
package files

import (
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("file not found")

// URLPrefix is the path under which stored files are served.
const URLPrefix = "/files"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type Store interface {
	Save(name string, data []byte) (string, error)
	Open(url string) ([]byte, error)
}

// LocalStore writes files under a single directory, prefixing each name with
// a uuid so uploads never collide.
type LocalStore struct {
	dir string
}

var _ Store = (*LocalStore)(nil) // interface compliance check

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(name string, data []byte) (string, error) {
	name = uuid.New().String() + "_" + sanitize(name)
	if err := ioutil.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return URLPrefix + "/" + name, nil
}

func (s *LocalStore) Open(url string) ([]byte, error) {
	name := path.Base(strings.TrimPrefix(url, URLPrefix+"/"))
	data, err := ioutil.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "reading file")
	}
	return data, nil
}

func sanitize(name string) string {
	name = path.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = "file"
	}
	return name
}
