// Package uploads writes raw uploaded files to the upload directory.
package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves uploads under a single directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Save writes data to a new file and returns its path. The stored name is
// the client filename's base prefixed with a UUID, so repeated or hostile
// names never overwrite or escape the directory. The extension is kept.
func (s *Store) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(s.dir, uuid.New().String()+"_"+SafeName(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path, nil
}

// SafeName reduces a client-supplied filename to a bare base name.
func SafeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	switch name {
	case ".", "/", "..", "":
		return "upload"
	}
	return name
}
