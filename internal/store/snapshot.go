// Package store persists board snapshots as plain text files: one action
// payload per line, in append order, no header.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

type FileStore struct {
	dir string
}

// NewFileStore roots all board files under dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create board dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Save(name string, payloads []string) error {
	path := fs.path(name)
	data := strings.Join(payloads, "\n")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	log.Info().Str("module", "store").Str("path", path).Int("actions", len(payloads)).Msg("snapshot saved")
	return nil
}

// Load reads a snapshot back. A missing or unreadable file is an error,
// never an empty board; an existing empty file is an empty board.
func (fs *FileStore) Load(name string) ([]string, error) {
	path := fs.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	// tolerate a single trailing newline from hand-edited files
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// path confines board names to the store directory.
func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dir, filepath.Base(name))
}
