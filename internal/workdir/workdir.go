// Package workdir persists the shell's current remote directory between
// invocations.
package workdir

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/opensandbox/hdfsh/internal/remotepath"
)

// Store reads and writes the working directory record: one remote path
// followed by a newline.
type Store struct {
	fs   afero.Fs
	file string
	user string
}

// NewStore creates a store backed by file on fs. user determines the
// default directory.
func NewStore(fs afero.Fs, file, user string) *Store {
	return &Store{fs: fs, file: file, user: user}
}

// Default returns the home directory of the configured user.
func (s *Store) Default() string {
	return "/user/" + s.user
}

// Get returns the persisted working directory, or Default if the record
// cannot be read or does not hold an absolute path.
func (s *Store) Get() string {
	data, err := afero.ReadFile(s.fs, s.file)
	if err != nil {
		return s.Default()
	}

	wd := strings.TrimRight(string(data), "\r\n")
	if !remotepath.IsAbs(wd) {
		return s.Default()
	}
	return wd
}

// Set replaces the persisted working directory.
func (s *Store) Set(path string) error {
	if dir := filepath.Dir(s.file); dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create working directory record dir: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.file, []byte(path+"\n"), 0o644); err != nil {
		return fmt.Errorf("write working directory record: %w", err)
	}
	return nil
}

// Absolute resolves path against the working directory. An empty path
// resolves to the working directory itself.
func (s *Store) Absolute(path string) string {
	if remotepath.IsAbs(path) {
		return remotepath.Normalize(path)
	}
	if path == "" {
		return remotepath.Normalize(s.Get())
	}
	return remotepath.Normalize(remotepath.Join(s.Get(), path))
}
