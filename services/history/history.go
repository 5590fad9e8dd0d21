// Package history persists the set of listing URLs already emitted by prior
// runs. The file is append-only: one URL per line, loaded once at startup and
// appended to each time a listing is accepted.
package history

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Store is the visited-listing set. Single writer, single reader; no
// concurrent access to guard against.
type Store struct {
	path string
	seen map[string]struct{}
}

// Load reads the visited set from path. A missing file is not an error and
// yields an empty set.
func Load(path string) (*Store, error) {
	s := &Store{
		path: path,
		seen: make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			s.seen[line] = struct{}{}
		}
	}
	return s, scanner.Err()
}

// Contains reports whether url was already recorded.
func (s *Store) Contains(url string) bool {
	_, ok := s.seen[url]
	return ok
}

// Add records url in memory and appends it to the file immediately, so a
// crash later in the run cannot emit the same listing twice across runs.
func (s *Store) Add(url string) error {
	if url == "" {
		return nil
	}
	if _, ok := s.seen[url]; ok {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(url + "\n"); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.seen[url] = struct{}{}
	return nil
}

// Len returns the number of recorded URLs.
func (s *Store) Len() int {
	return len(s.seen)
}

// Clear removes the history file. A missing file is not an error.
func Clear(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
