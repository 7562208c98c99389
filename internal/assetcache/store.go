// Package assetcache implements the offline-first versioned asset cache
// fronting the site's origin.
package assetcache

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Entry is the stored metadata for one cached asset.
type Entry struct {
	Path        string    `json:"path"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	StoredAt    time.Time `json:"stored_at"`
}

// Store keeps cache generations on a filesystem, one directory per
// version string. Each asset is a body file plus a JSON sidecar.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore creates a store rooted at root on the given filesystem.
func NewStore(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

// Put writes an asset into a generation. Writes for the same path are
// last-writer-wins; bodies are assumed stable within one version.
func (s *Store) Put(version, path string, entry Entry, body []byte) error {
	dir := s.generationDir(version)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating generation %s: %w", version, err)
	}

	entry.Path = path
	entry.StoredAt = time.Now().UTC()

	name := entryName(path)
	if err := afero.WriteFile(s.fs, filepath.Join(dir, name+".body"), body, 0o644); err != nil {
		return fmt.Errorf("writing body for %s: %w", path, err)
	}

	meta, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding metadata for %s: %w", path, err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, name+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("writing metadata for %s: %w", path, err)
	}

	return nil
}

// Get looks an asset up in a generation. ok is false on a miss.
func (s *Store) Get(version, path string) (Entry, []byte, bool) {
	dir := s.generationDir(version)
	name := entryName(path)

	meta, err := afero.ReadFile(s.fs, filepath.Join(dir, name+".json"))
	if err != nil {
		return Entry{}, nil, false
	}
	var entry Entry
	if err := json.Unmarshal(meta, &entry); err != nil {
		return Entry{}, nil, false
	}

	body, err := afero.ReadFile(s.fs, filepath.Join(dir, name+".body"))
	if err != nil {
		return Entry{}, nil, false
	}

	return entry, body, true
}

// Has reports whether a generation directory exists.
func (s *Store) Has(version string) bool {
	ok, err := afero.DirExists(s.fs, s.generationDir(version))
	return err == nil && ok
}

// Delete removes a whole generation.
func (s *Store) Delete(version string) error {
	return s.fs.RemoveAll(s.generationDir(version))
}

// Generations lists the stored generation version names.
func (s *Store) Generations() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, nil // no root yet means no generations
	}

	var versions []string
	for _, info := range infos {
		if info.IsDir() {
			versions = append(versions, info.Name())
		}
	}
	return versions, nil
}

// Sweep removes every generation except current, returning the names of
// the removed generations.
func (s *Store) Sweep(current string) ([]string, error) {
	versions, err := s.Generations()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, v := range versions {
		if v == current {
			continue
		}
		if err := s.Delete(v); err != nil {
			return removed, fmt.Errorf("removing generation %s: %w", v, err)
		}
		removed = append(removed, v)
	}
	return removed, nil
}

func (s *Store) generationDir(version string) string {
	return filepath.Join(s.root, version)
}

// entryName maps a request path onto a flat, filesystem-safe file name.
func entryName(path string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(path))
}
