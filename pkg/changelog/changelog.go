// Package changelog manages directories of structured TOML changelogs. New
// entries accumulate in _unreleased.toml; at release time that file is
// renamed to <version>.toml and stamped with the release date.
package changelog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/NiklasRosenstein/slap-sub001/pkg/pep440"
)

// UnreleasedFile is the name of the changelog collecting unreleased entries.
const UnreleasedFile = "_unreleased.toml"

var (
	// ErrInvalidType is returned when an entry type is not in the configured
	// set of valid types.
	ErrInvalidType = errors.New("invalid changelog entry type")

	// ErrAlreadyReleased is returned when releasing a changelog that already
	// carries a version.
	ErrAlreadyReleased = errors.New("changelog is already released")
)

// Entry is one changelog item.
type Entry struct {
	ID          string   `toml:"id"`
	Type        string   `toml:"type"`
	Description string   `toml:"description"`
	Author      string   `toml:"author,omitempty"`
	PR          string   `toml:"pr,omitempty"`
	Issues      []string `toml:"issues,omitempty"`
}

// Changelog is the content of one changelog file. ReleaseDate is empty
// exactly for the unreleased changelog.
type Changelog struct {
	ReleaseDate string  `toml:"release-date,omitempty"`
	Entries     []Entry `toml:"entries"`
}

// Manager hands out the changelogs of one directory.
type Manager struct {
	// Directory holding the changelog files. It may not exist yet; it is
	// created on the first save.
	Directory string

	// ValidTypes restricts the Type field of new and loaded entries.
	ValidTypes []string
}

// NewEntry creates an entry with a fresh ID after validating its type.
func (m *Manager) NewEntry(entryType, description, author, pr string, issues []string) (Entry, error) {
	if !slices.Contains(m.ValidTypes, entryType) {
		return Entry{}, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidType, entryType, strings.Join(m.ValidTypes, ", "))
	}
	return Entry{
		ID:          uuid.NewString(),
		Type:        entryType,
		Description: description,
		Author:      author,
		PR:          pr,
		Issues:      issues,
	}, nil
}

// Unreleased returns the changelog collecting unreleased entries.
func (m *Manager) Unreleased() *Managed {
	return &Managed{manager: m, Path: filepath.Join(m.Directory, UnreleasedFile)}
}

// Version returns the changelog of a released version.
func (m *Manager) Version(version pep440.Version) *Managed {
	v := version
	return &Managed{manager: m, Path: filepath.Join(m.Directory, version.String()+".toml"), Version: &v}
}

// All returns every changelog in the directory: the unreleased one first if
// it exists, then released versions in descending order. Files that do not
// parse as a version are skipped.
func (m *Manager) All() ([]*Managed, error) {
	entries, err := os.ReadDir(m.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []*Managed
	if unreleased := m.Unreleased(); unreleased.Exists() {
		result = append(result, unreleased)
	}

	var versions []pep440.Version
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == UnreleasedFile || !strings.HasSuffix(name, ".toml") {
			continue
		}
		v, err := pep440.Parse(strings.TrimSuffix(name, ".toml"))
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	slices.SortFunc(versions, func(a, b pep440.Version) int { return pep440.Compare(b, a) })
	for _, v := range versions {
		result = append(result, m.Version(v))
	}
	return result, nil
}

// Validate loads every changelog in the directory and checks its entries,
// returning one error per broken file.
func (m *Manager) Validate() []error {
	all, err := m.All()
	if err != nil {
		return []error{err}
	}
	var errs []error
	for _, managed := range all {
		content, err := managed.Load()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, entry := range content.Entries {
			if !slices.Contains(m.ValidTypes, entry.Type) {
				errs = append(errs, fmt.Errorf("%s: entry %s: %w: %q", managed.Path, entry.ID, ErrInvalidType, entry.Type))
			}
		}
	}
	return errs
}

// Managed is one changelog file, which may not exist yet.
type Managed struct {
	Path    string
	Version *pep440.Version // nil for the unreleased changelog

	manager *Manager
}

// Exists reports whether the file is present on disk.
func (c *Managed) Exists() bool {
	_, err := os.Stat(c.Path)
	return err == nil
}

// Load reads and decodes the changelog. A missing file loads as an empty
// changelog.
func (c *Managed) Load() (*Changelog, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Changelog{}, nil
		}
		return nil, err
	}
	var content Changelog
	if err := toml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.Path, err)
	}
	return &content, nil
}

// Save encodes and writes the changelog, creating the directory if needed.
// The release date and the file name must agree: only released changelogs
// carry a date.
func (c *Managed) Save(content *Changelog) error {
	if content.ReleaseDate == "" && c.Version != nil {
		return fmt.Errorf("changelog %s requires a release date", c.Path)
	}
	if content.ReleaseDate != "" && c.Version == nil {
		return fmt.Errorf("unreleased changelog %s must not carry a release date", c.Path)
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(content); err != nil {
		return fmt.Errorf("encode %s: %w", c.Path, err)
	}
	return os.WriteFile(c.Path, buf.Bytes(), 0o644)
}

// AddEntry appends an entry and saves the file.
func (c *Managed) AddEntry(entry Entry) error {
	content, err := c.Load()
	if err != nil {
		return err
	}
	content.Entries = append(content.Entries, entry)
	return c.Save(content)
}

// Release turns the unreleased changelog into the changelog of version:
// the release date is stamped, the content is written to <version>.toml and
// the unreleased file is removed. Returns the released changelog.
func (c *Managed) Release(version pep440.Version) (*Managed, error) {
	if c.Version != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReleased, c.Path)
	}
	content, err := c.Load()
	if err != nil {
		return nil, err
	}
	content.ReleaseDate = time.Now().Format("2006-01-02")

	released := c.manager.Version(version)
	if err := released.Save(content); err != nil {
		return nil, err
	}
	if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return released, nil
}
