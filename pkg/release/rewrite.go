package release

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NiklasRosenstein/slap-sub001/pkg/text"
)

// PyprojectVersionPattern matches the version key of a pyproject.toml,
// whether under [project] or [tool.poetry].
const PyprojectVersionPattern = `^version\s*=\s*['"]?(.*?)['"]`

// RefSet holds all version references collected for one project before a
// release. SelfRefs are occurrences of the project's own version and must
// all carry the same value; DepRefs are constraints that sibling projects
// declare on this one and follow the version in lockstep.
type RefSet struct {
	ProjectID string
	SelfRefs  []VersionRef
	DepRefs   []VersionRef
}

// InconsistentVersionsError reports that a project's own version appears
// with conflicting values across its files.
type InconsistentVersionsError struct {
	ProjectID string
	Refs      []VersionRef
}

func (e *InconsistentVersionsError) Error() string {
	values := make([]string, 0, len(e.Refs))
	for _, ref := range e.Refs {
		values = append(values, ref.Value)
	}
	return fmt.Sprintf("inconsistent versions in project %s: %s", e.ProjectID, strings.Join(values, ", "))
}

// Validate checks every set for agreement between its self references.
// Projects with zero self references pass; the checks layer reports those
// separately as a warning.
func Validate(sets []RefSet) error {
	for _, set := range sets {
		var distinct []string
		for _, ref := range set.SelfRefs {
			if !slices.Contains(distinct, ref.Value) {
				distinct = append(distinct, ref.Value)
			}
		}
		if len(distinct) > 1 {
			return &InconsistentVersionsError{ProjectID: set.ProjectID, Refs: slices.Clone(set.SelfRefs)}
		}
	}
	return nil
}

// FileChange records how many references were rewritten in one file.
type FileChange struct {
	File  string
	Count int
}

// Rewrite replaces every reference in sets with target. References are
// grouped per file so each file is rewritten exactly once, and every file
// is read before any file is written. Writes go through a temp file in the
// same directory followed by a rename; there is no cross-file rollback, a
// failure mid-batch leaves already-renamed files bumped and is surfaced by
// the next validation run.
//
// With dry set, the substitutions are computed and counted but nothing is
// written.
func Rewrite(sets []RefSet, target string, dry bool) ([]FileChange, error) {
	byFile := make(map[string][]text.SubstRange)
	for _, set := range sets {
		for _, ref := range slices.Concat(set.SelfRefs, set.DepRefs) {
			byFile[ref.File] = append(byFile[ref.File], text.SubstRange{
				Start:       ref.Start,
				End:         ref.End,
				Replacement: target,
			})
		}
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	slices.Sort(files)

	updated := make(map[string]string, len(files))
	changes := make([]FileChange, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		replaced, err := text.SubstituteRanges(string(content), byFile[file], false)
		if err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", file, err)
		}
		updated[file] = replaced
		changes = append(changes, FileChange{File: file, Count: len(byFile[file])})
	}

	if dry {
		return changes, nil
	}
	for _, file := range files {
		if err := writeFileAtomic(file, []byte(updated[file])); err != nil {
			return nil, err
		}
	}
	return changes, nil
}

// writeFileAtomic replaces path with data via a sibling temp file and a
// rename, preserving the original file mode.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp-%d", filepath.Base(path), os.Getpid()))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
