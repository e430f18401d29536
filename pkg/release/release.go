// Package release locates version references in project files and rewrites
// them in place when a new version is released.
//
// A version reference is a byte range inside a file whose text is a version
// number: the `version` key of a pyproject.toml, a `__version__` assignment
// in source code, or the version selector of a dependency on a sibling
// project. References are collected first, validated for consistency, and
// only then rewritten, so a failing validation never leaves files half
// bumped.
package release

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	// ErrInvalidPattern is returned when a version-reference pattern has no
	// capture group. Patterns are compiled into the binary, so hitting this
	// is a programming error, not a user error.
	ErrInvalidPattern = errors.New("version pattern has no capture group")

	// ErrNoMatch is returned by [Match] when the pattern does not occur in
	// the file. [MatchOrNil] converts it to a nil reference.
	ErrNoMatch = errors.New("no version reference found")
)

// VersionRef is one occurrence of a version number in a file. Start and End
// are byte offsets into the file content delimiting exactly the version
// text, excluding quotes and range selectors. Content holds the surrounding
// line for diagnostics.
type VersionRef struct {
	File    string
	Start   int
	End     int
	Value   string
	Content string
}

func (r VersionRef) String() string {
	return fmt.Sprintf("%s:%d-%d (%s)", r.File, r.Start, r.End, r.Value)
}

// versionGroup returns the index of the capture group holding the version:
// the group named "version" if the pattern has one, otherwise the first
// group. Returns -1 when the pattern captures nothing.
func versionGroup(re *regexp.Regexp) int {
	for i, name := range re.SubexpNames() {
		if name == "version" {
			return i
		}
	}
	if re.NumSubexp() == 0 {
		return -1
	}
	return 1
}

// Match scans the file for the first occurrence of pattern and returns the
// version reference captured by it. The pattern is applied in multi-line
// mode against the whole file content and must contain at least one capture
// group; a group named "version" takes precedence over the first group.
//
// Returns [ErrNoMatch] when the pattern does not match, or when it matches
// but the version group did not participate.
func Match(file string, pattern string) (*VersionRef, error) {
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	group := versionGroup(re)
	if group < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	loc := re.FindSubmatchIndex(content)
	if loc == nil || loc[2*group] < 0 {
		return nil, fmt.Errorf("%w: pattern %q in %s", ErrNoMatch, pattern, file)
	}

	start, end := loc[2*group], loc[2*group+1]
	return &VersionRef{
		File:    file,
		Start:   start,
		End:     end,
		Value:   string(content[start:end]),
		Content: surroundingLine(content, start),
	}, nil
}

// MatchOrNil is [Match] with ErrNoMatch softened to a nil reference. Missing
// files are also treated as no match; every other error is passed through.
func MatchOrNil(file string, pattern string) (*VersionRef, error) {
	ref, err := Match(file, pattern)
	switch {
	case errors.Is(err, ErrNoMatch), errors.Is(err, os.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return ref, nil
}

// MatchAllLines scans the file line by line and returns a reference for
// every match of pattern on any line. Offsets are absolute file offsets,
// computed from the bytes consumed up to each line. The same capture-group
// rules as [Match] apply.
func MatchAllLines(file string, pattern string) ([]VersionRef, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	group := versionGroup(re)
	if group < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var refs []VersionRef
	// Lines are tracked with their exact byte offsets so the references can
	// be rewritten in place later, including in CRLF files.
	offset := 0
	for offset <= len(content) {
		end := len(content)
		if i := bytes.IndexByte(content[offset:], '\n'); i >= 0 {
			end = offset + i
		}
		line := string(content[offset:end])
		for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
			if loc[2*group] < 0 {
				continue
			}
			refs = append(refs, VersionRef{
				File:    file,
				Start:   offset + loc[2*group],
				End:     offset + loc[2*group+1],
				Value:   line[loc[2*group]:loc[2*group+1]],
				Content: strings.TrimRight(line, "\r"),
			})
		}
		if end == len(content) {
			break
		}
		offset = end + 1
	}
	return refs, nil
}

func surroundingLine(content []byte, pos int) string {
	start := pos
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end := pos
	for end < len(content) && content[end] != '\n' {
		end++
	}
	return strings.TrimRight(string(content[start:end]), "\r")
}
