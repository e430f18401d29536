package release

import (
	"fmt"
	"os"
	"regexp"
)

// selector matches something that looks like a version constraint: optional
// range operators followed by a version number starting with "major.".
const selector = `([\^<>=!~\*]*)(?P<version>\d+\.[\w\d\.\-]+)`

// InterdependencyRefs finds references to sibling projects in a
// pyproject.toml. In a mono-repository where all projects move in lockstep,
// bumping a project's version must also bump the constraint every sibling
// declares on it.
//
// Three shapes are recognized per sibling name, anywhere on a line: a quoted
// TOML key/value pair ('name' = "^1.2.3"), a bare key/value pair
// (name = "^1.2.3"), and a requirement string ("name ^1.2.3" inside an
// array or inline table). Only the version number itself is captured, so a
// rewrite keeps the range operators intact.
//
// A missing pyproject.toml yields no references.
func InterdependencyRefs(pyprojectFile string, siblings []string) ([]VersionRef, error) {
	if _, err := os.Stat(pyprojectFile); os.IsNotExist(err) {
		return nil, nil
	}

	var refs []VersionRef
	seen := make(map[[2]int]bool)
	for _, name := range siblings {
		quoted := regexp.QuoteMeta(name)
		expressions := []string{
			`['"]` + quoted + `['"]\s*=\s*['"]` + selector + `['"]`,
			`\b` + quoted + `\s*=\s*['"]` + selector + `['"]`,
			`['"]` + quoted + `\b\s*` + selector + `['"]\s*($|,|\]|\})`,
		}
		for _, expr := range expressions {
			found, err := MatchAllLines(pyprojectFile, expr)
			if err != nil {
				return nil, fmt.Errorf("scan %s for %s: %w", pyprojectFile, name, err)
			}
			for _, ref := range found {
				// The same constraint can satisfy more than one expression;
				// record each byte range once.
				span := [2]int{ref.Start, ref.End}
				if seen[span] {
					continue
				}
				seen[span] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}
