package pep440

import (
	"errors"
	"fmt"
)

// ErrUnknownRule is returned by [Bump] for rule names that are not
// registered.
var ErrUnknownRule = errors.New("unknown version incrementing rule")

// Rule computes a new version from the current one.
type Rule func(Version) Version

// rules maps rule names to their implementation. The registration order of
// ruleNames is the order shown in help output.
var (
	rules = map[string]Rule{
		"major":      nextMajor,
		"premajor":   func(v Version) Version { return firstPre(nextMajor(v)) },
		"minor":      nextMinor,
		"preminor":   func(v Version) Version { return firstPre(nextMinor(v)) },
		"patch":      nextPatch,
		"prepatch":   func(v Version) Version { return firstPre(nextPatch(v)) },
		"prerelease": prerelease,
		"post":       nextPost,
	}
	ruleNames = []string{"major", "premajor", "minor", "preminor", "patch", "prepatch", "prerelease", "post"}
)

// RuleNames returns the names of all registered increment rules.
func RuleNames() []string { return append([]string(nil), ruleNames...) }

// IsRule reports whether name is a registered increment rule.
func IsRule(name string) bool {
	_, ok := rules[name]
	return ok
}

// Bump applies the named rule to the current version.
func Bump(current Version, rule string) (Version, error) {
	fn, ok := rules[rule]
	if !ok {
		return Version{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}
	return fn(current), nil
}

func release3(major, minor, patch int) Version {
	return Version{Release: []int{major, minor, patch}}
}

func nextMajor(v Version) Version {
	if v.Pre != nil && v.Minor() == 0 && v.Patch() == 0 {
		// 2.0.0rc1 -> 2.0.0, not 3.0.0
		return release3(v.Major(), 0, 0)
	}
	return release3(v.Major()+1, 0, 0)
}

func nextMinor(v Version) Version {
	if v.Pre != nil && v.Patch() == 0 {
		return release3(v.Major(), v.Minor(), 0)
	}
	return release3(v.Major(), v.Minor()+1, 0)
}

func nextPatch(v Version) Version {
	if v.Pre != nil {
		return release3(v.Major(), v.Minor(), v.Patch())
	}
	return release3(v.Major(), v.Minor(), v.Patch()+1)
}

func firstPre(v Version) Version {
	v.Pre = &PreRelease{Phase: "rc", N: 1}
	return v
}

// prerelease advances the pre-release counter, or starts a prepatch cycle
// when the current version is stable.
func prerelease(v Version) Version {
	if v.Pre != nil {
		next := release3(v.Major(), v.Minor(), v.Patch())
		next.Pre = &PreRelease{Phase: v.Pre.Phase, N: v.Pre.N + 1}
		return next
	}
	return firstPre(nextPatch(v))
}

func nextPost(v Version) Version {
	n := 1
	if v.Post != nil {
		n = *v.Post + 1
	}
	next := v.BaseVersion()
	next.Pre = v.Pre
	next.Post = &n
	return next
}

// CommitDistance returns the commit-derived flavor of base: ".postN" when
// a tag for the base version exists (N commits since the tag), or
// ".post0.devN" counting from the start of the repository when it does not.
func CommitDistance(base Version, distance int, tagged bool) Version {
	v := base.BaseVersion()
	if tagged {
		v.Post = &distance
		return v
	}
	zero := 0
	v.Post = &zero
	v.Dev = &distance
	return v
}
