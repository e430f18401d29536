// Package pep440 implements the subset of PEP 440 version identifiers that
// the release workflow needs: parsing, canonical formatting, ordering and
// the increment rules used to compute the next release version.
//
// The supported grammar is
//
//	[N!]N(.N)*[{a|b|rc}N][.postN][.devN][+local]
//
// which covers every version the tool itself produces. Arbitrary legacy
// spellings (e.g. "1.0-beta") are rejected rather than normalized.
package pep440

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned by [Parse] for strings that do not match
// the supported version grammar.
var ErrInvalidVersion = errors.New("invalid version")

// PreRelease is a pre-release segment such as "rc1".
type PreRelease struct {
	Phase string // "a", "b" or "rc"
	N     int
}

// Version is a parsed PEP 440 version identifier.
// The zero value is not a valid version; use [Parse] or [MustParse].
type Version struct {
	Epoch   int
	Release []int // at least one segment
	Pre     *PreRelease
	Post    *int
	Dev     *int
	Local   string
}

var versionRe = regexp.MustCompile(
	`^(?:(\d+)!)?(\d+(?:\.\d+)*)(?:(a|b|rc)(\d+))?(?:\.post(\d+))?(?:\.dev(\d+))?(?:\+([a-zA-Z0-9.]+))?$`)

// Parse parses a version string. Surrounding whitespace is not accepted.
func Parse(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	var v Version
	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}
	for _, part := range strings.Split(m[2], ".") {
		n, _ := strconv.Atoi(part)
		v.Release = append(v.Release, n)
	}
	if m[3] != "" {
		n, _ := strconv.Atoi(m[4])
		v.Pre = &PreRelease{Phase: m[3], N: n}
	}
	if m[5] != "" {
		n, _ := strconv.Atoi(m[5])
		v.Post = &n
	}
	if m[6] != "" {
		n, _ := strconv.Atoi(m[6])
		v.Dev = &n
	}
	v.Local = m[7]
	return v, nil
}

// MustParse is like [Parse] but panics on error. Use only for literals.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s parses as a supported version identifier.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the canonical form of the version.
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	for i, n := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprintf(&b, "%d", n)
	}
	if v.Pre != nil {
		fmt.Fprintf(&b, "%s%d", v.Pre.Phase, v.Pre.N)
	}
	if v.Post != nil {
		fmt.Fprintf(&b, ".post%d", *v.Post)
	}
	if v.Dev != nil {
		fmt.Fprintf(&b, ".dev%d", *v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&b, "+%s", v.Local)
	}
	return b.String()
}

// Major, Minor and Patch return the respective release component, or 0
// when the release segment is too short.
func (v Version) Major() int { return v.releaseAt(0) }
func (v Version) Minor() int { return v.releaseAt(1) }
func (v Version) Patch() int { return v.releaseAt(2) }

func (v Version) releaseAt(i int) int {
	if i < len(v.Release) {
		return v.Release[i]
	}
	return 0
}

// IsStable reports whether the version has no pre-release or dev segment.
func (v Version) IsStable() bool { return v.Pre == nil && v.Dev == nil }

// BaseVersion returns the version stripped of pre/post/dev/local segments,
// e.g. "1.2.0rc1.post3" -> "1.2.0". Tags are matched against this form.
func (v Version) BaseVersion() Version {
	return Version{Epoch: v.Epoch, Release: append([]int(nil), v.Release...)}
}

// Compare orders two versions per PEP 440: epoch, then release segments
// (shorter release padded with zeros), then dev < pre < final < post.
// Local version labels are compared lexicographically as a final tiebreak,
// which is enough for the tool's purposes.
func Compare(a, b Version) int {
	if a.Epoch != b.Epoch {
		return cmpInt(a.Epoch, b.Epoch)
	}
	n := len(a.Release)
	if len(b.Release) > n {
		n = len(b.Release)
	}
	for i := 0; i < n; i++ {
		if c := cmpInt(a.releaseAt(i), b.releaseAt(i)); c != 0 {
			return c
		}
	}
	if c := cmpInt(phaseRank(a), phaseRank(b)); c != 0 {
		return c
	}
	if a.Pre != nil && b.Pre != nil {
		if c := strings.Compare(a.Pre.Phase, b.Pre.Phase); c != 0 {
			return c
		}
		if c := cmpInt(a.Pre.N, b.Pre.N); c != 0 {
			return c
		}
	}
	if c := cmpInt(intOrZero(a.Post), intOrZero(b.Post)); c != 0 {
		return c
	}
	if c := cmpInt(devRank(a), devRank(b)); c != 0 {
		return c
	}
	if a.Dev != nil && b.Dev != nil {
		if c := cmpInt(*a.Dev, *b.Dev); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Local, b.Local)
}

// phaseRank: dev-only < pre < final/post. A version with both a pre and a
// dev segment sorts with the pre segment (the dev part breaks ties later).
func phaseRank(v Version) int {
	switch {
	case v.Pre != nil:
		return 1
	case v.Dev != nil && v.Post == nil:
		return 0
	default:
		return 2
	}
}

func devRank(v Version) int {
	if v.Dev != nil {
		return 0 // x.devN < x
	}
	return 1
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
