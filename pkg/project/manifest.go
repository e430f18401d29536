package project

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// manifest is the subset of a pyproject.toml that project handlers care
// about. Unknown keys are ignored by the decoder.
type manifest struct {
	Project     *pep621Table      `toml:"project"`
	BuildSystem *buildSystemTable `toml:"build-system"`
	Tool        toolTable         `toml:"tool"`
}

type pep621Table struct {
	Name                 string              `toml:"name"`
	Version              string              `toml:"version"`
	Dependencies         []string            `toml:"dependencies"`
	OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	Readme               string              `toml:"readme"`
	License              string              `toml:"license"`
	Classifiers          []string            `toml:"classifiers"`
}

type buildSystemTable struct {
	Requires     []string `toml:"requires"`
	BuildBackend string   `toml:"build-backend"`
}

type toolTable struct {
	Poetry *poetryTable `toml:"poetry"`
	Flit   *flitTable   `toml:"flit"`
	Slap   *Config      `toml:"slap"`
}

type poetryTable struct {
	Name            string                  `toml:"name"`
	Version         string                  `toml:"version"`
	Readme          string                  `toml:"readme"`
	License         string                  `toml:"license"`
	Classifiers     []string                `toml:"classifiers"`
	Packages        []poetryPackage         `toml:"packages"`
	Dependencies    map[string]any          `toml:"dependencies"`
	DevDependencies map[string]any          `toml:"dev-dependencies"`
	Extras          map[string][]string     `toml:"extras"`
	Group           map[string]poetryGroup  `toml:"group"`
}

type poetryPackage struct {
	Include string `toml:"include"`
	From    string `toml:"from"`
}

type poetryGroup struct {
	Dependencies map[string]any `toml:"dependencies"`
}

type flitTable struct {
	Metadata *flitMetadata `toml:"metadata"`
}

type flitMetadata struct {
	Module          *flitModule         `toml:"module"`
	Requires        []string            `toml:"requires"`
	RequiresExtra   map[string][]string `toml:"requires-extra"`
	DescriptionFile string              `toml:"description-file"`
}

type flitModule struct {
	Name string `toml:"name"`
}

// Config is the [tool.slap] table of a pyproject.toml, or the whole
// content of a slap.toml. On a project it configures that project; on the
// repository root it additionally carries the repository-wide settings.
type Config struct {
	Handler         string          `toml:"handler"`
	SourceDirectory string          `toml:"source-directory"`
	Typed           bool            `toml:"typed"`
	Repository      RepoConfig      `toml:"repository"`
	Release         ReleaseConfig   `toml:"release"`
	Changelog       ChangelogConfig `toml:"changelog"`
}

// RepoConfig configures project discovery.
type RepoConfig struct {
	Include []string `toml:"include"`
}

// ReleaseConfig configures the release command.
type ReleaseConfig struct {
	Branch            string `toml:"branch"`
	Interdependencies *bool  `toml:"interdependencies"`
}

// ChangelogConfig configures the structured changelog.
type ChangelogConfig struct {
	Directory  string   `toml:"directory"`
	ValidTypes []string `toml:"valid-types"`
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// requirementName matches the distribution name at the start of a PEP 508
// requirement string.
var requirementName = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)

// RequirementName extracts the distribution name from a requirement string
// such as "requests >=2.28,<3" or "pkg-a[extra] ^1.0". Returns "" when the
// string does not start with a name.
func RequirementName(req string) string {
	m := requirementName.FindStringSubmatch(req)
	if m == nil {
		return ""
	}
	return m[1]
}

// poetryConstraint renders a Poetry dependency value as a constraint string.
// Values are either plain strings ("^1.0") or inline tables with a version
// key plus markers.
func poetryConstraint(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return ""
}
