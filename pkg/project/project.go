// Package project models a repository of one or more Python projects: the
// pyproject.toml manifests, the build-system specific handlers that know
// where each manifest keeps its metadata, and the detection of the Python
// packages a project ships.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NiklasRosenstein/slap-sub001/pkg/release"
)

// ErrNoHandler is returned when no registered handler recognizes a project.
var ErrNoHandler = errors.New("unable to identify a project handler")

// Package is one importable Python package or module of a project.
type Package struct {
	Name string // dotted module name, with periods for namespace packages
	Path string // module file, or the package directory
	Root string // source root the package was detected under
}

// Dependencies partitions a project's requirement strings by group. The
// strings are kept verbatim; only the leading distribution name is ever
// interpreted (see [RequirementName]).
type Dependencies struct {
	Run   []string
	Dev   []string
	Extra map[string][]string
}

// Project is one Python project inside a repository.
type Project struct {
	// Repo is the repository the project belongs to.
	Repo *Repository

	// Directory is the absolute path of the project.
	Directory string

	id       string
	manifest *manifest
	handler  Handler
}

func newProject(repo *Repository, dir string) (*Project, error) {
	p := &Project{Repo: repo, Directory: dir}

	rel, err := filepath.Rel(repo.Directory, dir)
	if err != nil || rel == "." {
		rel = filepath.Base(dir)
	}
	p.id = filepath.ToSlash(rel)

	m, err := loadManifest(p.PyprojectFile())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		m = &manifest{}
	}
	p.manifest = m

	p.handler = detectHandler(p)
	if p.handler == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, p.id)
	}
	return p, nil
}

// ID identifies the project within its repository: the slash-separated
// relative directory, or the directory name for a root project.
func (p *Project) ID() string { return p.id }

func (p *Project) String() string { return p.id }

// PyprojectFile returns the path of the project's pyproject.toml, which may
// not exist.
func (p *Project) PyprojectFile() string {
	return filepath.Join(p.Directory, "pyproject.toml")
}

// Config returns the project-level [tool.slap] settings.
func (p *Project) Config() Config {
	if p.manifest.Tool.Slap != nil {
		return *p.manifest.Tool.Slap
	}
	return Config{}
}

// HandlerName names the build-system handler serving this project.
func (p *Project) HandlerName() string { return p.handler.Name() }

// DistName returns the distribution name of the project, or "" when the
// manifest does not declare one.
func (p *Project) DistName() string { return p.handler.DistName(p) }

// Version returns the version declared in the manifest, or "".
func (p *Project) Version() string {
	if p.manifest.Project != nil && p.manifest.Project.Version != "" {
		return p.manifest.Project.Version
	}
	if p.manifest.Tool.Poetry != nil {
		return p.manifest.Tool.Poetry.Version
	}
	return ""
}

// License returns the declared license expression, or "".
func (p *Project) License() string {
	if p.manifest.Project != nil && p.manifest.Project.License != "" {
		return p.manifest.Project.License
	}
	if p.manifest.Tool.Poetry != nil {
		return p.manifest.Tool.Poetry.License
	}
	return ""
}

// Classifiers returns the declared trove classifiers.
func (p *Project) Classifiers() []string {
	if p.manifest.Project != nil && len(p.manifest.Project.Classifiers) > 0 {
		return p.manifest.Project.Classifiers
	}
	if p.manifest.Tool.Poetry != nil {
		return p.manifest.Tool.Poetry.Classifiers
	}
	return nil
}

// Packages returns the Python packages the project ships. An empty slice
// means none were detected, which is legal for configuration-only projects.
func (p *Project) Packages() ([]Package, error) {
	return p.handler.Packages(p)
}

// Dependencies returns the project's requirements partitioned by group.
func (p *Project) Dependencies() (Dependencies, error) {
	return p.handler.Dependencies(p)
}

// VersionRefs collects the project's version references: occurrences of its
// own version first, then constraints on sibling projects. siblings holds
// the distribution names of the other projects in the repository and may be
// empty for single-project repositories.
func (p *Project) VersionRefs(siblings []string) (self, deps []release.VersionRef, err error) {
	if !p.Repo.InterdependenciesEnabled() {
		siblings = nil
	}
	self, deps, err = p.handler.VersionRefs(p, siblings)
	if err != nil {
		return nil, nil, err
	}

	// The __version__ refs in source code count toward the project's own
	// version and must agree with the manifest.
	packages, err := p.Packages()
	if err != nil {
		return nil, nil, err
	}
	for _, pkg := range packages {
		ref, err := release.SourceCodeVersionRef(pkg.Path)
		if err != nil {
			return nil, nil, err
		}
		if ref != nil {
			self = append(self, *ref)
		}
	}
	return self, deps, nil
}

// InterdependencyNames returns the distribution names of all other projects
// in the repository, for use as the siblings argument of [Project.VersionRefs].
func (p *Project) InterdependencyNames() []string {
	var names []string
	for _, other := range p.Repo.Projects() {
		if other == p {
			continue
		}
		if name := other.DistName(); name != "" {
			names = append(names, name)
		}
	}
	return names
}
