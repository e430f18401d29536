package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/NiklasRosenstein/slap-sub001/pkg/depgraph"
)

// Default repository settings, overridable via [tool.slap] on the root.
const (
	DefaultReleaseBranch      = "develop"
	DefaultChangelogDirectory = ".changelog"
)

// DefaultChangelogTypes are the entry types accepted in changelogs unless
// the repository configures its own set.
var DefaultChangelogTypes = []string{
	"breaking change", "deprecation", "docs", "feature", "fix", "hygiene", "improvement", "refactor", "tests",
}

// Repository is a directory holding one or more projects, usually the root
// of a version control checkout. The root configuration lives in a
// slap.toml or in the [tool.slap] table of a root pyproject.toml.
type Repository struct {
	Directory string

	config   Config
	projects []*Project
}

// Load reads the repository at dir and discovers its projects. The root
// directory itself becomes a project when it has a pyproject.toml; beyond
// that, either the configured include list or every immediate subdirectory
// with a pyproject.toml contributes a project.
func Load(dir string) (*Repository, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo := &Repository{Directory: dir}

	if cfg, err := loadRepoConfig(dir); err != nil {
		return nil, err
	} else if cfg != nil {
		repo.config = *cfg
	}

	rootManifest := exists(filepath.Join(dir, "pyproject.toml"))
	if rootManifest {
		p, err := newProject(repo, dir)
		if err != nil {
			return nil, err
		}
		repo.projects = append(repo.projects, p)
	}

	if include := repo.config.Repository.Include; len(include) > 0 && rootManifest {
		for _, sub := range include {
			p, err := newProject(repo, filepath.Join(dir, sub))
			if err != nil {
				return nil, err
			}
			repo.projects = append(repo.projects, p)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(dir, entry.Name())
			if !exists(filepath.Join(sub, "pyproject.toml")) {
				continue
			}
			p, err := newProject(repo, sub)
			if err != nil {
				return nil, err
			}
			repo.projects = append(repo.projects, p)
		}
	}

	sort.Slice(repo.projects, func(i, j int) bool { return repo.projects[i].ID() < repo.projects[j].ID() })
	if err := repo.sortTopologically(); err != nil {
		return nil, err
	}
	return repo, nil
}

// loadRepoConfig reads slap.toml, falling back to [tool.slap] of the root
// pyproject.toml. Returns nil when neither exists.
func loadRepoConfig(dir string) (*Config, error) {
	slapToml := filepath.Join(dir, "slap.toml")
	if exists(slapToml) {
		data, err := os.ReadFile(slapToml)
		if err != nil {
			return nil, err
		}
		var cfg Config
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", slapToml, err)
		}
		return &cfg, nil
	}

	m, err := loadManifest(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return m.Tool.Slap, nil
}

// sortTopologically reorders projects so that dependencies come before
// their dependents, with the project ID breaking ties.
func (r *Repository) sortTopologically() error {
	g, err := r.DependencyGraph("run", "dev")
	if err != nil {
		return err
	}
	order, err := g.Sort(nil)
	if err != nil {
		return fmt.Errorf("order projects: %w", err)
	}

	byID := make(map[string]*Project, len(r.projects))
	for _, p := range r.projects {
		byID[p.ID()] = p
	}
	sorted := make([]*Project, 0, len(order))
	for _, id := range order {
		sorted = append(sorted, byID[id])
	}
	r.projects = sorted
	return nil
}

// Projects returns the repository's projects in topological order:
// dependencies first, ID as tie break.
func (r *Repository) Projects() []*Project { return r.projects }

// IsMonorepo reports whether the repository hosts more than one project, or
// a single project outside the repository root.
func (r *Repository) IsMonorepo() bool {
	if len(r.projects) > 1 {
		return true
	}
	return len(r.projects) == 1 && r.projects[0].Directory != r.Directory
}

// ReleaseBranch returns the branch releases are tagged from.
func (r *Repository) ReleaseBranch() string {
	if r.config.Release.Branch != "" {
		return r.config.Release.Branch
	}
	return DefaultReleaseBranch
}

// InterdependenciesEnabled reports whether sibling version constraints are
// bumped in lockstep with project versions. Enabled unless the root config
// turns it off.
func (r *Repository) InterdependenciesEnabled() bool {
	if r.config.Release.Interdependencies != nil {
		return *r.config.Release.Interdependencies
	}
	return true
}

// ChangelogDirectory returns the directory holding structured changelogs,
// relative to a project (or the repository root for the root changelog).
func (r *Repository) ChangelogDirectory() string {
	if r.config.Changelog.Directory != "" {
		return r.config.Changelog.Directory
	}
	return DefaultChangelogDirectory
}

// ChangelogTypes returns the accepted changelog entry types.
func (r *Repository) ChangelogTypes() []string {
	if len(r.config.Changelog.ValidTypes) > 0 {
		return r.config.Changelog.ValidTypes
	}
	return DefaultChangelogTypes
}

// DependencyGraph builds the interproject dependency graph over the given
// requirement groups (all groups when none are named). Node IDs are project
// IDs.
func (r *Repository) DependencyGraph(groups ...string) (*depgraph.Graph, error) {
	distToID := make(map[string]string, len(r.projects))
	for _, p := range r.projects {
		if name := p.DistName(); name != "" {
			distToID[name] = p.ID()
		}
	}
	specs := make([]depgraph.NodeSpec, 0, len(r.projects))
	for _, p := range r.projects {
		deps, err := p.Dependencies()
		if err != nil {
			return nil, err
		}
		var requires []depgraph.Requirement
		add := func(group string, reqs []string) {
			for _, req := range reqs {
				if id, ok := distToID[RequirementName(req)]; ok {
					requires = append(requires, depgraph.Requirement{Name: id, Group: group})
				}
			}
		}
		add("run", deps.Run)
		add("dev", deps.Dev)
		for extra, reqs := range deps.Extra {
			add(extra, reqs)
		}
		if p.manifest.BuildSystem != nil {
			add("build", p.manifest.BuildSystem.Requires)
		}
		specs = append(specs, depgraph.NodeSpec{ID: p.ID(), Requires: requires})
	}
	return depgraph.Build(specs, groups...)
}
