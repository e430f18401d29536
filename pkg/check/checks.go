package check

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NiklasRosenstein/slap-sub001/pkg/changelog"
	"github.com/NiklasRosenstein/slap-sub001/pkg/project"
	"github.com/NiklasRosenstein/slap-sub001/pkg/release"
)

// consistentVersionsCheck verifies that every occurrence of a project's own
// version carries the same value.
type consistentVersionsCheck struct{}

func (consistentVersionsCheck) Name() string { return "consistent-versions" }

func (c consistentVersionsCheck) Check(ctx context.Context, env *Env) []Check {
	var results []Check
	for _, p := range env.Repo.Projects() {
		self, _, err := p.VersionRefs(p.InterdependencyNames())
		if err != nil {
			results = append(results, Check{
				Name: c.Name(), Subject: p.ID(), Result: Error,
				Description: fmt.Sprintf("cannot collect version references: %v", err),
			})
			continue
		}

		var distinct []string
		for _, ref := range self {
			if !slices.Contains(distinct, ref.Value) {
				distinct = append(distinct, ref.Value)
			}
		}
		switch len(distinct) {
		case 0:
			results = append(results, Check{
				Name: c.Name(), Subject: p.ID(), Result: Warning,
				Description: "no version references found",
			})
		case 1:
			results = append(results, Check{
				Name: c.Name(), Subject: p.ID(), Result: OK,
				Description: fmt.Sprintf("version %s in %d place(s)", distinct[0], len(self)),
			})
		default:
			var locations []string
			for _, ref := range self {
				locations = append(locations, fmt.Sprintf("%s (%s)", relPath(env.Repo.Directory, ref.File), ref.Value))
			}
			results = append(results, Check{
				Name: c.Name(), Subject: p.ID(), Result: Error,
				Description: "conflicting versions: " + strings.Join(locations, ", "),
			})
		}
	}
	return results
}

// remoteCheck recommends configuring a remote on a known host so changelog
// references can be resolved.
type remoteCheck struct{}

func (remoteCheck) Name() string { return "remote" }

var knownHosts = []string{"github.com", "gitlab.com", "bitbucket.org"}

func (c remoteCheck) Check(ctx context.Context, env *Env) []Check {
	if env.Git == nil {
		return []Check{{Name: c.Name(), Result: Skipped, Description: "not a git repository"}}
	}
	remotes, err := env.Git.Remotes()
	if err != nil {
		return []Check{{Name: c.Name(), Result: Warning, Description: err.Error()}}
	}
	if len(remotes) == 0 {
		return []Check{{Name: c.Name(), Result: Recommendation, Description: "no git remote configured"}}
	}
	for _, remote := range remotes {
		for _, host := range knownHosts {
			if strings.Contains(remote.URL, host) {
				return []Check{{
					Name: c.Name(), Result: OK,
					Description: fmt.Sprintf("remote %s on %s", remote.Name, host),
				}}
			}
		}
	}
	return []Check{{
		Name: c.Name(), Result: Recommendation,
		Description: "no remote on a known host, references will not be resolved",
	}}
}

// packagesCheck warns when a project ships no detectable packages.
type packagesCheck struct{}

func (packagesCheck) Name() string { return "packages" }

func (c packagesCheck) Check(ctx context.Context, env *Env, p *project.Project) []Check {
	packages, err := p.Packages()
	if err != nil {
		return []Check{{Name: c.Name(), Subject: p.ID(), Result: Error, Description: err.Error()}}
	}
	if len(packages) == 0 {
		return []Check{{
			Name: c.Name(), Subject: p.ID(), Result: Warning,
			Description: "no Python packages detected",
		}}
	}
	names := make([]string, 0, len(packages))
	for _, pkg := range packages {
		names = append(names, pkg.Name)
	}
	return []Check{{
		Name: c.Name(), Subject: p.ID(), Result: OK,
		Description: strings.Join(names, ", "),
	}}
}

// sourceCodeVersionCheck requires a __version__ in every detected package.
type sourceCodeVersionCheck struct{}

func (sourceCodeVersionCheck) Name() string { return "source-code-version" }

func (c sourceCodeVersionCheck) Check(ctx context.Context, env *Env, p *project.Project) []Check {
	packages, err := p.Packages()
	if err != nil {
		return []Check{{Name: c.Name(), Subject: p.ID(), Result: Error, Description: err.Error()}}
	}
	if len(packages) == 0 {
		return []Check{{Name: c.Name(), Subject: p.ID(), Result: Skipped, Description: "no packages"}}
	}

	var missing []string
	for _, pkg := range packages {
		ref, err := release.SourceCodeVersionRef(pkg.Path)
		if err != nil {
			return []Check{{Name: c.Name(), Subject: p.ID(), Result: Error, Description: err.Error()}}
		}
		if ref == nil {
			missing = append(missing, pkg.Name)
		}
	}
	if len(missing) > 0 {
		return []Check{{
			Name: c.Name(), Subject: p.ID(), Result: Error,
			Description: "packages without __version__: " + strings.Join(missing, ", "),
		}}
	}
	return []Check{{Name: c.Name(), Subject: p.ID(), Result: OK, Description: "__version__ found"}}
}

// changelogCheck validates that every changelog file decodes and all entry
// types are known.
type changelogCheck struct{}

func (changelogCheck) Name() string { return "changelog" }

func (c changelogCheck) Check(ctx context.Context, env *Env, p *project.Project) []Check {
	manager := &changelog.Manager{
		Directory:  filepath.Join(p.Directory, env.Repo.ChangelogDirectory()),
		ValidTypes: env.Repo.ChangelogTypes(),
	}
	errs := manager.Validate()
	if len(errs) == 0 {
		return []Check{{Name: c.Name(), Subject: p.ID(), Result: OK, Description: "changelogs are valid"}}
	}
	var details []string
	for _, err := range errs {
		details = append(details, err.Error())
	}
	return []Check{{
		Name: c.Name(), Subject: p.ID(), Result: Error,
		Description: strings.Join(details, "; "),
	}}
}

// licenseCheck verifies the declared license against the identifiers known
// to the license authority. Network trouble degrades to a warning so the
// check never blocks offline use.
type licenseCheck struct{}

func (licenseCheck) Name() string { return "license" }

func (c licenseCheck) Check(ctx context.Context, env *Env, p *project.Project) []Check {
	license := p.License()
	if license == "" {
		return []Check{{
			Name: c.Name(), Subject: p.ID(), Result: Warning,
			Description: "project declares no license",
		}}
	}
	if env.Licenses == nil {
		return []Check{{Name: c.Name(), Subject: p.ID(), Result: Skipped, Description: "no license source"}}
	}

	known, err := env.Licenses.Licenses(ctx, false)
	if err != nil {
		return []Check{{
			Name: c.Name(), Subject: p.ID(), Result: Warning,
			Description: fmt.Sprintf("could not verify license %q: %v", license, err),
		}}
	}
	if !slices.Contains(known, license) {
		return []Check{{
			Name: c.Name(), Subject: p.ID(), Result: Error,
			Description: fmt.Sprintf("license %q is not a known identifier", license),
		}}
	}
	return []Check{{Name: c.Name(), Subject: p.ID(), Result: OK, Description: license}}
}

// classifiersCheck verifies declared trove classifiers against the set
// published by PyPI.
type classifiersCheck struct{}

func (classifiersCheck) Name() string { return "classifiers" }

func (c classifiersCheck) Check(ctx context.Context, env *Env, p *project.Project) []Check {
	declared := p.Classifiers()
	if len(declared) == 0 {
		return []Check{{Name: c.Name(), Subject: p.ID(), Result: Skipped, Description: "no classifiers declared"}}
	}
	if env.Classifiers == nil {
		return []Check{{Name: c.Name(), Subject: p.ID(), Result: Skipped, Description: "no classifier source"}}
	}

	known, err := env.Classifiers.Classifiers(ctx, false)
	if err != nil {
		return []Check{{
			Name: c.Name(), Subject: p.ID(), Result: Warning,
			Description: fmt.Sprintf("could not verify classifiers: %v", err),
		}}
	}
	var unknown []string
	for _, classifier := range declared {
		if !slices.Contains(known, classifier) {
			unknown = append(unknown, classifier)
		}
	}
	if len(unknown) > 0 {
		return []Check{{
			Name: c.Name(), Subject: p.ID(), Result: Error,
			Description: "unknown classifiers: " + strings.Join(unknown, ", "),
		}}
	}
	return []Check{{
		Name: c.Name(), Subject: p.ID(), Result: OK,
		Description: fmt.Sprintf("%d classifier(s) valid", len(declared)),
	}}
}

func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
