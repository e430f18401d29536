// Package check runs sanity checks over a repository and its projects
// before a release: version consistency, changelog health, packaging
// metadata and the VCS setup.
package check

import (
	"context"
	"sort"

	"github.com/NiklasRosenstein/slap-sub001/pkg/project"
	"github.com/NiklasRosenstein/slap-sub001/pkg/vcs"
)

// Result grades the outcome of a single check.
type Result int

const (
	// Skipped means the check did not apply or its inputs were unavailable.
	Skipped Result = iota
	// OK means the check passed.
	OK
	// Recommendation flags an improvement worth making.
	Recommendation
	// Warning flags a problem that does not block a release.
	Warning
	// Error flags a problem that blocks a release.
	Error
)

var resultNames = map[Result]string{
	Skipped:        "SKIPPED",
	OK:             "OK",
	Recommendation: "RECOMMENDATION",
	Warning:        "WARNING",
	Error:          "ERROR",
}

func (r Result) String() string { return resultNames[r] }

// Check is the graded outcome of one check for one subject.
type Check struct {
	// Name of the check, e.g. "consistent-versions".
	Name string
	// Subject the check applies to: a project ID, or "" for the repository.
	Subject string
	Result  Result
	// Description explains the grade in one line.
	Description string
}

// LicenseSource lists license identifiers known to an authority such as
// SPDX. Implementations may hit the network.
type LicenseSource interface {
	Licenses(ctx context.Context, refresh bool) ([]string, error)
}

// ClassifierSource lists the trove classifiers known to PyPI.
type ClassifierSource interface {
	Classifiers(ctx context.Context, refresh bool) ([]string, error)
}

// Env bundles the collaborators available to checks. Git, Licenses and
// Classifiers may be nil; checks needing them degrade or skip.
type Env struct {
	Repo        *project.Repository
	Git         *vcs.Git
	Licenses    LicenseSource
	Classifiers ClassifierSource
}

// A RepositoryCheck inspects the repository as a whole.
type RepositoryCheck interface {
	Name() string
	Check(ctx context.Context, env *Env) []Check
}

// A ProjectCheck inspects one project.
type ProjectCheck interface {
	Name() string
	Check(ctx context.Context, env *Env, p *project.Project) []Check
}

// Registered checks, in reporting order.
var (
	repositoryChecks = []RepositoryCheck{
		consistentVersionsCheck{},
		remoteCheck{},
	}
	projectChecks = []ProjectCheck{
		packagesCheck{},
		sourceCodeVersionCheck{},
		changelogCheck{},
		licenseCheck{},
		classifiersCheck{},
	}
)

// Run executes every registered check and returns the outcomes grouped by
// subject: repository-level first, then per project in topological order,
// with checks sorted by name within each subject.
func Run(ctx context.Context, env *Env) []Check {
	var results []Check

	var repoResults []Check
	for _, c := range repositoryChecks {
		repoResults = append(repoResults, c.Check(ctx, env)...)
	}
	sort.SliceStable(repoResults, func(i, j int) bool { return repoResults[i].Name < repoResults[j].Name })
	results = append(results, repoResults...)

	for _, p := range env.Repo.Projects() {
		var projectResults []Check
		for _, c := range projectChecks {
			projectResults = append(projectResults, c.Check(ctx, env, p)...)
		}
		sort.SliceStable(projectResults, func(i, j int) bool { return projectResults[i].Name < projectResults[j].Name })
		results = append(results, projectResults...)
	}
	return results
}

// Worst returns the most severe result in the set, grading OK when the set
// is empty. Skipped never outranks anything.
func Worst(checks []Check) Result {
	worst := OK
	for _, c := range checks {
		if c.Result > worst {
			worst = c.Result
		}
	}
	return worst
}
