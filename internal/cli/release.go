package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NiklasRosenstein/slap-sub001/pkg/changelog"
	"github.com/NiklasRosenstein/slap-sub001/pkg/pep440"
	"github.com/NiklasRosenstein/slap-sub001/pkg/project"
	"github.com/NiklasRosenstein/slap-sub001/pkg/release"
	"github.com/NiklasRosenstein/slap-sub001/pkg/vcs"
)

// releaseCommand creates the "release" command.
func (c *CLI) releaseCommand() *cobra.Command {
	var (
		validate        bool
		dry             bool
		tag             bool
		push            bool
		remote          string
		force           bool
		noBranchCheck   bool
		noWorktreeCheck bool
	)

	cmd := &cobra.Command{
		Use:   "release [version|rule]",
		Short: "Bump version numbers across the repository",
		Long: fmt.Sprintf(`Release updates every version reference in the repository to a new value:
the version fields of the project manifests, __version__ assignments in the
source code, and the constraints that projects of a monorepo place on each
other. Unreleased changelogs are renamed to the new version.

The argument is either a PEP 440 version or an incrementing rule applied to
the current version: %s. The special rule "git" derives a .postN or
.post0.devN version from the distance to the last release tag.`,
			strings.Join(pep440.RuleNames(), ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository()
			if err != nil {
				return err
			}

			var git *vcs.Git
			if g, err := vcs.Detect(repo.Directory); err == nil {
				git = g
			} else if !errors.Is(err, vcs.ErrNoRepository) {
				return err
			}

			sets, err := collectRefSets(repo)
			if err != nil {
				return err
			}
			if err := release.Validate(sets); err != nil {
				return err
			}
			if validate {
				printRefSets(sets)
				printSuccess("version references are consistent")
				return nil
			}
			if len(args) == 0 {
				return errors.New("a version or rule argument is required (or pass --validate)")
			}

			current, err := currentVersion(sets)
			if err != nil {
				return err
			}
			target, err := resolveTarget(args[0], current, git)
			if err != nil {
				return err
			}
			c.Logger.Debug("resolved target version", "current", current.String(), "target", target.String())

			if git != nil && !force {
				if !noBranchCheck {
					branch, err := git.CurrentBranch()
					if err != nil {
						return err
					}
					if want := repo.ReleaseBranch(); branch != want {
						return fmt.Errorf("releases must happen from the %q branch, not %q (--no-branch-check to override)", want, branch)
					}
				}
				if !noWorktreeCheck {
					dirty, err := git.IsDirty()
					if err != nil {
						return err
					}
					if dirty {
						return errors.New("the worktree has uncommitted changes (--no-worktree-check to override)")
					}
				}
			}

			changes, err := release.Rewrite(sets, target.String(), dry)
			if err != nil {
				return err
			}
			verb := "updated"
			if dry {
				verb = "would update"
			}
			printInfo("%s %s %s %s", verb, pluralize(len(changes), "file"), iconArrow, StyleHighlight.Render(target.String()))
			var commitPaths []string
			for _, change := range changes {
				printFile(fmt.Sprintf("%s (%s)", relTo(repo.Directory, change.File), pluralize(change.Count, "reference")))
				commitPaths = append(commitPaths, change.File)
			}

			if !dry {
				released, err := releaseChangelogs(repo, target)
				if err != nil {
					return err
				}
				commitPaths = append(commitPaths, released...)
			}

			if (tag || push) && !dry {
				if git == nil {
					return vcs.ErrNoRepository
				}
				root, err := git.Root()
				if err != nil {
					return err
				}
				for i, path := range commitPaths {
					if commitPaths[i], err = filepath.Rel(root, path); err != nil {
						return err
					}
				}
				tagName := target.String()
				if err := git.CommitAndTag("release "+tagName, tagName, commitPaths); err != nil {
					return err
				}
				printSuccess("created tag %s", tagName)
				if push {
					if err := git.Push(remote); err != nil {
						return err
					}
					printSuccess("pushed to %s", remote)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "only validate version references")
	cmd.Flags().BoolVarP(&dry, "dry", "d", false, "show changes without writing them")
	cmd.Flags().BoolVarP(&tag, "tag", "t", false, "commit the changes and create a tag")
	cmd.Flags().BoolVarP(&push, "push", "p", false, "push the release commit and tag (implies --tag)")
	cmd.Flags().StringVarP(&remote, "remote", "r", "origin", "remote to push to")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the branch and worktree safety checks")
	cmd.Flags().BoolVar(&noBranchCheck, "no-branch-check", false, "do not require the release branch")
	cmd.Flags().BoolVar(&noWorktreeCheck, "no-worktree-check", false, "do not require a clean worktree")

	return cmd
}

// collectRefSets gathers every version reference of every project. Sibling
// distribution names feed the interdependency matcher.
func collectRefSets(repo *project.Repository) ([]release.RefSet, error) {
	var dists []string
	for _, p := range repo.Projects() {
		if name := p.DistName(); name != "" {
			dists = append(dists, name)
		}
	}

	var sets []release.RefSet
	for _, p := range repo.Projects() {
		siblings := slices.DeleteFunc(slices.Clone(dists), func(name string) bool {
			return name == p.DistName()
		})
		self, deps, err := p.VersionRefs(siblings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.ID(), err)
		}
		sets = append(sets, release.RefSet{ProjectID: p.ID(), SelfRefs: self, DepRefs: deps})
	}
	return sets, nil
}

// currentVersion returns the version shared by every project. Projects of a
// monorepo release in lockstep, so diverging versions are an error the user
// resolves by passing an explicit version first.
func currentVersion(sets []release.RefSet) (pep440.Version, error) {
	var values []string
	for _, set := range sets {
		for _, ref := range set.SelfRefs {
			if !slices.Contains(values, ref.Value) {
				values = append(values, ref.Value)
			}
		}
	}
	switch len(values) {
	case 0:
		return pep440.Version{}, errors.New("no version references found")
	case 1:
		return pep440.Parse(values[0])
	default:
		return pep440.Version{}, fmt.Errorf("projects disagree on the current version (%s); release an explicit version first", strings.Join(values, ", "))
	}
}

// resolveTarget interprets the release argument as an explicit version, the
// "git" rule, or a version incrementing rule.
func resolveTarget(arg string, current pep440.Version, git *vcs.Git) (pep440.Version, error) {
	if v, err := pep440.Parse(arg); err == nil {
		return v, nil
	}
	if arg == "git" {
		if git == nil {
			return pep440.Version{}, fmt.Errorf("the git rule needs a repository: %w", vcs.ErrNoRepository)
		}
		return commitDistanceVersion(current, git)
	}
	return pep440.Bump(current, arg)
}

func commitDistanceVersion(current pep440.Version, git *vcs.Git) (pep440.Version, error) {
	base := current.BaseVersion()
	tagged, err := git.TagExists(base.String())
	if err != nil {
		return pep440.Version{}, err
	}
	since := ""
	if tagged {
		since = base.String()
	}
	distance, err := git.CommitsSince(since)
	if err != nil {
		return pep440.Version{}, err
	}
	return pep440.CommitDistance(base, distance, tagged), nil
}

// releaseChangelogs renames every unreleased changelog to the new version
// and returns the paths of the touched files.
func releaseChangelogs(repo *project.Repository, version pep440.Version) ([]string, error) {
	dirs := []string{repo.Directory}
	for _, p := range repo.Projects() {
		if !slices.Contains(dirs, p.Directory) {
			dirs = append(dirs, p.Directory)
		}
	}

	var paths []string
	for _, dir := range dirs {
		mgr := &changelog.Manager{
			Directory:  filepath.Join(dir, repo.ChangelogDirectory()),
			ValidTypes: repo.ChangelogTypes(),
		}
		unreleased := mgr.Unreleased()
		if !unreleased.Exists() {
			continue
		}
		released, err := unreleased.Release(version)
		if err != nil {
			return nil, err
		}
		printFile(released.Path)
		paths = append(paths, released.Path, unreleased.Path)
	}
	return paths, nil
}

func printRefSets(sets []release.RefSet) {
	for _, set := range sets {
		printInfo("%s", set.ProjectID)
		for _, ref := range append(slices.Clone(set.SelfRefs), set.DepRefs...) {
			printDetail("%s", ref.String())
		}
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
