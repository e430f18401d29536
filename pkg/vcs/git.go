// Package vcs wraps the version control operations of the release workflow
// over go-git, so no git binary is needed at runtime.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoRepository is returned by [Detect] when the directory is not inside
// a git checkout.
var ErrNoRepository = errors.New("no git repository found")

// Remote is a configured git remote.
type Remote struct {
	Name string
	URL  string
}

// Author is the committer identity from the git configuration.
type Author struct {
	Name  string
	Email string
}

// Git provides the repository queries and mutations the release workflow
// needs.
type Git struct {
	repo *git.Repository
}

// Detect opens the git repository containing dir, searching upward for the
// .git directory.
func Detect(dir string) (*Git, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNoRepository, dir)
		}
		return nil, err
	}
	return &Git{repo: repo}, nil
}

// CurrentBranch returns the short name of the checked out branch, or the
// hash for a detached HEAD.
func (g *Git) CurrentBranch() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", err
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String(), nil
}

// Remotes lists the configured remotes. A remote with several URLs reports
// its first one.
func (g *Git) Remotes() ([]Remote, error) {
	remotes, err := g.repo.Remotes()
	if err != nil {
		return nil, err
	}
	result := make([]Remote, 0, len(remotes))
	for _, remote := range remotes {
		cfg := remote.Config()
		url := ""
		if len(cfg.URLs) > 0 {
			url = cfg.URLs[0]
		}
		result = append(result, Remote{Name: cfg.Name, URL: url})
	}
	return result, nil
}

// Author returns the user identity from the merged git configuration.
func (g *Git) Author() (Author, error) {
	cfg, err := g.repo.ConfigScoped(config.SystemScope)
	if err != nil {
		return Author{}, err
	}
	return Author{Name: cfg.User.Name, Email: cfg.User.Email}, nil
}

// TagExists reports whether a tag of the given name exists.
func (g *Git) TagExists(name string) (bool, error) {
	_, err := g.repo.Tag(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, git.ErrTagNotFound):
		return false, nil
	default:
		return false, err
	}
}

// CommitsSince counts the commits reachable from HEAD after the given
// revision (usually a tag). An empty revision counts every commit from the
// start of history.
func (g *Git) CommitsSince(revision string) (int, error) {
	head, err := g.repo.Head()
	if err != nil {
		return 0, err
	}

	var stop plumbing.Hash
	if revision != "" {
		hash, err := g.repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return 0, fmt.Errorf("resolve %q: %w", revision, err)
		}
		stop = *hash
	}

	iter, err := g.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	count := 0
	stopErr := errors.New("stop")
	err = iter.ForEach(func(c *object.Commit) error {
		if revision != "" && c.Hash == stop {
			return stopErr
		}
		count++
		return nil
	})
	if err != nil && !errors.Is(err, stopErr) {
		return 0, err
	}
	return count, nil
}

// IsDirty reports whether the worktree has uncommitted changes, including
// untracked files.
func (g *Git) IsDirty() (bool, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// TrackedFiles lists the paths in the index, relative to the worktree root.
func (g *Git) TrackedFiles() ([]string, error) {
	idx, err := g.repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		files = append(files, entry.Name)
	}
	return files, nil
}

// CommitAndTag stages the given paths (relative to the worktree root),
// commits them and creates a lightweight tag on the new commit.
func (g *Git) CommitAndTag(message, tag string, paths []string) error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if _, err := wt.Add(filepath.ToSlash(path)); err != nil {
			return fmt.Errorf("stage %s: %w", path, err)
		}
	}

	author, err := g.Author()
	if err != nil {
		return err
	}
	sig := &object.Signature{Name: author.Name, Email: author.Email, When: time.Now()}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: sig})
	if err != nil {
		return err
	}

	if tag != "" {
		if _, err := g.repo.CreateTag(tag, hash, nil); err != nil {
			return fmt.Errorf("tag %s: %w", tag, err)
		}
	}
	return nil
}

// Push updates the remote with the current branch and its tags.
func (g *Git) Push(remote string) error {
	err := g.repo.Push(&git.PushOptions{RemoteName: remote, FollowTags: true})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// Root returns the absolute path of the worktree root.
func (g *Git) Root() (string, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return "", err
	}
	return filepath.Abs(wt.Filesystem.Root())
}
