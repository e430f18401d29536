// Package pkg provides the core libraries for the slap release tool.
//
// # Overview
//
// Slap manages the release lifecycle of Python projects and monorepos. The
// pkg directory is organized around the release flow:
//
//  1. [project] - Repository and project model (manifests, handlers, packages)
//  2. [release] - Version reference scanning and rewriting
//  3. [pep440] - Version parsing, comparison and incrementing rules
//  4. [changelog] - Structured TOML changelogs
//  5. [check] - Sanity checks over repositories and projects
//  6. [depgraph] - Interproject dependency graph and topological ordering
//  7. [vcs] - Git queries and release commits
//  8. [integrations] - External API clients (PyPI, SPDX, GitHub)
//
// # Architecture
//
// The typical data flow through a release:
//
//	pyproject.toml / setup.cfg / source files
//	         ↓
//	    [project] package (discover projects, collect version refs)
//	         ↓
//	    [release] package (validate + rewrite references)
//	         ↓
//	    [changelog] package (stamp and rename the unreleased changelog)
//	         ↓
//	    [vcs] package (commit, tag, push)
//
// # Quick Start
//
// Load a repository and bump every version reference:
//
//	import (
//	    "github.com/NiklasRosenstein/slap-sub001/pkg/pep440"
//	    "github.com/NiklasRosenstein/slap-sub001/pkg/project"
//	    "github.com/NiklasRosenstein/slap-sub001/pkg/release"
//	)
//
//	repo, _ := project.Load(".")
//	var sets []release.RefSet
//	for _, p := range repo.Projects() {
//	    self, deps, _ := p.VersionRefs(nil)
//	    sets = append(sets, release.RefSet{ProjectID: p.ID(), SelfRefs: self, DepRefs: deps})
//	}
//	release.Validate(sets)
//	target, _ := pep440.Bump(pep440.MustParse("1.2.3"), "minor")
//	release.Rewrite(sets, target.String(), false)
//
// # Infrastructure
//
// [cache] - Byte cache backing the network clients. FileCache for local use,
// RedisCache behind SLAP_REDIS_ADDR for shared CI caches.
//
// [httputil] - TTL-tracking JSON cache and retry helpers layered over [cache].
//
// [text] - Offset-preserving text substitution used by the rewriter.
//
// [buildinfo] - Build-time version information injected via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/release/...            # Specific package
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [project]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/project
// [release]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/release
// [pep440]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/pep440
// [changelog]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/changelog
// [check]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/check
// [depgraph]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/depgraph
// [vcs]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/vcs
// [integrations]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/httputil
// [text]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/text
// [buildinfo]: https://pkg.go.dev/github.com/NiklasRosenstein/slap-sub001/pkg/buildinfo
package pkg
