// Package integrations provides HTTP clients for the external APIs that the
// checks and changelog commands consult.
//
// # Overview
//
// Each API has its own subpackage:
//
//   - [pypi]: Python Package Index (package metadata, trove classifiers)
//   - [spdx]: SPDX license list (known license identifiers)
//   - [github]: GitHub API (issue and pull request references, usernames)
//
// # Client Pattern
//
// All clients follow a consistent pattern:
//
//	client := pypi.NewClient(backend, 24*time.Hour)  // Cache TTL
//	pkg, err := client.FetchPackage(ctx, "requests", false)  // false = use cache
//
// Clients handle:
//   - HTTP requests with retry for transient failures
//   - Response caching (file or Redis backed, configurable TTL)
//   - API-specific parsing and normalization
//
// The [Client] type provides the shared HTTP functionality, including caching
// via [httputil.Cache].
//
// [pypi]: github.com/NiklasRosenstein/slap-sub001/pkg/integrations/pypi
// [spdx]: github.com/NiklasRosenstein/slap-sub001/pkg/integrations/spdx
// [github]: github.com/NiklasRosenstein/slap-sub001/pkg/integrations/github
// [httputil.Cache]: github.com/NiklasRosenstein/slap-sub001/pkg/httputil.Cache
package integrations
