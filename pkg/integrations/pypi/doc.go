// Package pypi provides an HTTP client for the Python Package Index API.
//
// # Overview
//
// This package fetches package metadata and the trove classifier listing
// from PyPI (https://pypi.org), the official repository for Python packages.
//
// # Usage
//
//	client := pypi.NewClient(backend, 24*time.Hour)  // Cache TTL
//
//	pkg, err := client.FetchPackage(ctx, "requests", false)  // false = use cache
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(pkg.Name, pkg.Version)
//	fmt.Println("Dependencies:", pkg.Dependencies)
//
// # PackageInfo
//
// [Client.FetchPackage] returns a [PackageInfo] containing:
//
//   - Name, Version: Package identity
//   - Dependencies: Direct runtime dependencies (extras/dev filtered out)
//   - Summary: Package description
//   - License, Classifiers, Author: Package metadata
//   - ProjectURLs, HomePage: Links
//
// # Classifiers
//
// [Client.Classifiers] returns every trove classifier known to PyPI, used to
// validate the classifiers a project declares.
//
// # Caching
//
// Responses are cached to reduce load on PyPI and speed up repeated requests.
// The cache TTL is set when creating the client. Pass refresh=true to bypass
// the cache.
package pypi
