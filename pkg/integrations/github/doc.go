// Package github provides an HTTP client for the GitHub API.
//
// # Overview
//
// This package resolves issue and pull request references and commit author
// usernames against GitHub (https://api.github.com). Changelog entries store
// issue references as canonical URLs and authors as GitHub usernames when
// the repository is hosted there.
//
// # Usage
//
//	client := github.NewClient(backend, token, 24*time.Hour)
//
//	ref, err := client.ResolveIssue(ctx, "pallets", "flask", "#123")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ref.URL)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour.
//
// # Remote Detection
//
// [ParseRemoteURL] extracts the owner and repository name from a git remote
// URL, handling https, git@, git:// and ssh:// forms.
//
// # Caching
//
// Responses are cached to reduce API calls. The cache TTL is set when
// creating the client.
package github
