package github

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/NiklasRosenstein/slap-sub001/pkg/cache"
	"github.com/NiklasRosenstein/slap-sub001/pkg/integrations"
)

var repoURLPattern = regexp.MustCompile(`https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:[/?#]|$)`)

// Reference identifies an issue or pull request on GitHub.
type Reference struct {
	ID        string // Numeric id with leading '#', e.g. "#123"
	URL       string // Canonical web URL
	Shortform string // owner/repo#123
}

// Client provides access to the GitHub API for resolving issue and pull
// request references and usernames. It handles HTTP requests with caching,
// automatic retries, and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower
// rate limits).
func NewClient(backend cache.Cache, token string, ttl time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(backend, "github:", ttl, headers),
		baseURL: "https://api.github.com",
	}
}

// ParseRemoteURL extracts the owner and repository name from a git remote
// URL. It accepts https, git@, git:// and ssh:// forms.
func ParseRemoteURL(raw string) (owner, repo string, ok bool) {
	if m := repoURLPattern.FindStringSubmatch(integrations.NormalizeRepoURL(raw)); len(m) >= 3 {
		return m[1], m[2], true
	}
	return "", "", false
}

// ResolveIssue verifies that an issue exists and returns its canonical
// reference. The id may carry a leading '#'.
//
// Returns [integrations.ErrNotFound] when the issue doesn't exist.
func (c *Client) ResolveIssue(ctx context.Context, owner, repo, id string) (*Reference, error) {
	return c.resolve(ctx, owner, repo, id, "issues")
}

// ResolvePullRequest verifies that a pull request exists and returns its
// canonical reference. The id may carry a leading '#'.
//
// Returns [integrations.ErrNotFound] when the pull request doesn't exist.
func (c *Client) ResolvePullRequest(ctx context.Context, owner, repo, id string) (*Reference, error) {
	return c.resolve(ctx, owner, repo, id, "pulls")
}

func (c *Client) resolve(ctx context.Context, owner, repo, id, kind string) (*Reference, error) {
	number := strings.TrimPrefix(strings.TrimSpace(id), "#")
	key := fmt.Sprintf("%s:%s/%s#%s", kind, owner, repo, number)

	var ref Reference
	err := c.Cached(ctx, key, false, &ref, func() error {
		var data issueResponse
		url := fmt.Sprintf("%s/repos/%s/%s/%s/%s", c.baseURL, owner, repo, kind, number)
		if err := c.Get(ctx, url, &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: %s/%s#%s", err, owner, repo, number)
			}
			return err
		}
		ref = Reference{
			ID:        fmt.Sprintf("#%d", data.Number),
			URL:       data.HTMLURL,
			Shortform: fmt.Sprintf("%s/%s#%d", owner, repo, data.Number),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// UsernameForEmail finds the GitHub username associated with a commit email
// address via the user search API.
//
// Returns [integrations.ErrNotFound] when no user matches the email; callers
// typically fall back to the plain email address in that case.
func (c *Client) UsernameForEmail(ctx context.Context, email string) (string, error) {
	key := "user:" + email

	var login string
	err := c.Cached(ctx, key, false, &login, func() error {
		var data searchResponse
		url := fmt.Sprintf("%s/search/users?q=%s&per_page=1", c.baseURL, integrations.URLEncode(email+" in:email"))
		if err := c.Get(ctx, url, &data); err != nil {
			return err
		}
		if len(data.Items) == 0 {
			return fmt.Errorf("%w: no github user for %s", integrations.ErrNotFound, email)
		}
		login = data.Items[0].Login
		return nil
	})
	if err != nil {
		return "", err
	}
	return login, nil
}

type issueResponse struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

type searchResponse struct {
	Items []struct {
		Login string `json:"login"`
	} `json:"items"`
}
