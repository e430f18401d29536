package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NiklasRosenstein/slap-sub001/pkg/cache"
	"github.com/NiklasRosenstein/slap-sub001/pkg/integrations"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		owner string
		repo  string
		ok    bool
	}{
		{"https", "https://github.com/pallets/flask", "pallets", "flask", true},
		{"https with .git", "https://github.com/pallets/flask.git", "pallets", "flask", true},
		{"scp style", "git@github.com:pallets/flask.git", "pallets", "flask", true},
		{"ssh", "ssh://git@github.com/pallets/flask.git", "pallets", "flask", true},
		{"not github", "https://gitlab.com/user/repo", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, ok := ParseRemoteURL(tt.input)
			if owner != tt.owner || repo != tt.repo || ok != tt.ok {
				t.Errorf("ParseRemoteURL(%q) = %q, %q, %v; want %q, %q, %v",
					tt.input, owner, repo, ok, tt.owner, tt.repo, tt.ok)
			}
		})
	}
}

func TestClient_ResolveIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/pallets/flask/issues/123":
			w.Write([]byte(`{"number": 123, "html_url": "https://github.com/pallets/flask/issues/123"}`))
		case "/repos/pallets/flask/pulls/77":
			w.Write([]byte(`{"number": 77, "html_url": "https://github.com/pallets/flask/pull/77"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	ref, err := c.ResolveIssue(context.Background(), "pallets", "flask", "#123")
	if err != nil {
		t.Fatalf("ResolveIssue failed: %v", err)
	}
	if ref.ID != "#123" {
		t.Errorf("ID = %q, want #123", ref.ID)
	}
	if ref.URL != "https://github.com/pallets/flask/issues/123" {
		t.Errorf("URL = %q", ref.URL)
	}
	if ref.Shortform != "pallets/flask#123" {
		t.Errorf("Shortform = %q", ref.Shortform)
	}

	pr, err := c.ResolvePullRequest(context.Background(), "pallets", "flask", "77")
	if err != nil {
		t.Fatalf("ResolvePullRequest failed: %v", err)
	}
	if pr.URL != "https://github.com/pallets/flask/pull/77" {
		t.Errorf("pull request URL = %q", pr.URL)
	}

	_, err = c.ResolveIssue(context.Background(), "pallets", "flask", "999")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing issue, got %v", err)
	}
}

func TestClient_UsernameForEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/users" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("q") == "found@example.com in:email" {
			w.Write([]byte(`{"items": [{"login": "octocat"}]}`))
		} else {
			w.Write([]byte(`{"items": []}`))
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	login, err := c.UsernameForEmail(context.Background(), "found@example.com")
	if err != nil {
		t.Fatalf("UsernameForEmail failed: %v", err)
	}
	if login != "octocat" {
		t.Errorf("login = %q, want octocat", login)
	}

	_, err = c.UsernameForEmail(context.Background(), "unknown@example.com")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestNewClient_AuthHeader(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"number": 1, "html_url": "https://github.com/o/r/issues/1"}`))
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(backend, "secret-token", time.Hour)
	c.baseURL = server.URL

	if _, err := c.ResolveIssue(context.Background(), "o", "r", "1"); err != nil {
		t.Fatalf("ResolveIssue failed: %v", err)
	}
	if auth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want Bearer secret-token", auth)
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &Client{
		Client:  integrations.NewClient(backend, "github:", time.Hour, nil),
		baseURL: serverURL,
	}
}
