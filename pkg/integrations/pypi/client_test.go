package pypi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NiklasRosenstein/slap-sub001/pkg/cache"
	"github.com/NiklasRosenstein/slap-sub001/pkg/integrations"
)

func TestClient_FetchPackage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pypi/flask/json" {
			resp := apiResponse{
				Info: apiInfo{
					Name:         "Flask",
					Version:      "2.0.0",
					Summary:      "A micro web framework",
					License:      "BSD-3-Clause",
					Classifiers:  []string{"Programming Language :: Python :: 3"},
					RequiresDist: []string{"click>=7.0", "werkzeug>=2.0", "pytest; extra == 'test'"},
					ProjectURLs: map[string]any{
						"Source": "https://github.com/pallets/flask",
					},
					Author: "Armin Ronacher",
				},
			}
			json.NewEncoder(w).Encode(resp)
		} else {
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.FetchPackage(context.Background(), "Flask", true)
	if err != nil {
		t.Fatalf("FetchPackage failed: %v", err)
	}

	if info.Name != "Flask" {
		t.Errorf("expected name Flask, got %s", info.Name)
	}
	if info.Version != "2.0.0" {
		t.Errorf("expected version 2.0.0, got %s", info.Version)
	}
	if len(info.Dependencies) != 2 {
		t.Errorf("expected 2 runtime dependencies, got %v", info.Dependencies)
	}
	if len(info.Classifiers) != 1 {
		t.Errorf("expected 1 classifier, got %v", info.Classifiers)
	}
}

func TestClient_FetchPackage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.FetchPackage(context.Background(), "missing-pkg", true)
	if err == nil {
		t.Fatal("expected error for missing package")
	}
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Classifiers(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("Development Status :: 5 - Production/Stable\nProgramming Language :: Python :: 3\n"))
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	classifiers, err := c.Classifiers(context.Background(), true)
	if err != nil {
		t.Fatalf("Classifiers failed: %v", err)
	}
	want := []string{
		"Development Status :: 5 - Production/Stable",
		"Programming Language :: Python :: 3",
	}
	if len(classifiers) != len(want) {
		t.Fatalf("got %d classifiers, want %d", len(classifiers), len(want))
	}
	for i := range want {
		if classifiers[i] != want[i] {
			t.Errorf("classifier %d = %q, want %q", i, classifiers[i], want[i])
		}
	}

	// Second call is served from cache
	if _, err := c.Classifiers(context.Background(), false); err != nil {
		t.Fatalf("cached Classifiers failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
}

func TestExtractDeps_FiltersMarkers(t *testing.T) {
	tests := []struct {
		input    []string
		expected int
	}{
		{[]string{"requests", "numpy; extra == 'dev'"}, 1},
		{[]string{"django>=3.0", "pytest; extra == 'test'"}, 1},
		{[]string{"flask"}, 1},
	}

	for _, tt := range tests {
		got := extractDeps(tt.input)
		if len(got) != tt.expected {
			t.Errorf("extractDeps(%v): expected %d deps, got %d", tt.input, tt.expected, len(got))
		}
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &Client{
		Client:  integrations.NewClient(backend, "pypi:", time.Hour, nil),
		baseURL: serverURL,
	}
}
