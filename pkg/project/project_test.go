package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func write(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const poetryManifest = `
[build-system]
requires = ["poetry-core"]
build-backend = "poetry.core.masonry.api"

[tool.poetry]
name = "%NAME%"
version = "0.1.0"

[tool.poetry.dependencies]
python = "^3.10"
`

func poetryProject(t *testing.T, root, sub, name string, deps ...string) {
	t.Helper()
	content := strings.ReplaceAll(poetryManifest, "%NAME%", name)
	for _, dep := range deps {
		content += dep + "\n"
	}
	write(t, root, filepath.Join(sub, "pyproject.toml"), content)
	module := strings.ReplaceAll(name, "-", "_")
	write(t, root, filepath.Join(sub, "src", module, "__init__.py"), "__version__ = '0.1.0'\n")
}

func TestLoadSingleProject(t *testing.T) {
	dir := t.TempDir()
	poetryProject(t, dir, ".", "spam")

	repo, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if repo.IsMonorepo() {
		t.Error("single root project reported as monorepo")
	}
	projects := repo.Projects()
	if len(projects) != 1 {
		t.Fatalf("got %d projects", len(projects))
	}
	p := projects[0]
	if p.HandlerName() != "poetry" {
		t.Errorf("handler = %s, want poetry", p.HandlerName())
	}
	if p.DistName() != "spam" || p.Version() != "0.1.0" {
		t.Errorf("dist = %s, version = %s", p.DistName(), p.Version())
	}

	packages, err := p.Packages()
	if err != nil {
		t.Fatal(err)
	}
	if len(packages) != 1 || packages[0].Name != "spam" {
		t.Fatalf("packages = %v", packages)
	}
}

func TestLoadMonorepoTopologicalOrder(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "slap.toml", "[release]\nbranch = \"main\"\n")
	poetryProject(t, dir, "pkg-c", "pkg-c", `pkg-a = "^0.1.0"`, `pkg-b = "^0.1.0"`)
	poetryProject(t, dir, "pkg-a", "pkg-a")
	poetryProject(t, dir, "pkg-b", "pkg-b", `pkg-a = "^0.1.0"`)

	repo, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !repo.IsMonorepo() {
		t.Error("monorepo not detected")
	}
	if repo.ReleaseBranch() != "main" {
		t.Errorf("branch = %s, want main", repo.ReleaseBranch())
	}

	var ids []string
	for _, p := range repo.Projects() {
		ids = append(ids, p.ID())
	}
	want := []string{"pkg-a", "pkg-b", "pkg-c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}

	g, err := repo.DependencyGraph("run")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(g.Edges()); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
}

func TestVersionRefsLockstep(t *testing.T) {
	dir := t.TempDir()
	poetryProject(t, dir, "pkg-a", "pkg-a")
	poetryProject(t, dir, "pkg-b", "pkg-b", `pkg-a = "^0.1.0"`)

	repo, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	var pkgB *Project
	for _, p := range repo.Projects() {
		if p.ID() == "pkg-b" {
			pkgB = p
		}
	}

	self, deps, err := pkgB.VersionRefs(pkgB.InterdependencyNames())
	if err != nil {
		t.Fatal(err)
	}
	// pyproject version plus __version__ in source code.
	if len(self) != 2 {
		t.Fatalf("self refs = %v", self)
	}
	if len(deps) != 1 || deps[0].Value != "0.1.0" {
		t.Fatalf("dep refs = %v", deps)
	}
}

func TestInterdependenciesDisabled(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "slap.toml", "[release]\ninterdependencies = false\n")
	poetryProject(t, dir, "pkg-a", "pkg-a")
	poetryProject(t, dir, "pkg-b", "pkg-b", `pkg-a = "^0.1.0"`)

	repo, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	var pkgB *Project
	for _, p := range repo.Projects() {
		if p.ID() == "pkg-b" {
			pkgB = p
		}
	}
	_, deps, err := pkgB.VersionRefs(pkgB.InterdependencyNames())
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 0 {
		t.Errorf("dep refs = %v, want none", deps)
	}
}

func TestDetectPackages(t *testing.T) {
	t.Run("src layout", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "src/spam/__init__.py", "")
		write(t, dir, "src/tests/__init__.py", "")
		packages, err := detectPackages(filepath.Join(dir, "src"))
		if err != nil {
			t.Fatal(err)
		}
		if len(packages) != 1 || packages[0].Name != "spam" {
			t.Errorf("packages = %v", packages)
		}
	})

	t.Run("top-level module", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "spam.py", "")
		packages, err := detectPackages(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(packages) != 1 || packages[0].Name != "spam" || packages[0].Path != filepath.Join(dir, "spam.py") {
			t.Errorf("packages = %v", packages)
		}
	})

	t.Run("namespace collapse", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "nr/util/__init__.py", "")
		write(t, dir, "nr/stream/__init__.py", "")
		packages, err := detectPackages(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(packages) != 1 || packages[0].Name != "nr" {
			t.Errorf("packages = %v", packages)
		}
	})

	t.Run("nested project skipped", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "spam/__init__.py", "")
		write(t, dir, "other/pyproject.toml", "")
		write(t, dir, "other/other/__init__.py", "")
		packages, err := detectPackages(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(packages) != 1 || packages[0].Name != "spam" {
			t.Errorf("packages = %v", packages)
		}
	})
}

func TestSetuptoolsHandler(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "pyproject.toml", "[build-system]\nbuild-backend = \"setuptools.build_meta\"\n")
	write(t, dir, "setup.cfg", `[metadata]
name = eggs
version = 1.2.3

[options]
install_requires =
    requests >=2.0
    pkg-a >=0.1.0
`)
	write(t, dir, "src/eggs/__init__.py", "")

	repo, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	p := repo.Projects()[0]
	if p.HandlerName() != "setuptools" {
		t.Fatalf("handler = %s", p.HandlerName())
	}
	if p.DistName() != "eggs" {
		t.Errorf("dist = %s", p.DistName())
	}

	deps, err := p.Dependencies()
	if err != nil {
		t.Fatal(err)
	}
	if len(deps.Run) != 2 {
		t.Errorf("run deps = %v", deps.Run)
	}

	self, depRefs, err := p.VersionRefs([]string{"pkg-a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(self) != 1 || self[0].Value != "1.2.3" {
		t.Errorf("self refs = %v", self)
	}
	if len(depRefs) != 1 || depRefs[0].Value != "0.1.0" {
		t.Errorf("dep refs = %v", depRefs)
	}
}

func TestRequirementName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"requests >=2.28,<3", "requests"},
		{"pkg-a ^1.0", "pkg-a"},
		{"pkg_b[extra] == 1.0", "pkg_b"},
		{"  spaced 1.0", "spaced"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RequirementName(tt.in); got != tt.want {
			t.Errorf("RequirementName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
