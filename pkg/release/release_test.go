package release

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMatchFirstOnly(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "pyproject.toml", "[tool.poetry]\nname = \"spam\"\nversion = \"0.1.0\"\n\n[tool.x]\nversion = \"9.9.9\"\n")

	ref, err := Match(file, PyprojectVersionPattern)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if ref.Value != "0.1.0" {
		t.Errorf("Value = %q, want 0.1.0", ref.Value)
	}
	if got := ref.Content; got != `version = "0.1.0"` {
		t.Errorf("Content = %q", got)
	}
	// The offsets must delimit exactly the version text.
	content, _ := os.ReadFile(file)
	if got := string(content[ref.Start:ref.End]); got != "0.1.0" {
		t.Errorf("content[Start:End] = %q, want 0.1.0", got)
	}
}

func TestMatchNamedGroupWins(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "f.txt", "release 1.2.3 now\n")

	ref, err := Match(file, `(release) (?P<version>[\d.]+)`)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if ref.Value != "1.2.3" {
		t.Errorf("Value = %q, want 1.2.3 (named group)", ref.Value)
	}
}

func TestMatchErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "f.txt", "nothing here\n")

	if _, err := Match(file, `version=\d+`); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("no capture group: %v, want ErrInvalidPattern", err)
	}
	if _, err := Match(file, `(\d+\.\d+\.\d+)`); !errors.Is(err, ErrNoMatch) {
		t.Errorf("no match: %v, want ErrNoMatch", err)
	}

	ref, err := MatchOrNil(file, `(\d+\.\d+\.\d+)`)
	if err != nil || ref != nil {
		t.Errorf("MatchOrNil = (%v, %v), want (nil, nil)", ref, err)
	}
	ref, err = MatchOrNil(filepath.Join(dir, "missing.txt"), `(\d+)`)
	if err != nil || ref != nil {
		t.Errorf("MatchOrNil on missing file = (%v, %v), want (nil, nil)", ref, err)
	}
}

func TestMatchAllLinesOffsets(t *testing.T) {
	dir := t.TempDir()
	content := "a = \"1.0.0\"\nb = 2\nc = \"3.0.0\"\n"
	file := writeFile(t, dir, "f.toml", content)

	refs, err := MatchAllLines(file, `"(?P<version>\d+\.\d+\.\d+)"`)
	if err != nil {
		t.Fatalf("MatchAllLines: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	for _, ref := range refs {
		if got := content[ref.Start:ref.End]; got != ref.Value {
			t.Errorf("offsets of %q select %q", ref.Value, got)
		}
	}
	if refs[0].Value != "1.0.0" || refs[1].Value != "3.0.0" {
		t.Errorf("values = %q, %q", refs[0].Value, refs[1].Value)
	}
}

func TestSourceCodeVersionRef(t *testing.T) {
	dir := t.TempDir()

	pkg := filepath.Join(dir, "spam")
	writeFile(t, dir, "spam/__init__.py", "from ._impl import *\n__version__ = '0.2.0'\n")
	ref, err := SourceCodeVersionRef(pkg)
	if err != nil {
		t.Fatalf("SourceCodeVersionRef: %v", err)
	}
	if ref == nil || ref.Value != "0.2.0" {
		t.Fatalf("ref = %v, want 0.2.0", ref)
	}

	// Top-level module file.
	mod := writeFile(t, dir, "eggs.py", "__version__ = \"1.0.0\"\n")
	ref, err = SourceCodeVersionRef(mod)
	if err != nil {
		t.Fatalf("SourceCodeVersionRef: %v", err)
	}
	if ref == nil || ref.Value != "1.0.0" {
		t.Fatalf("ref = %v, want 1.0.0", ref)
	}

	// Package without a version declaration.
	bare := filepath.Join(dir, "bare")
	writeFile(t, dir, "bare/__init__.py", "pass\n")
	ref, err = SourceCodeVersionRef(bare)
	if err != nil {
		t.Fatalf("SourceCodeVersionRef: %v", err)
	}
	if ref != nil {
		t.Errorf("ref = %v, want nil", ref)
	}
}

func TestInterdependencyRefs(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		`[tool.poetry.dependencies]`,
		`pkg-a = "^0.4.1"`,
		`'pkg-b' = ">=1.0.0"`,
		`requests = "^2.28.0"`,
		``,
		`[project]`,
		`dependencies = ["pkg-a ^0.4.1", "pkg-c-extra 1.0.0"]`,
		``,
	}, "\n")
	file := writeFile(t, dir, "pyproject.toml", content)

	refs, err := InterdependencyRefs(file, []string{"pkg-a", "pkg-b", "pkg-c"})
	if err != nil {
		t.Fatalf("InterdependencyRefs: %v", err)
	}

	var got []string
	for _, ref := range refs {
		if content[ref.Start:ref.End] != ref.Value {
			t.Errorf("offsets of %q select %q", ref.Value, content[ref.Start:ref.End])
		}
		got = append(got, ref.Value)
	}
	// pkg-a twice (assignment and requirement string), pkg-b once. The
	// requirement for pkg-c-extra must not count as a ref of pkg-c, and
	// requests is not a sibling at all.
	want := []string{"0.4.1", "0.4.1", "1.0.0"}
	if len(got) != len(want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
	counts := map[string]int{}
	for _, v := range got {
		counts[v]++
	}
	if counts["0.4.1"] != 2 || counts["1.0.0"] != 1 {
		t.Errorf("values = %v, want two 0.4.1 and one 1.0.0", got)
	}
}

func TestInterdependencyRefsMissingFile(t *testing.T) {
	refs, err := InterdependencyRefs(filepath.Join(t.TempDir(), "pyproject.toml"), []string{"x"})
	if err != nil || refs != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", refs, err)
	}
}

func TestValidate(t *testing.T) {
	ok := []RefSet{
		{ProjectID: "a", SelfRefs: []VersionRef{{Value: "1.0.0"}, {Value: "1.0.0"}}},
		{ProjectID: "b"}, // zero refs pass here, the checks layer warns
	}
	if err := Validate(ok); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}

	bad := []RefSet{
		{ProjectID: "a", SelfRefs: []VersionRef{
			{File: "pyproject.toml", Value: "1.0.0"},
			{File: "spam/__init__.py", Value: "0.9.0"},
		}},
	}
	err := Validate(bad)
	var inconsistent *InconsistentVersionsError
	if !errors.As(err, &inconsistent) {
		t.Fatalf("Validate = %v, want InconsistentVersionsError", err)
	}
	if inconsistent.ProjectID != "a" || len(inconsistent.Refs) != 2 {
		t.Errorf("error = %+v", inconsistent)
	}
}

func TestRewrite(t *testing.T) {
	dir := t.TempDir()
	pyproject := writeFile(t, dir, "pyproject.toml",
		"[tool.poetry]\nname = \"pkg-b\"\nversion = \"0.4.1\"\n\n[tool.poetry.dependencies]\npkg-a = \"^0.4.1\"\n")
	initpy := writeFile(t, dir, "src/pkg_b/__init__.py", "__version__ = '0.4.1'\n")

	self, err := Match(pyproject, PyprojectVersionPattern)
	if err != nil {
		t.Fatal(err)
	}
	src, err := SourceCodeVersionRef(filepath.Join(dir, "src", "pkg_b"))
	if err != nil {
		t.Fatal(err)
	}
	deps, err := InterdependencyRefs(pyproject, []string{"pkg-a"})
	if err != nil {
		t.Fatal(err)
	}

	sets := []RefSet{{ProjectID: "pkg-b", SelfRefs: []VersionRef{*self, *src}, DepRefs: deps}}
	if err := Validate(sets); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	changes, err := Rewrite(sets, "0.5.0", true)
	if err != nil {
		t.Fatalf("dry Rewrite: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %v, want 2 files", changes)
	}
	if data, _ := os.ReadFile(pyproject); !strings.Contains(string(data), "0.4.1") {
		t.Error("dry run modified the file")
	}

	if _, err := Rewrite(sets, "0.5.0", false); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	data, _ := os.ReadFile(pyproject)
	if got := string(data); !strings.Contains(got, `version = "0.5.0"`) || !strings.Contains(got, `pkg-a = "^0.5.0"`) {
		t.Errorf("pyproject after rewrite:\n%s", got)
	}
	data, _ = os.ReadFile(initpy)
	if got := string(data); got != "__version__ = '0.5.0'\n" {
		t.Errorf("__init__.py after rewrite: %q", got)
	}
}
