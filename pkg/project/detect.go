package project

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NiklasRosenstein/slap-sub001/pkg/text"
)

// ignoredModules are module names that never count as shipped packages.
var ignoredModules = []string{"test", "tests", "docs", "build", "setup", "conftest"}

// autoDetectPackages finds the packages of a project without explicit
// configuration. The configured source directory wins; otherwise src/ is
// probed before the project root.
func autoDetectPackages(p *Project) ([]Package, error) {
	if dir := p.Config().SourceDirectory; dir != "" {
		return detectPackages(filepath.Join(p.Directory, dir))
	}
	for _, dir := range []string{"src", "."} {
		packages, err := detectPackages(filepath.Join(p.Directory, dir))
		if err != nil {
			return nil, err
		}
		if len(packages) > 0 {
			return packages, nil
		}
	}
	return nil, nil
}

// detectPackages finds Python packages under directory: top-level modules
// (name.py) and package directories containing an __init__.py, at any
// nesting depth so PEP 420 namespace packages are found too. Directories
// that carry their own pyproject.toml are separate projects and skipped.
// When several packages remain they are collapsed to their longest common
// dotted prefix; no common prefix means the layout is ambiguous and nothing
// is reported.
func detectPackages(directory string) ([]Package, error) {
	info, err := os.Stat(directory)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	var modules []string
	paths := make(map[string]string)

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() {
			if stem, ok := strings.CutSuffix(name, ".py"); ok {
				modules = append(modules, stem)
				paths[stem] = filepath.Join(directory, name)
			}
			continue
		}
		if strings.HasPrefix(name, ".") || slices.Contains(ignoredModules, name) {
			continue
		}
		if exists(filepath.Join(directory, name, "pyproject.toml")) {
			continue
		}
		collectPackageDirs(directory, name, &modules, paths)
	}

	modules = slices.DeleteFunc(modules, func(m string) bool {
		return slices.Contains(ignoredModules, m) || slices.Contains(ignoredModules, strings.Split(m, ".")[0])
	})
	slices.Sort(modules)

	if len(modules) > 1 {
		split := make([][]string, len(modules))
		for i, m := range modules {
			split[i] = strings.Split(m, ".")
		}
		common := text.CommonPrefix(split...)
		if len(common) == 0 {
			return nil, nil
		}
		module := strings.Join(common, ".")
		path, ok := paths[module]
		if !ok {
			path = filepath.Join(directory, filepath.Join(common...))
		}
		return []Package{{Name: module, Path: path, Root: directory}}, nil
	}

	var packages []Package
	for _, m := range modules {
		packages = append(packages, Package{Name: m, Path: paths[m], Root: directory})
	}
	return packages, nil
}

// collectPackageDirs records dir (dotted as prefix.dir) when it is a
// regular package, and recurses so namespace packages without an
// __init__.py of their own still surface their children.
func collectPackageDirs(root, rel string, modules *[]string, paths map[string]string) {
	dir := filepath.Join(root, filepath.FromSlash(rel))
	dotted := strings.ReplaceAll(rel, "/", ".")

	if exists(filepath.Join(dir, "__init__.py")) {
		*modules = append(*modules, dotted)
		paths[dotted] = dir
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		collectPackageDirs(root, rel+"/"+entry.Name(), modules, paths)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
