package project

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/NiklasRosenstein/slap-sub001/pkg/release"
)

// Handler knows where one build system keeps a project's metadata. Handlers
// are stateless; all project data lives on the Project.
type Handler interface {
	// Name identifies the handler in `slap info` output.
	Name() string

	// Matches reports whether this handler serves the project, usually by
	// inspecting the declared build backend.
	Matches(p *Project) bool

	DistName(p *Project) string
	Packages(p *Project) ([]Package, error)
	Dependencies(p *Project) (Dependencies, error)

	// VersionRefs returns the occurrences of the project's own version in
	// its manifest, and constraints on the given sibling distributions.
	VersionRefs(p *Project, siblings []string) (self, deps []release.VersionRef, err error)
}

// handlers are probed in registration order; the default handler accepts
// any project with a pyproject.toml and must stay last.
var handlers = []Handler{
	poetryHandler{},
	flitHandler{},
	setuptoolsHandler{},
	defaultHandler{},
}

func detectHandler(p *Project) Handler {
	if name := p.Config().Handler; name != "" {
		for _, h := range handlers {
			if h.Name() == name {
				return h
			}
		}
		return nil
	}
	for _, h := range handlers {
		if h.Matches(p) {
			return h
		}
	}
	return nil
}

func buildBackend(p *Project) string {
	if p.manifest.BuildSystem == nil {
		return ""
	}
	return p.manifest.BuildSystem.BuildBackend
}

func hasPyproject(p *Project) bool {
	_, err := os.Stat(p.PyprojectFile())
	return err == nil
}

// pyprojectVersionRefs implements VersionRefs for every pyproject-based
// handler: the version key itself plus sibling constraints anywhere in the
// file.
func pyprojectVersionRefs(p *Project, siblings []string) (self, deps []release.VersionRef, err error) {
	ref, err := release.MatchOrNil(p.PyprojectFile(), release.PyprojectVersionPattern)
	if err != nil {
		return nil, nil, err
	}
	if ref != nil {
		self = append(self, *ref)
	}
	deps, err = release.InterdependencyRefs(p.PyprojectFile(), siblings)
	if err != nil {
		return nil, nil, err
	}
	return self, deps, nil
}

// defaultHandler serves any project with a pyproject.toml that no other
// handler claims. Metadata comes from the PEP 621 [project] table.
type defaultHandler struct{}

func (defaultHandler) Name() string            { return "default" }
func (defaultHandler) Matches(p *Project) bool { return hasPyproject(p) }

func (defaultHandler) DistName(p *Project) string {
	if p.manifest.Project != nil {
		return p.manifest.Project.Name
	}
	return ""
}

func (defaultHandler) Packages(p *Project) ([]Package, error) {
	return autoDetectPackages(p)
}

func (defaultHandler) Dependencies(p *Project) (Dependencies, error) {
	return pep621Dependencies(p), nil
}

func (defaultHandler) VersionRefs(p *Project, siblings []string) ([]release.VersionRef, []release.VersionRef, error) {
	return pyprojectVersionRefs(p, siblings)
}

func pep621Dependencies(p *Project) Dependencies {
	deps := Dependencies{Extra: map[string][]string{}}
	if p.manifest.Project == nil {
		return deps
	}
	deps.Run = p.manifest.Project.Dependencies
	for extra, reqs := range p.manifest.Project.OptionalDependencies {
		// The "dev" extra is the conventional home of dev tooling.
		if extra == "dev" {
			deps.Dev = reqs
			continue
		}
		deps.Extra[extra] = reqs
	}
	return deps
}

// poetryHandler serves projects built with poetry-core.
type poetryHandler struct{}

func (poetryHandler) Name() string { return "poetry" }

func (poetryHandler) Matches(p *Project) bool {
	return buildBackend(p) == "poetry.core.masonry.api"
}

func (poetryHandler) DistName(p *Project) string {
	if p.manifest.Tool.Poetry != nil && p.manifest.Tool.Poetry.Name != "" {
		return p.manifest.Tool.Poetry.Name
	}
	return defaultHandler{}.DistName(p)
}

func (poetryHandler) Packages(p *Project) ([]Package, error) {
	poetry := p.manifest.Tool.Poetry
	if poetry == nil || poetry.Packages == nil {
		return autoDetectPackages(p)
	}
	var packages []Package
	for _, entry := range poetry.Packages {
		root := filepath.Join(p.Directory, entry.From)
		packages = append(packages, Package{
			Name: strings.ReplaceAll(entry.Include, "/", "."),
			Path: filepath.Join(root, entry.Include),
			Root: root,
		})
	}
	return packages, nil
}

func (poetryHandler) Dependencies(p *Project) (Dependencies, error) {
	deps := Dependencies{Extra: map[string][]string{}}
	poetry := p.manifest.Tool.Poetry
	if poetry == nil {
		return deps, nil
	}
	deps.Run = poetryRequirements(poetry.Dependencies)
	deps.Dev = poetryRequirements(poetry.DevDependencies)
	for name, group := range poetry.Group {
		if name == "dev" {
			deps.Dev = append(deps.Dev, poetryRequirements(group.Dependencies)...)
			continue
		}
		deps.Extra[name] = poetryRequirements(group.Dependencies)
	}
	for extra, reqs := range poetry.Extras {
		deps.Extra[extra] = append(deps.Extra[extra], reqs...)
	}
	return deps, nil
}

func (poetryHandler) VersionRefs(p *Project, siblings []string) ([]release.VersionRef, []release.VersionRef, error) {
	return pyprojectVersionRefs(p, siblings)
}

// poetryRequirements flattens a Poetry dependency table into requirement
// strings, dropping the python interpreter constraint.
func poetryRequirements(table map[string]any) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		if name == "python" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	reqs := make([]string, 0, len(names))
	for _, name := range names {
		if constraint := poetryConstraint(table[name]); constraint != "" {
			reqs = append(reqs, name+" "+constraint)
		} else {
			reqs = append(reqs, name)
		}
	}
	return reqs
}

// flitHandler serves projects built with flit_core, reading the [project]
// table with a fallback to the legacy [tool.flit.metadata] layout.
type flitHandler struct{}

func (flitHandler) Name() string { return "flit" }

func (flitHandler) Matches(p *Project) bool {
	return buildBackend(p) == "flit_core.buildapi"
}

func (flitHandler) DistName(p *Project) string {
	if name := (defaultHandler{}).DistName(p); name != "" {
		return name
	}
	flit := p.manifest.Tool.Flit
	if flit != nil && flit.Metadata != nil && flit.Metadata.Module != nil {
		return flit.Metadata.Module.Name
	}
	return ""
}

func (flitHandler) Packages(p *Project) ([]Package, error) {
	return autoDetectPackages(p)
}

func (flitHandler) Dependencies(p *Project) (Dependencies, error) {
	if p.manifest.Project != nil {
		return pep621Dependencies(p), nil
	}
	deps := Dependencies{Extra: map[string][]string{}}
	flit := p.manifest.Tool.Flit
	if flit == nil || flit.Metadata == nil {
		return deps, nil
	}
	deps.Run = flit.Metadata.Requires
	for extra, reqs := range flit.Metadata.RequiresExtra {
		if extra == "dev" {
			deps.Dev = reqs
			continue
		}
		deps.Extra[extra] = reqs
	}
	return deps, nil
}

func (flitHandler) VersionRefs(p *Project, siblings []string) ([]release.VersionRef, []release.VersionRef, error) {
	return pyprojectVersionRefs(p, siblings)
}

// setuptoolsHandler serves setuptools.build_meta projects whose metadata
// lives in setup.cfg rather than pyproject.toml.
type setuptoolsHandler struct{}

func (setuptoolsHandler) Name() string { return "setuptools" }

func (setuptoolsHandler) Matches(p *Project) bool {
	return buildBackend(p) == "setuptools.build_meta"
}

func (h setuptoolsHandler) setupCfg(p *Project) (*ini.File, error) {
	path := filepath.Join(p.Directory, "setup.cfg")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ini.Empty(), nil
	}
	return ini.Load(path)
}

func (h setuptoolsHandler) DistName(p *Project) string {
	cfg, err := h.setupCfg(p)
	if err != nil {
		return ""
	}
	if name := cfg.Section("metadata").Key("name").String(); name != "" {
		return name
	}
	return defaultHandler{}.DistName(p)
}

func (h setuptoolsHandler) Packages(p *Project) ([]Package, error) {
	cfg, err := h.setupCfg(p)
	if err != nil {
		return nil, err
	}
	options := cfg.Section("options")
	packages := strings.TrimSpace(options.Key("packages").String())
	if packages == "" || packages == "find:" {
		return autoDetectPackages(p)
	}
	root := filepath.Join(p.Directory, options.Key("package_dir").MustString("."))
	var result []Package
	for _, name := range parseListSemi(packages) {
		result = append(result, Package{
			Name: name,
			Path: filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))),
			Root: root,
		})
	}
	return result, nil
}

func (h setuptoolsHandler) Dependencies(p *Project) (Dependencies, error) {
	cfg, err := h.setupCfg(p)
	if err != nil {
		return Dependencies{}, err
	}
	options := cfg.Section("options")
	deps := Dependencies{
		Run: parseListSemi(options.Key("install_requires").String()),
		Dev: append(
			parseListSemi(options.Key("setup_requires").String()),
			parseListSemi(options.Key("tests_require").String())...,
		),
		Extra: map[string][]string{},
	}
	if extras, err := cfg.GetSection("options.extras_require"); err == nil {
		for _, key := range extras.Keys() {
			deps.Extra[key.Name()] = parseListSemi(key.String())
		}
	}
	return deps, nil
}

const setupCfgVersionPattern = `^version\s*=\s*(.*?)\s*$`

// setupCfgRequirementSelector matches "name <op> version" inside the
// multi-line requirement lists of a setup.cfg.
const setupCfgRequirementSelector = `\s*(?:==|>=|<=|>|<|~=)\s*(?P<version>\d+[\w\d\.\-]*)`

func (h setuptoolsHandler) VersionRefs(p *Project, siblings []string) ([]release.VersionRef, []release.VersionRef, error) {
	setupCfg := filepath.Join(p.Directory, "setup.cfg")

	var self []release.VersionRef
	ref, err := release.MatchOrNil(setupCfg, setupCfgVersionPattern)
	if err != nil {
		return nil, nil, err
	}
	if ref != nil {
		self = append(self, *ref)
	}

	var deps []release.VersionRef
	for _, name := range siblings {
		found, err := release.MatchAllLines(setupCfg, `^\s+`+regexp.QuoteMeta(name)+setupCfgRequirementSelector)
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			return nil, nil, err
		}
		deps = append(deps, found...)
	}
	return self, deps, nil
}

// parseListSemi splits a setuptools list-semi value: entries separated by
// newlines or semicolons, blanks dropped.
func parseListSemi(value string) []string {
	var result []string
	for _, line := range strings.Split(value, "\n") {
		for _, item := range strings.Split(line, ";") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	}
	return result
}
