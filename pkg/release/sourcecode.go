package release

import (
	"os"
	"path/filepath"
)

// sourceCodePattern matches a module-level __version__ assignment.
const sourceCodePattern = `^__version__\s*=\s*['"]([^'"]+)['"]`

// sourceFileNames are the files inside a package directory that may carry
// the __version__ assignment, in probe order.
var sourceFileNames = []string{"__init__.py", "__about__.py", "_version.py"}

// SourceCodeVersionRef returns the __version__ reference of a package.
// packagePath is either a top-level module file (pkg.py) or a package
// directory; for directories, __init__.py, __about__.py and _version.py are
// probed in order and the first file with a match wins. Returns nil when no
// file declares a version.
func SourceCodeVersionRef(packagePath string) (*VersionRef, error) {
	info, err := os.Stat(packagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	candidates := []string{packagePath}
	if info.IsDir() {
		candidates = candidates[:0]
		for _, name := range sourceFileNames {
			candidates = append(candidates, filepath.Join(packagePath, name))
		}
	}

	for _, file := range candidates {
		ref, err := MatchOrNil(file, sourceCodePattern)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			return ref, nil
		}
	}
	return nil, nil
}
