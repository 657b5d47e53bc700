package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// skipDirs are directory names that never contain documents worth indexing.
// Tooling and dependency trees dominate scan time on developer machines, so
// they are pruned outright.
var skipDirs = map[string]struct{}{
	"node_modules":  {},
	".git":          {},
	".svn":          {},
	".hg":           {},
	"__pycache__":   {},
	".pytest_cache": {},
	".mypy_cache":   {},
	".tox":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	".env":          {},
	"vendor":        {},
	"build":         {},
	"dist":          {},
	"target":        {},
	".gradle":       {},
	".idea":         {},
	".vscode":       {},
	".cache":        {},
	"coverage":      {},
	".next":         {},
	".nuxt":         {},
	".turbo":        {},
}

// shouldSkipDir reports whether a directory is pruned from the walk. Any
// dot-prefixed directory is skipped, plus the known tooling directories.
func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, skip := skipDirs[name]
	return skip
}

// isPDF matches PDF files by extension, case-insensitively.
func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// findPDFs walks root and returns the absolute paths of all PDF files,
// pruning skipped directories.
func findPDFs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isPDF(d.Name()) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			paths = append(paths, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return paths, nil
}
