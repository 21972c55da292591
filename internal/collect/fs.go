// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DoctestDir is the build subdirectory reports are written to.
	DoctestDir = "doctest"
	// DoctreeDir is the build subdirectory parsed documents are cached in.
	DoctreeDir = "doctrees"
)

var defaultSkipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
	".idea":        {},
	".vscode":      {},
}

// SkipDir reports whether a directory name is never searched: hidden folders
// and tooling folders such as vendor and node_modules.
func SkipDir(name string) bool {
	_, ok := defaultSkipDirs[name]
	return ok || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

// MakeBuildDirs creates the doctest and doctree folders under buildDir. A
// folder that already exists is left untouched; any other failure is returned.
func MakeBuildDirs(buildDir string) error {
	for _, sub := range []string{DoctestDir, DoctreeDir} {
		dir := filepath.Join(buildDir, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}

// listDocuments returns the documents under root, sorted, skipping the build
// directory, hidden and tooling folders, and anything matching exclude.
func listDocuments(root, buildDir string, suffixes, exclude []string) ([]string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	buildAbs := ""
	if buildDir != "" {
		if buildAbs, err = filepath.Abs(buildDir); err != nil {
			return nil, fmt.Errorf("resolve build dir: %w", err)
		}
	}

	suffixSet := make(map[string]struct{}, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		suffixSet[s] = struct{}{}
	}

	var files []string
	err = filepath.WalkDir(rootAbs, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(rootAbs, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == rootAbs {
				return nil
			}
			if SkipDir(d.Name()) || path == buildAbs {
				return filepath.SkipDir
			}
			if excluded(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := suffixSet[strings.ToLower(filepath.Ext(d.Name()))]; !ok {
			return nil
		}
		if excluded(rel, exclude) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", rootAbs, err)
	}
	slices.Sort(files)
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// documentName turns a document path into its slash-separated name relative
// to root, without the suffix.
func documentName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
