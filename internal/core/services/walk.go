package services

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions is the include filter used when BuildOptions.Extensions
// is empty (spec.md §4.3).
var DefaultExtensions = []string{"md", "txt", "rst"}

// walkResult is one accepted file, in the deterministic order the walk
// discovers it: directories are visited depth-first but every directory's
// children are sorted lexicographically first, so the whole walk is stable.
type walkResult struct {
	absPath string
	relPath string // slash-separated, relative to root
	info    os.FileInfo
}

// walkTree lists every file under root matching the include/exclude filters,
// sorted by relative path (spec.md §4.3: "directory iteration must be
// sorted by path").
func walkTree(root string, extensions, excludes []string) ([]walkResult, error) {
	extSet := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}

	var results []walkResult
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Per-file I/O errors are skipped, not fatal (spec.md §4.1, §7).
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if isExcluded(rel, excludes) {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := extSet[ext]; !ok {
			return nil
		}

		results = append(results, walkResult{absPath: path, relPath: rel, info: info})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].relPath < results[j].relPath
	})
	return results, nil
}

// isExcluded reports whether rel matches any gitignore-style exclude
// pattern: a bare name matches any path segment, a pattern containing '/'
// or glob metacharacters is matched against the whole relative path.
func isExcluded(rel string, patterns []string) bool {
	segments := strings.Split(rel, "/")
	for _, pat := range patterns {
		pat = strings.TrimSuffix(pat, "/")
		if pat == "" {
			continue
		}

		if !strings.ContainsAny(pat, "/*?[") {
			for _, seg := range segments {
				if seg == pat {
					return true
				}
			}
			continue
		}

		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if strings.HasPrefix(rel, strings.TrimPrefix(pat, "/")+"/") {
			return true
		}
	}
	return false
}
