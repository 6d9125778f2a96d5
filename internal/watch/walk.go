package watch

import (
	"os"
	"path/filepath"
)

// collectDirs lists root and every subdirectory beneath it; fsnotify
// watches are non-recursive, so the indexer's worker-pool walk (which
// handles file filtering itself) isn't reused here — this just needs
// directory names.
func collectDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
