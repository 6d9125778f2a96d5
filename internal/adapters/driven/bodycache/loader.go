// Package bodycache hydrates Section body text from the original source
// tree, through a fixed-size LRU of bodies so that repeated loads in one
// process reuse text already read. The LRU bounds only the cache: every
// section of a hydrated document keeps its body.
package bodycache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/basalt-docs/docdex/internal/analyzer"
	"github.com/basalt-docs/docdex/internal/core/domain"
)

// Size is the fixed LRU capacity (spec.md §4.7 expansion: bounded to 512
// entries).
const Size = 512

// Loader reads Section body text from source files on demand, keyed by
// (path, start line) as the LRU cache key. It never mutates the index; it
// is a pure read-through cache over the filesystem.
type Loader struct {
	root  string
	cache *lru.Cache[cacheKey, string]
}

type cacheKey struct {
	path  string
	start int
}

// New constructs a Loader rooted at the original indexed directory.
func New(root string) (*Loader, error) {
	cache, err := lru.New[cacheKey, string](Size)
	if err != nil {
		return nil, err
	}
	return &Loader{root: root, cache: cache}, nil
}

// Hydrate attaches body text to every section of doc, reading from cache
// where possible and from disk otherwise.
func (l *Loader) Hydrate(doc *domain.Document) error {
	var fileLines []string
	var fileErr error
	loadedFile := false

	for i := range doc.Sections {
		sec := &doc.Sections[i]
		key := cacheKey{path: doc.Path, start: sec.StartLine}

		if body, ok := l.cache.Get(key); ok {
			sec.SetBody(body)
			continue
		}

		if !loadedFile {
			fileLines, fileErr = l.readLines(doc.Path)
			loadedFile = true
		}
		if fileErr != nil {
			return fileErr
		}

		body := sliceLines(fileLines, sec.StartLine, sec.EndLine)
		sec.SetBody(body)
		l.cache.Add(key, body)
	}
	return nil
}

func (l *Loader) readLines(relPath string) ([]string, error) {
	full := filepath.Join(l.root, relPath)
	raw, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("bodycache: reading %s: %w", full, err)
	}
	text := strings.ReplaceAll(analyzer.Decode(raw), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

func sliceLines(lines []string, start, end int) string {
	s := start - 1
	e := end - 1
	if s < 0 {
		s = 0
	}
	if e > len(lines) {
		e = len(lines)
	}
	if s > e {
		s = e
	}
	return strings.Join(lines[s:e], "\n")
}
