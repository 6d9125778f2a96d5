// Package jsonindex is the on-disk persistence adapter (C8): three
// JSON files under an index directory, written atomically, with a PID
// lock file guarding writers and forward-only version migration on read.
package jsonindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/basalt-docs/docdex/internal/adapters/driven/bodycache"
	"github.com/basalt-docs/docdex/internal/core/domain"
	"github.com/basalt-docs/docdex/internal/core/ports/driven"
	"github.com/basalt-docs/docdex/internal/logger"
)

const (
	forwardFileName = "forward_index.json"
	reverseFileName = "reverse_index.json"
	statsFileName   = "stats.json"
)

var _ driven.IndexStore = (*Store)(nil)

// Store is the file-based driven.IndexStore implementation: forward index,
// reverse index, and stats as three sibling JSON files, plus a lock file
// for exclusive writer access.
type Store struct {
	// dir is the index directory (forward_index.json and friends).
	dir string

	// sourceRoot is the original document tree, used to lazily rehydrate
	// Section body text on load (bodies are never serialized).
	sourceRoot string

	bodies *bodycache.Loader
}

// New constructs a Store. dir is where the index JSON files live;
// sourceRoot is the directory the index was built from.
func New(dir, sourceRoot string) (*Store, error) {
	loader, err := bodycache.New(sourceRoot)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, sourceRoot: sourceRoot, bodies: loader}, nil
}

// Load reads the three index files, rebuilding the reverse index if it is
// missing, migrating forward if the on-disk version predates the current
// one, and rehydrating every Section's body text from sourceRoot.
func (s *Store) Load(ctx context.Context) (*domain.ForwardIndex, *domain.ReverseIndex, *domain.Stats, error) {
	fwdPath := filepath.Join(s.dir, forwardFileName)
	raw, err := os.ReadFile(fwdPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, domain.ErrIndexMissing
		}
		return nil, nil, nil, fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}

	var fwd domain.ForwardIndex
	if err := json.Unmarshal(raw, &fwd); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", domain.ErrParseError, err)
	}

	migrated := migrateForward(&fwd)
	if migrated {
		logger.Warn("jsonindex: %s was built by an older version; consider running build again", fwdPath)
	}

	for _, doc := range fwd.Files {
		if err := s.bodies.Hydrate(doc); err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", domain.ErrIoError, err)
		}
	}

	rev, err := s.loadReverse(&fwd)
	if err != nil {
		return nil, nil, nil, err
	}

	stats, err := s.loadStats()
	if err != nil {
		return nil, nil, nil, err
	}

	return &fwd, rev, stats, nil
}

func (s *Store) loadReverse(fwd *domain.ForwardIndex) (*domain.ReverseIndex, error) {
	path := filepath.Join(s.dir, reverseFileName)
	raw, err := os.ReadFile(path)
	if err == nil {
		var rev domain.ReverseIndex
		if jsonErr := json.Unmarshal(raw, &rev); jsonErr == nil {
			return &rev, nil
		}
	}
	// Missing or corrupt: recompute from the forward index (spec.md §4.8:
	// "derived; rebuilt on load if missing").
	return BuildReverseIndex(fwd), nil
}

func (s *Store) loadStats() (*domain.Stats, error) {
	path := filepath.Join(s.dir, statsFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.Stats{}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}
	var stats domain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseError, err)
	}
	return &stats, nil
}

// BuildReverseIndex derives a term-to-sorted-paths map from a ForwardIndex.
func BuildReverseIndex(fwd *domain.ForwardIndex) *domain.ReverseIndex {
	terms := make(map[string]map[string]struct{})
	for path, doc := range fwd.Files {
		for term := range doc.TermFreq {
			if terms[term] == nil {
				terms[term] = make(map[string]struct{})
			}
			terms[term][path] = struct{}{}
		}
	}

	out := &domain.ReverseIndex{Version: fwd.Version, Terms: make(map[string][]string, len(terms))}
	for term, paths := range terms {
		list := make([]string, 0, len(paths))
		for p := range paths {
			list = append(list, p)
		}
		sort.Strings(list)
		out.Terms[term] = list
	}
	return out
}

// Save writes all three index files atomically: each is serialized to a
// sibling *.tmp file, fsynced, then renamed into place.
func (s *Store) Save(ctx context.Context, fwd *domain.ForwardIndex, rev *domain.ReverseIndex, stats *domain.Stats) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}

	if err := atomicWriteJSON(filepath.Join(s.dir, forwardFileName), fwd); err != nil {
		return err
	}
	if rev != nil {
		if err := atomicWriteJSON(filepath.Join(s.dir, reverseFileName), rev); err != nil {
			return err
		}
	}
	if stats != nil {
		if err := atomicWriteJSON(filepath.Join(s.dir, statsFileName), stats); err != nil {
			return err
		}
	}
	return nil
}

func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIoError, err)
	}
	return nil
}

// Lock takes exclusive ownership of the index directory for the duration
// of a build, per spec.md §5.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	return acquireLock(s.dir)
}
