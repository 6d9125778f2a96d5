// Package driven declares the interfaces the core depends on but does not
// implement — the "driven" side of the hexagon. There is exactly one today:
// persistence. Ranking, similarity, and link-graph operations are pure
// functions over an already-loaded domain.ForwardIndex and need no port.
package driven

import (
	"context"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

// IndexStore persists and loads the on-disk index (spec.md §4.8).
type IndexStore interface {
	// Load reads the forward index, rebuilding the reverse index if it is
	// missing; a missing stats file yields zero-valued Stats (it is not
	// recomputed). Returns domain.ErrIndexMissing if the directory
	// holds no forward index at all.
	Load(ctx context.Context) (*domain.ForwardIndex, *domain.ReverseIndex, *domain.Stats, error)

	// Save atomically persists all three files: forward_index.json,
	// reverse_index.json, stats.json.
	Save(ctx context.Context, fwd *domain.ForwardIndex, rev *domain.ReverseIndex, stats *domain.Stats) error

	// Lock acquires the exclusive build lock, reclaiming stale (>1h) locks.
	// Returns domain.ErrLockHeld if another live process holds it.
	Lock(ctx context.Context) (unlock func() error, err error)
}
