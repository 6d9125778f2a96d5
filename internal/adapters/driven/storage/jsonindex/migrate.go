package jsonindex

import "github.com/basalt-docs/docdex/internal/core/domain"

// migrateForward brings an on-disk ForwardIndex up to
// domain.CurrentIndexVersion, defaulting any field introduced after the
// file was written. It returns true if a migration was applied.
//
// There is currently only one version; this is the seam future format
// changes hook into, one case per version bump, each folding forward into
// the next until Version == domain.CurrentIndexVersion.
func migrateForward(fwd *domain.ForwardIndex) bool {
	if fwd.Version >= domain.CurrentIndexVersion {
		return false
	}

	if fwd.Identifiers == nil {
		fwd.Identifiers = make(map[string]string)
	}
	if fwd.IDF == nil {
		fwd.IDF = make(map[string]float64)
	}
	if fwd.IdentifierWidth == 0 {
		fwd.IdentifierWidth = 3
	}

	fwd.Version = domain.CurrentIndexVersion
	return true
}
