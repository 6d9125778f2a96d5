package domain

import "errors"

// Domain errors are the closed set of error kinds every core operation can
// return. Adapters translate these into exit codes and human-readable text;
// the core never formats output itself.
var (
	// ErrIoError indicates a filesystem read or write failure.
	ErrIoError = errors.New("io error")

	// ErrParseError indicates a malformed on-disk index.
	ErrParseError = errors.New("parse error: index is corrupt, rebuild required")

	// ErrVersionMismatch indicates the on-disk index predates the current
	// format. It is not fatal: the loader defaults new fields and warns.
	ErrVersionMismatch = errors.New("version mismatch: index was built by an older version")

	// ErrIndexMissing indicates no index exists at the supplied directory.
	ErrIndexMissing = errors.New("index missing: run build first")

	// ErrEmptyQuery indicates the query was empty after tokenization and
	// stemming. Not an error condition for the caller: callers should treat
	// it as "zero results", exit 0.
	ErrEmptyQuery = errors.New("empty query")

	// ErrBudgetUnderflow indicates the token budget was too small to admit
	// any section. The assembler still returns a partial digest.
	ErrBudgetUnderflow = errors.New("budget underflow: no section fits")

	// ErrNotFound indicates a requested document or section does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed caller input (bad threshold, bad
	// depth, etc).
	ErrInvalidInput = errors.New("invalid input")

	// ErrLockHeld indicates another process holds the index write lock.
	ErrLockHeld = errors.New("index is locked by another process")
)
