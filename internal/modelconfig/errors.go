package modelconfig

import "errors"

var (
	// ErrNotFound means the referenced configuration version does not exist.
	ErrNotFound = errors.New("configuration version not found")

	// ErrConflict means a uniqueness or cardinality invariant would break:
	// duplicate version on create or rename, or deleting the last
	// remaining configuration.
	ErrConflict = errors.New("configuration conflict")
)
