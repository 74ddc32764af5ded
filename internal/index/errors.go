package index

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateType is matched by every *DuplicateTypeError.
	ErrDuplicateType = errors.New("duplicate type")
	// ErrInvalidCache indicates a cache file that exists but cannot be parsed.
	ErrInvalidCache = errors.New("invalid cache file")
	// ErrLockTimeout indicates another writer held the cache lock too long.
	ErrLockTimeout = errors.New("cache is locked by another writer")
)

// DuplicateTypeError reports a type declared by more than one file while
// duplicates are fatal.
type DuplicateTypeError struct {
	Name     string
	File     string
	Previous string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("type %s already defined in %s (found again in %s)", e.Name, e.Previous, e.File)
}

func (e *DuplicateTypeError) Unwrap() error { return ErrDuplicateType }
