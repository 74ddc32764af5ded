package index

import (
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// DefaultSentinelKey is the reserved cache key holding the location the
// cache was built from.
const DefaultSentinelKey = "0 DIR"

// DefaultPattern selects the files whose contents are scanned.
var DefaultPattern = regexp.MustCompile(`(?i)\.(php|php5)$`)

// DefaultIgnoreEntries are directory entry names never visited.
var DefaultIgnoreEntries = []string{".", ".."}

// Root is a directory scanned during a build.
type Root struct {
	Path      string
	Recursive bool
}

// DuplicatePolicy decides what happens when two files declare the same
// fully-qualified type.
type DuplicatePolicy int

const (
	// DuplicatesLastWins keeps the file found last.
	DuplicatesLastWins DuplicatePolicy = iota
	// DuplicatesFatal aborts the build with a *DuplicateTypeError.
	DuplicatesFatal
)

func (p DuplicatePolicy) String() string {
	if p == DuplicatesFatal {
		return "fatal"
	}
	return "last-wins"
}

// Map maps fully-qualified type names to the file declaring them.
type Map map[string]string

// Clone returns an independent copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	maps.Copy(out, m)
	return out
}

// Names returns the type names in m in sorted order.
func (m Map) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// DirPath normalizes a directory path to the form used during traversal:
// always ending in a separator, so children are addressed as dir+name.
func DirPath(p string) string {
	if p == "" {
		return "./"
	}
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator)) {
		return p
	}
	return p + "/"
}
