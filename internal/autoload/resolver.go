// Package autoload answers "which file declares type T" from a class map that
// is cached on disk and rebuilt when it is missing, foreign or stale.
package autoload

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kamusis/classmap/internal/index"
)

// DefaultStaleAfter is how old the class map must be before a miss may
// trigger a rebuild.
const DefaultStaleAfter = 10 * time.Second

// LoadFunc brings the file at path into the host environment and reports
// whether the type name is available afterwards.
type LoadFunc func(name, path string) bool

// Options configures a Resolver. The zero value of every field selects the
// documented default.
type Options struct {
	// CacheFile is where the class map is persisted. Empty disables the
	// cache: every process starts empty and nothing is written.
	CacheFile string

	Roots         []index.Root
	Ignore        map[string]bool
	Pattern       *regexp.Regexp
	IgnoreEntries []string
	Duplicates    index.DuplicatePolicy

	// OnlyNamespace stops lookups of unqualified names from triggering a
	// rebuild once a map exists.
	OnlyNamespace bool
	StaleAfter    time.Duration
	SentinelKey   string
	// Location identifies this deployment in the cache file. A cache built
	// from another location is not trusted. Defaults to DefaultLocation().
	Location string

	// Load is called for every candidate path. Nil means finding the file
	// is enough.
	Load LoadFunc
	// Now replaces time.Now in tests.
	Now func() time.Time
}

// Resolver maps type names to files. It is not safe for concurrent use.
type Resolver struct {
	indexer       *index.Indexer
	cacheFile     string
	sentinelKey   string
	location      string
	onlyNamespace bool
	staleAfter    time.Duration
	load          LoadFunc
	now           func() time.Time

	classes index.Map
	built   time.Time
}

// New creates a Resolver and, when a cache file is configured and present,
// seeds it from that file. A cache that cannot be parsed, or that was built
// from another location, is ignored and the first lookup rebuilds.
func New(opts Options) (*Resolver, error) {
	r := &Resolver{
		indexer: index.New(index.Options{
			Roots:         opts.Roots,
			Ignore:        opts.Ignore,
			Pattern:       opts.Pattern,
			IgnoreEntries: opts.IgnoreEntries,
			Duplicates:    opts.Duplicates,
		}),
		cacheFile:     opts.CacheFile,
		sentinelKey:   opts.SentinelKey,
		location:      opts.Location,
		onlyNamespace: opts.OnlyNamespace,
		staleAfter:    opts.StaleAfter,
		load:          opts.Load,
		now:           opts.Now,
		classes:       index.Map{},
	}
	if r.sentinelKey == "" {
		r.sentinelKey = index.DefaultSentinelKey
	}
	if r.staleAfter <= 0 {
		r.staleAfter = DefaultStaleAfter
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.location == "" {
		loc, err := DefaultLocation()
		if err != nil {
			return nil, err
		}
		r.location = loc
	}
	if r.cacheFile != "" {
		r.loadCache()
	}
	return r, nil
}

// DefaultLocation returns the directory of the running executable.
func DefaultLocation() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot determine executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func (r *Resolver) loadCache() {
	c, err := index.Load(r.cacheFile, r.sentinelKey)
	if err != nil {
		return
	}
	r.built = c.ModTime
	if c.HasMarker && c.Location == r.location {
		r.classes = c.Classes
	}
}

// Lookup returns the file declaring name.
//
// A hit whose file still exists is returned as is. Otherwise, if the map is
// empty or a rebuild is due, the map is rebuilt once and the lookup retried.
// An unknown name is not an error: found is false and err is nil. err is
// only set when the rebuild itself fails.
func (r *Resolver) Lookup(name string) (path string, found bool, err error) {
	name = strings.TrimPrefix(name, `\`)
	if name == "" {
		return "", false, nil
	}

	rebuilt := false
	for {
		if p, ok := r.classes[name]; ok && isFile(p) && r.loaded(name, p) {
			return p, true, nil
		}
		if rebuilt || (len(r.classes) > 0 && !r.reindexDue(name)) {
			return "", false, nil
		}
		if err := r.Reindex(); err != nil {
			return "", false, err
		}
		rebuilt = true
		if _, ok := r.classes[name]; !ok {
			return "", false, nil
		}
	}
}

// Resolve implements Handler.
func (r *Resolver) Resolve(name string) (string, bool, error) {
	return r.Lookup(name)
}

// Reindex rebuilds the map from the roots and persists it.
//
// On a duplicate type error the partially built map replaces the current
// one, the build time is left alone and nothing is written. A persistence
// error leaves the new map in place.
func (r *Resolver) Reindex() error {
	classes, err := r.indexer.Build()
	r.classes = classes
	if err != nil {
		return err
	}
	r.built = r.now()
	if r.cacheFile == "" {
		return nil
	}
	if err := index.Write(r.cacheFile, r.sentinelKey, r.location, classes); err != nil {
		return fmt.Errorf("cannot persist class map: %w", err)
	}
	return nil
}

// Stale reports whether the staleness window has passed since the last
// build.
func (r *Resolver) Stale() bool {
	return r.reindexDue("")
}

// reindexDue reports whether a miss for name may rebuild the map. With
// OnlyNamespace set, unqualified names never qualify.
func (r *Resolver) reindexDue(name string) bool {
	if r.now().Sub(r.built) <= r.staleAfter {
		return false
	}
	return name == "" || !r.onlyNamespace || strings.Contains(name, `\`)
}

func (r *Resolver) loaded(name, path string) bool {
	return r.load == nil || r.load(name, path)
}

// Classes returns a copy of the current map.
func (r *Resolver) Classes() index.Map {
	return r.classes.Clone()
}

// LastBuild returns the time of the last rebuild, or the cache file's
// modification time when the map came from disk.
func (r *Resolver) LastBuild() time.Time { return r.built }

// CacheFile returns the configured cache path, empty when disabled.
func (r *Resolver) CacheFile() string { return r.cacheFile }

// Location returns the location recorded in and checked against the cache.
func (r *Resolver) Location() string { return r.location }

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
