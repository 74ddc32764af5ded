package index

import (
	"io/fs"
	"os"
	"regexp"
)

// Options controls how an Indexer walks the filesystem.
type Options struct {
	// Roots are scanned in order; with DuplicatesLastWins a later root
	// overrides names found in an earlier one.
	Roots []Root
	// Ignore maps a directory path to true (skip it entirely) or false
	// (index its files but do not descend). Keys are matched against the
	// paths visited during traversal, not as prefixes.
	Ignore map[string]bool
	// Pattern selects source files by name. Nil means DefaultPattern.
	Pattern *regexp.Regexp
	// IgnoreEntries lists entry names never visited. Nil means
	// DefaultIgnoreEntries.
	IgnoreEntries []string
	Duplicates    DuplicatePolicy
}

// Indexer builds a Map from a fixed set of roots.
type Indexer struct {
	roots         []Root
	ignore        map[string]bool
	pattern       *regexp.Regexp
	ignoreEntries map[string]struct{}
	duplicates    DuplicatePolicy
}

// New creates an Indexer. Root and ignore paths are normalized with DirPath.
func New(opts Options) *Indexer {
	idx := &Indexer{
		ignore:        make(map[string]bool, len(opts.Ignore)),
		pattern:       opts.Pattern,
		ignoreEntries: map[string]struct{}{},
		duplicates:    opts.Duplicates,
	}
	for _, r := range opts.Roots {
		idx.roots = append(idx.roots, Root{Path: DirPath(r.Path), Recursive: r.Recursive})
	}
	for dir, skip := range opts.Ignore {
		idx.ignore[DirPath(dir)] = skip
	}
	if idx.pattern == nil {
		idx.pattern = DefaultPattern
	}
	entries := opts.IgnoreEntries
	if entries == nil {
		entries = DefaultIgnoreEntries
	}
	for _, name := range entries {
		idx.ignoreEntries[name] = struct{}{}
	}
	return idx
}

// Roots returns the normalized roots in scan order.
func (idx *Indexer) Roots() []Root {
	return append([]Root(nil), idx.roots...)
}

// Build scans every root and returns a fresh map.
//
// Missing or unreadable directories and files contribute nothing. When
// duplicates are fatal the first duplicate stops the build: the returned
// error is a *DuplicateTypeError and the returned map holds whatever was
// collected up to that point.
func (idx *Indexer) Build() (Map, error) {
	classes := Map{}
	b := &build{Indexer: idx, visit: func(key, path string) error {
		if prev, ok := classes[key]; ok && idx.duplicates == DuplicatesFatal {
			return &DuplicateTypeError{Name: key, File: path, Previous: prev}
		}
		classes[key] = path
		return nil
	}}
	return classes, b.run()
}

// Duplicates walks the roots like Build and returns every type declared
// more than once, mapped to the declaring files in scan order. It ignores
// the duplicate policy.
func (idx *Indexer) Duplicates() map[string][]string {
	seen := map[string][]string{}
	b := &build{Indexer: idx, visit: func(key, path string) error {
		seen[key] = append(seen[key], path)
		return nil
	}}
	_ = b.run()
	for key, files := range seen {
		if len(files) < 2 {
			delete(seen, key)
		}
	}
	return seen
}

// build is the state of one walk over the roots.
type build struct {
	*Indexer
	visit func(key, path string) error
}

func (b *build) run() error {
	for _, r := range b.roots {
		if err := b.scanDir(r.Path, r.Recursive); err != nil {
			return err
		}
	}
	return nil
}

func (b *build) scanDir(dir string, recurse bool) error {
	if skip, ok := b.ignore[dir]; ok {
		if skip {
			return nil
		}
		recurse = false
	}

	// ReadDir returns whatever it could read before failing; a directory
	// that cannot be opened yields no entries.
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		name := e.Name()
		if _, ok := b.ignoreEntries[name]; ok {
			continue
		}
		path := dir + name
		if recurse && isDir(path, e) {
			if err := b.scanDir(path+"/", recurse); err != nil {
				return err
			}
			continue
		}
		if b.pattern.MatchString(name) {
			if err := b.indexFile(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *build) indexFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil || len(src) == 0 {
		return nil
	}
	for _, d := range Declarations(src) {
		if err := b.visit(d.Key(), path); err != nil {
			return err
		}
	}
	return nil
}

// isDir follows symlinks, so a link to a directory is descended into.
func isDir(path string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
