package index

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixture lays out:
//
//	src/A.php            namespace N; class Foo
//	src/sub/B.php        class Bar
//	src/sub/deep/C.php   class Baz
//
// and returns the root path with a trailing slash.
func fixture(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "src") + "/"
	writeFile(t, root+"A.php", "<?php namespace N; class Foo{}")
	writeFile(t, root+"sub/B.php", "<?php class Bar{}")
	writeFile(t, root+"sub/deep/C.php", "<?php class Baz{}")
	return root
}

func mustBuild(t *testing.T, opts Options) Map {
	t.Helper()
	m, err := New(opts).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestBuild_EndToEnd(t *testing.T) {
	root := fixture(t)
	got := mustBuild(t, Options{Roots: []Root{{Path: root, Recursive: true}}})
	want := Map{
		`N\Foo`: root + "A.php",
		"Bar":   root + "sub/B.php",
		"Baz":   root + "sub/deep/C.php",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Build() (-want +got):\n%s", diff)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	root := fixture(t)
	opts := Options{Roots: []Root{{Path: root, Recursive: true}}}
	first := mustBuild(t, opts)
	second := mustBuild(t, opts)
	if diff := cmp.Diff(second, first); diff != "" {
		t.Fatalf("rebuild differs (-want +got):\n%s", diff)
	}
}

func TestBuild_NonRecursiveRoot(t *testing.T) {
	root := fixture(t)
	got := mustBuild(t, Options{Roots: []Root{{Path: root, Recursive: false}}})
	if diff := cmp.Diff(Map{`N\Foo`: root + "A.php"}, got); diff != "" {
		t.Fatalf("unexpected map (-want +got):\n%s", diff)
	}
}

func TestBuild_RootWithoutTrailingSlash(t *testing.T) {
	root := fixture(t)
	got := mustBuild(t, Options{Roots: []Root{{Path: root[:len(root)-1], Recursive: true}}})
	if got["Bar"] != root+"sub/B.php" {
		t.Fatalf("unexpected path for Bar: %q", got["Bar"])
	}
}

func TestBuild_IgnoreSkip(t *testing.T) {
	root := fixture(t)
	got := mustBuild(t, Options{
		Roots:  []Root{{Path: root, Recursive: true}},
		Ignore: map[string]bool{root + "sub/": true},
	})
	if diff := cmp.Diff(Map{`N\Foo`: root + "A.php"}, got); diff != "" {
		t.Fatalf("unexpected map (-want +got):\n%s", diff)
	}

	got = mustBuild(t, Options{
		Roots:  []Root{{Path: root, Recursive: true}},
		Ignore: map[string]bool{root: true},
	})
	if len(got) != 0 {
		t.Fatalf("skipped root should contribute nothing, got %v", got)
	}
}

func TestBuild_IgnoreFlatten(t *testing.T) {
	root := fixture(t)
	got := mustBuild(t, Options{
		Roots: []Root{{Path: root, Recursive: true}},
		// no trailing slash: keys are normalized like roots
		Ignore: map[string]bool{root + "sub": false},
	})
	want := Map{`N\Foo`: root + "A.php", "Bar": root + "sub/B.php"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected map (-want +got):\n%s", diff)
	}
}

func TestBuild_DuplicatesLastWins(t *testing.T) {
	base := t.TempDir()
	r1 := filepath.Join(base, "one") + "/"
	r2 := filepath.Join(base, "two") + "/"
	writeFile(t, r1+"Dup.php", "<?php class Dup {}")
	writeFile(t, r2+"Dup.php", "<?php class Dup {}")

	got := mustBuild(t, Options{Roots: []Root{{Path: r1, Recursive: true}, {Path: r2, Recursive: true}}})
	if got["Dup"] != r2+"Dup.php" {
		t.Fatalf("expected last root to win, got %q", got["Dup"])
	}
}

func TestBuild_DuplicatesFatal(t *testing.T) {
	base := t.TempDir()
	r1 := filepath.Join(base, "one") + "/"
	r2 := filepath.Join(base, "two") + "/"
	r3 := filepath.Join(base, "three") + "/"
	writeFile(t, r1+"Dup.php", "<?php class Dup {}")
	writeFile(t, r2+"Dup.php", "<?php class Dup {}")
	writeFile(t, r3+"Other.php", "<?php class Other {}")

	idx := New(Options{
		Roots:      []Root{{Path: r1, Recursive: true}, {Path: r2, Recursive: true}, {Path: r3, Recursive: true}},
		Duplicates: DuplicatesFatal,
	})
	partial, err := idx.Build()
	if !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("expected ErrDuplicateType, got %v", err)
	}
	var dup *DuplicateTypeError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateTypeError, got %T", err)
	}
	if dup.Name != "Dup" || dup.Previous != r1+"Dup.php" || dup.File != r2+"Dup.php" {
		t.Fatalf("unexpected error fields: %+v", dup)
	}
	if _, ok := partial["Other"]; ok {
		t.Fatalf("roots after the duplicate must not be scanned")
	}
}

func TestDuplicates(t *testing.T) {
	base := t.TempDir()
	r1 := filepath.Join(base, "one") + "/"
	r2 := filepath.Join(base, "two") + "/"
	writeFile(t, r1+"Dup.php", "<?php namespace N; class Dup {}")
	writeFile(t, r2+"Dup.php", "<?php namespace N; class Dup {}")
	writeFile(t, r2+"Only.php", "<?php class Only {}")

	idx := New(Options{
		Roots:      []Root{{Path: r1, Recursive: true}, {Path: r2, Recursive: true}},
		Duplicates: DuplicatesFatal,
	})
	got := idx.Duplicates()
	want := map[string][]string{`N\Dup`: {r1 + "Dup.php", r2 + "Dup.php"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Duplicates() (-want +got):\n%s", diff)
	}
}

func TestBuild_MissingRootIsEmpty(t *testing.T) {
	got := mustBuild(t, Options{Roots: []Root{{Path: filepath.Join(t.TempDir(), "nope"), Recursive: true}}})
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestBuild_PatternAndEntries(t *testing.T) {
	root := filepath.Join(t.TempDir(), "src") + "/"
	writeFile(t, root+"Upper.PHP", "<?php class Upper {}")
	writeFile(t, root+"Five.php5", "<?php class Five {}")
	writeFile(t, root+"Inc.inc", "<?php class Inc {}")
	writeFile(t, root+"Empty.php", "")
	writeFile(t, root+"vendor/V.php", "<?php class V {}")
	if err := os.MkdirAll(root+"dir.php", 0o755); err != nil {
		t.Fatal(err)
	}

	got := mustBuild(t, Options{Roots: []Root{{Path: root, Recursive: false}}})
	want := Map{"Upper": root + "Upper.PHP", "Five": root + "Five.php5"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("default pattern (-want +got):\n%s", diff)
	}

	got = mustBuild(t, Options{
		Roots:         []Root{{Path: root, Recursive: true}},
		Pattern:       regexp.MustCompile(`(?i)\.inc$`),
		IgnoreEntries: []string{"vendor"},
	})
	if diff := cmp.Diff(Map{"Inc": root + "Inc.inc"}, got); diff != "" {
		t.Fatalf("custom pattern (-want +got):\n%s", diff)
	}
}

func TestDirPath(t *testing.T) {
	cases := map[string]string{
		"":      "./",
		"src":   "src/",
		"src/":  "src/",
		"./a/b": "./a/b/",
	}
	for in, want := range cases {
		if got := DirPath(in); got != want {
			t.Fatalf("DirPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapNamesSorted(t *testing.T) {
	m := Map{"b": "1", `a\z`: "2", "a": "3"}
	if diff := cmp.Diff([]string{"a", `a\z`, "b"}, m.Names()); diff != "" {
		t.Fatalf("Names() (-want +got):\n%s", diff)
	}
	c := m.Clone()
	c["new"] = "x"
	if _, ok := m["new"]; ok {
		t.Fatalf("Clone shares storage")
	}
}
