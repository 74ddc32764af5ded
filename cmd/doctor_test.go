package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamusis/classmap/internal/index"
)

func TestCacheProblem(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "map.json")

	if got := cacheProblem(cache, index.DefaultSentinelKey, "/here"); got != problemMissing {
		t.Fatalf("missing cache: got %q", got)
	}

	if err := index.Write(cache, index.DefaultSentinelKey, "/here", index.Map{"A": "/a.php"}); err != nil {
		t.Fatal(err)
	}
	if got := cacheProblem(cache, index.DefaultSentinelKey, "/here"); got != "" {
		t.Fatalf("matching cache: got %q", got)
	}
	if got := cacheProblem(cache, index.DefaultSentinelKey, "/elsewhere"); got != "built at /here" {
		t.Fatalf("foreign cache: got %q", got)
	}

	if err := os.WriteFile(cache, []byte(`{"A":"/a.php"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := cacheProblem(cache, index.DefaultSentinelKey, "/here"); got != "no location marker" {
		t.Fatalf("unmarked cache: got %q", got)
	}

	if err := os.WriteFile(cache, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := cacheProblem(cache, index.DefaultSentinelKey, "/here"); !strings.HasPrefix(got, "unreadable") {
		t.Fatalf("corrupt cache: got %q", got)
	}
}

func TestFindTempFiles(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "map.json")
	for _, name := range []string{"map.json", "map.json.lock", "map.json.tmp-123", "other.json.tmp-1"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := findTempFiles(cache)
	if len(got) != 1 || got[0] != filepath.Join(dir, "map.json.tmp-123") {
		t.Fatalf("findTempFiles = %v", got)
	}
}

func TestCheckWritable(t *testing.T) {
	dir := t.TempDir()
	if err := checkWritable(filepath.Join(dir, "not", "yet")); err != nil {
		t.Fatalf("checkWritable on missing subdir: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("probe file left behind: %v", entries)
	}
}
