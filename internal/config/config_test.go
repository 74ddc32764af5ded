package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kamusis/classmap/internal/autoload"
	"github.com/kamusis/classmap/internal/index"
)

// clearEnv keeps the host environment out of the override chain.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvCache, "")
	t.Setenv(EnvLocation, "")
	t.Setenv(EnvOnlyNamespace, "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Minimal(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, "cache: map.json\nroots:\n  - path: ./src/\n    recursive: true\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.SkipDuplicates {
		t.Fatalf("skip_duplicates should default to true")
	}
	if cfg.OnlyNamespace {
		t.Fatalf("only_namespace should default to false")
	}
	if got, want := cfg.CachePath(), filepath.Join(filepath.Dir(p), "map.json"); got != want {
		t.Fatalf("CachePath = %q, want %q", got, want)
	}
	if len(cfg.Roots) != 1 || cfg.Roots[0].Path != "./src/" || !cfg.Roots[0].Recursive {
		t.Fatalf("unexpected roots: %+v", cfg.Roots)
	}
}

func TestLoad_ExplicitFalseSkipDuplicates(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, "roots:\n  - path: src\nskip_duplicates: false\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Duplicates != index.DuplicatesFatal {
		t.Fatalf("Duplicates = %v, want fatal", opts.Duplicates)
	}
	if opts.CacheFile != "" {
		t.Fatalf("empty cache should disable persistence, got %q", opts.CacheFile)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no roots", "cache: x.json\n", "no roots"},
		{"empty root path", "roots:\n  - path: ''\n", "roots[0]"},
		{"empty ignore path", "roots:\n  - path: src\nignore:\n  - skip: true\n", "ignore[0]"},
		{"non boolean recursive", "roots:\n  - path: src\n    recursive: sometimes\n", "invalid YAML"},
		{"bad pattern", "roots:\n  - path: src\npattern: '('\n", "invalid pattern"},
		{"bad stale_after", "roots:\n  - path: src\nstale_after: soon\n", "invalid stale_after"},
		{"negative stale_after", "roots:\n  - path: src\nstale_after: -1s\n", "must not be negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, "cache: map.json\nroots:\n  - path: src\n")
	dir := filepath.Dir(p)
	if err := os.WriteFile(DotEnvPath(dir), []byte(EnvLocation+"=/from/dotenv\n"+EnvOnlyNamespace+"=true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCache, "/abs/override.json")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CachePath() != "/abs/override.json" {
		t.Fatalf("CachePath = %q", cfg.CachePath())
	}
	if cfg.Location != "/from/dotenv" {
		t.Fatalf("Location = %q", cfg.Location)
	}
	if !cfg.OnlyNamespace {
		t.Fatalf("OnlyNamespace should come from .env")
	}
}

func TestLoad_InvalidOnlyNamespaceEnv(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, "roots:\n  - path: src\n")
	t.Setenv(EnvOnlyNamespace, "maybe")

	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), EnvOnlyNamespace) {
		t.Fatalf("expected %s error, got %v", EnvOnlyNamespace, err)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeConfig(t, "cache: ~/cache/map.json\nroots:\n  - path: src\n")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(home, "cache", "map.json"); cfg.CachePath() != want {
		t.Fatalf("CachePath = %q, want %q", cfg.CachePath(), want)
	}
}

func TestSaveLoad_DefaultConfig(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), FileName)
	if err := Save(p, DefaultConfig()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}

	if opts.CacheFile != filepath.Join(filepath.Dir(p), ".classmap.json") {
		t.Fatalf("CacheFile = %q", opts.CacheFile)
	}
	if len(opts.Roots) != 1 || opts.Roots[0] != (index.Root{Path: "./src/", Recursive: true}) {
		t.Fatalf("Roots = %+v", opts.Roots)
	}
	if opts.Pattern == nil || opts.Pattern.String() != index.DefaultPattern.String() {
		t.Fatalf("Pattern = %v", opts.Pattern)
	}
	if opts.StaleAfter != autoload.DefaultStaleAfter {
		t.Fatalf("StaleAfter = %v", opts.StaleAfter)
	}
	if opts.SentinelKey != index.DefaultSentinelKey {
		t.Fatalf("SentinelKey = %q", opts.SentinelKey)
	}
	if opts.Duplicates != index.DuplicatesLastWins {
		t.Fatalf("Duplicates = %v", opts.Duplicates)
	}
	if len(opts.IgnoreEntries) != len(index.DefaultIgnoreEntries) {
		t.Fatalf("IgnoreEntries = %v", opts.IgnoreEntries)
	}
	if opts.Ignore != nil {
		t.Fatalf("Ignore = %v, want nil", opts.Ignore)
	}
}

func TestOptions_IgnoreAndStale(t *testing.T) {
	clearEnv(t)
	p := writeConfig(t, `roots:
  - path: src
    recursive: true
ignore:
  - path: src/vendor
    skip: true
  - path: src/flat
stale_after: 1m30s
only_namespace: true
location: /srv/app
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if skip, ok := opts.Ignore["src/vendor"]; !ok || !skip {
		t.Fatalf("src/vendor should be skipped: %v", opts.Ignore)
	}
	if skip, ok := opts.Ignore["src/flat"]; !ok || skip {
		t.Fatalf("src/flat should be indexed flat: %v", opts.Ignore)
	}
	if opts.StaleAfter != 90*time.Second {
		t.Fatalf("StaleAfter = %v", opts.StaleAfter)
	}
	if !opts.OnlyNamespace || opts.Location != "/srv/app" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.Pattern != nil {
		t.Fatalf("unset pattern should leave the default to the indexer")
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("ExpandPath = %q", got)
	}
	if got, _ := ExpandPath("/abs"); got != "/abs" {
		t.Fatalf("ExpandPath changed absolute path: %q", got)
	}
}
