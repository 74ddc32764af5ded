package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kamusis/classmap/internal/autoload"
	"github.com/kamusis/classmap/internal/config"
	"github.com/kamusis/classmap/internal/index"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight checks on the config, roots and cache",
	Long: `Check that the config loads, every root is readable, no type is declared
in more than one file, and the cache file is usable from this location.
Run this command when a type resolves to the wrong file or not at all.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorFixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Automatically fix detected issues",
	Long: `Fix detected cache issues.

Currently fixes:
  - Leftover temporary files from interrupted cache writes
  - A cache file that is unreadable or was built from another location

Run 'classmap doctor' first to see what will be fixed.`,
	Args: cobra.NoArgs,
	RunE: runDoctorFix,
}

func init() {
	doctorCmd.AddCommand(doctorFixCmd)
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("classmap doctor")
	fmt.Println()

	// ── Check 1: config is valid ──────────────────────────────────────────────
	fmt.Println("[ " + flagConfig + " ]")
	cfg, loadErr := config.Load(flagConfig)
	if loadErr != nil {
		failD("cannot load config: %v", loadErr)
		fmt.Println()
		return doctorSummary(false)
	}
	opts, err := cfg.Options()
	if err != nil {
		failD("%v", err)
		fmt.Println()
		return doctorSummary(false)
	}
	printOK("", fmt.Sprintf("valid YAML, %d root(s) defined", len(opts.Roots)))
	fmt.Println()

	// ── Check 2: roots are readable ───────────────────────────────────────────
	fmt.Println("[ Roots ]")
	for _, r := range opts.Roots {
		st, err := os.Stat(r.Path)
		switch {
		case err != nil:
			printWarn(r.Path, "does not exist; it indexes as empty")
		case !st.IsDir():
			failD("[%s] is not a directory", r.Path)
		default:
			if _, err := os.ReadDir(r.Path); err != nil {
				failD("[%s] cannot be read: %v", r.Path, err)
				continue
			}
			printOK(r.Path, "readable")
		}
	}
	fmt.Println()

	// ── Check 3: duplicate declarations ───────────────────────────────────────
	fmt.Println("[ Duplicate types ]")
	idx := index.New(index.Options{
		Roots:         opts.Roots,
		Ignore:        opts.Ignore,
		Pattern:       opts.Pattern,
		IgnoreEntries: opts.IgnoreEntries,
	})
	dups := idx.Duplicates()
	if len(dups) == 0 {
		printOK("", "every type is declared once")
	} else {
		for _, name := range slices.Sorted(maps.Keys(dups)) {
			printWarn(name, strings.Join(dups[name], ", "))
		}
		if opts.Duplicates == index.DuplicatesFatal {
			failD("%d duplicate type(s); builds will fail (skip_duplicates is false)", len(dups))
		} else {
			fmt.Printf("\n  ⚠  %d duplicate type(s); the last file scanned wins.\n", len(dups))
		}
	}
	fmt.Println()

	// ── Check 4: cache file ───────────────────────────────────────────────────
	fmt.Println("[ Cache ]")
	if opts.CacheFile == "" {
		printSkip("", "cache disabled")
		fmt.Println()
		return doctorSummary(allOK)
	}
	r, err := autoload.New(opts)
	if err != nil {
		failD("%v", err)
		fmt.Println()
		return doctorSummary(false)
	}
	switch problem := cacheProblem(opts.CacheFile, sentinelKey(opts), r.Location()); {
	case problem == "":
		printOK("", fmt.Sprintf("usable from %s", r.Location()))
	case problem == problemMissing:
		printWarn("", fmt.Sprintf("%s not built yet (run 'classmap build')", opts.CacheFile))
	default:
		printWarn("", fmt.Sprintf("%s; it will be rebuilt on the next lookup (or run 'classmap doctor fix')", problem))
	}
	if err := checkWritable(filepath.Dir(opts.CacheFile)); err != nil {
		failD("cache directory is not writable: %v", err)
	}
	if tmp := findTempFiles(opts.CacheFile); len(tmp) > 0 {
		for _, p := range tmp {
			printWarn("", p)
		}
		fmt.Printf("\n  ⚠  %d leftover temporary file(s) from interrupted writes.\n", len(tmp))
		allOK = false
	}
	fmt.Println()

	return doctorSummary(allOK)
}

func runDoctorFix(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	printSection("classmap doctor fix")
	if opts.CacheFile == "" {
		printOK("", "cache disabled, nothing to fix")
		return nil
	}
	r, err := autoload.New(opts)
	if err != nil {
		return err
	}

	var fixed, failed int
	for _, p := range findTempFiles(opts.CacheFile) {
		if err := os.Remove(p); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", p, err))
			failed++
			continue
		}
		printOK("", fmt.Sprintf("deleted %s", p))
		fixed++
	}

	if problem := cacheProblem(opts.CacheFile, sentinelKey(opts), r.Location()); problem != "" && problem != problemMissing {
		if err := os.Remove(opts.CacheFile); err != nil {
			printErr("", fmt.Sprintf("cannot delete %s: %v", opts.CacheFile, err))
			failed++
		} else {
			printOK("", fmt.Sprintf("deleted %s (%s)", opts.CacheFile, problem))
			fixed++
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be deleted", failed)
	}
	if fixed == 0 {
		printOK("", "nothing to fix")
		return nil
	}
	fmt.Printf("  ✓  %d file(s) removed. Run 'classmap build' to write a fresh cache.\n", fixed)
	return nil
}

func doctorSummary(allOK bool) error {
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. classmap is ready to use.")
		return nil
	}
	fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
	return fmt.Errorf("doctor found issues")
}

const problemMissing = "not built yet"

// cacheProblem describes why the cache at path would not be trusted from
// location, or returns "" when it would be.
func cacheProblem(path, sentinel, location string) string {
	c, err := index.Load(path, sentinel)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return problemMissing
	case err != nil:
		return fmt.Sprintf("unreadable: %v", err)
	case !c.HasMarker:
		return "no location marker"
	case c.Location != location:
		return fmt.Sprintf("built at %s", c.Location)
	}
	return ""
}

func sentinelKey(opts autoload.Options) string {
	if opts.SentinelKey == "" {
		return index.DefaultSentinelKey
	}
	return opts.SentinelKey
}

// checkWritable creates and removes a probe file in dir. A missing dir is
// fine as long as it can be created.
func checkWritable(dir string) error {
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			dir = d
			break
		}
		if filepath.Dir(d) == d {
			break
		}
	}
	f, err := os.CreateTemp(dir, ".classmap-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// findTempFiles returns the temporary files index.Write leaves next to the
// cache when a write is interrupted.
func findTempFiles(cacheFile string) []string {
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(cacheFile), filepath.Base(cacheFile)+".tmp-*"))
	return matches
}
