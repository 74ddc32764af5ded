package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/kamusis/classmap/internal/autoload"
	"github.com/kamusis/classmap/internal/index"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show roots and the state of the class map cache",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	r, err := autoload.New(opts)
	if err != nil {
		return err
	}

	printSection("Roots")
	for _, root := range opts.Roots {
		mode := "recursive"
		if !root.Recursive {
			mode = "flat"
		}
		if st, err := os.Stat(root.Path); err != nil || !st.IsDir() {
			printMiss(root.Path, mode+", missing (indexes as empty)")
			continue
		}
		printOK(root.Path, mode)
	}
	for _, dir := range slices.Sorted(maps.Keys(opts.Ignore)) {
		if opts.Ignore[dir] {
			printSkip(dir, "ignored")
		} else {
			printInfo(dir, "indexed without subdirectories")
		}
	}

	printSection("Cache")
	cache := r.CacheFile()
	if cache == "" {
		printSkip("", "Cache disabled; every run rebuilds")
		return nil
	}
	c, err := index.Load(cache, sentinelKey(opts))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		printMiss("", fmt.Sprintf("Not built yet: %s (run 'classmap build')", cache))
		return nil
	case errors.Is(err, index.ErrInvalidCache):
		printWarn("", fmt.Sprintf("Unreadable, will be rebuilt on next lookup: %v", err))
		return nil
	case err != nil:
		return err
	}

	printOK("", fmt.Sprintf("%s (%d types)", cache, len(c.Classes)))
	age := time.Since(c.ModTime).Round(time.Second)
	if r.Stale() {
		printInfo("", fmt.Sprintf("Built %s ago; stale, a miss will rebuild", age))
	} else {
		printOK("", fmt.Sprintf("Built %s ago; fresh", age))
	}
	switch {
	case !c.HasMarker:
		printWarn("", "No location marker; will be rebuilt on next lookup")
	case c.Location != r.Location():
		printWarn("", fmt.Sprintf("Built at %s, running from %s; will be rebuilt on next lookup", c.Location, r.Location()))
	default:
		printOK("", fmt.Sprintf("Location matches: %s", c.Location))
	}
	return nil
}
