package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/kamusis/classmap/internal/autoload"
	"github.com/kamusis/classmap/internal/index"
	"github.com/spf13/cobra"
)

var flagBuildFatalDuplicates bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the class map from the configured roots",
	Long: `Scan every configured root, rebuild the class map from scratch and write it
to the cache file (when one is configured).`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&flagBuildFatalDuplicates, "fatal-duplicates", false, "Fail when two files declare the same type, regardless of config")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := newResolver(cfg, func(o *autoload.Options) {
		if flagBuildFatalDuplicates {
			o.Duplicates = index.DuplicatesFatal
		}
	})
	if err != nil {
		return err
	}

	printSection("classmap build")
	start := time.Now()
	if err := r.Reindex(); err != nil {
		var dup *index.DuplicateTypeError
		if errors.As(err, &dup) {
			printErr(dup.Name, fmt.Sprintf("declared in %s and %s", dup.Previous, dup.File))
			return fmt.Errorf("build aborted: %w", err)
		}
		return err
	}

	printOK("", fmt.Sprintf("Indexed %d types in %s", len(r.Classes()), time.Since(start).Round(time.Millisecond)))
	if r.CacheFile() == "" {
		printSkip("", "Cache disabled; nothing written")
	} else {
		printOK("", fmt.Sprintf("Cache written: %s", r.CacheFile()))
	}
	return nil
}
