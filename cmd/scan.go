package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/classmap/internal/index"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>...",
	Short: "Show the type declarations found in individual files",
	Long: `Run the declaration scanner over the given files without touching the
config or the cache. Useful to check why a type is or is not indexed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, args []string) error {
	failed := 0
	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			printErr(file, fmt.Sprintf("cannot read: %v", err))
			failed++
			continue
		}
		decls := index.Declarations(src)
		if len(decls) == 0 {
			printSkip(file, "no declarations")
			continue
		}
		for _, d := range decls {
			printOK(file, fmt.Sprintf("%s %s (line %d)", d.Kind, d.Key(), d.Line))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be read", failed)
	}
	return nil
}
