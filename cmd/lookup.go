package cmd

import (
	"fmt"

	"github.com/kamusis/classmap/internal/autoload"
	"github.com/spf13/cobra"
)

var flagLookupStrict bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <type>...",
	Short: "Resolve fully-qualified type names to the files declaring them",
	Long: `Resolve each name through the class map, rebuilding it first when it is
empty, built elsewhere, or stale. Names are written as in PHP source,
for example 'App\Http\Kernel'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&flagLookupStrict, "strict", false, "Exit with an error when any name is not found")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := newResolver(cfg, nil)
	if err != nil {
		return err
	}
	unregister := autoload.Register(r)
	defer unregister()

	missing := 0
	for _, name := range args {
		path, found, err := autoload.Resolve(name)
		if err != nil {
			return fmt.Errorf("cannot resolve %s: %w", name, err)
		}
		if !found {
			missing++
			printMiss(name, "not found")
			continue
		}
		printOK(name, path)
	}

	if flagLookupStrict && missing > 0 {
		return fmt.Errorf("%d of %d types not found", missing, len(args))
	}
	return nil
}
