package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kamusis/classmap/internal/index"
	"github.com/spf13/cobra"
)

var (
	flagFindK    int
	flagFindJSON bool
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search the class map by keyword",
	Long: `Print the types whose name or file path contains every word of the query,
case-insensitively. Unlike lookup, find never rebuilds on a miss; it uses
the cached map, building it only when none exists yet or it is stale.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().IntVar(&flagFindK, "k", 20, "Maximum number of results (0 for all)")
	findCmd.Flags().BoolVar(&flagFindJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(findCmd)
}

func runFind(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := newResolver(cfg, nil)
	if err != nil {
		return err
	}
	if len(r.Classes()) == 0 || r.Stale() {
		if err := r.Reindex(); err != nil {
			return err
		}
	}

	query := strings.Join(args, " ")
	results := r.Classes().Find(query, flagFindK)
	if flagFindJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(results)
	}
	printFindResults(query, results)
	return nil
}

func printFindResults(query string, results []index.Match) {
	if len(results) == 0 {
		printMiss("", fmt.Sprintf("No types match %q", query))
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, m := range results {
		fmt.Fprintf(tw, "%d.\t%s\t%s\n", i+1, m.Name, m.Path)
	}
	_ = tw.Flush()
}
