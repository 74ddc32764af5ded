package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	flagListJSON    bool
	flagListRebuild bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the class map",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "Print the map as a JSON object")
	listCmd.Flags().BoolVar(&flagListRebuild, "rebuild", false, "Rebuild before listing even if the cache is fresh")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r, err := newResolver(cfg, nil)
	if err != nil {
		return err
	}
	if flagListRebuild || len(r.Classes()) == 0 || r.Stale() {
		if err := r.Reindex(); err != nil {
			return err
		}
	}
	classes := r.Classes()

	if flagListJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(classes)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range classes.Names() {
		fmt.Fprintf(tw, "%s\t%s\n", name, classes[name])
	}
	return tw.Flush()
}
