package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/kamusis/classmap/internal/autoload"
	"github.com/kamusis/classmap/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:          "classmap",
	Short:        "classmap: index PHP class declarations and resolve them to files",
	SilenceUsage: true, // don't print usage on operational errors
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor {
			color.NoColor = true
		}
	},
	Long: `classmap scans configured directories for PHP sources, records which file
declares each class, interface, trait and enum, and caches the result in a
JSON class map that is rebuilt when it goes stale.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.FileName, "Path to the classmap config file")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'classmap init' first.", err)
	}
	return cfg, nil
}

// newResolver builds a resolver from cfg. mutate, when non-nil, may adjust
// the options first (used for command-line overrides).
func newResolver(cfg *config.Config, mutate func(*autoload.Options)) (*autoload.Resolver, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&opts)
	}
	return autoload.New(opts)
}
