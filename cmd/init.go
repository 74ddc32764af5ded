package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kamusis/classmap/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagInitForce bool
	flagInitRoots []string
	flagInitCache string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default classmap.yaml and .env template",
	Long: `Create the config file named by --config (default ./classmap.yaml).

Roots are given as PATH (recursive) or PATH:norecurse:
  classmap init --root ./src/ --root ./lib/:norecurse
  classmap init --cache off        Disable the on-disk class map cache`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&flagInitForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().StringArrayVar(&flagInitRoots, "root", nil, "Directory to index, PATH or PATH:norecurse (repeatable)")
	initCmd.Flags().StringVar(&flagInitCache, "cache", "", `Cache file path; "off" disables the cache`)
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	printSection("classmap init")

	cfg := config.DefaultConfig()
	if len(flagInitRoots) > 0 {
		roots, err := parseRootSpecs(flagInitRoots)
		if err != nil {
			return err
		}
		cfg.Roots = roots
	}
	if cmd.Flags().Changed("cache") {
		cfg.Cache = flagInitCache
		if strings.EqualFold(flagInitCache, "off") {
			cfg.Cache = ""
		}
	}

	// ── 1. Config file ────────────────────────────────────────────────────────
	if _, err := os.Stat(flagConfig); err == nil && !flagInitForce {
		printSkip("", fmt.Sprintf("Config already exists: %s (use --force to overwrite)", flagConfig))
	} else {
		if err := config.Save(flagConfig, cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", flagConfig))
	}

	// ── 2. .env template ──────────────────────────────────────────────────────
	dir := filepath.Dir(flagConfig)
	wrote, err := config.EnsureDotEnvTemplate(dir)
	if err != nil {
		return err
	}
	if wrote {
		printOK("", fmt.Sprintf("Env template written: %s", config.DotEnvPath(dir)))
	} else {
		printSkip("", fmt.Sprintf("Env file already exists: %s", config.DotEnvPath(dir)))
	}

	// ── 3. Sanity check roots ─────────────────────────────────────────────────
	for _, r := range cfg.Roots {
		if _, err := os.Stat(r.Path); err != nil {
			printWarn(r.Path, "root does not exist yet; it will index as empty")
		}
	}
	return nil
}

// parseRootSpecs parses PATH, PATH:recurse and PATH:norecurse. The suffix is
// split at the last colon so Windows drive letters survive.
func parseRootSpecs(specs []string) ([]config.Root, error) {
	roots := make([]config.Root, 0, len(specs))
	for _, s := range specs {
		r := config.Root{Path: s, Recursive: true}
		if i := strings.LastIndex(s, ":"); i >= 0 {
			switch strings.ToLower(s[i+1:]) {
			case "norecurse":
				r.Path, r.Recursive = s[:i], false
			case "recurse":
				r.Path = s[:i]
			}
		}
		if strings.TrimSpace(r.Path) == "" {
			return nil, fmt.Errorf("invalid --root %q: empty path", s)
		}
		roots = append(roots, r)
	}
	return roots, nil
}
