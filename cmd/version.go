package cmd

import (
	"fmt"
	"runtime"

	"github.com/kamusis/classmap/internal/autoload"
	"github.com/spf13/cobra"
)

// Set via -ldflags at release time.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var flagVersionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show classmap version and build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	if flagVersionShort {
		fmt.Println(version)
		return nil
	}
	loc, err := autoload.DefaultLocation()
	if err != nil {
		loc = ""
	}
	printKV("Version", version)
	printKV("Commit", emptyAsNA(commit))
	printKV("Build Date", emptyAsNA(buildDate))
	printKV("Go Version", runtime.Version())
	printKV("OS/Arch", runtime.GOOS+"/"+runtime.GOARCH)
	printKV("Location", emptyAsNA(loc))
	return nil
}

func emptyAsNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
