package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// ── Output helpers ────────────────────────────────────────────────────────────
// Every command reports through these so icons and indentation stay uniform.
//
//   ✓  success           (green)
//   ✗  error             (red, stderr)
//   ⚠  warning           (yellow)
//   ○  skipped
//   -  not found         (yellow)
//   ~  neutral info      (cyan)
//
// Colors are dropped automatically when stdout is not a terminal, when
// NO_COLOR is set, or with --no-color.

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

// printSection prints a top-level section header, e.g. "=== Build ===".
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", bold.Sprint(title))
}

// printKV prints an aligned "key: value" line.
func printKV(key, value string) {
	fmt.Printf("%-12s %s\n", key+":", value)
}

// printLine prints icon + optional [name] + msg to stdout.
func printLine(icon, name, msg string) {
	if name == "" {
		fmt.Printf("  %s  %s\n", icon, msg)
	} else {
		fmt.Printf("  %s  [%s] %s\n", icon, name, msg)
	}
}

func printOK(name, msg string)   { printLine(green.Sprint("✓"), name, msg) }
func printWarn(name, msg string) { printLine(yellow.Sprint("⚠"), name, msg) }
func printSkip(name, msg string) { printLine("○", name, msg) }
func printMiss(name, msg string) { printLine(yellow.Sprint("-"), name, msg) }
func printInfo(name, msg string) { printLine(cyan.Sprint("~"), name, msg) }

// printErr prints an error line to stderr.
func printErr(name, msg string) {
	icon := red.Sprint("✗")
	if name == "" {
		fmt.Fprintf(os.Stderr, "  %s  %s\n", icon, msg)
	} else {
		fmt.Fprintf(os.Stderr, "  %s  [%s] %s\n", icon, name, msg)
	}
}
