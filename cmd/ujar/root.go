// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"ujar-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// defaultApp is the production composition root used by the command tree.
	defaultApp = NewApp(Dependencies{})

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "ujar",
		Short: "Assemble standalone executable jars",
		Long: TitleStyle.Render("ujar") + SubtitleStyle.Render(" - Assemble standalone executable jars") + `

ujar merges a resolved set of library jars and your compiled output into
one self-contained archive, ready to run with 'java -jar'. Colliding
entries keep the first writer, reader descriptors are merged, and
libraries reachable only through optional edges are pruned.

The resolved library set is read from a 'ujar.lock.cue' lock file
produced by your dependency resolver.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Resolve your dependencies so ujar.lock.cue is current
  2. Compile your project output
  3. Run: ujar uber --target-path target/app-standalone.jar

` + SubtitleStyle.Render("Examples:") + `
  ujar uber                 Assemble using config defaults
  ujar deps                 Show the resolved library set
  ujar config show          Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ujar/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(newUberCommand(defaultApp))
	rootCmd.AddCommand(newDepsCommand(defaultApp))
	rootCmd.AddCommand(newConfigCommand(defaultApp))
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file settings that shape global behavior.
func initRootConfig() {
	cfg, err := defaultApp.loadConfig(context.Background())
	if err != nil {
		// Surface config loading errors but keep going with defaults
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
