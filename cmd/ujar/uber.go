// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"ujar-cli/internal/depgraph"
	"ujar-cli/internal/issue"
	"ujar-cli/pkg/depsfile"
	"ujar-cli/pkg/uberjar"
)

// uberFlags carries the per-run flag values of `ujar uber`. Only flags the
// user actually changed override the configuration file.
type uberFlags struct {
	lockFile    string
	targetPath  string
	compilePath string
	mainClass   string
	manifest    map[string]string
}

// newUberCommand creates the `ujar uber` command.
func newUberCommand(app *App) *cobra.Command {
	var flags uberFlags

	cmd := &cobra.Command{
		Use:   "uber",
		Short: "Assemble the standalone jar from the lock file",
		Long: `Assemble the standalone jar from the lock file.

Libraries from ujar.lock.cue are merged first, in lexical coordinate
order, then the compiled output directory, so project code always wins
colliding paths. Libraries reachable only through optional edges are
left out. The manifest is synthesized last; --manifest attributes
override the derived ones.`,
		Example: `  ujar uber --target-path target/app-standalone.jar --main my-app.core
  ujar uber --compile-path target/classes --manifest X-Build-Id=42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUber(cmd.Context(), app, cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.lockFile, "lock-file", "", "resolved-dependency lock file (default ujar.lock.cue)")
	cmd.Flags().StringVar(&flags.targetPath, "target-path", "", "where the output jar is written")
	cmd.Flags().StringVar(&flags.compilePath, "compile-path", "", "compiled-output directory merged after all libraries")
	cmd.Flags().StringVar(&flags.mainClass, "main", "", "entry point (hyphens become underscores in the manifest)")
	cmd.Flags().StringToStringVar(&flags.manifest, "manifest", nil, "extra manifest attributes (name=value)")

	return cmd
}

func runUber(ctx context.Context, app *App, cmd *cobra.Command, flags uberFlags) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		renderIssue(app.Stderr(), issue.ConfigLoadFailedId)
		return err
	}

	// Flags override the config file; merge once, up front.
	settings := cfg.Uberjar
	if cmd.Flags().Changed("lock-file") {
		settings.LockFilePath = flags.lockFile
	}
	if cmd.Flags().Changed("target-path") {
		settings.TargetPath = flags.targetPath
	}
	if cmd.Flags().Changed("compile-path") {
		settings.CompilePath = flags.compilePath
	}
	if cmd.Flags().Changed("main") {
		settings.Main = flags.mainClass
	}
	manifestAttrs := make(map[string]any, len(settings.Manifest)+len(flags.manifest))
	for name, val := range settings.Manifest {
		manifestAttrs[name] = val
	}
	for name, val := range flags.manifest {
		manifestAttrs[name] = val
	}

	if settings.TargetPath == "" {
		return errors.New("target path is required: set --target-path or uberjar.target_path in the config")
	}

	if settings.CompilePath != "" {
		if info, statErr := os.Stat(settings.CompilePath); statErr != nil || !info.IsDir() {
			renderIssue(app.Stderr(), issue.CompileOutputMissingId)
			return &ExitError{Code: 1, Err: fmt.Errorf("compile path is not a directory: %s", settings.CompilePath)}
		}
	}

	lock, err := depsfile.Load(settings.LockFilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			renderIssue(app.Stderr(), issue.LockFileNotFoundId)
		} else {
			renderIssue(app.Stderr(), issue.LockFileParseErrorId)
		}
		return err
	}
	libs := lock.LibraryMap()

	logger := log.NewWithOptions(app.Stderr(), log.Options{ReportTimestamp: false, Prefix: "uber"})
	conflicts := 0
	onConflict := func(relPath, source string) {
		conflicts++
		if verbose {
			logger.Warn("dropped colliding entry", "path", relPath, "source", source)
		}
	}

	if err := uberjar.Assemble(uberjar.Options{
		Libraries:     libs,
		CompilePath:   settings.CompilePath,
		TargetPath:    settings.TargetPath,
		MainClass:     settings.Main,
		ManifestAttrs: manifestAttrs,
		ToolVersion:   Version,
		OnConflict:    onConflict,
	}); err != nil {
		renderAssembleIssue(app, err)
		return err
	}

	kept := len(depgraph.Prune(libs))
	fmt.Fprintf(app.Stdout(), "%s %s\n",
		SuccessStyle.Render("Wrote"), CoordStyle.Render(settings.TargetPath))
	fmt.Fprintln(app.Stdout(), SubtitleStyle.Render(fmt.Sprintf(
		"%d libraries merged, %d pruned, %d colliding entries dropped",
		kept, len(libs)-kept, conflicts)))

	return nil
}

// renderAssembleIssue maps an assembly failure to its remediation card.
func renderAssembleIssue(app *App, err error) {
	var (
		cycleErr *depgraph.CycleError
		mergeErr *uberjar.MergeError
		writeErr *uberjar.WriteError
	)
	switch {
	case errors.As(err, &cycleErr):
		renderIssue(app.Stderr(), issue.DependencyCycleId)
	case errors.Is(err, fs.ErrPermission):
		renderIssue(app.Stderr(), issue.PermissionDeniedId)
	case errors.As(err, &mergeErr):
		renderIssue(app.Stderr(), issue.SourceMergeFailedId)
	case errors.As(err, &writeErr):
		renderIssue(app.Stderr(), issue.JarWriteFailedId)
	}
}
