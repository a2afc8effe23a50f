// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/spf13/cobra"

	"ujar-cli/internal/depgraph"
	"ujar-cli/internal/issue"
	"ujar-cli/pkg/depsfile"
)

// newDepsCommand creates the `ujar deps` command.
func newDepsCommand(app *App) *cobra.Command {
	var (
		lockFile    string
		writePruned string
	)

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Show the resolved library set",
		Long: `Show the resolved library set from the lock file.

Each library is listed with its version and whether the optional pruner
would leave it out of the assembled jar. With --write-pruned the pruned
set is written back as a new lock file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd.Context(), app, cmd, lockFile, writePruned)
		},
	}

	cmd.Flags().StringVar(&lockFile, "lock-file", "", "resolved-dependency lock file (default ujar.lock.cue)")
	cmd.Flags().StringVar(&writePruned, "write-pruned", "", "write the pruned library set to this lock file")

	return cmd
}

func runDeps(ctx context.Context, app *App, cmd *cobra.Command, lockFile, writePruned string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		renderIssue(app.Stderr(), issue.ConfigLoadFailedId)
		return err
	}

	lockPath := cfg.Uberjar.LockFilePath
	if cmd.Flags().Changed("lock-file") {
		lockPath = lockFile
	}

	lock, err := depsfile.Load(lockPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			renderIssue(app.Stderr(), issue.LockFileNotFoundId)
		} else {
			renderIssue(app.Stderr(), issue.LockFileParseErrorId)
		}
		return err
	}

	libs := lock.LibraryMap()
	if err := libs.ValidateAcyclic(); err != nil {
		renderIssue(app.Stderr(), issue.DependencyCycleId)
		return err
	}
	kept := depgraph.Prune(libs)

	coords := make([]string, 0, len(lock.Libraries))
	for coord := range lock.Libraries {
		coords = append(coords, coord)
	}
	sort.Strings(coords)

	fmt.Fprintln(app.Stdout(), TitleStyle.Render(fmt.Sprintf("Resolved libraries (%d)", len(coords))))
	for _, coord := range coords {
		lib := lock.Libraries[coord]
		line := fmt.Sprintf("  %s %s", CoordStyle.Render(coord), lib.Version)
		if lib.Optional {
			line += " " + SubtitleStyle.Render("[optional]")
		}
		if _, ok := kept[depgraph.Coordinate(coord)]; !ok {
			line += " " + WarningStyle.Render("[pruned]")
		}
		fmt.Fprintln(app.Stdout(), line)
	}
	fmt.Fprintln(app.Stdout(), SubtitleStyle.Render(fmt.Sprintf(
		"%d kept, %d pruned", len(kept), len(libs)-len(kept))))

	if writePruned != "" {
		pruned := &depsfile.LockFile{
			Version:   lock.Version,
			Generated: lock.Generated,
			Libraries: make(map[string]depsfile.LockedLibrary, len(kept)),
		}
		for coord := range kept {
			pruned.Libraries[string(coord)] = lock.Libraries[string(coord)]
		}
		if err := pruned.Save(writePruned); err != nil {
			return err
		}
		fmt.Fprintf(app.Stdout(), "%s %s\n",
			SuccessStyle.Render("Wrote"), CoordStyle.Render(writePruned))
	}

	return nil
}
